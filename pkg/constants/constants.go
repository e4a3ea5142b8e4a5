// Package constants provides shared constants for the debt-planner application.
package constants

import "time"

// DateTimeLayout is the month format expected in config files and is also the
// output date format.
const DateTimeLayout = "2006-01"

// DayLayout is the full-date format accepted for funding and maturity dates.
const DayLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12
	// DecimalPlaces is the precision for currency rounding
	DecimalPlaces = 2
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
	// MonthlyRateDivisor converts an annual percentage rate into a monthly
	// fraction (12 months * 100 percent).
	MonthlyRateDivisor = MonthsPerYear * PercentageMultiplier
	// PaidOffThreshold is the balance at or below which a debt is retired.
	PaidOffThreshold = 0.01
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Simulation limits
const (
	// MaxSimulationMonths bounds every simulation loop (100 years).
	MaxSimulationMonths = 1200
	// MaxRateEstimateIterations bounds the APR bisection.
	MaxRateEstimateIterations = 100
	// MaxEstimatedRate is the upper bound, in percent, for APR estimation.
	MaxEstimatedRate = 100.0
)

// Strategy identifiers
const (
	StrategyAvalanche = "avalanche"
	StrategySnowball  = "snowball"
	StrategyCustom    = "custom"
	// DefaultStrategy is used when a plan does not name one.
	DefaultStrategy = StrategyAvalanche
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"
	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"
	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
	// EnvPrefix is the prefix for environment overrides of plan settings.
	EnvPrefix = "DEBT_PLANNER"
	// DefaultCurrencySymbol is used when a plan does not set one.
	DefaultCurrencySymbol = "£"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"
	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
	// DefaultCacheTTLSeconds is how long cached plan responses live.
	DefaultCacheTTLSeconds = 300
	// DefaultCacheEntries bounds the in-memory cache.
	DefaultCacheEntries = 512
	// MaxUploadSizeBytes caps the configurable upload size. Plan configs are
	// small YAML documents.
	MaxUploadSizeBytes int64 = 8 * 1024 * 1024
	// DefaultReadTimeout and DefaultWriteTimeout bound a single request.
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	// DefaultShutdownTimeout is how long in-flight plans get to finish.
	DefaultShutdownTimeout = 10 * time.Second
)
