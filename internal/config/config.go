// Package config defines the plan file format and turns a loaded plan into
// engine inputs.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/debt-planner/pkg/constants"
	"github.com/iwvelando/debt-planner/pkg/datetime"
	"github.com/iwvelando/debt-planner/pkg/debts"
	"github.com/iwvelando/debt-planner/pkg/events"
	"github.com/iwvelando/debt-planner/pkg/strategy"
	"github.com/iwvelando/debt-planner/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds a complete debt payoff plan.
type Configuration struct {
	StartDate      string           `yaml:"startDate,omitempty" json:"startDate,omitempty"`
	MonthlyPayment float64          `yaml:"monthlyPayment" json:"monthlyPayment"`
	Strategy       string           `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	CustomOrder    []string         `yaml:"customOrder,omitempty" json:"customOrder,omitempty"`
	CurrencySymbol string           `yaml:"currencySymbol,omitempty" json:"currencySymbol,omitempty"`
	MaxMonths      int              `yaml:"maxMonths,omitempty" json:"maxMonths,omitempty"`
	Debts          []debts.Record   `yaml:"debts" json:"debts"`
	Fundings       []Funding        `yaml:"fundings,omitempty" json:"fundings,omitempty"`
	Logging        LoggingConfig    `yaml:"logging,omitempty" json:"logging,omitempty"`
	Output         OutputConfig     `yaml:"output,omitempty" json:"output,omitempty"`
	Optimizer      *OptimizerConfig `yaml:"optimizer,omitempty" json:"optimizer,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" json:"level,omitempty"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" json:"format,omitempty"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" json:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format    string `yaml:"format,omitempty" json:"format,omitempty"` // pretty, csv, json
	Schedules bool   `yaml:"schedules,omitempty" json:"schedules,omitempty"`
	Compare   bool   `yaml:"compare,omitempty" json:"compare,omitempty"`
}

// Funding is a lump sum paid into the plan. A Frequency in months makes it
// recur from Date through EndDate.
type Funding struct {
	Name      string  `yaml:"name" json:"name"`
	Amount    float64 `yaml:"amount" json:"amount"`
	Date      string  `yaml:"date,omitempty" json:"date,omitempty"`
	EndDate   string  `yaml:"endDate,omitempty" json:"endDate,omitempty"`
	Frequency int     `yaml:"frequency,omitempty" json:"frequency,omitempty"` // months
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys need a default to be eligible for env overrides when absent from
	// the file.
	v.SetDefault("startDate", "")
	v.SetDefault("monthlyPayment", 0)
	v.SetDefault("strategy", constants.DefaultStrategy)
	v.SetDefault("currencySymbol", constants.DefaultCurrencySymbol)
	v.SetDefault("maxMonths", 0)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.Normalize()
	return &configuration, nil
}

// Normalize trims and defaults the plan-level settings.
func (c *Configuration) Normalize() {
	c.StartDate = strings.TrimSpace(c.StartDate)
	c.Strategy = strings.ToLower(strings.TrimSpace(c.Strategy))
	if c.Strategy == "" {
		c.Strategy = constants.DefaultStrategy
	}
	if strings.TrimSpace(c.CurrencySymbol) == "" {
		c.CurrencySymbol = constants.DefaultCurrencySymbol
	}
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Optimizer != nil {
		c.Optimizer.Normalize()
	}
}

// StartMonth returns the plan start month, defaulting to the current month.
func (c *Configuration) StartMonth() (datetime.Month, error) {
	return c.StartMonthWithFixedTime(time.Now())
}

// StartMonthWithFixedTime returns the plan start month with an injectable
// current time for testing.
func (c *Configuration) StartMonthWithFixedTime(now time.Time) (datetime.Month, error) {
	if c.StartDate == "" {
		return datetime.FromTime(now), nil
	}
	start, err := datetime.Parse(c.StartDate)
	if err != nil {
		return 0, fmt.Errorf("start date: %w", err)
	}
	return start, nil
}

// Horizon is the last month the plan can run to.
func (c *Configuration) Horizon(start datetime.Month) datetime.Month {
	months := c.MaxMonths
	if months <= 0 || months > constants.MaxSimulationMonths {
		months = constants.MaxSimulationMonths
	}
	return start.Add(months)
}

// DebtList classifies every configured debt.
func (c *Configuration) DebtList() ([]debts.Debt, error) {
	return debts.ClassifyAll(c.Debts)
}

// FundingList expands the configured fundings into one-time fundings from
// start through horizon.
func (c *Configuration) FundingList(start, horizon datetime.Month) ([]events.Funding, error) {
	list := make([]events.Event, 0, len(c.Fundings))
	for _, funding := range c.Fundings {
		list = append(list, events.Event{
			Name:      funding.Name,
			Amount:    funding.Amount,
			StartDate: funding.Date,
			EndDate:   funding.EndDate,
			Frequency: funding.Frequency,
		})
	}
	return events.NewProcessor().Expand(list, start, horizon)
}

// StrategyValue resolves the configured strategy.
func (c *Configuration) StrategyValue() (strategy.Strategy, error) {
	return strategy.ByID(c.Strategy, c.CustomOrder)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	return c.ValidateConfigurationWithFixedTime(time.Now())
}

// ValidateConfigurationWithFixedTime validates with an injectable current
// time used when the plan has no start date.
func (c *Configuration) ValidateConfigurationWithFixedTime(now time.Time) []string {
	start, err := c.StartMonthWithFixedTime(now)
	if err != nil {
		return []string{err.Error()}
	}

	fundings := make([]validation.FundingConfig, 0, len(c.Fundings))
	for _, funding := range c.Fundings {
		fundings = append(fundings, validation.FundingConfig{
			Name:    funding.Name,
			Date:    funding.Date,
			EndDate: funding.EndDate,
		})
	}

	validator := &validation.PlanValidator{
		Start:         start,
		MonthlyBudget: c.MonthlyPayment,
		Strategy:      c.Strategy,
		CustomOrder:   c.CustomOrder,
		Debts:         c.Debts,
		Fundings:      fundings,
	}
	return validator.ValidateAll()
}
