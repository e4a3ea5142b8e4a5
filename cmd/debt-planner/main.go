package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/iwvelando/debt-planner/internal/config"
	"github.com/iwvelando/debt-planner/internal/logging"
	"github.com/iwvelando/debt-planner/internal/planner"
	"github.com/iwvelando/debt-planner/pkg/constants"
	"github.com/iwvelando/debt-planner/pkg/output"
	"github.com/iwvelando/debt-planner/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	compare := flag.Bool("compare", false, "compare every strategy against the plan")
	schedules := flag.Bool("schedules", false, "print per-debt amortization schedules")
	optimize := flag.Bool("optimize", false, "search for the smallest monthly payment meeting the target")
	targetMonths := flag.Int("target-months", 0, "payoff target in months for -optimize")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	plan, err := planner.Build(logger, conf, planner.Options{
		Compare:      *compare || conf.Output.Compare,
		Schedules:    *schedules || conf.Output.Schedules,
		Optimize:     *optimize,
		TargetMonths: *targetMonths,
		Now:          time.Now(),
	})
	if err != nil {
		logger.Fatal("failed to compute plan",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	for _, warning := range plan.Warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if err := output.Write(os.Stdout, outputFormat, plan); err != nil {
		logger.Fatal("failed to write plan",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
