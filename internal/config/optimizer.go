package config

import (
	"fmt"

	"github.com/iwvelando/debt-planner/pkg/constants"
)

const (
	OptimizerFieldMonthlyPayment = "monthlyPayment"

	defaultToleranceAmount = 0.01
	defaultMaxIterations   = 50
)

// OptimizerConfig asks for the smallest monthly payment that retires every
// debt within TargetMonths. Min and Max bound the search and default to the
// total minimum payments and the total debt balance.
type OptimizerConfig struct {
	TargetMonths  int      `yaml:"targetMonths" json:"targetMonths" mapstructure:"targetMonths"`
	Min           *float64 `yaml:"min,omitempty" json:"min,omitempty" mapstructure:"min"`
	Max           *float64 `yaml:"max,omitempty" json:"max,omitempty" mapstructure:"max"`
	Tolerance     float64  `yaml:"tolerance,omitempty" json:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int      `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// Normalize ensures defaults are applied before validation.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	if o.Tolerance <= 0 {
		o.Tolerance = defaultToleranceAmount
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
}

// Validate reports directives that cannot be searched.
func (o *OptimizerConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("optimizer configuration is missing")
	}
	if o.TargetMonths <= 0 || o.TargetMonths > constants.MaxSimulationMonths {
		return fmt.Errorf("optimizer target months must be between 1 and %d, got %d",
			constants.MaxSimulationMonths, o.TargetMonths)
	}
	if o.Min != nil && *o.Min < 0 {
		return fmt.Errorf("optimizer min cannot be negative")
	}
	if o.Min != nil && o.Max != nil && *o.Max < *o.Min {
		return fmt.Errorf("optimizer max %.2f is below min %.2f", *o.Max, *o.Min)
	}
	return nil
}
