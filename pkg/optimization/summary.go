// Package optimization provides shared data structures for optimization results.
package optimization

// Summary captures the result of a single optimization directive.
type Summary struct {
	Scope      string  `json:"scope" yaml:"scope"`
	TargetName string  `json:"targetName" yaml:"targetName"`
	Field      string  `json:"field" yaml:"field"`
	Original   float64 `json:"original" yaml:"original"`
	Value      float64 `json:"value" yaml:"value"`
	// Floor is the lowest value searched, the total of minimum payments.
	Floor          float64  `json:"floor" yaml:"floor"`
	TargetMonths   int      `json:"targetMonths" yaml:"targetMonths"`
	OriginalMonths int      `json:"originalMonths" yaml:"originalMonths"`
	AchievedMonths int      `json:"achievedMonths" yaml:"achievedMonths"`
	Iterations     int      `json:"iterations" yaml:"iterations"`
	Converged      bool     `json:"converged" yaml:"converged"`
	Notes          []string `json:"notes,omitempty" yaml:"notes,omitempty"`
	// Display fields carry currency-formatted values for presentation.
	OriginalDisplay string `json:"originalDisplay,omitempty" yaml:"originalDisplay,omitempty"`
	ValueDisplay    string `json:"valueDisplay,omitempty" yaml:"valueDisplay,omitempty"`
}

// Delta is the change from the original value.
func (s Summary) Delta() float64 {
	return s.Value - s.Original
}

// MonthsSaved is how many months sooner the optimized value finishes.
func (s Summary) MonthsSaved() int {
	return s.OriginalMonths - s.AchievedMonths
}
