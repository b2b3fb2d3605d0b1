package models

// Threshold is one labeled, inclusive score range.
type Threshold struct {
	Label string  `json:"label" yaml:"label" validate:"required"`
	Min   float64 `json:"min" yaml:"min" validate:"gte=0,lte=100"`
	Max   float64 `json:"max" yaml:"max" validate:"gte=0,lte=100"`
	Color string  `json:"color,omitempty" yaml:"color,omitempty"`
}

// PeriodThresholds holds the ordered threshold sets of one subject.
// Previous classifies prior-year scores, Current the fall and spring checkpoints.
type PeriodThresholds struct {
	Previous []Threshold `json:"previous" yaml:"previous" validate:"dive"`
	Current  []Threshold `json:"current" yaml:"current" validate:"dive"`
}

type AxisLabels struct {
	XAxis string `json:"xAxis" yaml:"xAxis"`
	YAxis string `json:"yAxis" yaml:"yAxis"`
}

// Config is replaced wholesale on save.
type Config struct {
	Labels     AxisLabels                  `json:"labels" yaml:"labels"`
	Thresholds map[string]PeriodThresholds `json:"thresholds" yaml:"thresholds" validate:"required,dive"`
}

type ConfigSaveResponse struct {
	Response
	Warnings []string `json:"warnings"`
}
