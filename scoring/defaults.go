package scoring

import "student-scores/models"

func staarBands() []models.Threshold {
	return []models.Threshold{
		{Label: "Did Not Meet", Min: 0, Max: 59, Color: "#ef4444"},
		{Label: "Approaches", Min: 60, Max: 69, Color: "#f59e0b"},
		{Label: "Meets", Min: 70, Max: 79, Color: "#22c55e"},
		{Label: "Masters", Min: 80, Max: 100, Color: "#3b82f6"},
	}
}

// DefaultConfig seeds a fresh installation.
func DefaultConfig() *models.Config {
	return &models.Config{
		Labels: models.AxisLabels{XAxis: "Prior Year STAAR", YAxis: "Current Checkpoint"},
		Thresholds: map[string]models.PeriodThresholds{
			"math": {Previous: staarBands(), Current: staarBands()},
			"rla":  {Previous: staarBands(), Current: staarBands()},
		},
	}
}
