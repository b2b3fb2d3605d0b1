// Package scoring turns raw scores into performance labels using ordered,
// configurable threshold sets.
package scoring

import "student-scores/models"

// Unknown is returned when a score falls in no configured range.
const Unknown = "Unknown"

const (
	PeriodPrevious = "previous"
	PeriodCurrent  = "current"
)

// Classify returns the label of the first threshold whose inclusive range
// contains score. Overlaps resolve by table order. A nil score is not
// classified.
func Classify(score *float64, set []models.Threshold) *string {
	if score == nil {
		return nil
	}
	s := *score
	for _, t := range set {
		if t.Min <= s && s <= t.Max {
			label := t.Label
			return &label
		}
	}
	label := Unknown
	return &label
}

// Sets holds the two threshold sets used for one subject.
type Sets struct {
	Previous []models.Threshold
	Current  []models.Threshold
	// Loaded is false when no configuration was available, in which case
	// every level is left null instead of "Unknown".
	Loaded bool
}

// SetsFor resolves the threshold sets of subject. A nil config yields
// unloaded sets.
func SetsFor(cfg *models.Config, subject string) Sets {
	if cfg == nil {
		return Sets{}
	}
	pt := cfg.Thresholds[subject]
	return Sets{Previous: pt.Previous, Current: pt.Current, Loaded: true}
}

func (s Sets) Prior(score *float64) *string {
	if !s.Loaded {
		return nil
	}
	return Classify(score, s.Previous)
}

func (s Sets) Checkpoint(score *float64) *string {
	if !s.Loaded {
		return nil
	}
	return Classify(score, s.Current)
}
