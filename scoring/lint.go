package scoring

import (
	"fmt"
	"sort"

	"student-scores/models"
)

// Lint reports authoring problems in a configuration: inverted ranges,
// overlaps and gaps inside [0,100]. The classifier still works on such
// tables (first match wins), so these are warnings, never errors.
//
// Gaps are judged on the integer scale: bands such as 0-59 and 60-69 count
// as contiguous even though a fractional score like 59.5 falls between them
// and classifies as Unknown. Author bands with shared or fractional bounds
// (0-60, 60.01-70) when fractional scores must always match.
func Lint(cfg *models.Config) []string {
	if cfg == nil {
		return nil
	}
	subjects := make([]string, 0, len(cfg.Thresholds))
	for subject := range cfg.Thresholds {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	var warnings []string
	for _, subject := range subjects {
		pt := cfg.Thresholds[subject]
		warnings = append(warnings, lintSet(subject, PeriodPrevious, pt.Previous)...)
		warnings = append(warnings, lintSet(subject, PeriodCurrent, pt.Current)...)
	}
	return warnings
}

func lintSet(subject, period string, set []models.Threshold) []string {
	where := fmt.Sprintf("%s/%s", subject, period)
	if len(set) == 0 {
		return []string{fmt.Sprintf("%s: no thresholds defined", where)}
	}

	var warnings []string
	valid := make([]models.Threshold, 0, len(set))
	for _, t := range set {
		if t.Min > t.Max {
			warnings = append(warnings, fmt.Sprintf("%s: %q has min %g above max %g", where, t.Label, t.Min, t.Max))
			continue
		}
		valid = append(valid, t)
	}

	for i := 0; i < len(valid); i++ {
		for j := i + 1; j < len(valid); j++ {
			a, b := valid[i], valid[j]
			if a.Min <= b.Max && b.Min <= a.Max {
				warnings = append(warnings, fmt.Sprintf("%s: %q [%g,%g] overlaps %q [%g,%g]; %q wins",
					where, a.Label, a.Min, a.Max, b.Label, b.Min, b.Max, a.Label))
			}
		}
	}

	sorted := append([]models.Threshold(nil), valid...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })
	reach := 0.0
	for i, t := range sorted {
		// Integer-authored tables use 0-59, 60-69: a step of one is contiguous.
		if i == 0 && t.Min > 0 || i > 0 && t.Min > reach+1 {
			warnings = append(warnings, fmt.Sprintf("%s: gap below %q (%g)", where, t.Label, t.Min))
		}
		if t.Max > reach || i == 0 {
			reach = t.Max
		}
	}
	if reach < 100 {
		warnings = append(warnings, fmt.Sprintf("%s: scores above %g are not covered", where, reach))
	}
	return warnings
}
