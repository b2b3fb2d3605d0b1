package models

// SourceSet names one of the three independently keyed record sets.
type SourceSet string

const (
	PriorPerformance SourceSet = "prior_performance"
	FallPerformance  SourceSet = "fall_performance"
	SpringMatrix     SourceSet = "spring_matrix"
)

// SourceRecord is a full stored row of a source set. Columns a set does not
// own stay nil: Subject only exists on the prior and fall sets, the roster
// columns and StaarScore only on the spring matrix.
type SourceRecord struct {
	Identifier string   `json:"identifier"`
	FirstName  *string  `json:"firstName"`
	LastName   *string  `json:"lastName"`
	Subject    *string  `json:"subject,omitempty"`
	Grade      *string  `json:"grade,omitempty"`
	Campus     *string  `json:"campus,omitempty"`
	Teacher    *string  `json:"teacher,omitempty"`
	Score      *float64 `json:"score"`
	StaarScore *float64 `json:"staarScore,omitempty"`
}

// SourceUpdate is an incoming partial row. Every field carries its own
// presence state so a deliberate clear can be told apart from an omission.
type SourceUpdate struct {
	Identifier string
	FirstName  OptionalString
	LastName   OptionalString
	Subject    OptionalString
	Grade      OptionalString
	Campus     OptionalString
	Teacher    OptionalString
	Score      OptionalFloat
	StaarScore OptionalFloat
}
