package models

// StudentRecord is one row of the reconciled view. It is synthesized on every
// read from whichever source sets hold the identifier.
type StudentRecord struct {
	Identifier  string   `json:"identifier"`
	FirstName   *string  `json:"firstName"`
	LastName    *string  `json:"lastName"`
	Grade       *string  `json:"grade"`
	Campus      *string  `json:"campus"`
	Teacher     *string  `json:"teacher"`
	PriorScore  *float64 `json:"priorScore"`
	FallScore   *float64 `json:"fallScore"`
	SpringScore *float64 `json:"springScore"`
	PriorLevel  *string  `json:"priorLevel"`
	FallLevel   *string  `json:"fallLevel"`
	SpringLevel *string  `json:"springLevel"`
}
