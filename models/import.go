package models

import "encoding/json"

const (
	ImportPrevious = "previous"
	ImportFall     = "fall"
	ImportStandard = "standard"
)

// ImportRequest is the bulk import body. Students stay raw so each element
// can be resolved into its shape once at the pipeline boundary.
type ImportRequest struct {
	Subject    string            `json:"subject" validate:"required,oneof=math rla"`
	Students   []json.RawMessage `json:"students" validate:"required"`
	ImportKind string            `json:"importKind,omitempty" validate:"omitempty,oneof=previous fall standard"`
}

// ImportResult is the aggregate outcome of a batch. Errors is only filled in
// verbose mode.
type ImportResult struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Processed int      `json:"processed"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}
