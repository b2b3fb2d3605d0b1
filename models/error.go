package models

// Error is the JSON body returned for every rejected request.
type Error struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}
