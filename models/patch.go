package models

import "encoding/json"

// PatchRequest is a partial score update for one student. StaarScore is the
// name the roster uses for the prior-year score and is folded into PriorScore.
type PatchRequest struct {
	Identifier  string         `json:"identifier"`
	PriorScore  OptionalFloat  `json:"priorScore"`
	StaarScore  OptionalFloat  `json:"staarScore"`
	FallScore   OptionalFloat  `json:"fallScore"`
	SpringScore OptionalFloat  `json:"springScore"`
	FirstName   OptionalString `json:"firstName"`
	LastName    OptionalString `json:"lastName"`
}

// Prior returns the prior-year score, preferring priorScore over staarScore
// when both are supplied.
func (p PatchRequest) Prior() OptionalFloat {
	if p.PriorScore.Present() {
		return p.PriorScore
	}
	return p.StaarScore
}

// HasScore reports whether at least one score field was supplied.
func (p PatchRequest) HasScore() bool {
	return p.Prior().Present() || p.FallScore.Present() || p.SpringScore.Present()
}

// MarshalJSON writes only the supplied fields so the receiver decodes the
// same presence states.
func (p PatchRequest) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{"identifier": p.Identifier}
	floats := map[string]OptionalFloat{
		"priorScore":  p.PriorScore,
		"staarScore":  p.StaarScore,
		"fallScore":   p.FallScore,
		"springScore": p.SpringScore,
	}
	for key, f := range floats {
		if f.Present() {
			out[key] = f
		}
	}
	if p.FirstName.Present() {
		out["firstName"] = p.FirstName
	}
	if p.LastName.Present() {
		out["lastName"] = p.LastName
	}
	return json.Marshal(out)
}

// UpdatedSets reports which destinations a patch wrote to.
type UpdatedSets struct {
	Prior  bool `json:"prior"`
	Fall   bool `json:"fall"`
	Spring bool `json:"spring"`
}

type PatchResult struct {
	Identifier string      `json:"identifier"`
	Updated    UpdatedSets `json:"updated"`
}

type DeleteRequest struct {
	Identifier string `json:"identifier"`
}

// Response is the envelope for successful mutations.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type PatchResponse struct {
	Response
	PatchResult
}
