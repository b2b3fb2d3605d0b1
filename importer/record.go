// Package importer turns a heterogeneous batch of student rows into upserts
// against one source set.
package importer

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"student-scores/apperr"
)

type Kind int

const (
	KindLine Kind = iota + 1
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// RawRecord is one batch element resolved to its shape. Exactly one of Line
// or Object is meaningful, selected by Kind.
type RawRecord struct {
	Kind   Kind
	Line   string
	Object gjson.Result
}

// Resolve classifies a raw JSON element. Strings are shorthand lines,
// objects are keyed rows, anything else is rejected.
func Resolve(raw json.RawMessage) (RawRecord, error) {
	if !gjson.ValidBytes(raw) {
		return RawRecord{}, apperr.ImportRecordf("malformed JSON element")
	}
	res := gjson.ParseBytes(raw)
	switch {
	case res.Type == gjson.String:
		return RawRecord{Kind: KindLine, Line: res.String()}, nil
	case res.IsObject():
		return RawRecord{Kind: KindObject, Object: res}, nil
	default:
		return RawRecord{}, apperr.ImportRecordf("unsupported element %s", truncate(res.Raw))
	}
}

func truncate(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
