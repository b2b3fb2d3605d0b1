// Package identity resolves raw student identifiers to their canonical form.
package identity

import (
	"strconv"
	"strings"
)

// MaxLength is the width of the identifier column in every source set.
const MaxLength = 32

// Names are the name fields of the canonical record an identifier matched.
type Names struct {
	FirstName *string
	LastName  *string
}

type entry struct {
	canonical string
	names     Names
}

// Lookup indexes canonical identifiers by numeric value. The first
// registration of a numeric value wins, so callers register sources in
// precedence order.
type Lookup struct {
	byNumber map[uint64]entry
}

func NewLookup(ids ...string) *Lookup {
	l := &Lookup{byNumber: make(map[uint64]entry)}
	for _, id := range ids {
		l.Add(id, Names{})
	}
	return l
}

// Add registers a canonical identifier. Non-numeric identifiers are ignored,
// they can only ever match themselves. Names fill in gaps of an existing
// entry without replacing its canonical string.
func (l *Lookup) Add(canonical string, names Names) {
	canonical = strings.TrimSpace(canonical)
	n, ok := numeric(canonical)
	if !ok {
		return
	}
	e, exists := l.byNumber[n]
	if !exists {
		l.byNumber[n] = entry{canonical: canonical, names: names}
		return
	}
	if e.names.FirstName == nil {
		e.names.FirstName = names.FirstName
	}
	if e.names.LastName == nil {
		e.names.LastName = names.LastName
	}
	l.byNumber[n] = e
}

// Names returns the names recorded for the canonical form of raw.
func (l *Lookup) Names(raw string) (Names, bool) {
	if l == nil {
		return Names{}, false
	}
	n, ok := numeric(strings.TrimSpace(raw))
	if !ok {
		return Names{}, false
	}
	e, ok := l.byNumber[n]
	return e.names, ok
}

func (l *Lookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.byNumber)
}

// Normalize returns the canonical form of raw when its numeric value is
// known, otherwise the trimmed input.
func Normalize(raw string, l *Lookup) string {
	id, _ := NormalizeOK(raw, l)
	return id
}

// NormalizeOK is Normalize that also reports whether there was an
// identifier at all. An empty identifier means the record should be skipped.
func NormalizeOK(raw string, l *Lookup) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	if l == nil {
		return trimmed, true
	}
	if n, ok := numeric(trimmed); ok {
		if e, found := l.byNumber[n]; found {
			return e.canonical, true
		}
	}
	return trimmed, true
}

func numeric(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
