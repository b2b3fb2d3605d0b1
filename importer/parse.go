package importer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"student-scores/apperr"
)

var (
	idScoreLine     = regexp.MustCompile(`^(\d+)\s+(\d+(?:\.\d+)?)$`)
	idNameScoreLine = regexp.MustCompile(`^(\d+)\s+(.+?)\s+(\d+(?:\.\d+)?)$`)
	gradePattern    = regexp.MustCompile(`^(?i)(?:grade\s*)?0*(\d{1,2})(?:st|nd|rd|th)?$`)
)

// Row is a parsed batch element before routing.
type Row struct {
	Identifier string
	FirstName  *string
	LastName   *string
	Grade      *string
	Campus     *string
	Teacher    *string
	Score      *float64
	// StaarScore is the prior-year state test score some exports carry
	// next to, or instead of, the checkpoint score.
	StaarScore *float64
}

// Parse extracts a Row from either shape.
func Parse(rec RawRecord) (Row, error) {
	switch rec.Kind {
	case KindLine:
		return ParseLine(rec.Line)
	case KindObject:
		return ParseObject(rec.Object)
	default:
		return Row{}, apperr.ImportRecordf("unresolved record")
	}
}

// ParseLine accepts "<id> <score>" and "<id> <name...> <score>", where the
// name is "First Last" or "Last, First".
func ParseLine(line string) (Row, error) {
	line = strings.TrimSpace(line)
	if m := idScoreLine.FindStringSubmatch(line); m != nil {
		score, err := parseScore(m[2])
		if err != nil {
			return Row{}, err
		}
		return Row{Identifier: m[1], Score: score}, nil
	}
	if m := idNameScoreLine.FindStringSubmatch(line); m != nil {
		score, err := parseScore(m[3])
		if err != nil {
			return Row{}, err
		}
		first, last := splitName(m[2])
		return Row{Identifier: m[1], FirstName: first, LastName: last, Score: score}, nil
	}
	return Row{}, apperr.ImportRecordf("unrecognized line %q", line)
}

// ParseObject reads the keyed shape, accepting the aliases used by the
// various exports.
func ParseObject(obj gjson.Result) (Row, error) {
	var row Row
	if id := first(obj, "id", "identifier", "studentId", "localId"); id.Exists() {
		row.Identifier = strings.TrimSpace(id.String())
	}

	row.FirstName = nonEmpty(first(obj, "firstName", "first_name"))
	row.LastName = nonEmpty(first(obj, "lastName", "last_name"))
	if row.FirstName == nil && row.LastName == nil {
		if name := obj.Get("name"); name.Exists() {
			row.FirstName, row.LastName = splitName(name.String())
		}
	}

	if g := nonEmpty(obj.Get("grade")); g != nil {
		grade := NormalizeGrade(*g)
		row.Grade = &grade
	}
	row.Campus = nonEmpty(obj.Get("campus"))
	row.Teacher = nonEmpty(obj.Get("teacher"))

	var err error
	if s := first(obj, "score", "springScore", "fallScore", "priorScore"); s.Exists() && s.Type != gjson.Null {
		if row.Score, err = parseScore(s.String()); err != nil {
			return Row{}, err
		}
	}
	if s := obj.Get("staarScore"); s.Exists() && s.Type != gjson.Null {
		if row.StaarScore, err = parseScore(s.String()); err != nil {
			return Row{}, err
		}
	}
	return row, nil
}

// NormalizeGrade folds the common spellings of a grade level: "07", "7th"
// and "Grade 7" become "7", "KG" becomes "K". Anything else is kept as is.
func NormalizeGrade(raw string) string {
	g := strings.TrimSpace(raw)
	switch strings.ToUpper(g) {
	case "K", "KG":
		return "K"
	}
	if m := gradePattern.FindStringSubmatch(g); m != nil {
		return m[1]
	}
	return g
}

func splitName(name string) (*string, *string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if i := strings.Index(name, ","); i >= 0 {
		return ptr(strings.TrimSpace(name[i+1:])), ptr(strings.TrimSpace(name[:i]))
	}
	parts := strings.Fields(name)
	if len(parts) == 1 {
		return nil, ptr(parts[0])
	}
	return ptr(strings.Join(parts[:len(parts)-1], " ")), ptr(parts[len(parts)-1])
}

func parseScore(s string) (*float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, apperr.ImportRecordf("invalid score %q", s)
	}
	if v < 0 || v > 100 {
		return nil, apperr.ImportRecordf("score %g out of range", v)
	}
	return &v, nil
}

func first(obj gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if r := obj.Get(k); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

func nonEmpty(r gjson.Result) *string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	return ptr(strings.TrimSpace(r.String()))
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
