package importer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-scores/apperr"
)

func TestResolve(t *testing.T) {
	rec, err := Resolve(json.RawMessage(`"006547 Itzhak Aguilar 86"`))
	require.NoError(t, err)
	assert.Equal(t, KindLine, rec.Kind)
	assert.Equal(t, "006547 Itzhak Aguilar 86", rec.Line)

	rec, err = Resolve(json.RawMessage(`{"id":"12","score":50}`))
	require.NoError(t, err)
	assert.Equal(t, KindObject, rec.Kind)
	assert.Equal(t, "12", rec.Object.Get("id").String())

	for _, raw := range []string{`42`, `[1,2]`, `null`, `{"id":`} {
		_, err := Resolve(json.RawMessage(raw))
		assert.True(t, apperr.Is(err, apperr.ImportRecord), raw)
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line  string
		id    string
		first string
		last  string
		score float64
	}{
		{"006547 Itzhak Aguilar 86", "006547", "Itzhak", "Aguilar", 86},
		{"9999 42", "9999", "", "", 42},
		{"  12   Aguilar, Itzhak   77.5 ", "12", "Itzhak", "Aguilar", 77.5},
		{"13 Mary Ann Lee 90", "13", "Mary Ann", "Lee", 90},
		{"14 Cher 60", "14", "", "Cher", 60},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			row, err := ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.id, row.Identifier)
			assert.Equal(t, tt.first, deref(row.FirstName))
			assert.Equal(t, tt.last, deref(row.LastName))
			assert.Equal(t, tt.score, *row.Score)
		})
	}

	for _, bad := range []string{"not a valid line", "", "12", "abc 50", "12 Ana 150"} {
		_, err := ParseLine(bad)
		assert.True(t, apperr.Is(err, apperr.ImportRecord), bad)
	}
}

func TestParseObject(t *testing.T) {
	rec, err := Resolve(json.RawMessage(`{
		"studentId": " 77 ",
		"name": "Lopez, Ana",
		"grade": "Grade 07",
		"campus": "North",
		"teacher": null,
		"springScore": 81,
		"staarScore": "64"
	}`))
	require.NoError(t, err)

	row, err := Parse(rec)
	require.NoError(t, err)
	assert.Equal(t, "77", row.Identifier)
	assert.Equal(t, "Ana", deref(row.FirstName))
	assert.Equal(t, "Lopez", deref(row.LastName))
	assert.Equal(t, "7", deref(row.Grade))
	assert.Equal(t, "North", deref(row.Campus))
	assert.Nil(t, row.Teacher)
	assert.Equal(t, 81.0, *row.Score)
	assert.Equal(t, 64.0, *row.StaarScore)

	rec, err = Resolve(json.RawMessage(`{"identifier":"5","first_name":"Bo","lastName":"Diaz"}`))
	require.NoError(t, err)
	row, err = Parse(rec)
	require.NoError(t, err)
	assert.Equal(t, "Bo", deref(row.FirstName))
	assert.Equal(t, "Diaz", deref(row.LastName))
	assert.Nil(t, row.Score)

	rec, err = Resolve(json.RawMessage(`{"id":"5","score":"abc"}`))
	require.NoError(t, err)
	_, err = Parse(rec)
	assert.True(t, apperr.Is(err, apperr.ImportRecord))
}

func TestNormalizeGrade(t *testing.T) {
	tests := map[string]string{
		"07":      "7",
		"7th":     "7",
		"Grade 7": "7",
		"grade10": "10",
		"1st":     "1",
		"K":       "K",
		"kg":      "K",
		" 3 ":     "3",
		"0":       "0",
		"Pre-K":   "Pre-K",
		"Senior":  "Senior",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeGrade(in), in)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
