package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestNormalize(t *testing.T) {
	lookup := NewLookup("006547", "120033", "A-77")

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"canonical stays canonical", "006547", "006547"},
		{"unpadded resolves to padded", "6547", "006547"},
		{"surrounding whitespace", "  6547 ", "006547"},
		{"over padded resolves", "0006547", "006547"},
		{"unknown numeric passes through", "9999", "9999"},
		{"non numeric passes through trimmed", " A-77 ", "A-77"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw, lookup))
		})
	}
}

func TestNormalizeEmptyIsSkipped(t *testing.T) {
	id, ok := NormalizeOK("   ", NewLookup("006547"))
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestNormalizeIsRetraction(t *testing.T) {
	lookup := NewLookup("006547", "000012")
	for _, raw := range []string{"6547", "006547", "12", "0012", "555"} {
		once := Normalize(raw, lookup)
		assert.Equal(t, once, Normalize(once, lookup), "normalizing %q twice", raw)
	}
}

func TestNormalizeSameValueSameCanonical(t *testing.T) {
	lookup := NewLookup("006547")
	assert.Equal(t, Normalize("6547", lookup), Normalize("006547", lookup))
}

func TestLookupFirstRegistrationWins(t *testing.T) {
	lookup := &Lookup{byNumber: map[uint64]entry{}}
	lookup.Add("006547", Names{LastName: strPtr("Aguilar")})
	lookup.Add("6547", Names{FirstName: strPtr("Itzhak"), LastName: strPtr("Other")})

	assert.Equal(t, "006547", Normalize("6547", lookup))
	names, ok := lookup.Names("6547")
	assert.True(t, ok)
	assert.Equal(t, "Itzhak", *names.FirstName)
	assert.Equal(t, "Aguilar", *names.LastName)
}

func TestNilLookup(t *testing.T) {
	assert.Equal(t, "6547", Normalize(" 6547", nil))
	_, ok := (*Lookup)(nil).Names("6547")
	assert.False(t, ok)
}
