package kourasync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbols(t *testing.T) {
	overrides := map[string]string{"810002": "MY_FI", "900001": "EXTRA"}
	s := NewSymbols(overrides)
	overrides["810003"] = "LATE" // NewSymbols keeps its own copy.

	tests := []struct {
		fund string
		want string
	}{
		{"810001", "GF_KOURACASH"},
		{"810002", "MY_FI"},
		{"810003", "GF_KOURANZEQ"},
		{"900001", "EXTRA"},
	}
	for _, tt := range tests {
		got, err := s.Resolve(tt.fund)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Resolve(%s)", tt.fund)
	}

	_, err := s.Resolve("999999")
	var unmapped *UnmappedFundError
	require.ErrorAs(t, err, &unmapped)
	assert.Equal(t, "999999", unmapped.FundID)

	funds := s.Funds()
	assert.Len(t, funds, len(DefaultSymbols)+1)
	assert.IsNonDecreasing(t, funds)

	assert.Equal(t, "Koura Fixed Interest Fund", s.Name("810002"))
	assert.Equal(t, "EXTRA", s.Name("900001"))
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		label string
		want  Category
	}{
		{"Employer Contribution", Employer},
		{"Member voluntary contribution", Voluntary},
		{"Employee contribution", Employee},
		{"Government contribution", Other},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCategory(tt.label), "ParseCategory(%q)", tt.label)
	}
}
