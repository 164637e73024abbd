package common

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSearchQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "blank", query: "   ", want: ""},
		{name: "trims", query: "  acme ", want: "acme"},
		{name: "escapes wildcards", query: `50%_off\`, want: `50\%\_off\\`},
		{name: "ascii cut at limit", query: strings.Repeat("a", 120), want: strings.Repeat("a", 100)},
		{name: "accented cut on a rune boundary", query: "a" + strings.Repeat("é", 60), want: "a" + strings.Repeat("é", 49)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeSearchQuery(tt.query)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
