package flow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidName(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "", false},
		{"A", "A", false},
		{"Ab", "Ab", true},
		{"  Ann  ", "Ann", true},
		{strings.Repeat("x", 50), strings.Repeat("x", 50), true},
		{strings.Repeat("x", 51), strings.Repeat("x", 51), false},
		{"  a  ", "a", false},
	}
	for _, tc := range cases {
		got, ok := ValidName(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestValidEmail(t *testing.T) {
	accepted := []string{"a@b.c", "john.doe@example.com", "  ann@example.com  "}
	for _, in := range accepted {
		_, ok := ValidEmail(in)
		assert.True(t, ok, "input %q", in)
	}

	rejected := []string{"notanemail", "a@b", "@b.c", "a@.", "", "a@b@c.d"}
	for _, in := range rejected {
		_, ok := ValidEmail(in)
		assert.False(t, ok, "input %q", in)
	}
}
