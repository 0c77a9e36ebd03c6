package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCourseCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"go", "go", true},
		{"  Python3  ", "python3", true},
		{"html5", "html5", true},
		{"", "", false},
		{"   ", "", false},
		{"two words", "two words", false},
		{"спецкурс", "спецкурс", false},
		{strings.Repeat("a", 33), strings.Repeat("a", 33), false},
	}
	for _, tc := range cases {
		got, ok := validCourseCode(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}
