package flow

import (
	"regexp"
	"strings"
)

const (
	nameMinLen = 2
	nameMaxLen = 50
)

// emailRe keeps the permissive local@domain.tld shape on purpose: stricter
// RFC validation rejects addresses real providers accept.
var emailRe = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// ValidName reports whether the trimmed name fits the allowed length range
// and returns the trimmed value.
func ValidName(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	n := len([]rune(name))
	if n < nameMinLen || n > nameMaxLen {
		return name, false
	}
	return name, true
}

// ValidEmail reports whether the trimmed input looks like an email address
// and returns the trimmed value.
func ValidEmail(raw string) (string, bool) {
	email := strings.TrimSpace(raw)
	return email, emailRe.MatchString(email)
}
