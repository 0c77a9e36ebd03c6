package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapUniqueViolation(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{"uq_users_user_course", ErrAlreadyRegistered},
		{"uq_users_user_email", ErrEmailReused},
		{"courses_pkey", ErrCourseExists},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			err := mapUniqueViolation(&pq.Error{Code: uniqueViolation, Constraint: tt.constraint})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMapUniqueViolationPassesOtherErrors(t *testing.T) {
	plain := fmt.Errorf("connection refused")
	assert.Equal(t, plain, mapUniqueViolation(plain))

	notUnique := &pq.Error{Code: "23503", Constraint: "users_course_fkey"}
	assert.Equal(t, error(notUnique), mapUniqueViolation(notUnique))

	unknown := &pq.Error{Code: uniqueViolation, Constraint: "uq_something_else"}
	assert.False(t, errors.Is(mapUniqueViolation(unknown), ErrAlreadyRegistered))
	assert.Equal(t, error(unknown), mapUniqueViolation(unknown))
}
