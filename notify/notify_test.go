package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigured(t *testing.T) {
	full := Config{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "bot",
		Password: "secret",
		From:     "bot@example.com",
	}
	assert.True(t, full.Configured())

	cases := []Config{
		{},
		{Host: "smtp.example.com", Port: 587, User: "bot", Password: "secret"},
		{Host: "smtp.example.com", User: "bot", Password: "secret", From: "bot@example.com"},
		{Port: 587, User: "bot", Password: "secret", From: "bot@example.com"},
	}
	for i, cfg := range cases {
		assert.False(t, cfg.Configured(), "case %d", i)
	}
}

func TestNewFallsBackToNoop(t *testing.T) {
	n := New(Config{})
	assert.IsType(t, Noop{}, n)
}

func TestNewReturnsMailerWhenConfigured(t *testing.T) {
	n := New(Config{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "bot",
		Password: "secret",
		From:     "bot@example.com",
	})
	assert.IsType(t, &Mailer{}, n)
}
