package bootstrap

import (
	"github.com/jmoiron/sqlx"
)

// Seeder populates initial data after migrations have been applied.
type Seeder interface {
	Name() string
	Seed(db *sqlx.DB) error
}

// SeederFunc adapts a plain function to the Seeder interface.
type SeederFunc struct {
	SeederName string
	Fn         func(db *sqlx.DB) error
}

func (s SeederFunc) Name() string           { return s.SeederName }
func (s SeederFunc) Seed(db *sqlx.DB) error { return s.Fn(db) }
