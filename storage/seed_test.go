package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	courses map[string]Course
	addErr  error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{courses: make(map[string]Course)}
}

func (f *fakeCatalog) Count(ctx context.Context) (int, error) {
	return len(f.courses), nil
}

func (f *fakeCatalog) Add(ctx context.Context, course Course) error {
	if f.addErr != nil {
		return f.addErr
	}
	if _, ok := f.courses[course.Code]; ok {
		return ErrCourseExists
	}
	f.courses[course.Code] = course
	return nil
}

func TestSeedCoursesPopulatesEmptyCatalog(t *testing.T) {
	catalog := newFakeCatalog()

	require.NoError(t, SeedCourses(context.Background(), catalog))

	assert.Len(t, catalog.courses, 3)
	for _, code := range []string{"html", "js", "react"} {
		assert.Contains(t, catalog.courses, code)
	}
}

func TestSeedCoursesIdempotent(t *testing.T) {
	catalog := newFakeCatalog()

	require.NoError(t, SeedCourses(context.Background(), catalog))
	require.NoError(t, SeedCourses(context.Background(), catalog))

	assert.Len(t, catalog.courses, 3)
}

func TestSeedCoursesSkipsNonEmptyCatalog(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.courses["go"] = Course{Code: "go", Name: "Go для начинающих"}

	require.NoError(t, SeedCourses(context.Background(), catalog))

	assert.Len(t, catalog.courses, 1)
	assert.NotContains(t, catalog.courses, "html")
}

func TestSeedCoursesPropagatesAddError(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.addErr = errors.New("db down")

	err := SeedCourses(context.Background(), catalog)
	require.Error(t, err)
	assert.ErrorContains(t, err, "db down")
}
