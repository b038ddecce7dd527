// Package library provides storage for generated lesson documents.
package library

import (
	"context"
	"time"

	"github.com/at-ishikawa/lessoncraft/internal/lesson"
)

// timeNow is swapped in tests for deterministic timestamps.
var timeNow = func() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// Record is one stored lesson with its generation request.
type Record struct {
	ID        string          `db:"id" yaml:"id" json:"id"`
	Topic     string          `db:"topic" yaml:"topic" json:"topic"`
	Level     lesson.Level    `db:"level" yaml:"level" json:"level"`
	Document  lesson.Document `db:"-" yaml:"document" json:"document"`
	CreatedAt time.Time       `db:"created_at" yaml:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" yaml:"updated_at" json:"updatedAt"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Level lesson.Level
	Topic string
}

// Repository defines operations for managing stored lessons.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Record, error)
	Find(ctx context.Context, id string) (*Record, error)
	Create(ctx context.Context, record *Record) error
	Delete(ctx context.Context, id string) error
}
