package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/lessoncraft/internal/lesson"
)

// dbRecord is the lessons table row. The document is stored as a JSON column
// so schema migrations are not needed when the document shape evolves.
type dbRecord struct {
	ID        string       `db:"id"`
	Topic     string       `db:"topic"`
	Level     lesson.Level `db:"level"`
	Document  []byte       `db:"document"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}

func (row dbRecord) toRecord() (Record, error) {
	record := Record{
		ID:        row.ID,
		Topic:     row.Topic,
		Level:     row.Level,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Document, &record.Document); err != nil {
		return Record{}, fmt.Errorf("json.Unmarshal(document %s) > %w", row.ID, err)
	}
	return record, nil
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// List returns all stored lessons matching the filter, newest first.
func (r *DBRepository) List(ctx context.Context, filter Filter) ([]Record, error) {
	query := "SELECT * FROM lessons"
	var conditions []string
	var args []any
	if filter.Level != "" {
		conditions = append(conditions, "level = ?")
		args = append(args, filter.Level)
	}
	if filter.Topic != "" {
		conditions = append(conditions, "topic LIKE ?")
		args = append(args, "%"+filter.Topic+"%")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var rows []dbRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(lessons) > %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Find returns the lesson with the given ID, or nil if not found.
func (r *DBRepository) Find(ctx context.Context, id string) (*Record, error) {
	var row dbRecord
	err := r.db.GetContext(ctx, &row, "SELECT * FROM lessons WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(lesson) > %w", err)
	}
	record, err := row.toRecord()
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a lesson, assigning an ID when the record has none.
func (r *DBRepository) Create(ctx context.Context, record *Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	document, err := json.Marshal(record.Document)
	if err != nil {
		return fmt.Errorf("json.Marshal(document) > %w", err)
	}

	now := timeNow()
	record.CreatedAt = now
	record.UpdatedAt = now
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO lessons (id, topic, level, document, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		record.ID, record.Topic, record.Level, document, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert lesson) > %w", err)
	}
	return nil
}

// Delete removes the lesson with the given ID. Deleting a missing lesson is
// not an error.
func (r *DBRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM lessons WHERE id = ?", id); err != nil {
		return fmt.Errorf("db.ExecContext(delete lesson) > %w", err)
	}
	return nil
}
