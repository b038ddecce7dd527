package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// YAMLRepository implements Repository on a directory of YAML files, one
// lesson per file named <id>.yaml. It suits local single-user setups where
// lessons should stay inspectable and editable by hand.
type YAMLRepository struct {
	dir string
}

// NewYAMLRepository creates a new YAMLRepository rooted at dir.
func NewYAMLRepository(dir string) *YAMLRepository {
	return &YAMLRepository{dir: dir}
}

func (r *YAMLRepository) path(id string) string {
	return filepath.Join(r.dir, id+".yaml")
}

// List returns all stored lessons matching the filter, newest first.
func (r *YAMLRepository) List(ctx context.Context, filter Filter) ([]Record, error) {
	entries, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadDir(%s) > %w", r.dir, err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.read(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if filter.Level != "" && record.Level != filter.Level {
			continue
		}
		if filter.Topic != "" && !strings.Contains(strings.ToLower(record.Topic), strings.ToLower(filter.Topic)) {
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Find returns the lesson with the given ID, or nil if not found.
func (r *YAMLRepository) Find(ctx context.Context, id string) (*Record, error) {
	record, err := r.read(r.path(id))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create writes a lesson file, assigning an ID when the record has none.
func (r *YAMLRepository) Create(ctx context.Context, record *Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", r.dir, err)
	}

	now := timeNow()
	record.CreatedAt = now
	record.UpdatedAt = now

	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("yaml.Marshal(lesson) > %w", err)
	}
	if err := os.WriteFile(r.path(record.ID), data, 0o644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", r.path(record.ID), err)
	}
	return nil
}

// Delete removes the lesson file. Deleting a missing lesson is not an error.
func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	err := os.Remove(r.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("os.Remove(%s) > %w", r.path(id), err)
	}
	return nil
}

func (r *YAMLRepository) read(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}
	var record Record
	if err := yaml.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}
	return record, nil
}
