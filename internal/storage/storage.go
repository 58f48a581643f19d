// Package storage persists the reminder collection.
package storage

import (
	"context"
	"fmt"

	"github.com/noahxzhu/med-reminder/internal/model"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Backend is a reminder.Persistence that holds resources until closed.
type Backend interface {
	ReadAll(ctx context.Context) ([]*model.Reminder, error)
	WriteAll(ctx context.Context, reminders []*model.Reminder) error
	Close() error
}

// Open returns the backend for driver, rooted at path.
func Open(driver, path string) (Backend, error) {
	switch driver {
	case DriverJSON, "":
		return NewJSONStore(path), nil
	case DriverSQLite:
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
