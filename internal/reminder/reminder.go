// Package reminder keeps the reminder collection and reconciles it with the
// notification scheduler: every mutation re-derives the trigger set and the
// missed flag is refreshed against the wall clock.
package reminder

import (
	"context"

	"github.com/noahxzhu/med-reminder/internal/model"
)

// Scheduler is the notification backend. Handles are opaque to this package.
type Scheduler interface {
	ScheduleWeekly(ctx context.Context, title, body string, hour, minute int, day model.Weekday) (string, error)
	// CancelMany must not fail on handles it does not know.
	CancelMany(ctx context.Context, handles []string) error
}

// Persistence stores the whole collection at once.
type Persistence interface {
	// ReadAll returns an empty collection when nothing was stored yet or the
	// stored data is unreadable.
	ReadAll(ctx context.Context) ([]*model.Reminder, error)
	WriteAll(ctx context.Context, reminders []*model.Reminder) error
}
