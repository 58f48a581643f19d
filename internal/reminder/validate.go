package reminder

import (
	"errors"
	"strings"

	"github.com/noahxzhu/med-reminder/internal/model"
)

var (
	ErrNotFound = errors.New("reminder not found")

	ErrNameRequired   = errors.New("name is required")
	ErrNoWeekdays     = errors.New("at least one weekday must be selected")
	ErrInvalidTime    = errors.New("time must be between 00:00 and 23:59")
	ErrInvalidWeekday = errors.New("weekday must be between 0 (Monday) and 6 (Sunday)")
)

// IsValidation reports whether err was caused by bad user input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrNoWeekdays) ||
		errors.Is(err, ErrInvalidTime) ||
		errors.Is(err, ErrInvalidWeekday)
}

func validate(r *model.Reminder) error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if r.Hour < 0 || r.Hour > 23 || r.Minute < 0 || r.Minute > 59 {
		return ErrInvalidTime
	}
	if len(r.Weekdays) == 0 {
		return ErrNoWeekdays
	}
	for _, d := range r.Weekdays {
		if !d.Valid() {
			return ErrInvalidWeekday
		}
	}
	return nil
}
