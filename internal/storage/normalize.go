package storage

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/noahxzhu/med-reminder/internal/model"
)

// storedReminder accepts older record shapes next to the current one.
type storedReminder struct {
	model.Reminder
	// Single trigger id written before reminders had per-weekday triggers.
	LegacyNotificationID *string `json:"notificationId,omitempty"`
}

// legacySchema is the object-wrapped document used by early versions.
type legacySchema struct {
	Reminders []storedReminder `json:"reminders"`
}

// decodeReminders parses either a bare array or the legacy object form.
func decodeReminders(data []byte) ([]storedReminder, error) {
	var list []storedReminder
	err := json.Unmarshal(data, &list)
	if err == nil {
		return list, nil
	}

	var old legacySchema
	if err2 := json.Unmarshal(data, &old); err2 == nil && old.Reminders != nil {
		return old.Reminders, nil
	}
	return nil, fmt.Errorf("failed to unmarshal reminders: %w", err)
}

// normalize upgrades stored records to the current shape. Weekdays default to
// every day, the legacy trigger id moves into NotificationIDs, out-of-range
// times are clamped, and later duplicates of an id are dropped.
func normalize(stored []storedReminder) []*model.Reminder {
	result := make([]*model.Reminder, 0, len(stored))
	seen := make(map[string]bool, len(stored))

	for _, s := range stored {
		r := s.Reminder.Clone()

		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true

		r.Hour = min(max(r.Hour, 0), 23)
		r.Minute = min(max(r.Minute, 0), 59)

		days := slices.DeleteFunc(model.NormalizeWeekdays(r.Weekdays), func(d model.Weekday) bool { return !d.Valid() })
		if len(days) == 0 {
			days = model.AllWeekdays()
		}
		r.Weekdays = days

		if len(r.NotificationIDs) == 0 && s.LegacyNotificationID != nil && *s.LegacyNotificationID != "" {
			r.NotificationIDs = []string{*s.LegacyNotificationID}
		}
		if !r.Enabled {
			r.Missed = false
		}
		result = append(result, r)
	}
	return result
}
