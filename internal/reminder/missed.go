package reminder

import (
	"slices"
	"time"

	"github.com/noahxzhu/med-reminder/internal/model"
)

// EvaluateMissed returns r's missed flag as of now. The flag is sticky: once
// set it is only cleared by disabling the reminder. A trigger time equal to
// now has not passed yet.
func EvaluateMissed(r *model.Reminder, now time.Time) bool {
	if !r.Enabled || r.Missed {
		return r.Missed
	}
	if !slices.Contains(r.Weekdays, model.WeekdayOf(now)) {
		return false
	}
	trigger := time.Date(now.Year(), now.Month(), now.Day(), r.Hour, r.Minute, 0, 0, now.Location())
	return now.After(trigger)
}
