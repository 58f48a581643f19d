package model

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Weekday numbers days Monday=0 through Sunday=6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayLabels = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayLabels[d]
}

// WeekdayOf converts t's local weekday into the Monday=0 convention.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// Presets offered when picking days.
func AllWeekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

func WorkWeek() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}
}

func Weekend() []Weekday {
	return []Weekday{Saturday, Sunday}
}

// ParseWeekdays reads a comma-separated list such as "0,2,4" or one of the
// presets "all", "weekdays" and "weekends". An empty string returns nil.
func ParseWeekdays(s string) ([]Weekday, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return nil, nil
	case "all":
		return AllWeekdays(), nil
	case "weekdays":
		return WorkWeek(), nil
	case "weekends":
		return Weekend(), nil
	}

	var days []Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || !Weekday(n).Valid() {
			return nil, fmt.Errorf("invalid weekday %q: use 0 (Monday) to 6 (Sunday)", part)
		}
		days = append(days, Weekday(n))
	}
	return days, nil
}

// NormalizeWeekdays returns a sorted copy of days without duplicates.
// Out-of-range values are kept so callers can reject them.
func NormalizeWeekdays(days []Weekday) []Weekday {
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out)
}

type ReminderStatus string

const (
	StatusDisabled ReminderStatus = "Disabled"
	StatusMissed   ReminderStatus = "Missed"
	StatusUpcoming ReminderStatus = "Upcoming"
)

type Reminder struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Dosage          string    `json:"dosage,omitempty"`
	Hour            int       `json:"hour"`
	Minute          int       `json:"minute"`
	Enabled         bool      `json:"enabled"`
	Weekdays        []Weekday `json:"weekdays"`
	NotificationIDs []string  `json:"notificationIds"`
	Missed          bool      `json:"missed"` // stays true until disabled
}

// Clone returns a deep copy of r.
func (r *Reminder) Clone() *Reminder {
	c := *r
	c.Weekdays = slices.Clone(r.Weekdays)
	c.NotificationIDs = slices.Clone(r.NotificationIDs)
	if c.Weekdays == nil {
		c.Weekdays = []Weekday{}
	}
	if c.NotificationIDs == nil {
		c.NotificationIDs = []string{}
	}
	return &c
}

func (r *Reminder) Status() ReminderStatus {
	switch {
	case !r.Enabled:
		return StatusDisabled
	case r.Missed:
		return StatusMissed
	default:
		return StatusUpcoming
	}
}

// Clock formats the trigger time as HH:MM.
func (r *Reminder) Clock() string {
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
}

// DaysLabel renders the weekday set, e.g. "Every day" or "Mon, Wed, Fri".
func (r *Reminder) DaysLabel() string {
	if len(r.Weekdays) == 7 {
		return "Every day"
	}
	labels := make([]string, 0, len(r.Weekdays))
	for _, d := range r.Weekdays {
		labels = append(labels, d.String())
	}
	return strings.Join(labels, ", ")
}

// NotificationBody is the text delivered with each trigger.
func (r *Reminder) NotificationBody() string {
	if strings.TrimSpace(r.Dosage) == "" {
		return "Scheduled for " + r.Clock()
	}
	return fmt.Sprintf("%s at %s", strings.TrimSpace(r.Dosage), r.Clock())
}

// Draft holds the user-supplied fields of a reminder that does not exist yet.
type Draft struct {
	Name     string
	Dosage   string
	Hour     int
	Minute   int
	Enabled  bool
	Weekdays []Weekday
}

// Patch holds optional overrides for an existing reminder. A nil field is
// left unchanged; a nil Weekdays keeps the current set.
type Patch struct {
	Name     *string
	Dosage   *string
	Hour     *int
	Minute   *int
	Enabled  *bool
	Weekdays []Weekday
}
