package reminder

import (
	"context"
	"log/slog"

	"github.com/noahxzhu/med-reminder/internal/model"
)

// Reschedule cancels r's current triggers and requests one weekly trigger per
// configured weekday, Monday first. Scheduler errors are logged and dropped;
// a weekday whose schedule call failed gets no handle.
func Reschedule(ctx context.Context, sched Scheduler, r *model.Reminder, logger *slog.Logger) []string {
	cancelAll(ctx, sched, r, logger)

	if !r.Enabled || len(r.Weekdays) == 0 {
		return []string{}
	}

	title := r.Name
	body := r.NotificationBody()
	handles := make([]string, 0, len(r.Weekdays))
	for _, day := range model.NormalizeWeekdays(r.Weekdays) {
		h, err := sched.ScheduleWeekly(ctx, title, body, r.Hour, r.Minute, day)
		if err != nil {
			logger.Warn("Failed to schedule trigger", "id", r.ID, "weekday", day.String(), "error", err)
			continue
		}
		handles = append(handles, h)
	}
	return handles
}

func cancelAll(ctx context.Context, sched Scheduler, r *model.Reminder, logger *slog.Logger) {
	if len(r.NotificationIDs) == 0 {
		return
	}
	if err := sched.CancelMany(ctx, r.NotificationIDs); err != nil {
		logger.Warn("Failed to cancel triggers", "id", r.ID, "count", len(r.NotificationIDs), "error", err)
	}
}
