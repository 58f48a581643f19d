package worker

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noahxzhu/med-reminder/internal/model"
)

// Notifier delivers a fired trigger.
type Notifier interface {
	SendMessage(ctx context.Context, title, message string) error
}

// Trigger is one weekly recurring notification.
type Trigger struct {
	Handle  string        `json:"handle"`
	Title   string        `json:"title"`
	Body    string        `json:"body"`
	Hour    int           `json:"hour"`
	Minute  int           `json:"minute"`
	Weekday model.Weekday `json:"weekday"`
	NextRun time.Time     `json:"next_run"`
}

// Worker is an in-process weekly notification scheduler. Triggers are held
// in memory only; they do not survive a restart.
type Worker struct {
	mu         sync.Mutex
	triggers   map[string]*Trigger
	notifier   Notifier
	updateChan chan struct{}
	now        func() time.Time
	onFire     func(Trigger) // Callback after a trigger was delivered
}

func NewWorker(notifier Notifier) *Worker {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Worker{
		triggers:   make(map[string]*Trigger),
		notifier:   notifier,
		updateChan: make(chan struct{}, 1),
		now:        time.Now,
	}
}

// SetOnFire sets a callback that is called after each delivered trigger.
func (w *Worker) SetOnFire(fn func(Trigger)) {
	w.mu.Lock()
	w.onFire = fn
	w.mu.Unlock()
}

// ScheduleWeekly registers a trigger firing every week on day at hour:minute
// local time and returns its handle.
func (w *Worker) ScheduleWeekly(_ context.Context, title, body string, hour, minute int, day model.Weekday) (string, error) {
	t := &Trigger{
		Handle:  uuid.New().String(),
		Title:   title,
		Body:    body,
		Hour:    hour,
		Minute:  minute,
		Weekday: day,
	}

	w.mu.Lock()
	t.NextRun = NextOccurrence(hour, minute, day, w.now())
	w.triggers[t.Handle] = t
	w.mu.Unlock()

	w.Refresh()
	return t.Handle, nil
}

// CancelMany removes the given triggers. Unknown handles are ignored.
func (w *Worker) CancelMany(_ context.Context, handles []string) error {
	w.mu.Lock()
	removed := 0
	for _, h := range handles {
		if _, ok := w.triggers[h]; ok {
			delete(w.triggers, h)
			removed++
		}
	}
	w.mu.Unlock()

	if removed > 0 {
		w.Refresh()
	}
	return nil
}

// Pending returns copies of all triggers ordered by next run.
func (w *Worker) Pending() []Trigger {
	w.mu.Lock()
	defer w.mu.Unlock()

	result := make([]Trigger, 0, len(w.triggers))
	for _, t := range w.triggers {
		result = append(result, *t)
	}
	slices.SortFunc(result, func(a, b Trigger) int {
		if c := a.NextRun.Compare(b.NextRun); c != 0 {
			return c
		}
		return cmp.Compare(a.Handle, b.Handle)
	})
	return result
}

// Refresh signals the worker to re-evaluate the schedule immediately
func (w *Worker) Refresh() {
	select {
	case w.updateChan <- struct{}{}:
	default:
		// Channel already has a pending signal, no need to block
	}
}

func (w *Worker) Start(ctx context.Context) {
	slog.Info("Worker started (Event-Driven)")

	timer := time.NewTimer(time.Hour) // Initial long duration
	timer.Stop()                      // Stop immediately, we'll reset it

	for {
		// 1. Deliver due triggers and calculate next run time
		nextRun := w.checkAndProcess(ctx)

		// 2. Set timer
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		if nextRun.IsZero() {
			slog.Info("No scheduled triggers. Worker idle.")
		} else {
			duration := max(nextRun.Sub(w.now()), 0)
			timer.Reset(duration)
			slog.Info("Next trigger scheduled", "in", duration, "at", nextRun.Format("Mon 15:04"))
		}

		// 3. Wait for event
		select {
		case <-ctx.Done():
			slog.Info("Worker stopped")
			return
		case <-w.updateChan:
			// Continue loop -> re-check
		case <-timer.C:
			// Timer fired -> Continue loop -> re-check
		}
	}
}

// checkAndProcess delivers due triggers, advances them one week and returns
// the earliest upcoming run, or zero when nothing is scheduled.
func (w *Worker) checkAndProcess(ctx context.Context) time.Time {
	w.mu.Lock()
	now := w.now()
	var due []Trigger
	var earliestNext time.Time
	for _, t := range w.triggers {
		if !now.Before(t.NextRun) {
			due = append(due, *t)
			t.NextRun = NextOccurrence(t.Hour, t.Minute, t.Weekday, now)
		}
		if earliestNext.IsZero() || t.NextRun.Before(earliestNext) {
			earliestNext = t.NextRun
		}
	}
	onFire := w.onFire
	w.mu.Unlock()

	for _, t := range due {
		delay := now.Sub(t.NextRun)
		slog.Info("Sending notification", "handle", t.Handle, "title", t.Title, "scheduled", t.NextRun.Format("Mon 15:04"), "delay", delay)
		if err := w.notifier.SendMessage(ctx, t.Title, t.Body); err != nil {
			// Not retried; the trigger fires again next week.
			slog.Error("Failed to send notification", "handle", t.Handle, "error", err)
			continue
		}
		if onFire != nil {
			onFire(t)
		}
	}

	return earliestNext
}

// NextOccurrence returns the first local time strictly after after that falls
// on day at hour:minute.
func NextOccurrence(hour, minute int, day model.Weekday, after time.Time) time.Time {
	offset := (int(day) - int(model.WeekdayOf(after)) + 7) % 7
	candidate := time.Date(after.Year(), after.Month(), after.Day()+offset, hour, minute, 0, 0, after.Location())
	if !candidate.After(after) {
		candidate = time.Date(after.Year(), after.Month(), after.Day()+offset+7, hour, minute, 0, 0, after.Location())
	}
	return candidate
}

// LogNotifier only logs fired triggers. Used when no push credentials are set.
type LogNotifier struct{}

func (LogNotifier) SendMessage(_ context.Context, title, message string) error {
	slog.Info("Reminder fired", "title", title, "message", message)
	return nil
}
