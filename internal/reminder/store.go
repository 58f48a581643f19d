package reminder

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noahxzhu/med-reminder/internal/model"
)

const DefaultRefreshInterval = 60 * time.Second

// Store is the in-memory reminder collection, most recent first. Every
// mutation reschedules the affected reminder and persists the collection.
type Store struct {
	mu        sync.RWMutex
	reminders []*model.Reminder

	scheduler Scheduler
	persist   Persistence
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Store)

// WithClock overrides the wall clock used for missed evaluation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithIDGenerator overrides the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func NewStore(persist Persistence, sched Scheduler, opts ...Option) *Store {
	s := &Store{
		reminders: []*model.Reminder{},
		scheduler: sched,
		persist:   persist,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with the persisted one. Enabled reminders are
// rescheduled because handles from a previous process may no longer exist in
// the scheduler. Unreadable data leaves the store empty. It returns how many
// reminders were newly marked missed while loading.
func (s *Store) Load(ctx context.Context) int {
	list, err := s.persist.ReadAll(ctx)
	if err != nil {
		s.logger.Warn("Failed to read reminders, starting empty", "error", err)
		list = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	missed := 0
	loaded := make([]*model.Reminder, 0, len(list))
	for _, r := range list {
		r = r.Clone()
		if r.Enabled {
			r.NotificationIDs = Reschedule(ctx, s.scheduler, r, s.logger)
		} else {
			cancelAll(ctx, s.scheduler, r, s.logger)
			r.NotificationIDs = []string{}
			r.Missed = false
		}
		if m := EvaluateMissed(r, now); m != r.Missed {
			r.Missed = m
			missed++
		}
		loaded = append(loaded, r)
	}
	s.reminders = loaded
	s.logger.Info("Reminders loaded", "count", len(loaded), "missed", missed)
	s.flushLocked(ctx)
	return missed
}

// List returns copies of all reminders, most recent first.
func (s *Store) List() []*model.Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Reminder, len(s.reminders))
	for i, r := range s.reminders {
		result[i] = r.Clone()
	}
	return result
}

func (s *Store) Get(id string) (*model.Reminder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.reminders[i].Clone(), true
	}
	return nil, false
}

// Add validates d, schedules its triggers and inserts it at the front.
// Empty weekdays default to every day.
func (s *Store) Add(ctx context.Context, d model.Draft) (*model.Reminder, error) {
	weekdays := model.NormalizeWeekdays(d.Weekdays)
	if len(weekdays) == 0 {
		weekdays = model.AllWeekdays()
	}
	r := &model.Reminder{
		Name:            strings.TrimSpace(d.Name),
		Dosage:          strings.TrimSpace(d.Dosage),
		Hour:            d.Hour,
		Minute:          d.Minute,
		Enabled:         d.Enabled,
		Weekdays:        weekdays,
		NotificationIDs: []string{},
	}
	if err := validate(r); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.newID()
	for s.indexLocked(r.ID) >= 0 {
		r.ID = s.newID()
	}
	r.NotificationIDs = Reschedule(ctx, s.scheduler, r, s.logger)
	s.reminders = slices.Insert(s.reminders, 0, r)
	s.logger.Info("Reminder added", "id", r.ID, "name", r.Name, "time", r.Clock(), "triggers", len(r.NotificationIDs))
	s.flushLocked(ctx)
	return r.Clone(), nil
}

// Update merges p onto the reminder with the given id and reschedules it,
// whether or not the schedule fields changed. The merged record is
// validated like a new one; on error nothing changes.
func (s *Store) Update(ctx context.Context, id string, p model.Patch) (*model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	cur := s.reminders[i]

	next := cur.Clone()
	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if p.Dosage != nil {
		next.Dosage = strings.TrimSpace(*p.Dosage)
	}
	if p.Hour != nil {
		next.Hour = *p.Hour
	}
	if p.Minute != nil {
		next.Minute = *p.Minute
	}
	if p.Enabled != nil {
		next.Enabled = *p.Enabled
	}
	if p.Weekdays != nil {
		next.Weekdays = model.NormalizeWeekdays(p.Weekdays)
	}
	if err := validate(next); err != nil {
		return nil, err
	}
	if !next.Enabled {
		next.Missed = false
	}

	// next still carries cur's handles, so this cancels them first.
	next.NotificationIDs = Reschedule(ctx, s.scheduler, next, s.logger)
	s.reminders[i] = next
	s.logger.Info("Reminder updated", "id", id, "time", next.Clock(), "triggers", len(next.NotificationIDs))
	s.flushLocked(ctx)
	return next.Clone(), nil
}

// Remove cancels the reminder's triggers and deletes it.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return ErrNotFound
	}
	cancelAll(ctx, s.scheduler, s.reminders[i], s.logger)
	s.reminders = slices.Delete(s.reminders, i, i+1)
	s.logger.Info("Reminder removed", "id", id)
	s.flushLocked(ctx)
	return nil
}

// ToggleEnabled sets the enabled flag. Disabling clears missed and cancels
// every trigger; enabling reschedules from the current configuration.
func (s *Store) ToggleEnabled(ctx context.Context, id string, enabled bool) (*model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	r := s.reminders[i]
	r.Enabled = enabled
	if enabled {
		r.NotificationIDs = Reschedule(ctx, s.scheduler, r, s.logger)
	} else {
		cancelAll(ctx, s.scheduler, r, s.logger)
		r.NotificationIDs = []string{}
		r.Missed = false
	}
	s.logger.Info("Reminder toggled", "id", id, "enabled", enabled, "triggers", len(r.NotificationIDs))
	s.flushLocked(ctx)
	return r.Clone(), nil
}

// RefreshMissedFlags re-evaluates every reminder against the current time
// and returns how many flags changed.
func (s *Store) RefreshMissedFlags(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	changed := 0
	for _, r := range s.reminders {
		missed := EvaluateMissed(r, now)
		if missed != r.Missed {
			r.Missed = missed
			changed++
			s.logger.Info("Reminder missed", "id", r.ID, "name", r.Name, "time", r.Clock())
		}
	}
	if changed > 0 {
		s.flushLocked(ctx)
	}
	return changed
}

// Run refreshes missed flags immediately and then on every interval tick
// until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.RefreshMissedFlags(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RefreshMissedFlags(ctx)
		}
	}
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.reminders, func(r *model.Reminder) bool { return r.ID == id })
}

// flushLocked writes a snapshot of the collection. Failures are logged only;
// memory stays the source of truth until the next successful write.
func (s *Store) flushLocked(ctx context.Context) {
	snapshot := make([]*model.Reminder, len(s.reminders))
	for i, r := range s.reminders {
		snapshot[i] = r.Clone()
	}
	if err := s.persist.WriteAll(ctx, snapshot); err != nil {
		s.logger.Warn("Failed to save reminders", "error", err)
	}
}
