// Package session maps session IDs to live calendars and their optimizers.
//
// A session's calendar is mutable shared state, so all access goes through
// View/Update, which hold a per-session lock. Idle sessions are persisted and
// evicted by a background sweep.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/felixgeelhaar/kairos/internal/scheduling/application/services"
	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
)

// DefaultSessionID is used when a client supplies no session.
const DefaultSessionID = "default"

// Config controls the working window of new calendars and session eviction.
type Config struct {
	// WindowStartHour and WindowEndHour bound the working day of newly
	// created calendars, in the local timezone.
	WindowStartHour int
	WindowEndHour   int

	// IdleTTL is how long a session may go untouched before the sweep
	// persists and evicts it. Zero disables eviction.
	IdleTTL time.Duration

	// SweepSchedule is a cron spec for the eviction sweep.
	SweepSchedule string
}

// DefaultConfig returns the standard 08:00-18:00 working day with a
// 30 minute idle TTL.
func DefaultConfig() Config {
	return Config{
		WindowStartHour: 8,
		WindowEndHour:   18,
		IdleTTL:         30 * time.Minute,
		SweepSchedule:   "@every 5m",
	}
}

type entry struct {
	mu         sync.Mutex
	calendar   *domain.Calendar
	optimizer  *services.Optimizer
	lastAccess time.Time
}

// Registry owns the live sessions. It loads snapshots from the repository on
// first access and writes them back on update and on eviction.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	repo   domain.CalendarRepository
	config Config
	cron   *cron.Cron
	logger *slog.Logger
	now    func() time.Time
}

// NewRegistry creates a session registry. repo may be nil for a purely
// in-memory mode.
func NewRegistry(repo domain.CalendarRepository, config Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[string]*entry),
		repo:    repo,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// Start launches the background eviction sweep. No-op when eviction is
// disabled.
func (r *Registry) Start() error {
	if r.config.IdleTTL <= 0 {
		return nil
	}

	r.cron = cron.New()
	spec := r.config.SweepSchedule
	if spec == "" {
		spec = DefaultConfig().SweepSchedule
	}
	if _, err := r.cron.AddFunc(spec, func() { r.Sweep(context.Background()) }); err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	r.cron.Start()
	r.logger.Info("session sweep scheduled", "spec", spec, "idle_ttl", r.config.IdleTTL)
	return nil
}

// Stop halts the sweep and persists every live session.
func (r *Registry) Stop(ctx context.Context) {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}

	r.mu.Lock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		if err := r.persist(ctx, id); err != nil {
			r.logger.Error("failed to persist session on shutdown", "session_id", id, "error", err)
		}
	}
}

// View runs fn with the session's calendar and optimizer under the session
// lock, without persisting afterwards.
func (r *Registry) View(ctx context.Context, sessionID string, fn func(*domain.Calendar, *services.Optimizer) error) error {
	return r.with(ctx, sessionID, false, fn)
}

// Update runs fn like View, then persists the session snapshot.
func (r *Registry) Update(ctx context.Context, sessionID string, fn func(*domain.Calendar, *services.Optimizer) error) error {
	return r.with(ctx, sessionID, true, fn)
}

func (r *Registry) with(ctx context.Context, sessionID string, persist bool, fn func(*domain.Calendar, *services.Optimizer) error) error {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	e, err := r.acquire(ctx, sessionID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastAccess = r.now()

	if err := fn(e.calendar, e.optimizer); err != nil {
		return err
	}

	if persist && r.repo != nil {
		if err := r.repo.Save(ctx, sessionID, e.calendar); err != nil {
			return fmt.Errorf("failed to persist session %s: %w", sessionID, err)
		}
	}
	return nil
}

// acquire returns the live entry for the session, loading or creating it as
// needed.
func (r *Registry) acquire(ctx context.Context, sessionID string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[sessionID]; ok {
		return e, nil
	}

	calendar, err := r.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	e := &entry{
		calendar:   calendar,
		optimizer:  services.NewOptimizer(calendar, r.logger),
		lastAccess: r.now(),
	}
	r.entries[sessionID] = e
	return e, nil
}

func (r *Registry) loadOrCreate(ctx context.Context, sessionID string) (*domain.Calendar, error) {
	if r.repo != nil {
		calendar, err := r.repo.FindBySession(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
		}
		if calendar != nil {
			r.logger.Debug("session restored from snapshot", "session_id", sessionID)
			return calendar, nil
		}
	}

	start, end := r.defaultWindow()
	r.logger.Debug("session created",
		"session_id", sessionID,
		"window_start", start,
		"window_end", end,
	)
	return domain.NewCalendar(start, end), nil
}

// defaultWindow returns today's working window.
func (r *Registry) defaultWindow() (time.Time, time.Time) {
	now := r.now()
	year, month, day := now.Date()
	start := time.Date(year, month, day, r.config.WindowStartHour, 0, 0, 0, now.Location())
	end := time.Date(year, month, day, r.config.WindowEndHour, 0, 0, 0, now.Location())
	return start, end
}

// Sweep persists and evicts sessions idle longer than the configured TTL.
func (r *Registry) Sweep(ctx context.Context) {
	if r.config.IdleTTL <= 0 {
		return
	}
	cutoff := r.now().Add(-r.config.IdleTTL)

	r.mu.Lock()
	candidates := make(map[string]*entry, len(r.entries))
	for id, e := range r.entries {
		candidates[id] = e
	}
	r.mu.Unlock()

	for id, e := range candidates {
		// lastAccess is guarded by the per-session lock, which with() holds
		// while it updates the timestamp.
		e.mu.Lock()
		idle := e.lastAccess.Before(cutoff)
		e.mu.Unlock()
		if !idle {
			continue
		}

		if err := r.persist(ctx, id); err != nil {
			r.logger.Error("failed to persist idle session", "session_id", id, "error", err)
			continue
		}

		r.mu.Lock()
		if cur, ok := r.entries[id]; ok && cur == e {
			cur.mu.Lock()
			// Re-check staleness: the session may have been touched between
			// the scan and the persist.
			if cur.lastAccess.Before(cutoff) {
				delete(r.entries, id)
				r.logger.Info("idle session evicted", "session_id", id)
			}
			cur.mu.Unlock()
		}
		r.mu.Unlock()
	}
}

func (r *Registry) persist(ctx context.Context, sessionID string) error {
	if r.repo == nil {
		return nil
	}

	r.mu.Lock()
	e, ok := r.entries[sessionID]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return r.repo.Save(ctx, sessionID, e.calendar)
}
