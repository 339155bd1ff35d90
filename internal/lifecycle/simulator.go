// Package lifecycle simulates the municipal response to a new report by
// advancing its status on a fixed schedule.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rpggio/civicreport/internal/domain/activity"
	"github.com/rpggio/civicreport/internal/domain/report"
	"github.com/rpggio/civicreport/internal/repository"
)

// Default delays after submission.
const (
	DefaultAcknowledgeAfter = 1200 * time.Millisecond
	DefaultProgressAfter    = 4200 * time.Millisecond
	DefaultResolveAfter     = 12000 * time.Millisecond
)

const writeTimeout = 5 * time.Second

// Step is one scheduled advancement.
type Step struct {
	After  time.Duration
	Status report.Status
}

// Observer is notified after each applied advancement.
type Observer interface {
	StatusAdvanced(status string)
}

// Config configures a Simulator. Zero delays fall back to the defaults.
type Config struct {
	AcknowledgeAfter time.Duration
	ProgressAfter    time.Duration
	ResolveAfter     time.Duration
	Clock            clockwork.Clock
	Logger           *slog.Logger
	Observer         Observer
}

// Steps returns the advancement schedule in firing order.
func (c Config) Steps() []Step {
	return []Step{
		{After: orDefault(c.AcknowledgeAfter, DefaultAcknowledgeAfter), Status: report.StatusAcknowledged},
		{After: orDefault(c.ProgressAfter, DefaultProgressAfter), Status: report.StatusInProgress},
		{After: orDefault(c.ResolveAfter, DefaultResolveAfter), Status: report.StatusResolved},
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// chain walks one report through the steps in order. Only the next step has
// a live timer; due times are measured from start so a late firing catches
// up on every step that came due in the meantime.
type chain struct {
	start time.Time
	next  int
	timer clockwork.Timer
}

// Simulator owns the pending advancement chain of every report.
type Simulator struct {
	reports    report.Repository
	activities report.ActivityRepository
	steps      []Step
	clock      clockwork.Clock
	logger     *slog.Logger
	observer   Observer

	mu      sync.Mutex
	pending map[string]*chain
	stopped bool
}

// New creates a Simulator writing through reports. activities may be nil.
func New(reports report.Repository, activities report.ActivityRepository, cfg Config) *Simulator {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Simulator{
		reports:    reports,
		activities: activities,
		steps:      cfg.Steps(),
		clock:      clock,
		logger:     logger,
		observer:   cfg.Observer,
		pending:    make(map[string]*chain),
	}
}

// Schedule registers the advancements for id, replacing any still pending.
func (s *Simulator) Schedule(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.cancelLocked(id)

	c := &chain{start: s.clock.Now()}
	s.pending[id] = c
	s.armLocked(id, c, s.steps[0].After)
}

// Cancel stops the pending advancements for id and returns how many were stopped.
func (s *Simulator) Cancel(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(id)
}

// Pending returns the number of advancements not yet applied for id.
func (s *Simulator) Pending(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.pending[id]
	if !ok {
		return 0
	}
	return len(s.steps) - c.next
}

// Stop cancels every pending advancement. Later Schedule calls are ignored.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for id := range s.pending {
		s.cancelLocked(id)
	}
}

func (s *Simulator) cancelLocked(id string) int {
	c, ok := s.pending[id]
	if !ok {
		return 0
	}
	delete(s.pending, id)

	remaining := len(s.steps) - c.next
	if !c.timer.Stop() {
		// The next step is already being applied.
		remaining--
	}
	return remaining
}

func (s *Simulator) armLocked(id string, c *chain, delay time.Duration) {
	c.timer = s.clock.AfterFunc(delay, func() { s.fire(id, c) })
}

// current returns the step c is due to apply, or false once c was replaced.
func (s *Simulator) current(id string, c *chain) (Step, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[id] != c {
		return Step{}, false
	}
	return s.steps[c.next], true
}

// advance moves c past the step just applied. It returns true when the
// following step is already due and should be applied without waiting.
func (s *Simulator) advance(id string, c *chain) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[id] != c {
		return false
	}
	c.next++
	if c.next == len(s.steps) {
		delete(s.pending, id)
		return false
	}
	delay := c.start.Add(s.steps[c.next].After).Sub(s.clock.Now())
	if delay <= 0 {
		return true
	}
	s.armLocked(id, c, delay)
	return false
}

func (s *Simulator) drop(id string, c *chain) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[id] == c {
		delete(s.pending, id)
	}
}

func (s *Simulator) fire(id string, c *chain) {
	for {
		step, ok := s.current(id, c)
		if !ok {
			return
		}
		if err := s.apply(id, step.Status); errors.Is(err, repository.ErrNotFound) {
			s.drop(id, c)
			return
		}
		if !s.advance(id, c) {
			return
		}
	}
}

func (s *Simulator) apply(id string, status report.Status) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	updated, err := s.reports.Update(ctx, id, report.Patch{Status: &status})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("skipping advancement for missing report", "id", id, "status", status)
			return err
		}
		s.logger.Error("failed to advance report status", "id", id, "status", status, "error", err)
		return err
	}

	s.logger.Info("report status advanced", "id", id, "status", updated.Status)
	if s.observer != nil {
		s.observer.StatusAdvanced(string(status))
	}
	if s.activities != nil {
		entry := &activity.ActivityEntry{
			ReportID:     id,
			ActivityType: activity.TypeStatusAdvanced,
			Summary:      fmt.Sprintf("status advanced to %s", status),
			Details:      fmt.Sprintf(`{"status":%q}`, status),
			CreatedAt:    s.clock.Now(),
		}
		if err := s.activities.Log(ctx, entry); err != nil {
			s.logger.Warn("failed to log status advancement", "id", id, "error", err)
		}
	}
	return nil
}
