package lifecycle_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rpggio/civicreport/internal/domain/activity"
	"github.com/rpggio/civicreport/internal/domain/report"
	"github.com/rpggio/civicreport/internal/filestore"
	"github.com/rpggio/civicreport/internal/lifecycle"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

type statusCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *statusCounter) StatusAdvanced(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[status]++
}

func (c *statusCounter) get(status string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[status]
}

type activityLog struct {
	mu      sync.Mutex
	entries []activity.ActivityEntry
}

func (l *activityLog) Log(_ context.Context, entry *activity.ActivityEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *entry)
	return nil
}

func (l *activityLog) List(_ context.Context, _ activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]activity.ActivityEntry(nil), l.entries...), nil
}

func (l *activityLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func newStore(t *testing.T) *filestore.Store {
	t.Helper()
	store := filestore.New(filepath.Join(t.TempDir(), "reports.json"), nil)
	require.NoError(t, store.Put(context.Background(), &report.Report{
		ID:         "r1",
		Category:   report.CategoryPothole,
		Urgency:    report.UrgencyHigh,
		Status:     report.StatusSubmitted,
		Department: report.DepartmentPublicWorks,
	}))
	return store
}

func statusOf(t *testing.T, store *filestore.Store, id string) report.Status {
	rep, err := store.Get(context.Background(), id)
	if err != nil {
		t.Errorf("get %s: %v", id, err)
		return ""
	}
	return rep.Status
}

func requireStatus(t *testing.T, store *filestore.Store, want report.Status) {
	t.Helper()
	require.Eventually(t, func() bool {
		return statusOf(t, store, "r1") == want
	}, waitFor, 5*time.Millisecond, "expected status %s", want)
}

func TestSimulator_AdvancesThroughLifecycle(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := newStore(t)
	activities := &activityLog{}
	counter := &statusCounter{}

	sim := lifecycle.New(store, activities, lifecycle.Config{Clock: clock, Observer: counter})
	sim.Schedule("r1")
	require.Equal(t, 3, sim.Pending("r1"))

	clock.Advance(time.Second)
	require.Never(t, func() bool { return statusOf(t, store, "r1") != report.StatusSubmitted }, 50*time.Millisecond, 5*time.Millisecond)

	clock.Advance(200 * time.Millisecond)
	requireStatus(t, store, report.StatusAcknowledged)

	clock.Advance(3 * time.Second)
	requireStatus(t, store, report.StatusInProgress)

	clock.Advance(8 * time.Second)
	requireStatus(t, store, report.StatusResolved)

	require.Eventually(t, func() bool { return sim.Pending("r1") == 0 }, waitFor, 5*time.Millisecond)
	require.Eventually(t, func() bool { return counter.get("resolved") == 1 }, waitFor, 5*time.Millisecond)
	require.Eventually(t, func() bool { return activities.len() == 3 }, waitFor, 5*time.Millisecond)
	require.Equal(t, activity.TypeStatusAdvanced, activities.entries[0].ActivityType)
}

var _ report.ActivityRepository = (*activity.Service)(nil)

func TestSimulator_LogsThroughActivityService(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := newStore(t)
	log := &activityLog{}
	svc := activity.NewService(log, nil)

	sim := lifecycle.New(store, svc, lifecycle.Config{Clock: clock})
	sim.Schedule("r1")

	clock.Advance(lifecycle.DefaultResolveAfter)
	requireStatus(t, store, report.StatusResolved)
	require.Eventually(t, func() bool { return log.len() == 3 }, waitFor, 5*time.Millisecond)

	entries, err := svc.ForReport(context.Background(), "r1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, entry := range entries {
		require.Equal(t, "r1", entry.ReportID)
		require.Equal(t, activity.TypeStatusAdvanced, entry.ActivityType)
		require.Equal(t, clock.Now(), entry.CreatedAt)
	}
}

func TestSimulator_CustomDelays(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := newStore(t)

	sim := lifecycle.New(store, nil, lifecycle.Config{
		Clock:            clock,
		AcknowledgeAfter: time.Minute,
		ProgressAfter:    2 * time.Minute,
		ResolveAfter:     3 * time.Minute,
	})
	sim.Schedule("r1")

	clock.Advance(lifecycle.DefaultResolveAfter + time.Second)
	require.Never(t, func() bool { return statusOf(t, store, "r1") != report.StatusSubmitted }, 50*time.Millisecond, 5*time.Millisecond)

	clock.Advance(time.Minute)
	requireStatus(t, store, report.StatusAcknowledged)
	clock.Advance(time.Minute)
	requireStatus(t, store, report.StatusInProgress)
	clock.Advance(time.Minute)
	requireStatus(t, store, report.StatusResolved)
}

func TestSimulator_CancelStopsPending(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := newStore(t)

	sim := lifecycle.New(store, nil, lifecycle.Config{Clock: clock})
	sim.Schedule("r1")

	clock.Advance(lifecycle.DefaultAcknowledgeAfter)
	requireStatus(t, store, report.StatusAcknowledged)
	require.Eventually(t, func() bool { return sim.Pending("r1") == 2 }, waitFor, 5*time.Millisecond)

	require.Equal(t, 2, sim.Cancel("r1"))
	require.Equal(t, 0, sim.Pending("r1"))
	require.Equal(t, 0, sim.Cancel("r1"))

	clock.Advance(time.Minute)
	require.Never(t, func() bool { return statusOf(t, store, "r1") != report.StatusAcknowledged }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestSimulator_RescheduleReplacesPending(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := newStore(t)

	sim := lifecycle.New(store, nil, lifecycle.Config{Clock: clock})
	sim.Schedule("r1")
	sim.Schedule("r1")
	require.Equal(t, 3, sim.Pending("r1"))

	clock.Advance(lifecycle.DefaultAcknowledgeAfter)
	requireStatus(t, store, report.StatusAcknowledged)
	clock.Advance(lifecycle.DefaultProgressAfter - lifecycle.DefaultAcknowledgeAfter)
	requireStatus(t, store, report.StatusInProgress)
	clock.Advance(lifecycle.DefaultResolveAfter - lifecycle.DefaultProgressAfter)
	requireStatus(t, store, report.StatusResolved)
	require.Eventually(t, func() bool { return sim.Pending("r1") == 0 }, waitFor, 5*time.Millisecond)
}

func TestSimulator_MissingReportIsSkipped(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := newStore(t)

	sim := lifecycle.New(store, nil, lifecycle.Config{Clock: clock})
	sim.Schedule("ghost")

	clock.Advance(lifecycle.DefaultResolveAfter)
	require.Eventually(t, func() bool { return sim.Pending("ghost") == 0 }, waitFor, 5*time.Millisecond)

	_, err := store.Get(context.Background(), "ghost")
	require.Error(t, err)
}

func TestSimulator_StopCancelsEverything(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := newStore(t)

	sim := lifecycle.New(store, nil, lifecycle.Config{Clock: clock})
	sim.Schedule("r1")
	sim.Stop()
	require.Equal(t, 0, sim.Pending("r1"))

	sim.Schedule("r1")
	require.Equal(t, 0, sim.Pending("r1"))

	clock.Advance(time.Minute)
	require.Never(t, func() bool { return statusOf(t, store, "r1") != report.StatusSubmitted }, 50*time.Millisecond, 5*time.Millisecond)
}

type statusSequence struct {
	mu       sync.Mutex
	statuses []string
}

func (q *statusSequence) StatusAdvanced(status string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.statuses = append(q.statuses, status)
}

func (q *statusSequence) get() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.statuses...)
}

func TestSimulator_SingleJumpPastAllStepsEndsResolved(t *testing.T) {
	for i := 0; i < 20; i++ {
		clock := clockwork.NewFakeClock()
		store := newStore(t)
		seq := &statusSequence{}

		sim := lifecycle.New(store, nil, lifecycle.Config{Clock: clock, Observer: seq})
		sim.Schedule("r1")

		clock.Advance(20 * time.Second)
		requireStatus(t, store, report.StatusResolved)
		require.Eventually(t, func() bool { return sim.Pending("r1") == 0 }, waitFor, 5*time.Millisecond)
		require.Never(t, func() bool { return statusOf(t, store, "r1") != report.StatusResolved }, 20*time.Millisecond, 5*time.Millisecond)
		require.Equal(t, []string{"acknowledged", "in_progress", "resolved"}, seq.get())
	}
}

func TestSimulator_PartialJumpAppliesDueStepsInOrder(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := newStore(t)
	seq := &statusSequence{}

	sim := lifecycle.New(store, nil, lifecycle.Config{Clock: clock, Observer: seq})
	sim.Schedule("r1")

	clock.Advance(lifecycle.DefaultProgressAfter + time.Second)
	requireStatus(t, store, report.StatusInProgress)
	require.Eventually(t, func() bool { return sim.Pending("r1") == 1 }, waitFor, 5*time.Millisecond)
	require.Equal(t, []string{"acknowledged", "in_progress"}, seq.get())

	// The resolve step stays anchored to the original submission time.
	clock.Advance(lifecycle.DefaultResolveAfter - lifecycle.DefaultProgressAfter - time.Second)
	requireStatus(t, store, report.StatusResolved)
}

func TestSimulator_EqualDelaysKeepOrder(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := newStore(t)
	seq := &statusSequence{}

	sim := lifecycle.New(store, nil, lifecycle.Config{
		Clock:            clock,
		Observer:         seq,
		AcknowledgeAfter: time.Second,
		ProgressAfter:    time.Second,
		ResolveAfter:     time.Second,
	})
	sim.Schedule("r1")

	clock.Advance(time.Second)
	requireStatus(t, store, report.StatusResolved)
	require.Eventually(t, func() bool { return len(seq.get()) == 3 }, waitFor, 5*time.Millisecond)
	require.Equal(t, []string{"acknowledged", "in_progress", "resolved"}, seq.get())
}

func TestConfig_StepsDefaults(t *testing.T) {
	steps := lifecycle.Config{}.Steps()
	require.Equal(t, []lifecycle.Step{
		{After: lifecycle.DefaultAcknowledgeAfter, Status: report.StatusAcknowledged},
		{After: lifecycle.DefaultProgressAfter, Status: report.StatusInProgress},
		{After: lifecycle.DefaultResolveAfter, Status: report.StatusResolved},
	}, steps)
}
