package report

import (
	"context"

	"github.com/rpggio/civicreport/internal/domain/activity"
)

// Repository provides persistence for reports.
type Repository interface {
	List(ctx context.Context) ([]Report, error)
	Get(ctx context.Context, id string) (*Report, error)
	Put(ctx context.Context, rep *Report) error
	Update(ctx context.Context, id string, patch Patch) (*Report, error)
}

// Scheduler queues automatic status advancements for new reports.
type Scheduler interface {
	Schedule(id string)
	Cancel(id string) int
}

// ActivityRepository logs report activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}

type noopScheduler struct{}

func (noopScheduler) Schedule(string)   {}
func (noopScheduler) Cancel(string) int { return 0 }

// NoopScheduler never advances anything. Used when the simulator is disabled.
var NoopScheduler Scheduler = noopScheduler{}
