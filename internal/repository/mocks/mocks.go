package mocks

import (
	"context"

	"github.com/rpggio/civicreport/internal/domain/activity"
	"github.com/rpggio/civicreport/internal/domain/report"
	"github.com/stretchr/testify/mock"
)

// ReportRepository is a mock for report.Repository.
type ReportRepository struct {
	mock.Mock
}

func (m *ReportRepository) List(ctx context.Context) ([]report.Report, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]report.Report); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReportRepository) Get(ctx context.Context, id string) (*report.Report, error) {
	args := m.Called(ctx, id)
	if rep, ok := args.Get(0).(*report.Report); ok {
		return rep, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReportRepository) Put(ctx context.Context, rep *report.Report) error {
	args := m.Called(ctx, rep)
	return args.Error(0)
}

func (m *ReportRepository) Update(ctx context.Context, id string, patch report.Patch) (*report.Report, error) {
	args := m.Called(ctx, id, patch)
	if rep, ok := args.Get(0).(*report.Report); ok {
		return rep, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Scheduler is a mock for report.Scheduler.
type Scheduler struct {
	mock.Mock
}

func (m *Scheduler) Schedule(id string) {
	m.Called(id)
}

func (m *Scheduler) Cancel(id string) int {
	args := m.Called(id)
	return args.Int(0)
}
