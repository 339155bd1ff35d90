package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/civicreport/internal/domain/activity"
	"github.com/rpggio/civicreport/internal/repository"
)

// Observer is notified of report events for metrics.
type Observer interface {
	ReportCreated(category string)
}

// Options tune the report service.
type Options struct {
	// CancelOnStatusEdit makes an administrative status edit cancel pending
	// automatic advancements for that report.
	CancelOnStatusEdit bool
	Now                func() time.Time
	Observer           Observer
}

// Service handles report business logic.
type Service struct {
	reports    Repository
	scheduler  Scheduler
	activities ActivityRepository
	logger     *slog.Logger
	opts       Options
}

// NewService creates a new report service.
func NewService(
	reports Repository,
	scheduler Scheduler,
	activities ActivityRepository,
	logger *slog.Logger,
	opts Options,
) *Service {
	if scheduler == nil {
		scheduler = NoopScheduler
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		reports:    reports,
		scheduler:  scheduler,
		activities: activities,
		logger:     logger,
		opts:       opts,
	}
}

// CreateRequest describes a report submission.
type CreateRequest struct {
	Description string
	Category    Category
	Urgency     Urgency
	Location    *Location
	PhotoURL    *string
	AudioURL    *string
}

// UpdateRequest describes an administrative update.
type UpdateRequest struct {
	ID            string
	Status        *Status
	Assignee      *string
	ClearAssignee bool
	Department    *string
	Description   *string
}

// Create stores a new report, routes it to a department and schedules its lifecycle.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Report, error) {
	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}

	rep := Report{
		ID:          uuid.NewString(),
		Description: req.Description,
		Category:    req.Category,
		Urgency:     req.Urgency,
		PhotoURL:    req.PhotoURL,
		AudioURL:    req.AudioURL,
		Location:    req.Location,
		CreatedAt:   s.opts.Now().UnixMilli(),
		Status:      StatusSubmitted,
		Department:  RouteDepartment(req.Category),
	}
	rep = rep.Clone()

	if err := s.reports.Put(ctx, &rep); err != nil {
		return nil, fmt.Errorf("creating report: %w", err)
	}

	s.logActivity(ctx, &activity.ActivityEntry{
		ReportID:     rep.ID,
		ActivityType: activity.TypeReportCreated,
		Summary:      fmt.Sprintf("report submitted, routed to %s", rep.Department),
	})
	if s.opts.Observer != nil {
		s.opts.Observer.ReportCreated(string(rep.Category))
	}

	s.scheduler.Schedule(rep.ID)
	s.logger.Info("report created", "id", rep.ID, "category", rep.Category, "department", rep.Department)

	return &rep, nil
}

// List returns the reports matching q, newest first.
func (s *Service) List(ctx context.Context, q Query) ([]Report, error) {
	all, err := s.reports.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	return Filter(all, q), nil
}

// Get returns a report by ID.
func (s *Service) Get(ctx context.Context, id string) (*Report, error) {
	rep, err := s.reports.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("getting report: %w", err)
	}
	return rep, nil
}

// Update merges the given fields onto a report.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Report, error) {
	if err := ValidateUpdateInput(req); err != nil {
		return nil, err
	}

	patch := Patch{
		Status:        req.Status,
		Department:    req.Department,
		Description:   req.Description,
		Assignee:      req.Assignee,
		ClearAssignee: req.ClearAssignee,
	}
	if patch.Empty() {
		return s.Get(ctx, req.ID)
	}

	updated, err := s.reports.Update(ctx, req.ID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("updating report: %w", err)
	}

	s.logActivity(ctx, &activity.ActivityEntry{
		ReportID:     updated.ID,
		ActivityType: activity.TypeReportUpdated,
		Summary:      "report updated by administrator",
		Details:      patchDetails(patch),
	})

	if req.Status != nil && s.opts.CancelOnStatusEdit {
		if n := s.scheduler.Cancel(updated.ID); n > 0 {
			s.logActivity(ctx, &activity.ActivityEntry{
				ReportID:     updated.ID,
				ActivityType: activity.TypeAdvancementsCancelled,
				Summary:      fmt.Sprintf("cancelled %d pending advancements", n),
			})
		}
	}

	return updated, nil
}

// Analytics aggregates every stored report.
func (s *Service) Analytics(ctx context.Context) (Analytics, error) {
	all, err := s.reports.List(ctx)
	if err != nil {
		return Analytics{}, fmt.Errorf("listing reports: %w", err)
	}
	return Summarize(all), nil
}

func (s *Service) logActivity(ctx context.Context, entry *activity.ActivityEntry) {
	if s.activities == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.opts.Now()
	}
	if err := s.activities.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to log report activity", "report_id", entry.ReportID, "error", err)
	}
}

func patchDetails(p Patch) string {
	fields := make(map[string]any)
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.Department != nil {
		fields["department"] = *p.Department
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.ClearAssignee {
		fields["assignee"] = nil
	} else if p.Assignee != nil {
		fields["assignee"] = *p.Assignee
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(data)
}
