package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultListLimit caps history listings when no limit is given.
const DefaultListLimit = 50

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Log records an activity entry with the current timestamp if missing.
func (s *Service) Log(ctx context.Context, entry *ActivityEntry) error {
	if entry == nil || entry.ReportID == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// ForReport lists the most recent history of one report, newest first.
func (s *Service) ForReport(ctx context.Context, reportID string, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	entries, err := s.repo.List(ctx, ListActivityOptions{ReportID: &reportID, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	if entries == nil {
		entries = []ActivityEntry{}
	}
	return entries, nil
}
