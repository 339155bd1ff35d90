// Package filestore keeps reports in a single JSON array file.
//
// Every write rewrites the full snapshot through a temporary file and a
// rename. A missing file is created as an empty array; unreadable or
// malformed content reads as an empty collection.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rpggio/civicreport/internal/domain/report"
	"github.com/rpggio/civicreport/internal/repository"
)

// Store implements report.Repository on a flat JSON file.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// New creates a Store backed by path. The parent directory is created on demand.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{path: path, logger: logger}
}

// List returns every report, most recently inserted first.
func (s *Store) List(ctx context.Context) ([]report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}
	return all, nil
}

// Get retrieves a report by ID.
func (s *Store) Get(ctx context.Context, id string) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}
	if idx := indexOf(all, id); idx >= 0 {
		rep := all[idx]
		return &rep, nil
	}
	return nil, repository.ErrNotFound
}

// Put replaces the report with the same ID in place, or inserts it at the head.
func (s *Store) Put(ctx context.Context, rep *report.Report) error {
	if rep == nil || rep.ID == "" {
		return repository.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return err
	}
	item := rep.Clone()
	if idx := indexOf(all, rep.ID); idx >= 0 {
		all[idx] = item
	} else {
		all = append([]report.Report{item}, all...)
	}
	return s.writeAll(all)
}

// Update merges patch onto the stored report.
func (s *Store) Update(ctx context.Context, id string, patch report.Patch) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&all[idx])
	if err := s.writeAll(all); err != nil {
		return nil, err
	}
	updated := all[idx].Clone()
	return &updated, nil
}

func (s *Store) ensureFile() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := os.WriteFile(s.path, []byte("[]"), 0o644); err != nil {
			return fmt.Errorf("failed to create store file: %w", err)
		}
	}
	return nil
}

func (s *Store) readAll() ([]report.Report, error) {
	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Warn("report store unreadable, treating as empty", "path", s.path, "error", err)
		return []report.Report{}, nil
	}

	var all []report.Report
	if err := json.Unmarshal(raw, &all); err != nil || all == nil {
		if err != nil {
			s.logger.Warn("report store malformed, treating as empty", "path", s.path, "error", err)
		}
		return []report.Report{}, nil
	}
	return all, nil
}

func (s *Store) writeAll(all []report.Report) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace report store: %w", err)
	}
	return nil
}

func indexOf(all []report.Report, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}
