package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/civicreport/internal/domain/report"
	"github.com/rpggio/civicreport/internal/repository"
)

const reportColumns = `
	id, description, category, urgency, photo_url, audio_url,
	lat, lng, accuracy, address, created_at, status, department, assignee
`

// ReportRepository implements report.Repository for SQLite
type ReportRepository struct {
	db *DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// List returns every report, most recently inserted first
func (r *ReportRepository) List(ctx context.Context) ([]report.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports ORDER BY seq DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []report.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows: %w", err)
	}

	return reports, nil
}

// Get retrieves a report by ID
func (r *ReportRepository) Get(ctx context.Context, id string) (*report.Report, error) {
	return getReport(ctx, r.db, id)
}

// Put inserts a report or replaces the stored one with the same ID.
// Replacing keeps the report's original position in List.
func (r *ReportRepository) Put(ctx context.Context, rep *report.Report) error {
	if rep == nil || rep.ID == "" {
		return repository.ErrInvalidInput
	}
	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			category = excluded.category,
			urgency = excluded.urgency,
			photo_url = excluded.photo_url,
			audio_url = excluded.audio_url,
			lat = excluded.lat,
			lng = excluded.lng,
			accuracy = excluded.accuracy,
			address = excluded.address,
			created_at = excluded.created_at,
			status = excluded.status,
			department = excluded.department,
			assignee = excluded.assignee
	`

	if _, err := r.db.ExecContext(ctx, query, reportArgs(rep)...); err != nil {
		return fmt.Errorf("failed to put report: %w", err)
	}
	return nil
}

// Update merges patch onto the stored report inside one transaction
func (r *ReportRepository) Update(ctx context.Context, id string, patch report.Patch) (*report.Report, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rep, err := getReport(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(rep)

	query := `
		UPDATE reports
		SET status = ?, department = ?, description = ?, assignee = ?
		WHERE id = ?
	`
	if _, err := tx.ExecContext(ctx, query, rep.Status, rep.Department, rep.Description, rep.Assignee, id); err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit report update: %w", err)
	}
	return rep, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func getReport(ctx context.Context, q queryRower, id string) (*report.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = ?`

	rep, err := scanReport(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return rep, nil
}

func scanReport(row rowScanner) (*report.Report, error) {
	var rep report.Report
	var photoURL, audioURL, address, assignee sql.NullString
	var lat, lng, accuracy sql.NullFloat64

	if err := row.Scan(
		&rep.ID,
		&rep.Description,
		&rep.Category,
		&rep.Urgency,
		&photoURL,
		&audioURL,
		&lat,
		&lng,
		&accuracy,
		&address,
		&rep.CreatedAt,
		&rep.Status,
		&rep.Department,
		&assignee,
	); err != nil {
		return nil, err
	}

	rep.PhotoURL = nullString(photoURL)
	rep.AudioURL = nullString(audioURL)
	rep.Assignee = nullString(assignee)
	if lat.Valid && lng.Valid {
		rep.Location = &report.Location{
			Lat:     lat.Float64,
			Lng:     lng.Float64,
			Address: nullString(address),
		}
		if accuracy.Valid {
			acc := accuracy.Float64
			rep.Location.Accuracy = &acc
		}
	}
	return &rep, nil
}

func reportArgs(rep *report.Report) []any {
	var lat, lng, accuracy sql.NullFloat64
	var address sql.NullString
	if loc := rep.Location; loc != nil {
		lat = sql.NullFloat64{Float64: loc.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: loc.Lng, Valid: true}
		if loc.Accuracy != nil {
			accuracy = sql.NullFloat64{Float64: *loc.Accuracy, Valid: true}
		}
		if loc.Address != nil {
			address = sql.NullString{String: *loc.Address, Valid: true}
		}
	}
	return []any{
		rep.ID,
		rep.Description,
		rep.Category,
		rep.Urgency,
		rep.PhotoURL,
		rep.AudioURL,
		lat,
		lng,
		accuracy,
		address,
		rep.CreatedAt,
		rep.Status,
		rep.Department,
		rep.Assignee,
	}
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
