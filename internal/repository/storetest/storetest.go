// Package storetest holds behaviour tests shared by every report.Repository backend.
package storetest

import (
	"context"
	"testing"

	"github.com/rpggio/civicreport/internal/domain/report"
	"github.com/rpggio/civicreport/internal/repository"
	"github.com/stretchr/testify/require"
)

// NewRepository opens an empty repository for one test.
type NewRepository func(t *testing.T) report.Repository

func ptr[T any](v T) *T { return &v }

func sample(id string, createdAt int64) *report.Report {
	return &report.Report{
		ID:          id,
		Description: "report " + id,
		Category:    report.CategoryPothole,
		Urgency:     report.UrgencyMedium,
		CreatedAt:   createdAt,
		Status:      report.StatusSubmitted,
		Department:  report.DepartmentPublicWorks,
	}
}

// Run exercises the report.Repository contract against newRepo.
func Run(t *testing.T, newRepo NewRepository) {
	t.Run("EmptyList", func(t *testing.T) {
		repo := newRepo(t)
		list, err := repo.List(context.Background())
		require.NoError(t, err)
		require.NotNil(t, list)
		require.Empty(t, list)
	})

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		rep := sample("r1", 1700000000000)
		rep.PhotoURL = ptr("/uploads/p.jpg")
		rep.Assignee = ptr("Crew 7")
		rep.Location = &report.Location{Lat: 52.52, Lng: 13.405, Accuracy: ptr(12.5), Address: ptr("Unter den Linden")}
		require.NoError(t, repo.Put(ctx, rep))

		got, err := repo.Get(ctx, "r1")
		require.NoError(t, err)
		require.Equal(t, *rep, *got)
	})

	t.Run("PutRejectsMissingID", func(t *testing.T) {
		repo := newRepo(t)
		require.ErrorIs(t, repo.Put(context.Background(), sample("", 1)), repository.ErrInvalidInput)
		require.ErrorIs(t, repo.Put(context.Background(), nil), repository.ErrInvalidInput)
	})

	t.Run("GetMissing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(context.Background(), "missing")
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("ListNewestInsertFirst", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.Put(ctx, sample("a", 3)))
		require.NoError(t, repo.Put(ctx, sample("b", 1)))
		require.NoError(t, repo.Put(ctx, sample("c", 2)))

		// Replacing an existing report keeps its position.
		replaced := sample("a", 3)
		replaced.Description = "replaced"
		require.NoError(t, repo.Put(ctx, replaced))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		require.Equal(t, []string{"c", "b", "a"}, []string{list[0].ID, list[1].ID, list[2].ID})
		require.Equal(t, "replaced", list[2].Description)
	})

	t.Run("UpdateMergesFields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		rep := sample("r1", 10)
		rep.Assignee = ptr("Old Crew")
		require.NoError(t, repo.Put(ctx, rep))

		updated, err := repo.Update(ctx, "r1", report.Patch{
			Status:     ptr(report.StatusResolved),
			Department: ptr(report.DepartmentUtilities),
		})
		require.NoError(t, err)
		require.Equal(t, report.StatusResolved, updated.Status)
		require.Equal(t, report.DepartmentUtilities, updated.Department)
		require.Equal(t, "report r1", updated.Description)
		require.Equal(t, "Old Crew", *updated.Assignee)
		require.Equal(t, int64(10), updated.CreatedAt)

		cleared, err := repo.Update(ctx, "r1", report.Patch{ClearAssignee: true})
		require.NoError(t, err)
		require.Nil(t, cleared.Assignee)

		got, err := repo.Get(ctx, "r1")
		require.NoError(t, err)
		require.Equal(t, report.StatusResolved, got.Status)
		require.Nil(t, got.Assignee)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Update(context.Background(), "missing", report.Patch{Status: ptr(report.StatusAcknowledged)})
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("ReadsReturnCopies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Put(ctx, sample("r1", 1)))

		got, err := repo.Get(ctx, "r1")
		require.NoError(t, err)
		got.Status = report.StatusResolved

		again, err := repo.Get(ctx, "r1")
		require.NoError(t, err)
		require.Equal(t, report.StatusSubmitted, again.Status)
	})
}
