package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/landscape-hq/underwriter/internal/app/domain/project"
	"github.com/landscape-hq/underwriter/internal/app/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return New(db), mock
}

var projectCols = []string{
	"id", "owner", "name", "project_type", "status", "address", "city", "state", "zip",
	"analysis_start", "hold_period_years", "notes", "created_at", "updated_at", "deleted_at",
}

func TestCreateProject(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO landscape.projects")).
		WithArgs(sqlmock.AnyArg(), "analyst@example.com", "Maple Court", "multifamily", "draft",
			"", "", "", "", sqlmock.AnyArg(), 10, "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p, err := store.CreateProject(context.Background(), project.Project{
		Owner:           "analyst@example.com",
		Name:            "Maple Court",
		Type:            project.TypeMultifamily,
		Status:          project.StatusDraft,
		HoldPeriodYears: 10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.False(t, p.CreatedAt.IsZero())
}

func TestGetProject(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)SELECT .+ FROM landscape\.projects`).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p-1", "analyst@example.com", "Maple Court", "multifamily", "active",
				"", "", "", "", now, 10, "", now, now, nil))

	p, err := store.GetProject(context.Background(), "p-1")
	require.NoError(t, err)
	require.Equal(t, "Maple Court", p.Name)
	require.Equal(t, project.StatusActive, p.Status)
	require.Nil(t, p.DeletedAt)
}

func TestGetProjectMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM landscape\.projects`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetProject(context.Background(), "nope")
	require.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestListProjectsFilter(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)SELECT .+ FROM landscape\.projects`).
		WithArgs("analyst@example.com", "active", "", false).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p-1", "analyst@example.com", "Maple Court", "multifamily", "active",
				"", "", "", "", now, 10, "", now, now, nil))

	list, err := store.ListProjects(context.Background(), storage.ProjectFilter{
		Owner:  "analyst@example.com",
		Status: project.StatusActive,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "p-1", list[0].ID)
}

func TestSoftDeleteProject(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE landscape.projects")).
		WithArgs("p-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.SoftDeleteProject(context.Background(), "p-1"))

	// Already deleted rows match nothing and surface as missing.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE landscape.projects")).
		WithArgs("p-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := store.SoftDeleteProject(context.Background(), "p-1")
	require.True(t, errors.Is(err, sql.ErrNoRows))
}
