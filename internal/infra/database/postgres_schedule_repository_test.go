package database

import (
	"context"
	"testing"
	"time"

	"immunization_reminder_bot/internal/domain/immunization"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockScheduleRepo(t *testing.T) (*PostgresScheduleRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresScheduleRepository(db), mock
}

func TestCompareAndSetStatus(t *testing.T) {
	t.Run("wins when the row still holds the expected status", func(t *testing.T) {
		repo, mock := newMockScheduleRepo(t)
		mock.ExpectExec("UPDATE schedules").
			WithArgs(immunization.StatusDone, int64(7), immunization.StatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		won, err := repo.CompareAndSetStatus(context.Background(), 7, immunization.StatusPending, immunization.StatusDone)
		require.NoError(t, err)
		assert.True(t, won)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("loses when another writer moved the row first", func(t *testing.T) {
		repo, mock := newMockScheduleRepo(t)
		mock.ExpectExec("UPDATE schedules").
			WithArgs(immunization.StatusDone, int64(7), immunization.StatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))

		won, err := repo.CompareAndSetStatus(context.Background(), 7, immunization.StatusPending, immunization.StatusDone)
		require.NoError(t, err)
		assert.False(t, won)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkReminded(t *testing.T) {
	repo, mock := newMockScheduleRepo(t)
	at := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE schedules").
		WithArgs(immunization.StatusReminded, at, int64(3), immunization.StatusOverdue).
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := repo.MarkReminded(context.Background(), 3, immunization.StatusOverdue, at)
	require.NoError(t, err)
	assert.True(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkOverdue(t *testing.T) {
	repo, mock := newMockScheduleRepo(t)
	before := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE schedules").
		WithArgs(immunization.StatusOverdue, immunization.StatusPending, before).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.MarkOverdue(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOpenSchedule_NotFound(t *testing.T) {
	repo, mock := newMockScheduleRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM schedules").
		WithArgs("LT-001", "BCG", immunization.StatusDone).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetOpenSchedule(context.Background(), "LT-001", "BCG")
	assert.ErrorIs(t, err, ErrScheduleNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDueCandidates(t *testing.T) {
	repo, mock := newMockScheduleRepo(t)
	horizon := time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC)
	since := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{"id", "baby_id", "dose_code", "due_date", "status", "last_reminded_at", "created_at", "updated_at", "attempts_today"}
	mock.ExpectQuery("SELECT (.+) FROM schedules s").
		WithArgs(horizon, since, immunization.StatusDone).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "LT-001", "BCG", created, string(immunization.StatusOverdue), nil, created, created, 2).
			AddRow(2, "LT-002", "DPT-1", horizon, string(immunization.StatusPending), nil, created, created, 0))

	records, err := repo.ListDueCandidates(context.Background(), horizon, since)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, immunization.StatusOverdue, records[0].Status)
	assert.Equal(t, 2, records[0].AttemptsToday)
	assert.False(t, records[0].LastRemindedAt.Valid)
	assert.Equal(t, 0, records[1].AttemptsToday)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkCreateSchedules_Duplicate(t *testing.T) {
	repo, mock := newMockScheduleRepo(t)
	rec := &immunization.ScheduleRecord{
		BabyID:   "LT-001",
		DoseCode: "BCG",
		DueDate:  time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		Status:   immunization.StatusPending,
	}

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO schedules")
	mock.ExpectExec("INSERT INTO schedules").
		WithArgs(rec.BabyID, rec.DoseCode, rec.DueDate, rec.Status).
		WillReturnError(errDuplicateKey{})
	mock.ExpectRollback()

	err := repo.BulkCreateSchedules(context.Background(), []*immunization.ScheduleRecord{rec})
	assert.ErrorIs(t, err, ErrDuplicateSchedule)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type errDuplicateKey struct{}

func (errDuplicateKey) Error() string {
	return `pq: duplicate key value violates unique constraint "schedules_baby_dose_unique"`
}
