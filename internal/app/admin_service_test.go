package app

import (
	"context"
	"testing"

	idb "immunization_reminder_bot/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminService_AddWorker(t *testing.T) {
	repo := newFakeWorkerRepo()
	svc := NewAdminService(repo)

	created, err := svc.AddWorker(context.Background(), "Bidan Rina", "bidan", "081111111111", "Praya")
	require.NoError(t, err)
	assert.Equal(t, "+6281111111111", created.Phone, "stored phone must be normalized")
	assert.True(t, created.IsActive)
	assert.NotZero(t, created.ID)

	t.Run("duplicate phone is rejected", func(t *testing.T) {
		_, err := svc.AddWorker(context.Background(), "Other", "kader", "0811-1111-1111", "Praya")
		assert.ErrorIs(t, err, ErrWorkerAlreadyExists)
	})

	t.Run("invalid phone is rejected", func(t *testing.T) {
		_, err := svc.AddWorker(context.Background(), "Bad", "bidan", "12345", "Praya")
		assert.ErrorIs(t, err, ErrInvalidWorkerPhone)
	})
}

func TestAdminService_DeactivateWorker(t *testing.T) {
	repo := newFakeWorkerRepo()
	svc := NewAdminService(repo)
	_, err := svc.AddWorker(context.Background(), "Bidan Rina", "bidan", "081111111111", "Praya")
	require.NoError(t, err)

	deactivated, err := svc.DeactivateWorker(context.Background(), "081111111111")
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	t.Run("second deactivation reports already inactive", func(t *testing.T) {
		w, err := svc.DeactivateWorker(context.Background(), "081111111111")
		assert.ErrorIs(t, err, ErrWorkerAlreadyInactive)
		require.NotNil(t, w)
		assert.False(t, w.IsActive)
	})

	t.Run("unknown phone", func(t *testing.T) {
		_, err := svc.DeactivateWorker(context.Background(), "089999999999")
		assert.ErrorIs(t, err, idb.ErrWorkerNotFound)
	})
}

func TestAdminService_ListWorkers(t *testing.T) {
	repo := newFakeWorkerRepo()
	svc := NewAdminService(repo)
	_, err := svc.AddWorker(context.Background(), "Bidan Rina", "bidan", "081111111111", "Praya")
	require.NoError(t, err)
	_, err = svc.AddWorker(context.Background(), "Kader Budi", "kader", "082222222222", "Praya")
	require.NoError(t, err)
	_, err = svc.DeactivateWorker(context.Background(), "082222222222")
	require.NoError(t, err)

	active, err := svc.ListWorkers(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.ListWorkers(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
