package app

import (
	"context"
	"fmt"

	"immunization_reminder_bot/internal/domain/sms"
	"immunization_reminder_bot/internal/domain/worker"
	idb "immunization_reminder_bot/internal/infra/database"
)

// Custom application-level errors for admin service
var ErrWorkerAlreadyExists = fmt.Errorf("health worker with this phone already exists")
var ErrWorkerAlreadyInactive = fmt.Errorf("health worker is already inactive")
var ErrInvalidWorkerPhone = fmt.Errorf("phone is not a valid Indonesian mobile number")

// AdminService manages the health worker roster the inbound pipeline
// authorizes LAPOR reports against.
type AdminService struct {
	workerRepo worker.Repository
}

func NewAdminService(wr worker.Repository) *AdminService {
	return &AdminService{workerRepo: wr}
}

// AddWorker registers a new health worker. The phone is normalized to
// +62 form before storage so inbound matching is exact.
func (s *AdminService) AddWorker(ctx context.Context, name, role, phone, village string) (*worker.Worker, error) {
	if !sms.ValidPhone(phone) {
		return nil, ErrInvalidWorkerPhone
	}
	normalized := sms.NormalizePhone(phone)

	_, err := s.workerRepo.GetByPhone(ctx, normalized)
	if err == nil {
		return nil, ErrWorkerAlreadyExists
	}
	if err != idb.ErrWorkerNotFound {
		return nil, fmt.Errorf("failed to check existing health worker: %w", err)
	}

	newWorker := &worker.Worker{
		Name:     name,
		Role:     role,
		Phone:    normalized,
		Village:  village,
		IsActive: true,
	}

	if err := s.workerRepo.Create(ctx, newWorker); err != nil {
		if err == idb.ErrDuplicateWorkerPhone {
			return nil, ErrWorkerAlreadyExists
		}
		return nil, fmt.Errorf("failed to create health worker in repository: %w", err)
	}

	return newWorker, nil
}

// DeactivateWorker marks a health worker inactive; their reports stop
// being honored but history is kept.
func (s *AdminService) DeactivateWorker(ctx context.Context, phone string) (*worker.Worker, error) {
	normalized := sms.NormalizePhone(phone)

	target, err := s.workerRepo.GetByPhone(ctx, normalized)
	if err != nil {
		if err == idb.ErrWorkerNotFound {
			return nil, idb.ErrWorkerNotFound
		}
		return nil, fmt.Errorf("failed to get health worker for deactivation: %w", err)
	}

	if !target.IsActive {
		return target, ErrWorkerAlreadyInactive
	}

	target.IsActive = false
	if err := s.workerRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update health worker to inactive: %w", err)
	}

	return target, nil
}

// ListWorkers returns active workers, or all when includeInactive.
func (s *AdminService) ListWorkers(ctx context.Context, includeInactive bool) ([]*worker.Worker, error) {
	if includeInactive {
		return s.workerRepo.ListAll(ctx)
	}
	return s.workerRepo.ListActive(ctx)
}
