package worker

import (
	"context"
)

// Repository defines the operations for persisting and retrieving health workers.
type Repository interface {
	Create(ctx context.Context, w *Worker) error
	GetByPhone(ctx context.Context, phone string) (*Worker, error)
	Update(ctx context.Context, w *Worker) error
	ListActive(ctx context.Context) ([]*Worker, error)
	ListAll(ctx context.Context) ([]*Worker, error)
}
