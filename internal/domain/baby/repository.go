package baby

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving Baby records.
type Repository interface {
	Create(ctx context.Context, b *Baby) error
	GetByID(ctx context.Context, id string) (*Baby, error)
	// FindByIdentity looks a baby up by the registration triple used to
	// detect duplicate registrations.
	FindByIdentity(ctx context.Context, name, motherName string, birthDate time.Time) (*Baby, error)
	ListAll(ctx context.Context) ([]*Baby, error)
}
