package worker

import (
	"time"
)

// Worker is a registered health worker (bidan, kader posyandu) allowed
// to report completed immunizations by SMS.
type Worker struct {
	ID        int64
	Name      string
	Role      string
	Phone     string
	Village   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
