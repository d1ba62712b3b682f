package baby

import (
	"time"
)

// Baby represents a registered child in the system.
type Baby struct {
	ID          string // short district ID, e.g. LT-042
	Name        string
	MotherName  string
	Village     string
	ParentPhone string
	BirthDate   time.Time
	CreatedAt   time.Time
}
