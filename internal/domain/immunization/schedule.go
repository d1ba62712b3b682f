package immunization

import (
	"database/sql"
	"time"
)

// Status is the closed state set of a schedule record. Transitions are
// monotonic; DONE is terminal.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusReminded Status = "REMINDED"
	StatusDone     Status = "DONE"
	StatusOverdue  Status = "OVERDUE"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReminded, StatusDone, StatusOverdue:
		return true
	}
	return false
}

// ScheduleRecord is one baby's instance of one calendar dose.
// Corresponds to the 'schedules' table.
type ScheduleRecord struct {
	ID             int64
	BabyID         string
	DoseCode       string
	DueDate        time.Time
	Status         Status
	LastRemindedAt sql.NullTime
	// AttemptsToday counts reminder outcomes appended for this record
	// since the start of the current day. Populated by ListDueCandidates,
	// zero elsewhere.
	AttemptsToday int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
