package immunization

import (
	"database/sql"
	"time"
)

// ReminderOutcome is one dispatch attempt for one schedule record.
// Append-only; written once per attempt and never mutated.
// Corresponds to the 'reminder_outcomes' table.
type ReminderOutcome struct {
	ID          string // uuid
	ScheduleID  int64
	Phone       string
	SentAt      time.Time
	Success     bool
	ErrorDetail sql.NullString
}

// Escalation flags a record that exceeded its retry budget and needs
// human review. Exposed to operators via the HTTP surface.
// Corresponds to the 'escalations' table.
type Escalation struct {
	ID         string // uuid
	ScheduleID int64
	BabyID     string
	DoseCode   string
	Reason     string
	CreatedAt  time.Time
}
