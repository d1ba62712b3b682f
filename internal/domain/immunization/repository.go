package immunization

import (
	"context"
	"time"
)

// Repository defines persistence operations for schedule records,
// reminder outcomes and escalations.
type Repository interface {
	// Schedule methods
	BulkCreateSchedules(ctx context.Context, records []*ScheduleRecord) error
	GetScheduleByID(ctx context.Context, id int64) (*ScheduleRecord, error)
	// GetOpenSchedule returns the not-yet-DONE record for a baby+dose pair.
	GetOpenSchedule(ctx context.Context, babyID, doseCode string) (*ScheduleRecord, error)
	ListSchedulesByBaby(ctx context.Context, babyID string) ([]*ScheduleRecord, error)
	CountCompletedForBaby(ctx context.Context, babyID string) (int, error)

	// ListDueCandidates returns non-DONE records due on or before horizon,
	// with AttemptsToday counted from outcomes appended since attemptsSince.
	ListDueCandidates(ctx context.Context, horizon, attemptsSince time.Time) ([]*ScheduleRecord, error)
	// MarkOverdue flips PENDING records whose due date precedes before to
	// OVERDUE and returns the number of rows changed.
	MarkOverdue(ctx context.Context, before time.Time) (int64, error)

	// CompareAndSetStatus transitions a record's status only if it still
	// holds expected; reports whether the write won.
	CompareAndSetStatus(ctx context.Context, id int64, expected, next Status) (bool, error)
	// MarkReminded is CompareAndSetStatus to REMINDED plus the reminder
	// timestamp, in one statement.
	MarkReminded(ctx context.Context, id int64, expected Status, at time.Time) (bool, error)

	// Outcome and escalation methods
	AppendOutcome(ctx context.Context, outcome *ReminderOutcome) error
	CreateEscalation(ctx context.Context, esc *Escalation) error
	ListEscalations(ctx context.Context, limit int) ([]*Escalation, error)
}
