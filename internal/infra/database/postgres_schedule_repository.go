package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"immunization_reminder_bot/internal/domain/immunization"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors specific to schedule repository
var ErrScheduleNotFound = fmt.Errorf("schedule record not found")
var ErrDuplicateSchedule = fmt.Errorf("duplicate schedule record (baby_id, dose_code)")

type PostgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{db: db}
}

// --- ScheduleRecord methods ---

func (r *PostgresScheduleRepository) BulkCreateSchedules(ctx context.Context, records []*immunization.ScheduleRecord) error {
	if len(records) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for bulk create: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO schedules (baby_id, dose_code, due_date, status, created_at, updated_at)
                                         VALUES ($1, $2, $3, $4, NOW(), NOW())`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for bulk create: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx, rec.BabyID, rec.DoseCode, rec.DueDate, rec.Status)
		if err != nil {
			if strings.Contains(err.Error(), "schedules_baby_dose_unique") {
				return fmt.Errorf("error in bulk create (schedule for B:%s, D:%s): %w", rec.BabyID, rec.DoseCode, ErrDuplicateSchedule)
			}
			return fmt.Errorf("error executing statement for bulk create (schedule for B:%s, D:%s): %w", rec.BabyID, rec.DoseCode, err)
		}
	}

	return txn.Commit()
}

const scheduleColumns = `id, baby_id, dose_code, due_date, status, last_reminded_at, created_at, updated_at`

func (r *PostgresScheduleRepository) scanSchedule(row *sql.Row) (*immunization.ScheduleRecord, error) {
	rec := immunization.ScheduleRecord{}
	err := row.Scan(&rec.ID, &rec.BabyID, &rec.DoseCode, &rec.DueDate, &rec.Status, &rec.LastRemindedAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("error scanning schedule record: %w", err)
	}
	return &rec, nil
}

func (r *PostgresScheduleRepository) GetScheduleByID(ctx context.Context, id int64) (*immunization.ScheduleRecord, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`
	return r.scanSchedule(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresScheduleRepository) GetOpenSchedule(ctx context.Context, babyID, doseCode string) (*immunization.ScheduleRecord, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules
              WHERE baby_id = $1 AND dose_code = $2 AND status != $3
              LIMIT 1`
	return r.scanSchedule(r.db.QueryRowContext(ctx, query, babyID, doseCode, immunization.StatusDone))
}

func (r *PostgresScheduleRepository) ListSchedulesByBaby(ctx context.Context, babyID string) ([]*immunization.ScheduleRecord, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules
              WHERE baby_id = $1 ORDER BY due_date, dose_code`
	rows, err := r.db.QueryContext(ctx, query, babyID)
	if err != nil {
		return nil, fmt.Errorf("error querying schedules by baby: %w", err)
	}
	defer rows.Close()
	return scanScheduleRows(rows, false)
}

func (r *PostgresScheduleRepository) CountCompletedForBaby(ctx context.Context, babyID string) (int, error) {
	query := `SELECT COUNT(*) FROM schedules WHERE baby_id = $1 AND status = $2`
	var count int
	if err := r.db.QueryRowContext(ctx, query, babyID, immunization.StatusDone).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting completed schedules: %w", err)
	}
	return count, nil
}

// ListDueCandidates returns every non-DONE record due on or before the
// horizon, together with the number of outcomes already appended for it
// since attemptsSince (start of the current day in practice).
func (r *PostgresScheduleRepository) ListDueCandidates(ctx context.Context, horizon, attemptsSince time.Time) ([]*immunization.ScheduleRecord, error) {
	query := `SELECT s.id, s.baby_id, s.dose_code, s.due_date, s.status, s.last_reminded_at, s.created_at, s.updated_at,
                     COUNT(o.id) AS attempts_today
              FROM schedules s
              LEFT JOIN reminder_outcomes o ON o.schedule_id = s.id AND o.sent_at >= $2
              WHERE s.status != $3 AND s.due_date <= $1
              GROUP BY s.id
              ORDER BY s.due_date ASC, s.dose_code ASC`
	rows, err := r.db.QueryContext(ctx, query, horizon, attemptsSince, immunization.StatusDone)
	if err != nil {
		return nil, fmt.Errorf("error querying due candidates: %w", err)
	}
	defer rows.Close()
	return scanScheduleRows(rows, true)
}

func scanScheduleRows(rows *sql.Rows, withAttempts bool) ([]*immunization.ScheduleRecord, error) {
	records := make([]*immunization.ScheduleRecord, 0)
	for rows.Next() {
		rec := immunization.ScheduleRecord{}
		var err error
		if withAttempts {
			err = rows.Scan(&rec.ID, &rec.BabyID, &rec.DoseCode, &rec.DueDate, &rec.Status, &rec.LastRemindedAt, &rec.CreatedAt, &rec.UpdatedAt, &rec.AttemptsToday)
		} else {
			err = rows.Scan(&rec.ID, &rec.BabyID, &rec.DoseCode, &rec.DueDate, &rec.Status, &rec.LastRemindedAt, &rec.CreatedAt, &rec.UpdatedAt)
		}
		if err != nil {
			return nil, fmt.Errorf("error scanning schedule row: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}
	return records, nil
}

func (r *PostgresScheduleRepository) MarkOverdue(ctx context.Context, before time.Time) (int64, error) {
	query := `UPDATE schedules
              SET status = $1, updated_at = NOW()
              WHERE status = $2 AND due_date < $3`
	res, err := r.db.ExecContext(ctx, query, immunization.StatusOverdue, immunization.StatusPending, before)
	if err != nil {
		return 0, fmt.Errorf("error marking schedules overdue: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading rows affected for overdue sweep: %w", err)
	}
	return n, nil
}

// CompareAndSetStatus advances the status only when the row still holds
// the expected value; a miss is reported, not an error, so racing
// writers stay benign.
func (r *PostgresScheduleRepository) CompareAndSetStatus(ctx context.Context, id int64, expected, next immunization.Status) (bool, error) {
	query := `UPDATE schedules
              SET status = $1, updated_at = NOW()
              WHERE id = $2 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, next, id, expected)
	if err != nil {
		return false, fmt.Errorf("error compare-and-set status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected for compare-and-set: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresScheduleRepository) MarkReminded(ctx context.Context, id int64, expected immunization.Status, at time.Time) (bool, error) {
	query := `UPDATE schedules
              SET status = $1, last_reminded_at = $2, updated_at = NOW()
              WHERE id = $3 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, immunization.StatusReminded, at, id, expected)
	if err != nil {
		return false, fmt.Errorf("error marking schedule reminded: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected for mark reminded: %w", err)
	}
	return n == 1, nil
}

// --- ReminderOutcome and Escalation methods ---

func (r *PostgresScheduleRepository) AppendOutcome(ctx context.Context, outcome *immunization.ReminderOutcome) error {
	query := `INSERT INTO reminder_outcomes (id, schedule_id, phone, sent_at, success, error_detail)
              VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, outcome.ID, outcome.ScheduleID, outcome.Phone, outcome.SentAt, outcome.Success, outcome.ErrorDetail)
	if err != nil {
		return fmt.Errorf("error appending reminder outcome: %w", err)
	}
	return nil
}

func (r *PostgresScheduleRepository) CreateEscalation(ctx context.Context, esc *immunization.Escalation) error {
	// One escalation per record per day; repeats are dropped.
	query := `INSERT INTO escalations (id, schedule_id, baby_id, dose_code, reason, created_at)
              VALUES ($1, $2, $3, $4, $5, $6)
              ON CONFLICT (schedule_id, (created_at::date)) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, esc.ID, esc.ScheduleID, esc.BabyID, esc.DoseCode, esc.Reason, esc.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating escalation: %w", err)
	}
	return nil
}

func (r *PostgresScheduleRepository) ListEscalations(ctx context.Context, limit int) ([]*immunization.Escalation, error) {
	query := `SELECT id, schedule_id, baby_id, dose_code, reason, created_at
              FROM escalations ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying escalations: %w", err)
	}
	defer rows.Close()

	escalations := make([]*immunization.Escalation, 0)
	for rows.Next() {
		esc := immunization.Escalation{}
		if err := rows.Scan(&esc.ID, &esc.ScheduleID, &esc.BabyID, &esc.DoseCode, &esc.Reason, &esc.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning escalation row: %w", err)
		}
		escalations = append(escalations, &esc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating escalation rows: %w", err)
	}
	return escalations, nil
}
