package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"immunization_reminder_bot/internal/domain/worker"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrWorkerNotFound = fmt.Errorf("health worker not found")
var ErrDuplicateWorkerPhone = fmt.Errorf("health worker with this phone already exists")

type PostgresWorkerRepository struct {
	db *sql.DB
}

func NewPostgresWorkerRepository(db *sql.DB) *PostgresWorkerRepository {
	return &PostgresWorkerRepository{db: db}
}

func (r *PostgresWorkerRepository) Create(ctx context.Context, w *worker.Worker) error {
	query := `INSERT INTO health_workers (name, role, phone, village, is_active)
              VALUES ($1, $2, $3, $4, $5)
              RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, w.Name, w.Role, w.Phone, w.Village, w.IsActive).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "health_workers_phone_key") {
			return ErrDuplicateWorkerPhone
		}
		return fmt.Errorf("error creating health worker: %w", err)
	}
	return nil
}

func (r *PostgresWorkerRepository) GetByPhone(ctx context.Context, phone string) (*worker.Worker, error) {
	query := `SELECT id, name, role, phone, village, is_active, created_at, updated_at
              FROM health_workers WHERE phone = $1`
	w := &worker.Worker{}
	err := r.db.QueryRowContext(ctx, query, phone).Scan(&w.ID, &w.Name, &w.Role, &w.Phone, &w.Village, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrWorkerNotFound
		}
		return nil, fmt.Errorf("error getting health worker by phone: %w", err)
	}
	return w, nil
}

func (r *PostgresWorkerRepository) Update(ctx context.Context, w *worker.Worker) error {
	query := `UPDATE health_workers
              SET name = $1, role = $2, village = $3, is_active = $4, updated_at = NOW()
              WHERE id = $5
              RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, w.Name, w.Role, w.Village, w.IsActive, w.ID).Scan(&w.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrWorkerNotFound
		}
		return fmt.Errorf("error updating health worker: %w", err)
	}
	return nil
}

func scanWorkers(rows *sql.Rows) ([]*worker.Worker, error) {
	workers := make([]*worker.Worker, 0)
	for rows.Next() {
		w := &worker.Worker{}
		if err := rows.Scan(&w.ID, &w.Name, &w.Role, &w.Phone, &w.Village, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning health worker: %w", err)
		}
		workers = append(workers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating health workers: %w", err)
	}
	return workers, nil
}

func (r *PostgresWorkerRepository) ListActive(ctx context.Context) ([]*worker.Worker, error) {
	query := `SELECT id, name, role, phone, village, is_active, created_at, updated_at
              FROM health_workers WHERE is_active = TRUE ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing active health workers: %w", err)
	}
	defer rows.Close()
	return scanWorkers(rows)
}

func (r *PostgresWorkerRepository) ListAll(ctx context.Context) ([]*worker.Worker, error) {
	query := `SELECT id, name, role, phone, village, is_active, created_at, updated_at
              FROM health_workers ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing all health workers: %w", err)
	}
	defer rows.Close()
	return scanWorkers(rows)
}
