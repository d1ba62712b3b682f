package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"immunization_reminder_bot/internal/domain/baby"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrBabyNotFound = fmt.Errorf("baby not found")
var ErrDuplicateBabyID = fmt.Errorf("baby with this ID already exists")

type PostgresBabyRepository struct {
	db *sql.DB
}

func NewPostgresBabyRepository(db *sql.DB) *PostgresBabyRepository {
	return &PostgresBabyRepository{db: db}
}

func (r *PostgresBabyRepository) Create(ctx context.Context, b *baby.Baby) error {
	query := `INSERT INTO babies (id, name, mother_name, village, parent_phone, birth_date)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, b.ID, b.Name, b.MotherName, b.Village, b.ParentPhone, b.BirthDate).Scan(&b.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "babies_pkey") {
			return ErrDuplicateBabyID
		}
		return fmt.Errorf("error creating baby: %w", err)
	}
	return nil
}

func (r *PostgresBabyRepository) GetByID(ctx context.Context, id string) (*baby.Baby, error) {
	query := `SELECT id, name, mother_name, village, parent_phone, birth_date, created_at
              FROM babies WHERE id = $1`
	b := &baby.Baby{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Name, &b.MotherName, &b.Village, &b.ParentPhone, &b.BirthDate, &b.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBabyNotFound
		}
		return nil, fmt.Errorf("error getting baby by ID: %w", err)
	}
	return b, nil
}

func (r *PostgresBabyRepository) FindByIdentity(ctx context.Context, name, motherName string, birthDate time.Time) (*baby.Baby, error) {
	query := `SELECT id, name, mother_name, village, parent_phone, birth_date, created_at
              FROM babies
              WHERE LOWER(name) = LOWER($1) AND LOWER(mother_name) = LOWER($2) AND birth_date = $3
              LIMIT 1`
	b := &baby.Baby{}
	err := r.db.QueryRowContext(ctx, query, name, motherName, birthDate).Scan(&b.ID, &b.Name, &b.MotherName, &b.Village, &b.ParentPhone, &b.BirthDate, &b.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBabyNotFound
		}
		return nil, fmt.Errorf("error finding baby by identity: %w", err)
	}
	return b, nil
}

func (r *PostgresBabyRepository) ListAll(ctx context.Context) ([]*baby.Baby, error) {
	query := `SELECT id, name, mother_name, village, parent_phone, birth_date, created_at
              FROM babies ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing babies: %w", err)
	}
	defer rows.Close()

	babies := make([]*baby.Baby, 0)
	for rows.Next() {
		b := &baby.Baby{}
		if err := rows.Scan(&b.ID, &b.Name, &b.MotherName, &b.Village, &b.ParentPhone, &b.BirthDate, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning baby: %w", err)
		}
		babies = append(babies, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating babies: %w", err)
	}
	return babies, nil
}
