package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
)

type SubjectRepo struct {
	pool *pgxpool.Pool
}

func NewSubjectRepo(pool *pgxpool.Pool) *SubjectRepo {
	return &SubjectRepo{pool: pool}
}

func (r *SubjectRepo) Create(ctx context.Context, s *models.Subject) error {
	s.ID = uuid.New()

	query := `INSERT INTO subjects (id, user_id, name, slot)
		VALUES ($1, $2, $3, $4) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		s.ID, s.UserID, s.Name, s.Slot,
	).Scan(&s.CreatedAt)
}

func (r *SubjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	s := &models.Subject{}
	query := `SELECT sub.id, sub.user_id, sub.name, sub.slot, sub.created_at,
			(SELECT COUNT(*) FROM note_files nf WHERE nf.subject_id = sub.id) AS file_count
		FROM subjects sub WHERE sub.id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.Name, &s.Slot, &s.CreatedAt, &s.FileCount,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SubjectRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subject, error) {
	query := `SELECT sub.id, sub.user_id, sub.name, sub.slot, sub.created_at,
			(SELECT COUNT(*) FROM note_files nf WHERE nf.subject_id = sub.id) AS file_count
		FROM subjects sub WHERE sub.user_id = $1 ORDER BY sub.slot`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := make([]models.Subject, 0)
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Slot, &s.CreatedAt, &s.FileCount); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// UsedSlots returns the occupied slot numbers for a user, ascending.
func (r *SubjectRepo) UsedSlots(ctx context.Context, userID uuid.UUID) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT slot FROM subjects WHERE user_id = $1 ORDER BY slot", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]int, 0, 3)
	for rows.Next() {
		var slot int
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (r *SubjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM subjects WHERE id = $1", id)
	return err
}
