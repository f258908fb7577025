package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
)

type ReviewRepo struct {
	pool *pgxpool.Pool
}

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

// PurgeInvalid drops cards whose prompt or answer is empty, or whose
// source chunk no longer exists (the file was deleted).
func (r *ReviewRepo) PurgeInvalid(ctx context.Context, userID, subjectID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM review_cards rc
		WHERE rc.user_id = $1 AND rc.subject_id = $2
		  AND (rc.prompt = '' OR rc.answer = ''
			OR NOT EXISTS (
				SELECT 1 FROM chunks c
				WHERE c.user_id = rc.user_id AND c.subject_id = rc.subject_id AND c.chunk_id = rc.chunk_id
			))
	`, userID, subjectID)
	return err
}

// CardedChunkIDs returns the chunk IDs that already have a card, so
// seeding can skip them.
func (r *ReviewRepo) CardedChunkIDs(ctx context.Context, userID, subjectID uuid.UUID) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT chunk_id FROM review_cards WHERE user_id = $1 AND subject_id = $2",
		userID, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	carded := make(map[string]bool)
	for rows.Next() {
		var chunkID string
		if err := rows.Scan(&chunkID); err != nil {
			return nil, err
		}
		carded[chunkID] = true
	}
	return carded, rows.Err()
}

// InsertSeeds creates new cards with scheduler defaults, skipping any
// chunk that already has one. Returns the number actually created.
func (r *ReviewRepo) InsertSeeds(ctx context.Context, userID, subjectID uuid.UUID, seeds []models.ReviewCardSeed) (int, error) {
	if len(seeds) == 0 {
		return 0, nil
	}

	now := time.Now()
	batch := &pgx.Batch{}
	query := `INSERT INTO review_cards
			(id, user_id, subject_id, chunk_id, file_name, page_or_section, prompt, answer, evidence_snippet,
			 due_at, repetitions, interval_days, ease_factor, lapses, review_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, 0, 2.5, 0, 0)
		ON CONFLICT (user_id, subject_id, chunk_id) DO NOTHING`

	for _, seed := range seeds {
		batch.Queue(query,
			uuid.New(), userID, subjectID, seed.ChunkID, seed.FileName, seed.PageOrSection,
			seed.Prompt, seed.Answer, seed.EvidenceSnippet, now,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	created := 0
	for range seeds {
		tag, err := results.Exec()
		if err != nil {
			return created, err
		}
		created += int(tag.RowsAffected())
	}
	return created, nil
}

func (r *ReviewRepo) FindDue(ctx context.Context, userID, subjectID uuid.UUID, now time.Time, limit int) ([]models.ReviewCard, error) {
	query := `SELECT id, user_id, subject_id, chunk_id, file_name, page_or_section, prompt, answer, evidence_snippet,
			due_at, repetitions, interval_days, ease_factor, lapses, review_count, last_rating, last_reviewed_at
		FROM review_cards
		WHERE user_id = $1 AND subject_id = $2 AND due_at <= $3
		ORDER BY due_at ASC
		LIMIT $4`

	rows, err := r.pool.Query(ctx, query, userID, subjectID, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := make([]models.ReviewCard, 0)
	for rows.Next() {
		card, err := scanReviewCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (r *ReviewRepo) GetByID(ctx context.Context, userID, cardID uuid.UUID) (*models.ReviewCard, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, user_id, subject_id, chunk_id, file_name, page_or_section, prompt, answer, evidence_snippet,
			due_at, repetitions, interval_days, ease_factor, lapses, review_count, last_rating, last_reviewed_at
		FROM review_cards WHERE id = $1 AND user_id = $2`, cardID, userID)

	card, err := scanReviewCard(row)
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// ApplyRating persists a rated card's new scheduler state in one
// statement so concurrent ratings cannot interleave partial updates.
func (r *ReviewRepo) ApplyRating(ctx context.Context, card *models.ReviewCard) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE review_cards
		SET due_at = $1, repetitions = $2, interval_days = $3, ease_factor = $4, lapses = $5,
			review_count = $6, last_rating = $7, last_reviewed_at = $8
		WHERE id = $9 AND user_id = $10
	`, card.DueAt, card.Repetitions, card.IntervalDays, card.EaseFactor, card.Lapses,
		card.ReviewCount, card.LastRating, card.LastReviewedAt, card.ID, card.UserID)
	return err
}

func (r *ReviewRepo) Stats(ctx context.Context, userID, subjectID uuid.UUID, now time.Time) (models.ReviewStats, error) {
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var stats models.ReviewStats
	var nextDueAt *time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE due_at <= $3),
			COUNT(*) FILTER (WHERE last_reviewed_at >= $4),
			MIN(due_at)
		FROM review_cards
		WHERE user_id = $1 AND subject_id = $2
	`, userID, subjectID, now, startOfToday).Scan(
		&stats.TotalCards, &stats.DueCount, &stats.ReviewedToday, &nextDueAt,
	)
	if err != nil {
		return stats, err
	}

	if nextDueAt != nil {
		formatted := nextDueAt.UTC().Format(time.RFC3339)
		stats.NextDueAt = &formatted
	}
	return stats, nil
}

func scanReviewCard(row pgx.Row) (models.ReviewCard, error) {
	var card models.ReviewCard
	err := row.Scan(
		&card.ID, &card.UserID, &card.SubjectID, &card.ChunkID, &card.FileName, &card.PageOrSection,
		&card.Prompt, &card.Answer, &card.EvidenceSnippet, &card.DueAt, &card.Repetitions,
		&card.IntervalDays, &card.EaseFactor, &card.Lapses, &card.ReviewCount,
		&card.LastRating, &card.LastReviewedAt,
	)
	return card, err
}
