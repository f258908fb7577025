package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
)

type ChunkRepo struct {
	pool *pgxpool.Pool
}

func NewChunkRepo(pool *pgxpool.Pool) *ChunkRepo {
	return &ChunkRepo{pool: pool}
}

// InsertBatch writes all chunks of one ingested file in a single round
// trip. Embeddings are stored as float8 arrays.
func (r *ChunkRepo) InsertBatch(ctx context.Context, chunks []models.ChunkRow) error {
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO chunks (id, user_id, subject_id, file_id, file_name, page_or_section, chunk_id, text, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for i := range chunks {
		c := &chunks[i]
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		batch.Queue(query,
			c.ID, c.UserID, c.SubjectID, c.FileID, c.FileName,
			c.PageOrSection, c.ChunkID, c.Text, c.Embedding,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *ChunkRepo) ListBySubject(ctx context.Context, userID, subjectID uuid.UUID) ([]models.ChunkRow, error) {
	query := `SELECT id, user_id, subject_id, file_id, file_name, page_or_section, chunk_id, text, embedding
		FROM chunks WHERE user_id = $1 AND subject_id = $2 ORDER BY chunk_id`

	rows, err := r.pool.Query(ctx, query, userID, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chunks := make([]models.ChunkRow, 0)
	for rows.Next() {
		var c models.ChunkRow
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.SubjectID, &c.FileID, &c.FileName,
			&c.PageOrSection, &c.ChunkID, &c.Text, &c.Embedding,
		); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (r *ChunkRepo) GetByChunkIDs(ctx context.Context, userID, subjectID uuid.UUID, chunkIDs []string) ([]models.ChunkRow, error) {
	query := `SELECT id, user_id, subject_id, file_id, file_name, page_or_section, chunk_id, text, embedding
		FROM chunks WHERE user_id = $1 AND subject_id = $2 AND chunk_id = ANY($3)`

	rows, err := r.pool.Query(ctx, query, userID, subjectID, chunkIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chunks := make([]models.ChunkRow, 0, len(chunkIDs))
	for rows.Next() {
		var c models.ChunkRow
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.SubjectID, &c.FileID, &c.FileName,
			&c.PageOrSection, &c.ChunkID, &c.Text, &c.Embedding,
		); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (r *ChunkRepo) DeleteByFile(ctx context.Context, fileID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM chunks WHERE file_id = $1", fileID)
	return err
}
