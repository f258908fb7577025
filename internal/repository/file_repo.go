package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
)

type FileRepo struct {
	pool *pgxpool.Pool
}

func NewFileRepo(pool *pgxpool.Pool) *FileRepo {
	return &FileRepo{pool: pool}
}

func (r *FileRepo) Create(ctx context.Context, f *models.NoteFile) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.ParseStatus = "pending"

	query := `INSERT INTO note_files (id, user_id, subject_id, file_name, file_type, storage_path, parse_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		f.ID, f.UserID, f.SubjectID, f.FileName, f.FileType, f.StoragePath, f.ParseStatus,
	).Scan(&f.CreatedAt)
}

func (r *FileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.NoteFile, error) {
	f := &models.NoteFile{}
	query := `SELECT id, user_id, subject_id, file_name, file_type, storage_path, parse_status,
			error_message, sections_count, chunks_count, created_at
		FROM note_files WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.UserID, &f.SubjectID, &f.FileName, &f.FileType, &f.StoragePath,
		&f.ParseStatus, &f.ErrorMessage, &f.SectionsCount, &f.ChunksCount, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *FileRepo) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]models.NoteFile, error) {
	query := `SELECT id, user_id, subject_id, file_name, file_type, storage_path, parse_status,
			error_message, sections_count, chunks_count, created_at
		FROM note_files WHERE subject_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]models.NoteFile, 0)
	for rows.Next() {
		var f models.NoteFile
		if err := rows.Scan(
			&f.ID, &f.UserID, &f.SubjectID, &f.FileName, &f.FileType, &f.StoragePath,
			&f.ParseStatus, &f.ErrorMessage, &f.SectionsCount, &f.ChunksCount, &f.CreatedAt,
		); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (r *FileRepo) MarkParsed(ctx context.Context, id uuid.UUID, sectionsCount, chunksCount int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE note_files SET parse_status = 'parsed', sections_count = $1, chunks_count = $2, error_message = ''
		 WHERE id = $3`,
		sectionsCount, chunksCount, id,
	)
	return err
}

func (r *FileRepo) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE note_files SET parse_status = 'error', error_message = $1 WHERE id = $2",
		message, id,
	)
	return err
}

func (r *FileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM note_files WHERE id = $1", id)
	return err
}
