package repository

import (
	"backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type ChunkRepository interface {
	SaveBatch(chunks []*models.ContentChunk) error
	ListBySubmission(submissionID int64) ([]*models.ContentChunk, error)
}

type chunkRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewChunkRepository(db *sqlx.DB, logger *zap.Logger) ChunkRepository {
	return &chunkRepository{db: db, logger: logger}
}

func (r *chunkRepository) SaveBatch(chunks []*models.ContentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO content_chunks (submission_id, chunk_text, chunk_position, token_count, source_type)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`
	for _, c := range chunks {
		if err := tx.QueryRowx(query, c.SubmissionID, c.ChunkText, c.Position, c.TokenCount, c.SourceType).
			Scan(&c.ID, &c.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *chunkRepository) ListBySubmission(submissionID int64) ([]*models.ContentChunk, error) {
	var chunks []*models.ContentChunk
	query := `SELECT id, submission_id, chunk_text, chunk_position, token_count, source_type, created_at
	          FROM content_chunks WHERE submission_id = $1 ORDER BY source_type, chunk_position`
	err := r.db.Select(&chunks, query, submissionID)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}
