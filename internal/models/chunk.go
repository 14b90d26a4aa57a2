package models

import "time"

// ContentChunk is a tokenized segment of a submission's prompt or generated
// content, stored for later retrieval and analysis.
type ContentChunk struct {
	ID           int64     `db:"id" json:"id"`
	SubmissionID int64     `db:"submission_id" json:"submission_id"`
	ChunkText    string    `db:"chunk_text" json:"chunk_text"`
	Position     int       `db:"chunk_position" json:"chunk_position"`
	TokenCount   int       `db:"token_count" json:"token_count"`
	SourceType   string    `db:"source_type" json:"source_type"` // "prompt", "reference", "generated"
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
