package repository

import (
	"database/sql"
	"errors"

	"backend/internal/apperrors"
	"backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type SubmissionRepository interface {
	Create(sub *models.Submission) error
	GetByID(id int64) (*models.Submission, error)
	UpdateStatus(id int64, status models.SubmissionStatus) error
	Complete(id int64, status models.SubmissionStatus, complianceStatus, generatedContent string) error
	List(limit, offset int) ([]*models.SubmissionSummary, error)
}

type submissionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSubmissionRepository(db *sqlx.DB, logger *zap.Logger) SubmissionRepository {
	return &submissionRepository{db: db, logger: logger}
}

const submissionColumns = `id, user_id, prompt, generated_content, status, compliance_status, created_at, completed_at`

func (r *submissionRepository) Create(sub *models.Submission) error {
	query := `INSERT INTO submissions (user_id, prompt, status)
	          VALUES ($1, $2, $3)
	          RETURNING ` + submissionColumns
	return r.db.QueryRowx(query, sub.UserID, sub.Prompt, sub.Status).StructScan(sub)
}

func (r *submissionRepository) GetByID(id int64) (*models.Submission, error) {
	var sub models.Submission
	err := r.db.Get(&sub, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("submission %d", id)
		}
		return nil, err
	}
	return &sub, nil
}

// UpdateStatus moves a submission to a non-terminal or terminal state. The
// WHERE clause refuses transitions out of terminal states at the storage
// layer, regardless of what the caller computed.
func (r *submissionRepository) UpdateStatus(id int64, status models.SubmissionStatus) error {
	res, err := r.db.Exec(
		`UPDATE submissions SET status = $1 WHERE id = $2 AND status NOT IN ('approved', 'rejected', 'failed')`,
		status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFoundf("submission %d (or already in a terminal state)", id)
	}
	return nil
}

// Complete records the decision outcome: terminal status, compliance status,
// generated content and completion time in one statement.
func (r *submissionRepository) Complete(id int64, status models.SubmissionStatus, complianceStatus, generatedContent string) error {
	res, err := r.db.Exec(
		`UPDATE submissions
		 SET status = $1, compliance_status = $2, generated_content = $3, completed_at = now()
		 WHERE id = $4 AND status NOT IN ('approved', 'rejected', 'failed')`,
		status, complianceStatus, generatedContent, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFoundf("submission %d (or already in a terminal state)", id)
	}
	return nil
}

func (r *submissionRepository) List(limit, offset int) ([]*models.SubmissionSummary, error) {
	var subs []*models.SubmissionSummary
	query := `
		SELECT
			s.id,
			s.user_id,
			s.prompt,
			s.status,
			s.compliance_status,
			COUNT(v.id) AS violation_count,
			s.created_at
		FROM submissions s
		LEFT JOIN violations v ON v.submission_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $1 OFFSET $2
	`
	err := r.db.Select(&subs, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return subs, nil
}
