package repository

import (
	"backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type ViolationRepository interface {
	SaveBatch(violations []*models.Violation) error
	ListBySubmission(submissionID int64) ([]*models.Violation, error)
	ListRecent(limit, offset int) ([]*models.ViolationDetail, error)
	RuleHitCounts() ([]*models.RuleViolationCount, error)
}

type violationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewViolationRepository(db *sqlx.DB, logger *zap.Logger) ViolationRepository {
	return &violationRepository{db: db, logger: logger}
}

// SaveBatch writes all violations of one compliance check in a single
// transaction; either every row lands or none does.
func (r *violationRepository) SaveBatch(violations []*models.Violation) error {
	if len(violations) == 0 {
		return nil
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO violations (submission_id, rule_id, severity, violated_text, context)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, detected_at`
	for _, v := range violations {
		if err := tx.QueryRowx(query, v.SubmissionID, v.RuleID, v.Severity, v.ViolatedText, v.Context).
			Scan(&v.ID, &v.DetectedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *violationRepository) ListBySubmission(submissionID int64) ([]*models.Violation, error) {
	var violations []*models.Violation
	query := `SELECT id, submission_id, rule_id, severity, violated_text, context, detected_at
	          FROM violations WHERE submission_id = $1 ORDER BY id`
	err := r.db.Select(&violations, query, submissionID)
	if err != nil {
		return nil, err
	}
	return violations, nil
}

func (r *violationRepository) ListRecent(limit, offset int) ([]*models.ViolationDetail, error) {
	var violations []*models.ViolationDetail
	query := `
		SELECT
			v.id,
			v.submission_id,
			s.user_id,
			v.rule_id,
			r.rule_text,
			v.severity,
			v.violated_text,
			v.context,
			v.detected_at
		FROM violations v
		JOIN submissions s ON s.id = v.submission_id
		JOIN rules r ON r.id = v.rule_id
		ORDER BY v.detected_at DESC, v.id DESC
		LIMIT $1 OFFSET $2
	`
	err := r.db.Select(&violations, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return violations, nil
}

// RuleHitCounts returns how often each rule has been violated, most-hit first.
func (r *violationRepository) RuleHitCounts() ([]*models.RuleViolationCount, error) {
	var counts []*models.RuleViolationCount
	query := `
		SELECT
			r.id AS rule_id,
			r.rule_text,
			r.severity,
			COUNT(v.id) AS violation_count
		FROM rules r
		LEFT JOIN violations v ON v.rule_id = r.id
		GROUP BY r.id
		ORDER BY violation_count DESC, r.id
	`
	err := r.db.Select(&counts, query)
	if err != nil {
		return nil, err
	}
	return counts, nil
}
