package repository

import (
	"database/sql"
	"errors"

	"backend/internal/apperrors"
	"backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type RuleRepository interface {
	Create(rule *models.Rule) error
	Revise(oldRuleID int64, newText string, severity models.RuleSeverity, version int, editorID int64) (*models.Rule, error)
	Deactivate(id int64) error
	GetByID(id int64) (*models.Rule, error)
	FindActiveByText(text string) (*models.Rule, error)
	ListActive() ([]*models.Rule, error)
	ListAll(includeInactive bool) ([]*models.Rule, error)
}

type ruleRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewRuleRepository(db *sqlx.DB, logger *zap.Logger) RuleRepository {
	return &ruleRepository{db: db, logger: logger}
}

const ruleColumns = `id, rule_text, severity, is_active, version, parent_rule_id, created_by, created_at, updated_at`

func (r *ruleRepository) Create(rule *models.Rule) error {
	query := `INSERT INTO rules (rule_text, severity, is_active, version, parent_rule_id, created_by)
	          VALUES ($1, $2, TRUE, $3, $4, $5)
	          RETURNING ` + ruleColumns
	err := r.db.QueryRowx(query, rule.RuleText, rule.Severity, rule.Version, rule.ParentRuleID, rule.CreatedBy).StructScan(rule)
	if err != nil {
		return mapRuleError(err)
	}
	return nil
}

// Revise deactivates the old rule row and inserts the new version in a single
// transaction, so no reader observes "old gone, new missing".
func (r *ruleRepository) Revise(oldRuleID int64, newText string, severity models.RuleSeverity, version int, editorID int64) (*models.Rule, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE rules SET is_active = FALSE, updated_at = now() WHERE id = $1`, oldRuleID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, apperrors.NotFoundf("rule %d", oldRuleID)
	}

	newRule := &models.Rule{}
	query := `INSERT INTO rules (rule_text, severity, is_active, version, parent_rule_id, created_by)
	          VALUES ($1, $2, TRUE, $3, $4, $5)
	          RETURNING ` + ruleColumns
	if err := tx.QueryRowx(query, newText, severity, version, oldRuleID, editorID).StructScan(newRule); err != nil {
		return nil, mapRuleError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapRuleError(err)
	}
	return newRule, nil
}

// Deactivate is an idempotent soft delete.
func (r *ruleRepository) Deactivate(id int64) error {
	res, err := r.db.Exec(`UPDATE rules SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFoundf("rule %d", id)
	}
	return nil
}

func (r *ruleRepository) GetByID(id int64) (*models.Rule, error) {
	var rule models.Rule
	err := r.db.Get(&rule, `SELECT `+ruleColumns+` FROM rules WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("rule %d", id)
		}
		return nil, err
	}
	return &rule, nil
}

// FindActiveByText returns the active rule with byte-identical text, or nil
// when none exists.
func (r *ruleRepository) FindActiveByText(text string) (*models.Rule, error) {
	var rule models.Rule
	err := r.db.Get(&rule, `SELECT `+ruleColumns+` FROM rules WHERE rule_text = $1 AND is_active`, text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// ListActive returns all active rules, newest-created first. The secondary id
// ordering keeps the sequence stable for rules created in the same instant,
// which the deterministic-replay guarantee relies on.
func (r *ruleRepository) ListActive() ([]*models.Rule, error) {
	var rules []*models.Rule
	err := r.db.Select(&rules, `SELECT `+ruleColumns+` FROM rules WHERE is_active ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) ListAll(includeInactive bool) ([]*models.Rule, error) {
	if !includeInactive {
		return r.ListActive()
	}
	var rules []*models.Rule
	err := r.db.Select(&rules, `SELECT `+ruleColumns+` FROM rules ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// mapRuleError turns the partial unique index violation on (rule_text,
// is_active) into the duplicate error kind, so the losing writer of a
// create/create race gets the same error as an ordinary duplicate.
func mapRuleError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return apperrors.Duplicatef("an active rule with identical text already exists")
	}
	return err
}
