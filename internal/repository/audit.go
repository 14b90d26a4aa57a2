package repository

import (
	"backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type AuditRepository interface {
	Record(entry *models.AuditLog) error
	ListRecent(limit, offset int) ([]*models.AuditLog, error)
}

type auditRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewAuditRepository(db *sqlx.DB, logger *zap.Logger) AuditRepository {
	return &auditRepository{db: db, logger: logger}
}

func (r *auditRepository) Record(entry *models.AuditLog) error {
	query := `INSERT INTO audit_logs (user_id, action, entity_type, entity_id, details)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`
	return r.db.QueryRowx(query, entry.UserID, entry.Action, entry.EntityType, entry.EntityID, entry.Details).
		Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) ListRecent(limit, offset int) ([]*models.AuditLog, error) {
	var entries []*models.AuditLog
	query := `SELECT id, user_id, action, entity_type, entity_id, details, created_at
	          FROM audit_logs ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	err := r.db.Select(&entries, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
