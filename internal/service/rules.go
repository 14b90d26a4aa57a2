package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backend/internal/apperrors"
	"backend/internal/embedding"
	"backend/internal/models"
	"backend/internal/repository"

	"go.uber.org/zap"
)

// RuleService owns the lifecycle of compliance rules: creation with duplicate
// detection, versioned revision and soft deletion. The rule store is
// authoritative; the similarity index is advisory and every index failure
// degrades to "no suggestions" instead of failing the operation.
type RuleService struct {
	rules     repository.RuleRepository
	audit     repository.AuditRepository
	index     embedding.Index
	threshold float64
	topK      int
	timeout   time.Duration
	logger    *zap.Logger
}

type RuleServiceConfig struct {
	SimilarityThreshold float64
	TopK                int
	IndexTimeout        time.Duration
}

func NewRuleService(rules repository.RuleRepository, audit repository.AuditRepository,
	index embedding.Index, cfg RuleServiceConfig, logger *zap.Logger) *RuleService {
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = 0.85
	}
	if cfg.TopK == 0 {
		cfg.TopK = 3
	}
	if cfg.IndexTimeout == 0 {
		cfg.IndexTimeout = 5 * time.Second
	}
	return &RuleService{
		rules:     rules,
		audit:     audit,
		index:     index,
		threshold: cfg.SimilarityThreshold,
		topK:      cfg.TopK,
		timeout:   cfg.IndexTimeout,
		logger:    logger,
	}
}

// Create adds a new rule. An active rule with byte-identical text always
// fails as a duplicate. Unless confirmed, semantically similar active rules
// stop the creation and are returned as suggestions for the author to review;
// confirmed creation skips the similarity check but never the exact one.
func (s *RuleService) Create(ctx context.Context, text string, severity models.RuleSeverity,
	creatorID int64, confirmed bool) (*models.Rule, []embedding.Match, error) {

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, apperrors.Validationf("rule text must not be empty")
	}
	if !severity.Valid() {
		return nil, nil, apperrors.Validationf("severity must be %q or %q", models.SeverityHard, models.SeveritySoft)
	}

	existing, err := s.rules.FindActiveByText(text)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, apperrors.Duplicatef("an active rule with identical text already exists (rule %d)", existing.ID)
	}

	if !confirmed {
		if matches := s.findSimilar(ctx, text); len(matches) > 0 {
			return nil, matches, nil
		}
	}

	rule := &models.Rule{
		RuleText:  text,
		Severity:  severity,
		Version:   1,
		CreatedBy: creatorID,
	}
	if err := s.rules.Create(rule); err != nil {
		return nil, nil, err
	}

	s.indexUpsert(ctx, rule)
	s.recordAudit(creatorID, "rule_created", rule.ID, fmt.Sprintf("severity=%s version=%d", rule.Severity, rule.Version))

	s.logger.Info("rule created",
		zap.Int64("rule_id", rule.ID),
		zap.String("severity", string(rule.Severity)))
	return rule, nil, nil
}

// Revise replaces an active rule's text with a new version. The old row is
// deactivated and a new row is created with version+1 and parent_rule_id
// pointing at the revised rule; severity is carried over.
func (s *RuleService) Revise(ctx context.Context, ruleID int64, newText string, editorID int64) (*models.Rule, error) {
	newText = strings.TrimSpace(newText)
	if newText == "" {
		return nil, apperrors.Validationf("rule text must not be empty")
	}

	old, err := s.rules.GetByID(ruleID)
	if err != nil {
		return nil, err
	}
	if !old.IsActive {
		return nil, apperrors.Validationf("rule %d is inactive and cannot be revised", ruleID)
	}
	if newText == old.RuleText {
		return nil, apperrors.Validationf("new rule text is identical to the current version")
	}

	newRule, err := s.rules.Revise(old.ID, newText, old.Severity, old.Version+1, editorID)
	if err != nil {
		return nil, err
	}

	s.indexRemove(ctx, old.ID)
	s.indexUpsert(ctx, newRule)
	s.recordAudit(editorID, "rule_revised", newRule.ID, fmt.Sprintf("previous_rule_id=%d version=%d", old.ID, newRule.Version))

	s.logger.Info("rule revised",
		zap.Int64("old_rule_id", old.ID),
		zap.Int64("new_rule_id", newRule.ID),
		zap.Int("version", newRule.Version))
	return newRule, nil
}

// Deactivate soft-deletes a rule. Historical violations referencing it are
// untouched.
func (s *RuleService) Deactivate(ctx context.Context, ruleID, actorID int64) error {
	if err := s.rules.Deactivate(ruleID); err != nil {
		return err
	}

	s.indexRemove(ctx, ruleID)
	s.recordAudit(actorID, "rule_deactivated", ruleID, "")

	s.logger.Info("rule deactivated", zap.Int64("rule_id", ruleID))
	return nil
}

func (s *RuleService) GetByID(id int64) (*models.Rule, error) {
	return s.rules.GetByID(id)
}

func (s *RuleService) ListActive() ([]*models.Rule, error) {
	return s.rules.ListActive()
}

func (s *RuleService) List(includeInactive bool) ([]*models.Rule, error) {
	return s.rules.ListAll(includeInactive)
}

func (s *RuleService) findSimilar(ctx context.Context, text string) []embedding.Match {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	matches, err := s.index.FindSimilar(ctx, text, s.topK, s.threshold)
	if err != nil {
		s.logger.Warn("similarity lookup failed, continuing without suggestions", zap.Error(err))
		return nil
	}
	return matches
}

func (s *RuleService) indexUpsert(ctx context.Context, rule *models.Rule) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.index.Upsert(ctx, rule.ID, rule.RuleText); err != nil {
		s.logger.Warn("failed to index rule", zap.Int64("rule_id", rule.ID), zap.Error(err))
	}
}

func (s *RuleService) indexRemove(ctx context.Context, ruleID int64) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.index.Remove(ctx, ruleID); err != nil {
		s.logger.Warn("failed to remove rule from index", zap.Int64("rule_id", ruleID), zap.Error(err))
	}
}

func (s *RuleService) recordAudit(userID int64, action string, ruleID int64, details string) {
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: "rule",
		EntityID:   ruleID,
		Details:    details,
	}
	if err := s.audit.Record(entry); err != nil {
		s.logger.Warn("failed to record audit entry", zap.String("action", action), zap.Error(err))
	}
}
