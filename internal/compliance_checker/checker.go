package compliance_checker

import (
	"context"
	"time"

	"backend/internal/apperrors"
	"backend/internal/chunker"
	"backend/internal/models"
	"backend/internal/prompt_enhancer"
	"backend/internal/repository"
	"backend/internal/review_client"
	"backend/internal/rule_engine"

	"go.uber.org/zap"
)

// Generator produces content for an enhanced prompt. Generation failure is
// fatal for the submission.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Reviewer performs the advisory AI compliance review. Its output is attached
// to the result but never changes the enforcement decision.
type Reviewer interface {
	Review(ctx context.Context, content string, rules []*models.Rule) (*review_client.Review, error)
}

// Result is the full outcome of a compliance check.
type Result struct {
	SubmissionID     int64                   `json:"submission_id"`
	IsApproved       bool                    `json:"is_approved"`
	ComplianceStatus string                  `json:"compliance_status"`
	DecisionReason   string                  `json:"decision_reason"`
	GeneratedContent string                  `json:"generated_content"`
	RuleViolations   []rule_engine.Candidate `json:"rule_violations"`
	AIReview         *review_client.Review   `json:"ai_review"`
	SoftAnnotations  string                  `json:"soft_annotations"`
	TotalViolations  int                     `json:"total_violations"`
	HardViolations   int                     `json:"hard_violations"`
	SoftViolations   int                     `json:"soft_violations"`
}

// Checker orchestrates the full compliance pipeline and owns every submission
// status transition. Detected rule violations always override the AI review.
type Checker struct {
	rules       repository.RuleRepository
	submissions repository.SubmissionRepository
	violations  repository.ViolationRepository
	chunks      repository.ChunkRepository
	audit       repository.AuditRepository

	detector  *rule_engine.Detector
	generator Generator
	reviewer  Reviewer // nil disables the advisory review
	chunker   *chunker.Chunker

	generateTimeout time.Duration
	reviewTimeout   time.Duration
	logger          *zap.Logger
}

type Config struct {
	GenerateTimeout time.Duration
	ReviewTimeout   time.Duration
}

func NewChecker(
	rules repository.RuleRepository,
	submissions repository.SubmissionRepository,
	violations repository.ViolationRepository,
	chunks repository.ChunkRepository,
	audit repository.AuditRepository,
	detector *rule_engine.Detector,
	generator Generator,
	reviewer Reviewer,
	contentChunker *chunker.Chunker,
	cfg Config,
	logger *zap.Logger,
) *Checker {
	if cfg.GenerateTimeout == 0 {
		cfg.GenerateTimeout = 60 * time.Second
	}
	if cfg.ReviewTimeout == 0 {
		cfg.ReviewTimeout = 30 * time.Second
	}
	return &Checker{
		rules:           rules,
		submissions:     submissions,
		violations:      violations,
		chunks:          chunks,
		audit:           audit,
		detector:        detector,
		generator:       generator,
		reviewer:        reviewer,
		chunker:         contentChunker,
		generateTimeout: cfg.GenerateTimeout,
		reviewTimeout:   cfg.ReviewTimeout,
		logger:          logger,
	}
}

// GenerateAndCheck runs the full agent flow: create the submission, enhance
// the prompt with active rules, generate content and run the compliance
// check. A generation failure moves the submission to FAILED and is returned
// as a collaborator error.
func (c *Checker) GenerateAndCheck(ctx context.Context, userID int64, prompt, fileContext string) (*Result, error) {
	if prompt == "" {
		return nil, apperrors.Validationf("prompt must not be empty")
	}

	sub := &models.Submission{
		UserID: userID,
		Prompt: prompt,
		Status: models.StatusPending,
	}
	if err := c.submissions.Create(sub); err != nil {
		return nil, err
	}
	c.logger.Info("submission created", zap.Int64("submission_id", sub.ID), zap.Int64("user_id", userID))

	if err := c.submissions.UpdateStatus(sub.ID, models.StatusProcessing); err != nil {
		return nil, err
	}

	activeRules := c.activeRules()
	enhanced := prompt_enhancer.Enhance(prompt, fileContext, activeRules)

	c.storeChunks(sub.ID, prompt, "prompt")
	if fileContext != "" {
		c.storeChunks(sub.ID, fileContext, "reference")
	}

	genCtx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	content, err := c.generator.Generate(genCtx, enhanced)
	cancel()
	if err != nil {
		c.logger.Error("content generation failed",
			zap.Int64("submission_id", sub.ID),
			zap.Error(err))
		if ferr := c.submissions.Complete(sub.ID, models.StatusFailed, string(models.StatusFailed), ""); ferr != nil {
			c.logger.Error("failed to mark submission failed",
				zap.Int64("submission_id", sub.ID),
				zap.Error(ferr))
		}
		return nil, err
	}

	c.storeChunks(sub.ID, content, "generated")
	c.recordAudit(userID, "content_generated", sub.ID, "")

	result, err := c.CheckCompliance(ctx, sub.ID, content, activeRules)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CheckCompliance applies detection, enforcement policy and the advisory
// review to already-generated content, persists the violations and moves the
// submission to its terminal state. When rules is nil the active rules are
// loaded here; passing them in keeps one generate-and-check run on a single
// rule snapshot.
func (c *Checker) CheckCompliance(ctx context.Context, submissionID int64, content string, rules []*models.Rule) (*Result, error) {
	c.logger.Info("starting compliance check", zap.Int64("submission_id", submissionID))

	if rules == nil {
		rules = c.activeRules()
	}

	candidates := c.detector.Detect(content, rules)

	aiReview := review_client.EmptyReview()
	if c.reviewer != nil {
		reviewCtx, cancel := context.WithTimeout(ctx, c.reviewTimeout)
		review, err := c.reviewer.Review(reviewCtx, content, rules)
		cancel()
		if err != nil {
			c.logger.Warn("AI review failed, proceeding with rule engine only",
				zap.Int64("submission_id", submissionID),
				zap.Error(err))
		} else {
			aiReview = review
		}
	}

	decision := rule_engine.Decide(candidates)
	softAnnotations := rule_engine.AnnotateSoft(candidates)

	c.storeViolations(submissionID, candidates)

	status := models.StatusRejected
	if decision.Approved {
		status = models.StatusApproved
	}
	if err := c.submissions.Complete(submissionID, status, string(status), content); err != nil {
		c.logger.Error("failed to update submission status",
			zap.Int64("submission_id", submissionID),
			zap.Error(err))
	}

	hard, soft := 0, 0
	for _, cand := range candidates {
		if cand.Severity == models.SeverityHard {
			hard++
		} else {
			soft++
		}
	}

	result := &Result{
		SubmissionID:     submissionID,
		IsApproved:       decision.Approved,
		ComplianceStatus: string(status),
		DecisionReason:   decision.Reason,
		GeneratedContent: content,
		RuleViolations:   candidates,
		AIReview:         aiReview,
		SoftAnnotations:  softAnnotations,
		TotalViolations:  len(candidates),
		HardViolations:   hard,
		SoftViolations:   soft,
	}

	c.logger.Info("compliance check complete",
		zap.Int64("submission_id", submissionID),
		zap.String("compliance_status", result.ComplianceStatus),
		zap.Int("total_violations", result.TotalViolations))
	return result, nil
}

// activeRules loads the active rule set. A load failure degrades to an empty
// set so a storage hiccup cannot block content generation outright.
func (c *Checker) activeRules() []*models.Rule {
	rules, err := c.rules.ListActive()
	if err != nil {
		c.logger.Error("failed to fetch active rules", zap.Error(err))
		return nil
	}
	c.logger.Info("loaded active rules", zap.Int("count", len(rules)))
	return rules
}

func (c *Checker) storeViolations(submissionID int64, candidates []rule_engine.Candidate) {
	if len(candidates) == 0 {
		return
	}
	rows := make([]*models.Violation, 0, len(candidates))
	for _, cand := range candidates {
		rows = append(rows, &models.Violation{
			SubmissionID: submissionID,
			RuleID:       cand.RuleID,
			Severity:     cand.Severity,
			ViolatedText: cand.ViolatedText,
			Context:      cand.Context,
		})
	}
	if err := c.violations.SaveBatch(rows); err != nil {
		c.logger.Error("failed to store violations",
			zap.Int64("submission_id", submissionID),
			zap.Error(err))
		return
	}
	c.logger.Info("stored violations",
		zap.Int64("submission_id", submissionID),
		zap.Int("count", len(rows)))
}

func (c *Checker) storeChunks(submissionID int64, text, sourceType string) {
	pieces := c.chunker.Split(text, sourceType)
	if len(pieces) == 0 {
		return
	}
	rows := make([]*models.ContentChunk, 0, len(pieces))
	for _, p := range pieces {
		rows = append(rows, &models.ContentChunk{
			SubmissionID: submissionID,
			ChunkText:    p.Text,
			Position:     p.Position,
			TokenCount:   p.TokenCount,
			SourceType:   p.SourceType,
		})
	}
	if err := c.chunks.SaveBatch(rows); err != nil {
		c.logger.Warn("failed to store content chunks",
			zap.Int64("submission_id", submissionID),
			zap.String("source_type", sourceType),
			zap.Error(err))
	}
}

func (c *Checker) recordAudit(userID int64, action string, submissionID int64, details string) {
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: "submission",
		EntityID:   submissionID,
		Details:    details,
	}
	if err := c.audit.Record(entry); err != nil {
		c.logger.Warn("failed to record audit entry", zap.String("action", action), zap.Error(err))
	}
}
