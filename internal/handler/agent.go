package handler

import (
	"net/http"
	"strconv"

	"backend/internal/compliance_checker"
	"backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AgentHandler serves the content generation endpoints used by agents.
type AgentHandler struct {
	checker     *compliance_checker.Checker
	submissions repository.SubmissionRepository
	violations  repository.ViolationRepository
	logger      *zap.Logger
}

func NewAgentHandler(checker *compliance_checker.Checker, submissions repository.SubmissionRepository,
	violations repository.ViolationRepository, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{
		checker:     checker,
		submissions: submissions,
		violations:  violations,
		logger:      logger,
	}
}

type generateRequest struct {
	Prompt        string `json:"prompt" binding:"required"`
	ReferenceText string `json:"reference_text"`
}

// Generate handles POST /api/agent/generate: the full generate-and-check
// pipeline. The submitting user comes from the JWT, never the body.
func (h *AgentHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt64("user_id")
	result, err := h.checker.GenerateAndCheck(c.Request.Context(), userID, req.Prompt, req.ReferenceText)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submission_id":     result.SubmissionID,
		"generated_content": result.GeneratedContent,
		"compliance_status": result.ComplianceStatus,
		"is_approved":       result.IsApproved,
		"violations":        result.RuleViolations,
		"total_violations":  result.TotalViolations,
		"hard_violations":   result.HardViolations,
		"soft_violations":   result.SoftViolations,
		"decision_reason":   result.DecisionReason,
		"soft_annotations":  result.SoftAnnotations,
		"ai_review":         result.AIReview,
	})
}

// GetSubmission handles GET /api/agent/submissions/:id
func (h *AgentHandler) GetSubmission(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	sub, err := h.submissions.GetByID(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	violations, err := h.violations.ListBySubmission(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submission": sub,
		"violations": violations,
	})
}
