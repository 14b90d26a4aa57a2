package handler

import (
	"net/http"
	"strconv"

	"backend/internal/models"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RuleHandler serves the super-admin rule management endpoints. Rule text is
// always human-typed; nothing here generates or suggests rule wording.
type RuleHandler struct {
	rules  *service.RuleService
	logger *zap.Logger
}

func NewRuleHandler(rules *service.RuleService, logger *zap.Logger) *RuleHandler {
	return &RuleHandler{rules: rules, logger: logger}
}

type createRuleRequest struct {
	RuleText string `json:"rule_text" binding:"required"`
	Severity string `json:"severity" binding:"required"`
}

type updateRuleRequest struct {
	RuleText string `json:"rule_text" binding:"required"`
}

// Create handles POST /api/super-admin/rules. When semantically similar
// active rules exist the rule is NOT created; the similar rules come back as
// a warning for the super admin to review.
func (h *RuleHandler) Create(c *gin.Context) {
	h.create(c, false)
}

// ForceCreate handles POST /api/super-admin/rules/force-create: the super
// admin has reviewed the similarity warning and confirms the rule is
// distinct. Only the exact-duplicate check still applies.
func (h *RuleHandler) ForceCreate(c *gin.Context) {
	h.create(c, true)
}

func (h *RuleHandler) create(c *gin.Context, confirmed bool) {
	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt64("user_id")
	rule, similar, err := h.rules.Create(c.Request.Context(), req.RuleText, models.RuleSeverity(req.Severity), userID, confirmed)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if rule == nil {
		c.JSON(http.StatusConflict, gin.H{
			"status":          "warning",
			"message":         "Similar rules found. Review before creating.",
			"similar_rules":   similar,
			"action_required": "Review similarities and confirm creation if rule is distinct",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Rule created successfully",
		"rule":    rule,
	})
}

// Update handles PUT /api/super-admin/rules/:id and creates a new version.
func (h *RuleHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule ID"})
		return
	}

	var req updateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newRule, err := h.rules.Revise(c.Request.Context(), id, req.RuleText, c.GetInt64("user_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     "Rule updated successfully",
		"old_rule_id": id,
		"new_rule":    newRule,
	})
}

// Deactivate handles DELETE /api/super-admin/rules/:id (soft delete).
func (h *RuleHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule ID"})
		return
	}

	if err := h.rules.Deactivate(c.Request.Context(), id, c.GetInt64("user_id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Rule deactivated successfully",
	})
}

// List handles GET /api/super-admin/rules?include_inactive=true
func (h *RuleHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	rules, err := h.rules.List(includeInactive)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules, "total": len(rules)})
}
