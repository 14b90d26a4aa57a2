package handler

import (
	"net/http"
	"strconv"

	"backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the monitoring and analytics endpoints.
type AdminHandler struct {
	violations  repository.ViolationRepository
	submissions repository.SubmissionRepository
	audit       repository.AuditRepository
	logger      *zap.Logger
}

func NewAdminHandler(violations repository.ViolationRepository, submissions repository.SubmissionRepository,
	audit repository.AuditRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		violations:  violations,
		submissions: submissions,
		audit:       audit,
		logger:      logger,
	}
}

func paging(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListViolations handles GET /api/admin/violations
func (h *AdminHandler) ListViolations(c *gin.Context) {
	limit, offset := paging(c)

	violations, err := h.violations.ListRecent(limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"violations": violations, "total": len(violations)})
}

// RuleAnalytics handles GET /api/admin/analytics/rules: which rules are
// violated most often.
func (h *AdminHandler) RuleAnalytics(c *gin.Context) {
	counts, err := h.violations.RuleHitCounts()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rule_analytics": counts})
}

// ListSubmissions handles GET /api/admin/submissions
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	limit, offset := paging(c)

	subs, err := h.submissions.List(limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	// Long prompts are trimmed for the listing view.
	for _, s := range subs {
		if len(s.Prompt) > 100 {
			s.Prompt = s.Prompt[:100] + "..."
		}
	}

	c.JSON(http.StatusOK, gin.H{"submissions": subs, "total": len(subs)})
}

// ListAuditLog handles GET /api/admin/audit
func (h *AdminHandler) ListAuditLog(c *gin.Context) {
	limit, offset := paging(c)

	entries, err := h.audit.ListRecent(limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit_log": entries, "total": len(entries)})
}
