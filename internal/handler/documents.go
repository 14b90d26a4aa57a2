package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"backend/internal/models"
	"backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var allowedDocumentExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".md":   true,
}

// DocumentHandler stores reference documents for super admins. Documents are
// never parsed into rules; they exist so a human can read them and type rules
// manually.
type DocumentHandler struct {
	dir    string
	audit  repository.AuditRepository
	logger *zap.Logger
}

func NewDocumentHandler(dir string, audit repository.AuditRepository, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{dir: dir, audit: audit, logger: logger}
}

// Upload handles POST /api/super-admin/documents/upload
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedDocumentExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type. Allowed: .pdf, .docx, .md"})
		return
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		h.logger.Error("Failed to create documents directory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Strip any path components the client sent.
	name := filepath.Base(file.Filename)
	dest := filepath.Join(h.dir, name)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		h.logger.Error("Failed to save uploaded document", zap.String("filename", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	entry := &models.AuditLog{
		UserID:     c.GetInt64("user_id"),
		Action:     "upload_reference_document",
		EntityType: "document",
		Details:    fmt.Sprintf("Uploaded reference document: %s", name),
	}
	if err := h.audit.Record(entry); err != nil {
		h.logger.Warn("Failed to record audit entry", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  "Document uploaded as reference material",
		"filename": name,
		"path":     dest,
		"note":     "This document is for human review only. No rules will be auto-generated.",
	})
}

// List handles GET /api/super-admin/documents
func (h *DocumentHandler) List(c *gin.Context) {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusOK, gin.H{"documents": []gin.H{}, "total": 0})
			return
		}
		h.logger.Error("Failed to list documents", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	documents := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		documents = append(documents, gin.H{
			"filename":    entry.Name(),
			"size_bytes":  info.Size(),
			"uploaded_at": info.ModTime(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": documents,
		"total":     len(documents),
		"note":      "These documents are reference material only. Rules must be manually created.",
	})
}
