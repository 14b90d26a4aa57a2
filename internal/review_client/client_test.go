package review_client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/apperrors"
	"backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseReviewWithViolations(t *testing.T) {
	text := `VIOLATIONS:
Rule 1: promises guaranteed returns - Violated text: "guaranteed returns"
Rule 3: casual tone - Violated text: "hey folks"

RECOMMENDATIONS:
Reword the opening and add a risk disclaimer.`

	r := parseReview(text)
	require.Len(t, r.Violations, 2)
	assert.Equal(t, `Rule 1: promises guaranteed returns - Violated text: "guaranteed returns"`, r.Violations[0].Description)
	assert.Equal(t, "groq_review", r.Violations[0].Source)
	assert.Equal(t, "Reword the opening and add a risk disclaimer.", r.Recommendations)
	assert.Equal(t, text, r.Raw)
}

func TestParseReviewNone(t *testing.T) {
	text := `VIOLATIONS:
NONE

RECOMMENDATIONS:
Looks compliant; consider a shorter headline.`

	r := parseReview(text)
	assert.Empty(t, r.Violations)
	assert.Equal(t, "Looks compliant; consider a shorter headline.", r.Recommendations)
}

func TestParseReviewUnstructured(t *testing.T) {
	r := parseReview("The model went off script and returned prose.")
	assert.Empty(t, r.Violations)
	assert.Empty(t, r.Recommendations)
	assert.Equal(t, "The model went off script and returned prose.", r.Raw)
}

func TestBuildReviewPromptListsRules(t *testing.T) {
	rules := []*models.Rule{
		{RuleText: `Content must not contain "guaranteed returns"`, Severity: models.SeverityHard},
		{RuleText: "Maintain a professional tone", Severity: models.SeveritySoft},
	}

	prompt := buildReviewPrompt("some content", rules)
	assert.Contains(t, prompt, `1. [HARD] Content must not contain "guaranteed returns"`)
	assert.Contains(t, prompt, "2. [SOFT] Maintain a professional tone")
	assert.Contains(t, prompt, "GENERATED CONTENT:\nsome content")
	assert.Contains(t, prompt, "VIOLATIONS:")
	assert.Contains(t, prompt, "RECOMMENDATIONS:")
}

func TestEmptyReview(t *testing.T) {
	r := EmptyReview()
	assert.Empty(t, r.Violations)
	assert.Equal(t, "AI review unavailable", r.Recommendations)
}

func TestReviewAgainstStubServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"VIOLATIONS:\nNONE\n\nRECOMMENDATIONS:\nAll good."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	review, err := c.Review(context.Background(), "content", nil)
	require.NoError(t, err)
	assert.Empty(t, review.Violations)
	assert.Equal(t, "All good.", review.Recommendations)
}

func TestReviewServerErrorExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, MaxRetries: 2, RetryDelay: time.Millisecond}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Review(context.Background(), "content", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCollaborator)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{}, zap.NewNop())
	assert.Error(t, err)
}
