package review_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"backend/internal/apperrors"
	"backend/internal/models"

	"go.uber.org/zap"
)

const reviewSystemPrompt = "You are a strict compliance reviewer for regulated financial/insurance content. " +
	"Your job is to identify rule violations, not to approve content. Be thorough and precise."

// Finding is one violation flagged by the AI reviewer. Findings are advisory
// only and never change the enforcement decision.
type Finding struct {
	Description string `json:"description"`
	Source      string `json:"source"`
}

// Review is the structured result of an AI compliance review.
type Review struct {
	Violations      []Finding `json:"violations"`
	Recommendations string    `json:"recommendations"`
	Raw             string    `json:"raw_review"`
}

// EmptyReview is the stand-in used when the reviewer is unavailable or fails.
func EmptyReview() *Review {
	return &Review{Violations: []Finding{}, Recommendations: "AI review unavailable"}
}

// Client calls the Groq chat-completions API for advisory compliance review.
type Client struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

// Config for the review client.
type Config struct {
	APIKey     string
	BaseURL    string // Default: "https://api.groq.com/openai/v1"
	ModelName  string // Default: "llama-3.1-70b-versatile"
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// NewClient creates a new Groq review client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}

	if cfg.ModelName == "" {
		cfg.ModelName = "llama-3.1-70b-versatile"
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger.Info("Groq review client initialized",
		zap.String("model", cfg.ModelName),
		zap.Int("max_retries", cfg.MaxRetries))

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		modelName:  cfg.ModelName,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Review sends content and the active rules to Groq and parses the reply.
func (c *Client) Review(ctx context.Context, content string, rules []*models.Rule) (*Review, error) {
	prompt := buildReviewPrompt(content, rules)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying Groq request",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries))
			time.Sleep(c.retryDelay)
		}

		reqBody := chatRequest{
			Model: c.modelName,
			Messages: []chatMessage{
				{Role: "system", Content: reviewSystemPrompt},
				{Role: "user", Content: prompt},
			},
			Stream:      false,
			Temperature: 0.1,
			MaxTokens:   2000,
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			lastErr = fmt.Errorf("failed to marshal request: %w", err)
			continue
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("groq API error: %w", err)
			c.logger.Error("Groq API error", zap.Error(err), zap.Int("attempt", attempt+1))
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("groq API returned status %d: %s", resp.StatusCode, string(body))
			c.logger.Error("Groq API error",
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)),
				zap.Int("attempt", attempt+1))
			continue
		}

		var chatResp chatResponse
		if err := json.Unmarshal(body, &chatResp); err != nil {
			lastErr = fmt.Errorf("failed to parse response: %w", err)
			c.logger.Error("Failed to parse JSON response",
				zap.Error(err),
				zap.String("body", string(body)),
				zap.Int("attempt", attempt+1))
			continue
		}

		if len(chatResp.Choices) == 0 {
			lastErr = fmt.Errorf("empty response from groq")
			c.logger.Error("Empty response from Groq", zap.Int("attempt", attempt+1))
			continue
		}

		review := parseReview(chatResp.Choices[0].Message.Content)
		c.logger.Info("Review complete",
			zap.Int("violations", len(review.Violations)),
			zap.Int("attempt", attempt+1))
		return review, nil
	}

	return nil, apperrors.Collaboratorf("compliance review failed after %d attempts: %v", c.maxRetries, lastErr)
}

func buildReviewPrompt(content string, rules []*models.Rule) string {
	var rulesText strings.Builder
	for i, r := range rules {
		fmt.Fprintf(&rulesText, "%d. [%s] %s\n", i+1, strings.ToUpper(string(r.Severity)), r.RuleText)
	}

	return fmt.Sprintf(`Review the following generated content against compliance rules.

COMPLIANCE RULES:
%s
GENERATED CONTENT:
%s

INSTRUCTIONS:
1. Check the content against EACH rule
2. Identify ANY violations (even minor ones)
3. For each violation, specify:
   - Which rule was violated
   - The specific text that violates the rule
   - Why it's a violation
4. Provide your analysis in this exact format:

VIOLATIONS:
[If violations found, list each as: "Rule X: [reason] - Violated text: [quote]"]
[If no violations, write: "NONE"]

RECOMMENDATIONS:
[Suggest improvements even if no violations found]

Be strict and thorough. When in doubt, flag it as a violation.
`, rulesText.String(), content)
}

// parseReview extracts the VIOLATIONS and RECOMMENDATIONS sections from the
// reviewer's free-text reply. Replies without both sections yield an empty
// result with the raw text preserved.
func parseReview(reviewText string) *Review {
	result := &Review{Violations: []Finding{}, Raw: reviewText}

	sections := strings.SplitN(reviewText, "RECOMMENDATIONS:", 2)
	if len(sections) < 2 {
		return result
	}
	result.Recommendations = strings.TrimSpace(sections[1])

	violationsSection := sections[0]
	idx := strings.Index(violationsSection, "VIOLATIONS:")
	if idx == -1 {
		return result
	}

	violationsText := strings.TrimSpace(violationsSection[idx+len("VIOLATIONS:"):])
	if violationsText == "" || strings.EqualFold(violationsText, "NONE") {
		return result
	}

	for _, line := range strings.Split(violationsText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "RECOMMENDATIONS") {
			continue
		}
		result.Violations = append(result.Violations, Finding{
			Description: line,
			Source:      "groq_review",
		})
	}

	return result
}
