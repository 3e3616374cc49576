package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"unipick/backend/internal/models"
)

// Client wraps the OpenAI moderation endpoint.
//
// Classify never fails open: when the backend is not configured or a call
// errors out for any reason (transport, non-200, bad JSON, timeout), the
// returned report is flagged with a sentinel category so the content lands
// in the human review queue instead of auto-publishing. A failed call is a
// meaningful signal in itself, so there are no internal retries either.
type Client struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config for the moderation client.
type Config struct {
	APIKey    string
	ModelName string // Default: "omni-moderation-latest"
	Timeout   time.Duration
}

// moderationRequest represents the request to the moderation endpoint.
type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// moderationResponse represents the response from the moderation endpoint.
type moderationResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Results []struct {
		Flagged        bool               `json:"flagged"`
		Categories     map[string]bool    `json:"categories"`
		CategoryScores map[string]float64 `json:"category_scores"`
	} `json:"results"`
}

// NewClient creates a new moderation client. An empty API key is allowed:
// the client stays usable and every Classify call degrades to the
// fail-closed report.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.ModelName == "" {
		cfg.ModelName = "omni-moderation-latest"
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	if cfg.APIKey == "" {
		logger.Warn("OpenAI API key is not configured, all content will be routed to manual review")
	} else {
		logger.Info("Moderation client initialized", zap.String("model", cfg.ModelName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    "https://api.openai.com/v1",
		modelName:  cfg.ModelName,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// failClosed builds the report used whenever the classifier cannot produce a
// confident answer. max_score 0.5 places these above the auto-approve band
// without tripping auto-reject.
func failClosed(category string, err error) *models.ScoreReport {
	return &models.ScoreReport{
		Flagged:    true,
		Categories: models.CategoryFlags{category: true},
		Scores:     models.CategoryScores{category: 0.5},
		MaxScore:   0.5,
		Err:        err.Error(),
	}
}

// Classify runs one moderation pass over the given text. The returned report
// is never nil; check report.Err to tell a degraded result from a real one.
func (c *Client) Classify(ctx context.Context, text string) *models.ScoreReport {
	if c.apiKey == "" {
		return failClosed("unavailable", fmt.Errorf("moderation backend not configured"))
	}

	reqBody := moderationRequest{
		Model: c.modelName,
		Input: text,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return failClosed("error", fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/moderations", bytes.NewBuffer(jsonData))
	if err != nil {
		return failClosed("error", fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Moderation API error", zap.Error(err))
		return failClosed("unavailable", fmt.Errorf("moderation API error: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failClosed("error", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Moderation API error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return failClosed("unavailable", fmt.Errorf("moderation API returned status %d", resp.StatusCode))
	}

	var modResp moderationResponse
	if err := json.Unmarshal(body, &modResp); err != nil {
		c.logger.Error("Failed to parse moderation response",
			zap.Error(err),
			zap.String("body", string(body)))
		return failClosed("error", fmt.Errorf("failed to parse response: %w", err))
	}

	if len(modResp.Results) == 0 {
		return failClosed("error", fmt.Errorf("empty response from moderation API"))
	}

	result := modResp.Results[0]

	report := &models.ScoreReport{
		Flagged:    result.Flagged,
		Categories: models.CategoryFlags{},
		Scores:     models.CategoryScores{},
	}

	for category, flagged := range result.Categories {
		report.Categories[category] = flagged
	}

	for category, score := range result.CategoryScores {
		report.Scores[category] = score
		if score > report.MaxScore {
			report.MaxScore = score
		}
	}

	c.logger.Debug("Text classified",
		zap.Bool("flagged", report.Flagged),
		zap.Float64("max_score", report.MaxScore))

	return report
}
