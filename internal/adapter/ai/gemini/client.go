// Package gemini implements domain.AIClient on the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"

	"github.com/firstroundai/interviewd/internal/adapter/observability"
	"github.com/firstroundai/interviewd/internal/config"
	"github.com/firstroundai/interviewd/internal/domain"
)

// Client calls the Gemini API through the official GenAI SDK.
type Client struct {
	cfg    config.Config
	client *genai.Client
}

// New constructs a Gemini client configured for the Gemini API backend.
func New(ctx context.Context, cfg config.Config) (*Client, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY missing", domain.ErrInvalidArgument)
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("op=gemini.new: %w", err)
	}
	return &Client{cfg: cfg, client: gc}, nil
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string { return "gemini" }

// ChatJSON sends the prompt pair to Gemini and concatenates the textual
// parts of the first response. 429/5xx are retried; other 4xx are permanent.
func (c *Client) ChatJSON(ctx domain.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		Temperature:       genai.Ptr[float32](0.2),
		MaxOutputTokens:   int32(maxTokens),
	}

	var result string
	op := func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.AIRequestTimeout)
		defer cancel()
		start := time.Now()
		resp, err := c.client.Models.GenerateContent(callCtx, c.cfg.GeminiModel, genai.Text(userPrompt), genCfg)
		observability.AIRequestsTotal.WithLabelValues("gemini", "chat").Inc()
		observability.AIRequestDuration.WithLabelValues("gemini", "chat").Observe(time.Since(start).Seconds())
		if err != nil {
			var apiErr genai.APIError
			if errors.As(err, &apiErr) {
				if apiErr.Code == http.StatusTooManyRequests {
					slog.Warn("ai provider rate limited", slog.String("provider", "gemini"), slog.Int("status", apiErr.Code))
					return err
				}
				if apiErr.Code >= 400 && apiErr.Code < 500 {
					slog.Warn("ai provider 4xx", slog.String("provider", "gemini"), slog.Int("status", apiErr.Code), slog.String("status_text", apiErr.Status))
					return backoff.Permanent(err)
				}
			}
			return err
		}

		var b strings.Builder
		for _, cand := range resp.Candidates {
			if cand == nil || cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part == nil || strings.TrimSpace(part.Text) == "" {
					continue
				}
				if b.Len() > 0 {
					b.WriteString("\n")
				}
				b.WriteString(strings.TrimSpace(part.Text))
			}
		}
		result = strings.TrimSpace(b.String())
		if result == "" {
			return backoff.Permanent(errors.New("empty response"))
		}
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	maxElapsed, initial, maxIvl, mult := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsed
	expo.InitialInterval = initial
	expo.MaxInterval = maxIvl
	expo.Multiplier = mult

	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		return "", fmt.Errorf("op=gemini.chat: %w: %w", domain.ErrUpstream, err)
	}
	return result, nil
}
