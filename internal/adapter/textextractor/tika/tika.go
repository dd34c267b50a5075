// Package tika extracts plain text from uploaded resumes via an Apache Tika
// server. Plain-text uploads bypass the server entirely, and any extraction
// failure degrades to a filename placeholder instead of an error so the
// pipeline downstream always has something to work with.
package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/firstroundai/interviewd/internal/domain"
	"github.com/firstroundai/interviewd/pkg/textx"
)

// PlaceholderPrefix marks text that came from the filename fallback rather
// than real extraction. The extraction pipeline treats such documents as
// degenerate.
const PlaceholderPrefix = "Resume extracted from"

// Client is a minimal Apache Tika HTTP client implementing
// domain.TextExtractor. It performs PUT /tika with Accept: text/plain.
// See: https://tika.apache.org/server/ for API details.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a Tika client with a default timeout.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Extract returns best-effort plain text for the uploaded bytes. It never
// returns an error for extraction failures; the placeholder document stands
// in when the server is unreachable or returns garbage.
func (c *Client) Extract(ctx context.Context, data []byte, mimeType, filename string) (string, error) {
	if strings.HasPrefix(mimeType, "text/plain") {
		return textx.NormalizeLines(textx.SanitizeText(string(data))), nil
	}

	text, err := c.extractRemote(ctx, data, mimeType)
	if err != nil {
		slog.Warn("tika extraction failed, using filename placeholder",
			slog.String("filename", filename), slog.Any("error", err))
		return Placeholder(filename), nil
	}
	if strings.TrimSpace(text) == "" {
		return Placeholder(filename), nil
	}
	return text, nil
}

// Placeholder builds the degenerate document used when no text could be
// extracted.
func Placeholder(filename string) string {
	return fmt.Sprintf("%s %s. Candidate name: %s.", PlaceholderPrefix, filename, textx.NameFromFilename(filename))
}

func (c *Client) extractRemote(ctx context.Context, data []byte, mimeType string) (string, error) {
	u := c.baseURL
	if u == "" {
		u = "http://localhost:9998"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")
	if mimeType != "" {
		req.Header.Set("Content-Type", mimeType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("tika status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return textx.NormalizeLines(textx.SanitizeText(string(b))), nil
}

var _ domain.TextExtractor = (*Client)(nil)
