// Package api is the HTTP client for the analytics backend. Read
// operations (snapshot, intelligence) absorb transport and parse
// failures into a nil result so rendering code has a single fallback
// path; action operations (sync, question) propagate errors because
// the caller needs to distinguish success from failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"adpulse/internal/insight"
)

// Client talks to the analytics backend over same-origin HTTP JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a backend client. Intelligence and question calls
// can take many seconds, so the timeout should be generous.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type latestInsightResponse struct {
	Status  string            `json:"status"`
	Insight *insight.Snapshot `json:"insight"`
}

// FetchLatestSnapshot gets the most recent analysis result. "No data
// yet" and transport/parse failure both yield nil: the caller shows
// the empty state either way.
func (c *Client) FetchLatestSnapshot(ctx context.Context) *insight.Snapshot {
	var out latestInsightResponse
	if err := c.getJSON(ctx, "/insights/latest", &out); err != nil {
		c.logger.Warn("fetching latest snapshot", "error", err)
		return nil
	}
	if out.Status != "success" || out.Insight == nil {
		return nil
	}
	return out.Insight
}

type intelligenceResponse struct {
	Status         string                         `json:"status"`
	HeroLines      []string                       `json:"hero_lines"`
	CardInsights   map[string]insight.CardInsight `json:"card_insights"`
	StrategicMoves []insight.StrategicMove        `json:"strategic_moves"`
}

// FetchIntelligence requests generative enrichment for the latest
// snapshot. A "partial" status is still useful to render, so it is
// accepted alongside "success"; anything else yields nil.
func (c *Client) FetchIntelligence(ctx context.Context) *insight.Intelligence {
	var out intelligenceResponse
	if err := c.postJSON(ctx, "/generate-intelligence", map[string]any{}, &out); err != nil {
		c.logger.Warn("fetching intelligence", "error", err)
		return nil
	}
	if out.Status != "success" && out.Status != "partial" {
		return nil
	}
	return &insight.Intelligence{
		HeroLines:      out.HeroLines,
		CardInsights:   out.CardInsights,
		StrategicMoves: out.StrategicMoves,
	}
}

// SyncResult is the backend's response to a sync trigger.
type SyncResult struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// TriggerSync asks the backend to re-fetch and re-analyze the given
// date range. Errors propagate: the sync control needs to show a
// retry affordance on failure.
func (c *Client) TriggerSync(ctx context.Context, dateRange string, force bool) (*SyncResult, error) {
	body := map[string]any{"date_range": dateRange, "force": force}
	var out SyncResult
	if err := c.postJSON(ctx, "/run-analysis", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type summaryResponse struct {
	Summary string `json:"summary"`
	Detail  string `json:"detail"`
}

// AskQuestion sends a free-text question about the current data.
// The answer comes from the summary field, falling back to the detail
// field, falling back to a fixed placeholder. The backend reports
// generation failures as HTTP 500 with the message in detail, and that
// text is still the answer to show, so the body is decoded regardless
// of status; only transport failures return an error.
func (c *Client) AskQuestion(ctx context.Context, question string) (string, error) {
	buf, err := json.Marshal(map[string]any{"question": question})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate-summary", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var out summaryResponse
	if err := json.Unmarshal(data, &out); err == nil {
		if out.Summary != "" {
			return out.Summary, nil
		}
		if out.Detail != "" {
			return out.Detail, nil
		}
	}
	return "No response.", nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// FastAPI-style error payloads carry a detail message.
		var e struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(data, &e) == nil && e.Detail != "" {
			return fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, e.Detail)
		}
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}
