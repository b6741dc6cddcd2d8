// Package ocr talks to the externally deployed OCR service. The service is
// unreliable by contract: callers must treat timeouts, transport errors and
// empty responses as "no text", never as a pipeline failure.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// RecognizeResult mirrors the service response: the full recognized text
// with form-feed page separators, and one confidence per page.
type RecognizeResult struct {
	Text            string    `json:"text"`
	PageConfidences []float32 `json:"confidence_per_page"`
}

// Client is the consumed interface; fakes implement it in tests.
type Client interface {
	Recognize(ctx context.Context, data []byte) (RecognizeResult, error)
}

type Config struct {
	BaseURL string        // e.g. http://ocr.internal:9090
	APIKey  string        // optional bearer token
	Timeout time.Duration // per-request, default 60s
}

type HTTPClient struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewHTTPClient(cfg Config, logger *slog.Logger) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *HTTPClient) Recognize(ctx context.Context, data []byte) (RecognizeResult, error) {
	start := time.Now()
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/recognize"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return RecognizeResult{}, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("ocr.recognize.http_error",
			"error", err,
			"bytes", len(data),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return RecognizeResult{}, fmt.Errorf("ocr http error: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("ocr response body close error", "error", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		c.logger.Warn("ocr.recognize.bad_status", "status", resp.StatusCode, "body", string(body))
		return RecognizeResult{}, fmt.Errorf("ocr status %d", resp.StatusCode)
	}

	var out RecognizeResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return RecognizeResult{}, fmt.Errorf("decode ocr response: %w", err)
	}

	c.logger.Debug("ocr.recognize.ok",
		"bytes", len(data),
		"text_len", len(out.Text),
		"pages", len(out.PageConfidences),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// Page is one page of a recognize result after splitting.
type Page struct {
	Text       string
	Confidence float32
}

// SplitPages pairs the form-feed-separated text with the per-page
// confidence signal. Missing confidences default to zero; surplus text
// segments beyond the confidence slice keep a zero score as well.
func SplitPages(res RecognizeResult) []Page {
	if strings.TrimSpace(res.Text) == "" && len(res.PageConfidences) == 0 {
		return nil
	}
	segs := strings.Split(res.Text, "\f")
	n := len(segs)
	if len(res.PageConfidences) > n {
		n = len(res.PageConfidences)
	}
	pages := make([]Page, n)
	for i := 0; i < n; i++ {
		if i < len(segs) {
			pages[i].Text = segs[i]
		}
		if i < len(res.PageConfidences) {
			pages[i].Confidence = res.PageConfidences[i]
		}
	}
	return pages
}
