// Package sentiment integrates the external text-classification oracle that
// assigns initial complaint priority. The oracle is consumed as-is; callers
// own the degrade path when it is unreachable.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/campuscare/complaint-service/internal/domain"
	"github.com/campuscare/complaint-service/internal/observability"
)

// Result is the oracle response for a piece of text.
type Result struct {
	Sentiment       domain.Sentiment         `json:"sentiment"`
	Confidence      float64                  `json:"confidence"`
	Priority        domain.ComplaintPriority `json:"priority"`
	UrgencyKeywords []string                 `json:"urgencyKeywords"`
}

// Analyzer classifies free text. Implementations must honor the context
// deadline; callers never wait past it.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*Result, error)
}

// Client calls the oracle's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client with a bounded call timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

// Analyze posts text to the /analyze endpoint. Any transport failure, non-2xx
// status, or malformed body is returned as an error; the caller degrades.
func (c *Client) Analyze(ctx context.Context, text string) (*Result, error) {
	start := time.Now()
	result, err := c.analyze(ctx, text)
	observability.RecordSentimentCall(err == nil, time.Since(start))
	return result, err
}

func (c *Client) analyze(ctx context.Context, text string) (*Result, error) {
	body, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sentiment oracle returned status %d: %s", resp.StatusCode, string(payload))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
