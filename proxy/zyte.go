package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Zyte fetches pages through the Zyte API with browser rendering enabled.
type Zyte struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

var _ Provider = (*Zyte)(nil)

// NewZyte creates a Zyte client.
func NewZyte(endpoint, apiKey string, timeout time.Duration) *Zyte {
	return &Zyte{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   newProxyClient(timeout),
	}
}

func (z *Zyte) Name() string { return "zyte" }

// zyteQuery is the extraction API request payload.
type zyteQuery struct {
	URL         string `json:"url"`
	BrowserHTML bool   `json:"browserHtml"`
}

// zyteResponse is the subset of the extraction API response we read.
type zyteResponse struct {
	BrowserHTML string `json:"browserHtml"`
}

func (z *Zyte) Fetch(ctx context.Context, url string) (string, error) {
	payload, err := json.Marshal(zyteQuery{URL: url, BrowserHTML: true})
	if err != nil {
		return "", fmt.Errorf("zyte: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("zyte: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// The API key is the basic auth username; the password stays empty.
	req.SetBasicAuth(z.apiKey, "")

	resp, err := z.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("zyte: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("zyte: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyBody))
	if err != nil {
		return "", fmt.Errorf("zyte: read body: %w", err)
	}

	var parsed zyteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("zyte: decode response: %w", err)
	}
	if parsed.BrowserHTML == "" {
		return "", fmt.Errorf("zyte: empty browser html")
	}
	return parsed.BrowserHTML, nil
}
