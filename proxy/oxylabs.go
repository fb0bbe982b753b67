package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Oxylabs fetches pages through the Oxylabs realtime scraper API, which
// renders JavaScript remotely and returns the final HTML.
type Oxylabs struct {
	endpoint string
	username string
	password string
	geo      string
	client   *http.Client
}

var _ Provider = (*Oxylabs)(nil)

// NewOxylabs creates an Oxylabs client. timeout bounds the whole fetch, body
// read included; the realtime API can take minutes on heavy pages.
func NewOxylabs(endpoint, username, password, geo string, timeout time.Duration) *Oxylabs {
	return &Oxylabs{
		endpoint: endpoint,
		username: username,
		password: password,
		geo:      geo,
		client:   newProxyClient(timeout),
	}
}

func (o *Oxylabs) Name() string { return "oxylabs" }

// oxylabsQuery is the realtime API request payload.
type oxylabsQuery struct {
	Source      string `json:"source"`
	URL         string `json:"url"`
	GeoLocation string `json:"geo_location"`
	Render      string `json:"render"`
}

// oxylabsResponse is the subset of the realtime API response we read.
type oxylabsResponse struct {
	Results []struct {
		Content string `json:"content"`
	} `json:"results"`
}

func (o *Oxylabs) Fetch(ctx context.Context, url string) (string, error) {
	// The realtime API rejects scheme-less URLs.
	if !strings.Contains(url, "http://") && !strings.Contains(url, "https://") {
		url = "https://" + url
	}

	payload, err := json.Marshal(oxylabsQuery{
		Source:      "universal",
		URL:         url,
		GeoLocation: o.geo,
		Render:      "html",
	})
	if err != nil {
		return "", fmt.Errorf("oxylabs: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("oxylabs: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(o.username, o.password)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("oxylabs: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oxylabs: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyBody))
	if err != nil {
		return "", fmt.Errorf("oxylabs: read body: %w", err)
	}

	var parsed oxylabsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("oxylabs: decode response: %w", err)
	}
	if len(parsed.Results) == 0 || parsed.Results[0].Content == "" {
		return "", fmt.Errorf("oxylabs: empty result")
	}
	return parsed.Results[0].Content, nil
}
