package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/longform-dev/longform/cache"
	"github.com/longform-dev/longform/config"
	"github.com/longform-dev/longform/extractor"
	"github.com/longform-dev/longform/fallback"
	"github.com/longform-dev/longform/models"
	"github.com/longform-dev/longform/proxy"
	"github.com/longform-dev/longform/webhook"
)

const testKey = "test-key"

// stubProvider serves a canned rendered page without any network traffic.
type stubProvider struct {
	name string
	html string
	err  error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(ctx context.Context, url string) (string, error) {
	return s.html, s.err
}

func articlePage() string {
	body := strings.Repeat("The council approved the transit plan after a long public hearing. ", 5)
	return `<!DOCTYPE html>
<html><head><title>t</title></head><body>
<header><h1>City Approves Transit Plan</h1>
<span class="author">Jane Doe</span>
<time datetime="2024-03-14T09:00:00Z">March 14, 2024</time></header>
<article><p>` + body + `</p></article>
</body></html>`
}

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		Auth:      config.AuthConfig{Enabled: true, APIKeys: []string{testKey}},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
		Batch:     config.BatchConfig{Concurrency: 2},
	}
}

func testRouter(t *testing.T, p proxy.Provider, cfg *config.Config, cc *cache.Cache) *gin.Engine {
	t.Helper()
	fb, err := fallback.New("trafilatura")
	if err != nil {
		t.Fatalf("fallback.New: %v", err)
	}
	return NewRouter(extractor.New(proxy.NewRegistry(p), fb), cfg, cc)
}

// doJSON performs one request against the router. body may be a raw string
// or any JSON-marshalable value; an empty apiKey sends no credentials.
func doJSON(t *testing.T, r *gin.Engine, method, path, apiKey string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestRouter_HealthNoAuth(t *testing.T) {
	r := testRouter(t, &stubProvider{name: "zyte", html: articlePage()}, testConfig(), nil)

	w := doJSON(t, r, http.MethodGet, "/api/v1/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var health models.HealthResponse
	decodeInto(t, w, &health)
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}
	if len(health.Providers) != 1 || health.Providers[0] != "zyte" {
		t.Errorf("providers = %v, want [zyte]", health.Providers)
	}
	if health.Fallback != "trafilatura" {
		t.Errorf("fallback = %q, want trafilatura", health.Fallback)
	}
}

func TestRouter_ExtractRequiresAuth(t *testing.T) {
	r := testRouter(t, &stubProvider{name: "zyte", html: articlePage()}, testConfig(), nil)
	body := map[string]any{"url": "https://news.example.com/story"}

	tests := []struct {
		name     string
		key      string
		wantCode int
	}{
		{"no key", "", http.StatusUnauthorized},
		{"wrong key", "nope", http.StatusUnauthorized},
		{"valid key", testKey, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/extract", tt.key, body)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantCode == http.StatusUnauthorized {
				var er models.ErrorResponse
				decodeInto(t, w, &er)
				if er.ErrorCode != models.ErrCodeUnauthorized {
					t.Errorf("error_code = %q, want %s", er.ErrorCode, models.ErrCodeUnauthorized)
				}
			}
		})
	}
}

func TestRouter_ExtractBearerToken(t *testing.T) {
	r := testRouter(t, &stubProvider{name: "zyte", html: articlePage()}, testConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract",
		strings.NewReader(`{"url":"https://news.example.com/story"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testKey)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestRouter_ExtractSuccess(t *testing.T) {
	r := testRouter(t, &stubProvider{name: "zyte", html: articlePage()}, testConfig(), nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/extract", testKey,
		map[string]any{"url": "https://news.example.com/story"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp models.ExtractResponse
	decodeInto(t, w, &resp)
	if resp.Title != "City Approves Transit Plan" {
		t.Errorf("title = %q", resp.Title)
	}
	if !strings.Contains(resp.Text, "approved the transit plan") {
		t.Errorf("text missing article body: %.120s", resp.Text)
	}
	if resp.Method != "zyte" {
		t.Errorf("method = %q, want zyte", resp.Method)
	}
	if resp.Error != "" || resp.ErrorCode != "" {
		t.Errorf("unexpected error: %s (%s)", resp.Error, resp.ErrorCode)
	}
	if resp.CacheStatus != "" {
		t.Errorf("cache_status = %q, want empty without max_age", resp.CacheStatus)
	}
}

func TestRouter_ExtractValidation(t *testing.T) {
	r := testRouter(t, &stubProvider{name: "zyte", html: articlePage()}, testConfig(), nil)

	tests := []struct {
		name string
		body any
	}{
		{"missing url", map[string]any{"provider": "zyte"}},
		{"not a url", map[string]any{"url": "not a url"}},
		{"bad output format", map[string]any{"url": "https://news.example.com/story", "output_format": "pdf"}},
		{"malformed json", `{"url": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/extract", testKey, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
			}
			var er models.ErrorResponse
			decodeInto(t, w, &er)
			if er.ErrorCode != models.ErrCodeInvalidInput {
				t.Errorf("error_code = %q, want %s", er.ErrorCode, models.ErrCodeInvalidInput)
			}
		})
	}
}

func TestRouter_ExtractUnknownProvider(t *testing.T) {
	r := testRouter(t, &stubProvider{name: "zyte", html: articlePage()}, testConfig(), nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/extract", testKey,
		map[string]any{"url": "https://news.example.com/story", "provider": "splash"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}

	var resp models.ExtractResponse
	decodeInto(t, w, &resp)
	if resp.ErrorCode != models.ErrCodeInvalidProvider {
		t.Errorf("error_code = %q, want %s", resp.ErrorCode, models.ErrCodeInvalidProvider)
	}
	if resp.Error != "Invalid proxy provider: splash" {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.URL != "https://news.example.com/story" {
		t.Errorf("url = %q, want original echoed back", resp.URL)
	}
}

func TestRouter_ExtractProxyDown(t *testing.T) {
	r := testRouter(t, &stubProvider{name: "zyte", err: errors.New("dial timeout")}, testConfig(), nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/extract", testKey,
		map[string]any{"url": "https://news.example.com/story"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502: %s", w.Code, w.Body.String())
	}

	var resp models.ExtractResponse
	decodeInto(t, w, &resp)
	if resp.ErrorCode != models.ErrCodeProxyUnavailable {
		t.Errorf("error_code = %q, want %s", resp.ErrorCode, models.ErrCodeProxyUnavailable)
	}
	if resp.Error != "No response from proxy" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestRouter_ExtractCacheFlow(t *testing.T) {
	r := testRouter(t, &stubProvider{name: "zyte", html: articlePage()}, testConfig(), cache.New(10))
	body := map[string]any{"url": "https://news.example.com/story", "max_age": 3600}

	w := doJSON(t, r, http.MethodPost, "/api/v1/extract", testKey, body)
	if w.Code != http.StatusOK {
		t.Fatalf("first request status = %d: %s", w.Code, w.Body.String())
	}
	var first models.ExtractResponse
	decodeInto(t, w, &first)
	if first.CacheStatus != "miss" {
		t.Errorf("first cache_status = %q, want miss", first.CacheStatus)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/extract", testKey, body)
	if w.Code != http.StatusOK {
		t.Fatalf("second request status = %d: %s", w.Code, w.Body.String())
	}
	var second models.ExtractResponse
	decodeInto(t, w, &second)
	if second.CacheStatus != "hit" {
		t.Errorf("second cache_status = %q, want hit", second.CacheStatus)
	}
	if second.Text != first.Text {
		t.Error("cached text differs from original")
	}
}

func TestRouter_BatchLifecycle(t *testing.T) {
	r := testRouter(t, &stubProvider{name: "zyte", html: articlePage()}, testConfig(), nil)
	urls := []string{
		"https://news.example.com/story-one",
		"https://news.example.com/story-two",
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/batch/extract", testKey,
		map[string]any{"urls": urls})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var job models.BatchResponse
	decodeInto(t, w, &job)
	if !strings.HasPrefix(job.ID, "batch-") {
		t.Errorf("job id = %q, want batch- prefix", job.ID)
	}
	if job.Status != "processing" {
		t.Errorf("initial status = %q, want processing", job.Status)
	}
	if job.Total != 2 {
		t.Errorf("total = %d, want 2", job.Total)
	}

	// The job runs in background goroutines; poll until it settles.
	var status models.BatchStatusResponse
	deadline := time.Now().Add(5 * time.Second)
	for {
		w = doJSON(t, r, http.MethodGet, "/api/v1/batch/"+job.ID, testKey, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("poll status = %d: %s", w.Code, w.Body.String())
		}
		decodeInto(t, w, &status)
		if status.Status != "processing" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job still processing after 5s: %+v", status)
		}
		time.Sleep(20 * time.Millisecond)
	}

	if status.Status != "completed" {
		t.Fatalf("final status = %q, want completed", status.Status)
	}
	if status.Completed != 2 || len(status.Results) != 2 {
		t.Fatalf("completed = %d, results = %d, want 2/2", status.Completed, len(status.Results))
	}
	for i, res := range status.Results {
		if res == nil || res.URL != urls[i] {
			t.Fatalf("result %d out of order: %+v", i, res)
		}
	}

	// Both pages carry identical text, so the second is a near-duplicate.
	if status.Results[0].DuplicateOf != "" {
		t.Errorf("first result marked duplicate of %q", status.Results[0].DuplicateOf)
	}
	if status.Results[1].DuplicateOf != urls[0] {
		t.Errorf("duplicate_of = %q, want %s", status.Results[1].DuplicateOf, urls[0])
	}
}

func TestRouter_BatchValidation(t *testing.T) {
	r := testRouter(t, &stubProvider{name: "zyte", html: articlePage()}, testConfig(), nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/batch/extract", testKey,
		map[string]any{"urls": []string{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
	var er models.ErrorResponse
	decodeInto(t, w, &er)
	if er.ErrorCode != models.ErrCodeInvalidInput {
		t.Errorf("error_code = %q, want %s", er.ErrorCode, models.ErrCodeInvalidInput)
	}
}

func TestRouter_BatchWebhook(t *testing.T) {
	type capture struct {
		signature string
		body      []byte
	}
	got := make(chan capture, 1)
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- capture{signature: r.Header.Get("X-Longform-Signature"), body: body}
	}))
	defer sink.Close()

	r := testRouter(t, &stubProvider{name: "zyte", html: articlePage()}, testConfig(), nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/batch/extract", testKey, map[string]any{
		"urls":           []string{"https://news.example.com/story"},
		"webhook_url":    sink.URL,
		"webhook_secret": "hook-secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var job models.BatchResponse
	decodeInto(t, w, &job)

	select {
	case hit := <-got:
		want := "sha256=" + webhook.Signature("hook-secret", hit.body)
		if hit.signature != want {
			t.Errorf("signature = %q, want %q", hit.signature, want)
		}
		var event webhook.Event
		if err := json.Unmarshal(hit.body, &event); err != nil {
			t.Fatalf("decode event %q: %v", hit.body, err)
		}
		if event.Type != "batch.completed" {
			t.Errorf("event type = %q, want batch.completed", event.Type)
		}
		if event.JobID != job.ID {
			t.Errorf("event job_id = %q, want %s", event.JobID, job.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no webhook delivered within 5s")
	}
}

func TestRouter_BatchUnknownJob(t *testing.T) {
	r := testRouter(t, &stubProvider{name: "zyte", html: articlePage()}, testConfig(), nil)

	w := doJSON(t, r, http.MethodGet, "/api/v1/batch/batch-does-not-exist", testKey, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
	var er models.ErrorResponse
	decodeInto(t, w, &er)
	if er.ErrorCode != models.ErrCodeNotFound {
		t.Errorf("error_code = %q, want %s", er.ErrorCode, models.ErrCodeNotFound)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}
	r := testRouter(t, &stubProvider{name: "zyte", html: articlePage()}, cfg, nil)
	body := map[string]any{"url": "https://news.example.com/story"}

	if w := doJSON(t, r, http.MethodPost, "/api/v1/extract", testKey, body); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200: %s", w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/extract", testKey, body)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429: %s", w.Code, w.Body.String())
	}
	var er models.ErrorResponse
	decodeInto(t, w, &er)
	if er.ErrorCode != models.ErrCodeRateLimited {
		t.Errorf("error_code = %q, want %s", er.ErrorCode, models.ErrCodeRateLimited)
	}
}
