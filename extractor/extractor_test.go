package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/longform-dev/longform/fallback"
	"github.com/longform-dev/longform/models"
	"github.com/longform-dev/longform/proxy"
)

type stubProvider struct {
	name string
	html string
	err  error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(_ context.Context, _ string) (string, error) {
	return s.html, s.err
}

type stubFallback struct {
	res *fallback.Result
	err error
}

func (s *stubFallback) Name() string { return "stub" }

func (s *stubFallback) Extract(_, _, _ string) (*fallback.Result, error) {
	return s.res, s.err
}

func articleBody(sentence string) string {
	return strings.TrimSpace(strings.Repeat(sentence+" ", 5))
}

const fixtureURL = "https://news.example.com/story"

func newTestExtractor(html string, fetchErr error, fb fallback.Extractor) *Extractor {
	reg := proxy.NewRegistry(&stubProvider{name: "zyte", html: html, err: fetchErr})
	return New(reg, fb)
}

func TestExtract_Success(t *testing.T) {
	body := articleBody("City council approved the downtown transit plan after public hearings.")
	page := `<!DOCTYPE html><html><head><title>tab title</title></head><body>` +
		`<h1>Title Text</h1>` +
		`<div class="byline">Jane Doe</div>` +
		`<time datetime="2024-03-14T09:00:00Z">March 14, 2024</time>` +
		`<article>` + body + `</article>` +
		`<div id="advertisement-unit">BUY THINGS</div>` +
		`</body></html>`

	ex := newTestExtractor(page, nil, &stubFallback{})
	resp := ex.Extract(context.Background(), &models.ExtractRequest{URL: fixtureURL})

	if resp.Error != "" || resp.ErrorCode != "" {
		t.Fatalf("unexpected failure: [%s] %s", resp.ErrorCode, resp.Error)
	}
	if resp.URL != fixtureURL {
		t.Errorf("URL = %q, want %q", resp.URL, fixtureURL)
	}
	if resp.Method != "zyte" {
		t.Errorf("Method = %q, want zyte", resp.Method)
	}
	if resp.Title != "Title Text" {
		t.Errorf("Title = %q, want Title Text", resp.Title)
	}
	if !strings.Contains(resp.Text, "transit plan") {
		t.Errorf("Text missing article body: %q", resp.Text)
	}
	if strings.Contains(resp.Text, "BUY THINGS") {
		t.Errorf("Text contains stripped noise: %q", resp.Text)
	}
	if len(resp.Authors) != 1 || resp.Authors[0] != "Jane Doe" {
		t.Errorf("Authors = %v, want [Jane Doe]", resp.Authors)
	}
	if resp.PublishDate != "2024-03-14T09:00:00Z" {
		t.Errorf("PublishDate = %q", resp.PublishDate)
	}
	if resp.Markdown != "" {
		t.Errorf("Markdown populated for text output: %q", resp.Markdown)
	}
	if resp.Tokens == nil {
		t.Fatal("Tokens missing")
	}
	if resp.Tokens.OriginalEstimate <= resp.Tokens.ExtractedEstimate {
		t.Errorf("token estimates original %d <= extracted %d",
			resp.Tokens.OriginalEstimate, resp.Tokens.ExtractedEstimate)
	}
	if resp.Tokens.SavingsPercent <= 0 {
		t.Errorf("SavingsPercent = %v, want > 0", resp.Tokens.SavingsPercent)
	}
}

func TestExtract_MarkdownOutput(t *testing.T) {
	body := articleBody("The commission published its <strong>final report</strong> on Thursday.")
	page := `<html><body><h1>Report Released</h1><article><p>` + body + `</p></article></body></html>`

	ex := newTestExtractor(page, nil, &stubFallback{})
	resp := ex.Extract(context.Background(), &models.ExtractRequest{
		URL:          fixtureURL,
		OutputFormat: "markdown",
	})

	if resp.Error != "" {
		t.Fatalf("unexpected failure: [%s] %s", resp.ErrorCode, resp.Error)
	}
	if resp.Markdown == "" {
		t.Fatal("Markdown empty for markdown output format")
	}
	if !strings.Contains(resp.Markdown, "**final report**") {
		t.Errorf("Markdown lost emphasis: %q", resp.Markdown)
	}
	if !strings.Contains(resp.Text, "final report") {
		t.Errorf("Text missing body: %q", resp.Text)
	}
}

func TestExtract_InvalidProvider(t *testing.T) {
	ex := newTestExtractor("<html></html>", nil, &stubFallback{})
	resp := ex.Extract(context.Background(), &models.ExtractRequest{
		URL:      fixtureURL,
		Provider: "splash",
	})

	if resp.ErrorCode != models.ErrCodeInvalidProvider {
		t.Errorf("ErrorCode = %q, want %q", resp.ErrorCode, models.ErrCodeInvalidProvider)
	}
	if resp.Error != "Invalid proxy provider: splash" {
		t.Errorf("Error = %q", resp.Error)
	}
	if resp.URL != fixtureURL {
		t.Errorf("URL = %q, want request URL echoed", resp.URL)
	}
	if resp.Authors == nil {
		t.Error("Authors is nil on failure record, want empty slice")
	}
}

func TestExtract_ProxyUnavailable(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		fetchErr error
	}{
		{"fetch error", "", errors.New("connect: connection refused")},
		{"blank response body", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := newTestExtractor(tt.html, tt.fetchErr, &stubFallback{})
			resp := ex.Extract(context.Background(), &models.ExtractRequest{URL: fixtureURL})

			if resp.ErrorCode != models.ErrCodeProxyUnavailable {
				t.Errorf("ErrorCode = %q, want %q", resp.ErrorCode, models.ErrCodeProxyUnavailable)
			}
			if resp.Error != "No response from proxy" {
				t.Errorf("Error = %q, want No response from proxy", resp.Error)
			}
		})
	}
}

func TestExtract_NoContentFound(t *testing.T) {
	page := `<html><body><p>tiny</p></body></html>`

	ex := newTestExtractor(page, nil, &stubFallback{err: errors.New("nothing extractable")})
	resp := ex.Extract(context.Background(), &models.ExtractRequest{URL: fixtureURL})

	if resp.ErrorCode != models.ErrCodeNoContent {
		t.Errorf("ErrorCode = %q, want %q", resp.ErrorCode, models.ErrCodeNoContent)
	}
	if resp.Error != "No content found" {
		t.Errorf("Error = %q, want No content found", resp.Error)
	}
}

func TestExtract_FallbackUsed(t *testing.T) {
	// No container passes the cascade threshold, so the fallback result
	// becomes the article text.
	page := `<html><body><p>teaser only</p></body></html>`
	fbText := articleBody("Recovered by the generic extractor from an unconventional layout.")

	ex := newTestExtractor(page, nil, &stubFallback{
		res: &fallback.Result{Text: fbText, ContentHTML: "<div><p>" + fbText + "</p></div>"},
	})
	resp := ex.Extract(context.Background(), &models.ExtractRequest{URL: fixtureURL})

	if resp.Error != "" {
		t.Fatalf("unexpected failure: [%s] %s", resp.ErrorCode, resp.Error)
	}
	if !strings.Contains(resp.Text, "generic extractor") {
		t.Errorf("Text = %q, want fallback text", resp.Text)
	}
	if resp.Method != "zyte" {
		t.Errorf("Method = %q, want the proxy provider name", resp.Method)
	}
}

func TestExtract_RecoversPanic(t *testing.T) {
	// A nil fallback extractor makes the no-content path panic; the
	// orchestrator must swallow it and return an error record.
	page := `<html><body><p>tiny</p></body></html>`
	reg := proxy.NewRegistry(&stubProvider{name: "zyte", html: page})
	ex := New(reg, nil)

	resp := ex.Extract(context.Background(), &models.ExtractRequest{URL: fixtureURL})

	if resp == nil {
		t.Fatal("Extract returned nil response")
	}
	if resp.ErrorCode != models.ErrCodeUnexpected {
		t.Errorf("ErrorCode = %q, want %q", resp.ErrorCode, models.ErrCodeUnexpected)
	}
	if resp.URL != fixtureURL {
		t.Errorf("URL = %q, want request URL echoed", resp.URL)
	}
}
