// Package extractor orchestrates the article extraction pipeline: proxy
// fetch, noise stripping, content location, fallback extraction, metadata
// recovery and result assembly.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"

	"github.com/longform-dev/longform/cleaner"
	"github.com/longform-dev/longform/fallback"
	"github.com/longform-dev/longform/models"
	"github.com/longform-dev/longform/proxy"
)

// Extractor runs article extractions. It holds no per-call state beyond its
// wired collaborators and is safe for concurrent use; every call parses its
// own document.
type Extractor struct {
	providers   *proxy.Registry
	fb          fallback.Extractor
	mdConverter *converter.Converter
	startTime   time.Time
}

// New creates an Extractor over the given providers and fallback extractor.
func New(providers *proxy.Registry, fb fallback.Extractor) *Extractor {
	return &Extractor{
		providers:   providers,
		fb:          fb,
		mdConverter: cleaner.NewMarkdownConverter(),
		startTime:   time.Now(),
	}
}

// Providers returns the configured proxy provider names.
func (e *Extractor) Providers() []string { return e.providers.Names() }

// Fallback returns the configured fallback extractor name.
func (e *Extractor) Fallback() string { return e.fb.Name() }

// Uptime reports how long this extractor has been serving.
func (e *Extractor) Uptime() time.Duration { return time.Since(e.startTime) }

// Extract runs one full extraction and always returns exactly one response
// record. Failures of any kind, recovered panics included, come back as a
// record carrying the original URL and an error message; Extract never
// panics past this boundary.
func (e *Extractor) Extract(ctx context.Context, req *models.ExtractRequest) (resp *models.ExtractResponse) {
	req.Defaults()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("extract: recovered panic", "url", req.URL, "panic", r)
			resp = failure(req.URL, models.NewExtractError(
				models.ErrCodeUnexpected,
				fmt.Sprintf("%v", r),
				nil,
			))
		}
		resp.Timing.TotalMs = time.Since(start).Milliseconds()
	}()

	provider, ok := e.providers.Get(req.Provider)
	if !ok {
		return failure(req.URL, models.NewExtractError(
			models.ErrCodeInvalidProvider,
			fmt.Sprintf("Invalid proxy provider: %s", req.Provider),
			nil,
		))
	}

	fetchStart := time.Now()
	rawHTML, err := provider.Fetch(ctx, req.URL)
	fetchMs := time.Since(fetchStart).Milliseconds()
	if err != nil || strings.TrimSpace(rawHTML) == "" {
		if err != nil {
			slog.Warn("extract: proxy fetch failed",
				"url", req.URL, "provider", provider.Name(), "error", err)
		}
		resp = failure(req.URL, models.NewExtractError(
			models.ErrCodeProxyUnavailable,
			"No response from proxy",
			err,
		))
		resp.Timing.FetchMs = fetchMs
		return resp
	}

	extractStart := time.Now()
	resp = e.extractFromHTML(req, provider.Name(), rawHTML)
	resp.Timing.FetchMs = fetchMs
	resp.Timing.ExtractionMs = time.Since(extractStart).Milliseconds()
	return resp
}

// extractFromHTML runs the post-fetch stages over rendered HTML: cleaning,
// content location with fallback, metadata recovery and assembly.
func (e *Extractor) extractFromHTML(req *models.ExtractRequest, method, rawHTML string) *models.ExtractResponse {
	cleanedHTML := cleaner.StripNoise(rawHTML)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cleanedHTML))
	if err != nil {
		return failure(req.URL, models.NewExtractError(
			models.ErrCodeUnexpected,
			"parse cleaned markup: "+err.Error(),
			err,
		))
	}

	text, contentHTML, found := cleaner.LocateContent(doc)
	if !found {
		text, contentHTML = e.fallbackExtract(req, cleanedHTML)
	}
	if text == "" {
		return failure(req.URL, models.NewExtractError(
			models.ErrCodeNoContent,
			"No content found",
			nil,
		))
	}

	meta := cleaner.RecoverMetadata(doc)

	resp := &models.ExtractResponse{
		URL:         req.URL,
		Title:       meta.Title,
		Text:        cleaner.Normalize(text),
		Authors:     meta.Authors,
		PublishDate: meta.PublishDate,
		Method:      method,
		Tokens:      tokenInfo(rawHTML, text),
	}

	if req.OutputFormat == "markdown" && contentHTML != "" {
		md, err := cleaner.ToMarkdown(e.mdConverter, contentHTML, req.URL)
		if err != nil {
			slog.Warn("extract: markdown conversion failed", "url", req.URL, "error", err)
		} else {
			resp.Markdown = md
		}
	}
	return resp
}

// fallbackExtract invokes the generic fallback extractor, returning empty
// text when it errors or produces nothing.
func (e *Extractor) fallbackExtract(req *models.ExtractRequest, cleanedHTML string) (text, contentHTML string) {
	res, err := e.fb.Extract(req.URL, req.Language, cleanedHTML)
	if err != nil {
		slog.Warn("extract: fallback produced nothing",
			"url", req.URL, "fallback", e.fb.Name(), "error", err)
		return "", ""
	}
	if res == nil {
		return "", ""
	}
	return cleaner.Normalize(res.Text), res.ContentHTML
}

// failure builds the uniform error record carrying the original URL.
func failure(url string, err *models.ExtractError) *models.ExtractResponse {
	return &models.ExtractResponse{
		URL:       url,
		Authors:   []string{},
		Error:     err.Message,
		ErrorCode: err.Code,
	}
}

// tokenInfo estimates token counts for the raw page and the extracted text.
func tokenInfo(rawHTML, text string) *models.TokenInfo {
	original := cleaner.EstimateTokens(rawHTML)
	extracted := cleaner.EstimateTokens(text)

	savings := 0.0
	if original > 0 {
		savings = float64(original-extracted) / float64(original) * 100
		savings = math.Round(savings*100) / 100
	}

	return &models.TokenInfo{
		OriginalEstimate:  original,
		ExtractedEstimate: extracted,
		SavingsPercent:    savings,
	}
}
