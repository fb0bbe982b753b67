package models

// ExtractResponse is the response for POST /api/v1/extract and the per-URL
// record inside batch results.
//
// On success the article fields are populated and Error is empty. On failure
// the record carries URL, Error and ErrorCode; content absence is a failure,
// but a missing title, date or author list never is.
type ExtractResponse struct {
	// URL is the requested page, echoed back on success and failure.
	URL string `json:"url"`

	// Title is the recovered headline; empty when none was found.
	Title string `json:"title,omitempty"`

	// Text is the normalized article body text.
	Text string `json:"text,omitempty"`

	// Authors lists unique author names in discovery order. Never null.
	Authors []string `json:"authors"`

	// PublishDate is the raw publish date string exactly as it appeared
	// in the markup. No format normalization is applied.
	PublishDate string `json:"publish_date,omitempty"`

	// Method names the proxy provider that fetched the page.
	Method string `json:"method,omitempty"`

	// Markdown is the content region rendered as Markdown. Populated only
	// when the request asked for output_format "markdown".
	Markdown string `json:"markdown,omitempty"`

	// Tokens provides token estimates for the raw page and extracted text.
	Tokens *TokenInfo `json:"tokens,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// DuplicateOf points at an earlier URL in the same batch whose text is
	// a near-duplicate of this one. Batch responses only.
	DuplicateOf string `json:"duplicate_of,omitempty"`

	// Error is the failure message; empty on success.
	Error string `json:"error,omitempty"`

	// ErrorCode is the machine-readable code matching Error.
	ErrorCode string `json:"error_code,omitempty"`
}

// TokenInfo provides before/after token estimates to show extraction efficacy.
type TokenInfo struct {
	// OriginalEstimate is the estimated token count of the raw page HTML.
	OriginalEstimate int `json:"original_estimate"`

	// ExtractedEstimate is the estimated token count of the article text.
	ExtractedEstimate int `json:"extracted_estimate"`

	// SavingsPercent is the percentage of tokens removed (0-100).
	SavingsPercent float64 `json:"savings_percent"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// FetchMs is the time spent waiting on the rendering proxy.
	FetchMs int64 `json:"fetch_ms"`

	// ExtractionMs is the time spent cleaning, locating and normalizing.
	ExtractionMs int64 `json:"extraction_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string   `json:"status"` // "healthy" or "degraded"
	Uptime    string   `json:"uptime"`
	Providers []string `json:"providers"`
	Fallback  string   `json:"fallback"`
	Version   string   `json:"version"`
}

// ErrorResponse is the body for request-level rejections that never reach
// the extraction pipeline: bad input, missing credentials, rate limiting,
// unknown batch jobs.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}
