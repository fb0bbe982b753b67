package models

// ExtractRequest is the payload for POST /api/v1/extract.
type ExtractRequest struct {
	// URL is the article page to extract. Required.
	URL string `json:"url" binding:"required,url"`

	// Provider selects the rendering proxy that fetches the page.
	// Supported: "oxylabs", "zyte". Default: "zyte".
	Provider string `json:"provider,omitempty"`

	// Language is a hint passed to the fallback extractor when the
	// selector cascade finds nothing. Default: "en".
	Language string `json:"language,omitempty"`

	// OutputFormat controls the optional rendered field in the response.
	// "text" (default): the normalized article text only.
	// "markdown": additionally render the content region as Markdown.
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=text markdown"`

	// MaxAge is the maximum acceptable cache age in seconds.
	// 0 (default) bypasses the cache entirely.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *ExtractRequest) Defaults() {
	if r.Provider == "" {
		r.Provider = "zyte"
	}
	if r.Language == "" {
		r.Language = "en"
	}
	if r.OutputFormat == "" {
		r.OutputFormat = "text"
	}
}
