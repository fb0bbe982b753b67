package models

import "testing"

func TestExtractRequest_Defaults(t *testing.T) {
	tests := []struct {
		name string
		req  ExtractRequest
		want ExtractRequest
	}{
		{
			name: "empty fields get defaults",
			req:  ExtractRequest{URL: "https://news.example.com/story"},
			want: ExtractRequest{
				URL:          "https://news.example.com/story",
				Provider:     "zyte",
				Language:     "en",
				OutputFormat: "text",
			},
		},
		{
			name: "set fields are preserved",
			req: ExtractRequest{
				URL:          "https://news.example.com/story",
				Provider:     "oxylabs",
				Language:     "de",
				OutputFormat: "markdown",
				MaxAge:       600,
			},
			want: ExtractRequest{
				URL:          "https://news.example.com/story",
				Provider:     "oxylabs",
				Language:     "de",
				OutputFormat: "markdown",
				MaxAge:       600,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.Defaults()
			if req != tt.want {
				t.Errorf("Defaults() = %+v, want %+v", req, tt.want)
			}
		})
	}
}
