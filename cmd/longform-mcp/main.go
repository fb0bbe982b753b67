package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// extractResponse mirrors the Longform API response model.
type extractResponse struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Text        string   `json:"text"`
	Authors     []string `json:"authors"`
	PublishDate string   `json:"publish_date"`
	Method      string   `json:"method"`
	Markdown    string   `json:"markdown"`
	Tokens      *struct {
		OriginalEstimate  int     `json:"original_estimate"`
		ExtractedEstimate int     `json:"extracted_estimate"`
		SavingsPercent    float64 `json:"savings_percent"`
	} `json:"tokens"`
	DuplicateOf string `json:"duplicate_of"`
	Error       string `json:"error"`
	ErrorCode   string `json:"error_code"`
}

// batchResponse mirrors the Longform batch API response.
type batchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// batchStatusResponse mirrors the Longform batch status API response.
type batchStatusResponse struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Completed int               `json:"completed"`
	Total     int               `json:"total"`
	Results   []json.RawMessage `json:"results"`
}

func main() {
	apiURL := os.Getenv("LONGFORM_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("LONGFORM_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "LONGFORM_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"longform",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	extractArticleTool := mcp.NewTool("extract_article",
		mcp.WithDescription("Extract the main article from a news page: clean text, title, authors and publish date. Pages are rendered through a remote proxy so JavaScript-heavy sites work."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the article page"),
		),
		mcp.WithString("provider",
			mcp.Description("Rendering proxy provider: 'zyte' (default) or 'oxylabs'"),
			mcp.Enum("zyte", "oxylabs"),
		),
		mcp.WithString("language",
			mcp.Description("Expected article language as an ISO 639-1 code (default: 'en'). Guides the fallback extractor."),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format: 'text' (default) or 'markdown'"),
			mcp.Enum("text", "markdown"),
		),
	)
	s.AddTool(extractArticleTool, handleExtractArticle(apiURL, apiKey))

	// batch_extract tool
	batchExtractTool := mcp.NewTool("batch_extract",
		mcp.WithDescription("Extract articles from multiple URLs in parallel. Near-duplicate stories (e.g. the same wire article on several outlets) are flagged."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of article URLs to extract"),
		),
		mcp.WithString("provider",
			mcp.Description("Rendering proxy provider: 'zyte' (default) or 'oxylabs'"),
			mcp.Enum("zyte", "oxylabs"),
		),
		mcp.WithString("language",
			mcp.Description("Expected article language as an ISO 639-1 code (default: 'en')"),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format: 'text' (default) or 'markdown'"),
			mcp.Enum("text", "markdown"),
		),
	)
	s.AddTool(batchExtractTool, handleBatchExtract(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the Longform API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollJobCompletion polls a job endpoint until status is no longer "processing" or context is cancelled.
func pollJobCompletion(ctx context.Context, client *http.Client, apiURL, apiKey, endpoint string) ([]byte, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+endpoint, nil)
			if err != nil {
				return nil, fmt.Errorf("create poll request: %w", err)
			}
			req.Header.Set("X-API-Key", apiKey)

			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("poll request failed: %w", err)
			}

			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read poll response: %w", err)
			}

			// Quick check if still processing.
			var status struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}

			if status.Status != "processing" {
				return body, nil
			}
		}
	}
}

// formatArticle renders one extraction result as readable tool output.
func formatArticle(er *extractResponse) string {
	var sb strings.Builder

	if er.Title != "" {
		sb.WriteString("Title: " + er.Title + "\n")
	}
	sb.WriteString("Source: " + er.URL + "\n")
	if len(er.Authors) > 0 {
		sb.WriteString("By: " + strings.Join(er.Authors, ", ") + "\n")
	}
	if er.PublishDate != "" {
		sb.WriteString("Published: " + er.PublishDate + "\n")
	}
	sb.WriteString("\n")

	if er.Markdown != "" {
		sb.WriteString(er.Markdown)
	} else {
		sb.WriteString(er.Text)
	}

	if er.Tokens != nil {
		sb.WriteString(fmt.Sprintf("\n\n---\nTokens: %d (saved %.0f%% from original %d)",
			er.Tokens.ExtractedEstimate, er.Tokens.SavingsPercent, er.Tokens.OriginalEstimate))
	}

	return sb.String()
}

func handleExtractArticle(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		payload := map[string]interface{}{
			"url": url,
		}
		if provider := request.GetString("provider", ""); provider != "" {
			payload["provider"] = provider
		}
		if language := request.GetString("language", ""); language != "" {
			payload["language"] = language
		}
		if outputFormat := request.GetString("output_format", ""); outputFormat != "" {
			payload["output_format"] = outputFormat
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/extract", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("extract request failed: %v", err)), nil
		}

		var extractResp extractResponse
		if err := json.Unmarshal(respBody, &extractResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if extractResp.Error != "" {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", extractResp.ErrorCode, extractResp.Error)), nil
		}

		return mcp.NewToolResultText(formatArticle(&extractResp)), nil
	}
}

func handleBatchExtract(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		options := map[string]interface{}{}
		if provider := request.GetString("provider", ""); provider != "" {
			options["provider"] = provider
		}
		if language := request.GetString("language", ""); language != "" {
			options["language"] = language
		}
		if outputFormat := request.GetString("output_format", ""); outputFormat != "" {
			options["output_format"] = outputFormat
		}

		payload := map[string]interface{}{
			"urls":    urls,
			"options": options,
		}

		// POST to create batch job.
		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/batch/extract", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch request failed: %v", err)), nil
		}

		var batchResp batchResponse
		if err := json.Unmarshal(respBody, &batchResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch response: %v", err)), nil
		}

		if batchResp.ID == "" {
			return mcp.NewToolResultError("batch job creation failed"), nil
		}

		// Poll for completion.
		resultBody, err := pollJobCompletion(ctx, client, apiURL, apiKey, "/api/v1/batch/"+batchResp.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling batch job failed: %v", err)), nil
		}

		var statusResp batchStatusResponse
		if err := json.Unmarshal(resultBody, &statusResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse batch status: %v", err)), nil
		}

		// Format results.
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Batch %s: %s (%d/%d completed)\n\n", statusResp.ID, statusResp.Status, statusResp.Completed, statusResp.Total))

		for i, raw := range statusResp.Results {
			var er extractResponse
			if err := json.Unmarshal(raw, &er); err != nil {
				sb.WriteString(fmt.Sprintf("--- Result %d: parse error ---\n\n", i+1))
				continue
			}
			switch {
			case er.Error != "":
				sb.WriteString(fmt.Sprintf("--- [%d] %s FAILED: [%s] %s ---\n\n", i+1, er.URL, er.ErrorCode, er.Error))
			case er.DuplicateOf != "":
				sb.WriteString(fmt.Sprintf("--- [%d] %s DUPLICATE of %s ---\n\n", i+1, er.URL, er.DuplicateOf))
			default:
				sb.WriteString(fmt.Sprintf("--- [%d] %s ---\n%s\n\n", i+1, er.URL, formatArticle(&er)))
			}
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}
