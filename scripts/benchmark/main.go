package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL   = flag.String("api-url", "http://localhost:8080", "Longform API base URL")
	apiKey   = flag.String("api-key", "", "API key for authenticated requests")
	provider = flag.String("provider", "zyte", "Proxy provider to benchmark (zyte or oxylabs)")
	runs     = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output   = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test URLs covering different outlet layouts.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Wire", "https://apnews.com/article/congress-budget-vote"},
	{"Broadsheet", "https://www.theguardian.com/world/2024/jan/15/example-story"},
	{"Broadcast", "https://www.bbc.com/news/articles/c51n3j3y8e1o"},
	{"Tech", "https://www.theverge.com/2024/1/15/example-review"},
	{"Paywalled", "https://www.nytimes.com/2024/01/15/business/example.html"},
}

// --- Request / Response types (mirrors models package) ---

type extractRequest struct {
	URL          string `json:"url"`
	Provider     string `json:"provider"`
	OutputFormat string `json:"output_format"`
}

type extractResponse struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	Authors     []string   `json:"authors"`
	PublishDate string     `json:"publish_date"`
	Method      string     `json:"method"`
	Tokens      tokenInfo  `json:"tokens"`
	Timing      timingInfo `json:"timing"`
	Error       string     `json:"error"`
	ErrorCode   string     `json:"error_code"`
}

type tokenInfo struct {
	OriginalEstimate  int     `json:"original_estimate"`
	ExtractedEstimate int     `json:"extracted_estimate"`
	SavingsPercent    float64 `json:"savings_percent"`
}

type timingInfo struct {
	TotalMs      int64 `json:"total_ms"`
	FetchMs      int64 `json:"fetch_ms"`
	ExtractionMs int64 `json:"extraction_ms"`
}

// --- Benchmark result types ---

type runResult struct {
	Run             int     `json:"run"`
	TotalMs         int64   `json:"total_ms"`
	FetchMs         int64   `json:"fetch_ms"`
	ExtractionMs    int64   `json:"extraction_ms"`
	OriginalTokens  int     `json:"original_tokens"`
	ExtractedTokens int     `json:"extracted_tokens"`
	SavingsPercent  float64 `json:"savings_percent"`
	TextLength      int     `json:"text_length"`
	Method          string  `json:"method"`
	HasTitle        bool    `json:"has_title"`
	HasAuthors      bool    `json:"has_authors"`
	HasDate         bool    `json:"has_date"`
	Success         bool    `json:"success"`
	Error           string  `json:"error,omitempty"`
}

type urlAverages struct {
	TotalMs        float64 `json:"total_ms"`
	FetchMs        float64 `json:"fetch_ms"`
	ExtractionMs   float64 `json:"extraction_ms"`
	SavingsPercent float64 `json:"savings_percent"`
	TextLength     float64 `json:"text_length"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Label    string       `json:"label"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	Provider   string      `json:"provider"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== Longform Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Provider:  %s\n", *provider)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure Longform is running (e.g. make run)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		Provider:   *provider,
		RunsPerURL: *runs,
	}

	for _, t := range testURLs {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(t.URL, i)
			if rr.Success {
				fmt.Printf("OK  %dms (fetch %dms)  %.1f%% saved\n", rr.TotalMs, rr.FetchMs, rr.SavingsPercent)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	// Print summary table.
	printTable(report.Results)

	// Write JSON report.
	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkURL(url string, run int) runResult {
	rr := runResult{Run: run}

	reqBody := extractRequest{
		URL:          url,
		Provider:     *provider,
		OutputFormat: "text",
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/v1/extract", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	client := &http.Client{Timeout: 180 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var er extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = er.Error == ""
	rr.TotalMs = er.Timing.TotalMs
	rr.FetchMs = er.Timing.FetchMs
	rr.ExtractionMs = er.Timing.ExtractionMs
	rr.OriginalTokens = er.Tokens.OriginalEstimate
	rr.ExtractedTokens = er.Tokens.ExtractedEstimate
	rr.SavingsPercent = er.Tokens.SavingsPercent
	rr.TextLength = len(er.Text)
	rr.Method = er.Method
	rr.HasTitle = er.Title != ""
	rr.HasAuthors = len(er.Authors) > 0
	rr.HasDate = er.PublishDate != ""

	if er.Error != "" {
		rr.Error = fmt.Sprintf("[%s] %s", er.ErrorCode, er.Error)
	}

	return rr
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		avg.FetchMs += float64(r.FetchMs)
		avg.ExtractionMs += float64(r.ExtractionMs)
		avg.SavingsPercent += r.SavingsPercent
		avg.TextLength += float64(r.TextLength)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.TotalMs /= n
	avg.FetchMs /= n
	avg.ExtractionMs /= n
	avg.SavingsPercent /= n
	avg.TextLength /= n
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAvg Latency\tAvg Fetch\tTokens Saved\tText Len\tMethod\n")
	fmt.Fprintf(w, "───\t───────────\t─────────\t────────────\t────────\t──────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\t-\n", truncateURL(r.URL, 40))
			continue
		}

		fmt.Fprintf(w, "%s\t%dms\t%dms\t%.1f%%\t%s\t%s\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.TotalMs),
			int64(r.Averages.FetchMs),
			r.Averages.SavingsPercent,
			formatInt(int(r.Averages.TextLength)),
			dominantMethod(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func dominantMethod(runs []runResult) string {
	counts := map[string]int{}
	for _, r := range runs {
		if r.Success {
			counts[r.Method]++
		}
	}
	best, bestCount := "-", 0
	for method, count := range counts {
		if count > bestCount {
			best = method
			bestCount = count
		}
	}
	return best
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
