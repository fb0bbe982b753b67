package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/longform-dev/longform/extractor"
	"github.com/longform-dev/longform/models"
	"github.com/longform-dev/longform/simhash"
	"github.com/longform-dev/longform/webhook"
)

// duplicateThreshold is the maximum SimHash Hamming distance at which two
// article texts in one batch count as near-duplicates.
const duplicateThreshold = 3

// batchJob tracks one in-flight or completed batch extraction. All mutable
// state is guarded by mu; workers write results while status polls read them.
type batchJob struct {
	mu        sync.RWMutex
	id        string
	status    string // "processing", "completed", "partial", "failed"
	total     int
	completed int
	results   []*models.ExtractResponse
	createdAt int64
}

func (j *batchJob) setResult(idx int, resp *models.ExtractResponse) {
	j.mu.Lock()
	j.results[idx] = resp
	j.completed++
	j.mu.Unlock()
}

// finish marks near-duplicate articles and records the final status in one
// critical section so a poll never sees a half-finished job.
func (j *batchJob) finish(status string) {
	j.mu.Lock()
	markDuplicates(j.results)
	j.status = status
	j.mu.Unlock()
}

// snapshot returns a wire-shaped copy of the job safe to marshal while
// workers are still appending results.
func (j *batchJob) snapshot(withResults bool) models.BatchStatusResponse {
	j.mu.RLock()
	defer j.mu.RUnlock()

	resp := models.BatchStatusResponse{
		ID:        j.id,
		Status:    j.status,
		Completed: j.completed,
		Total:     j.total,
	}
	if withResults {
		resp.Results = make([]*models.ExtractResponse, len(j.results))
		copy(resp.Results, j.results)
	}
	return resp
}

// batchStore holds all in-flight and completed batch jobs.
var batchStore sync.Map

func init() {
	// Background goroutine to expire batch jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			batchStore.Range(func(key, value any) bool {
				job := value.(*batchJob)
				if job.createdAt < cutoff {
					batchStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// PostBatch returns a handler for POST /api/v1/batch/extract.
// It validates the request, creates a batch job, and launches goroutines
// to extract each URL concurrently.
func PostBatch(ex *extractor.Extractor, concurrency int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     err.Error(),
				ErrorCode: models.ErrCodeInvalidInput,
			})
			return
		}

		job := &batchJob{
			id:        "batch-" + uuid.NewString(),
			status:    "processing",
			total:     len(req.URLs),
			results:   make([]*models.ExtractResponse, len(req.URLs)),
			createdAt: time.Now().Unix(),
		}
		batchStore.Store(job.id, job)

		// Launch extraction in background.
		go runBatch(ex, job, req, concurrency)

		c.JSON(http.StatusOK, models.BatchResponse{
			ID:     job.id,
			Status: "processing",
			Total:  len(req.URLs),
		})
	}
}

// GetBatch returns a handler for GET /api/v1/batch/:id.
func GetBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		val, ok := batchStore.Load(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "batch job not found",
				ErrorCode: models.ErrCodeNotFound,
			})
			return
		}

		job := val.(*batchJob)
		c.JSON(http.StatusOK, job.snapshot(true))
	}
}

// runBatch extracts all URLs in a batch job with concurrency limited by a
// semaphore, then marks near-duplicates and fires the completion webhook.
func runBatch(ex *extractor.Extractor, job *batchJob, req models.BatchRequest, concurrency int) {
	if concurrency <= 0 {
		concurrency = 5
	}
	sem := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for i, rawURL := range req.URLs {
		wg.Add(1)
		go func(idx int, targetURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ereq := &models.ExtractRequest{
				URL:          targetURL,
				Provider:     req.Options.Provider,
				Language:     req.Options.Language,
				OutputFormat: req.Options.OutputFormat,
			}
			ereq.Defaults()

			resp := ex.Extract(context.Background(), ereq)
			job.setResult(idx, resp)

			if resp.ErrorCode != "" {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(i, rawURL)
	}

	wg.Wait()

	var status string
	switch {
	case failed == job.total:
		status = "failed"
	case failed > 0:
		status = "partial"
	default:
		status = "completed"
	}
	job.finish(status)

	slog.Info("batch job finished",
		"id", job.id,
		"status", status,
		"failed", failed,
		"total", job.total,
	)

	if req.WebhookURL != "" {
		notifier := webhook.NewNotifier(req.WebhookURL, req.WebhookSecret)
		notifier.DeliverAsync(&webhook.Event{
			Type:      "batch.completed",
			JobID:     job.id,
			Timestamp: time.Now().Unix(),
			Data:      job.snapshot(false),
		})
	}
}

// markDuplicates fingerprints each successful article text and links later
// near-duplicates back to the first occurrence via DuplicateOf. Caller holds
// the job lock.
func markDuplicates(results []*models.ExtractResponse) {
	type seen struct {
		url string
		fp  uint64
	}
	var prior []seen

	for _, r := range results {
		if r == nil || r.ErrorCode != "" || r.Text == "" {
			continue
		}
		fp := simhash.Fingerprint(r.Text)
		matched := false
		for _, p := range prior {
			if simhash.Similar(fp, p.fp, duplicateThreshold) {
				r.DuplicateOf = p.url
				matched = true
				break
			}
		}
		if !matched {
			prior = append(prior, seen{url: r.URL, fp: fp})
		}
	}
}
