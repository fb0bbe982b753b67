package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/longform-dev/longform/cache"
	"github.com/longform-dev/longform/extractor"
	"github.com/longform-dev/longform/models"
)

// Extract returns a handler for POST /api/v1/extract.
//
// Flow:
//  1. Parse & validate ExtractRequest, apply defaults.
//  2. Cache lookup when the request allows stale responses.
//  3. Run the extraction pipeline (fetch via proxy, clean, locate, recover).
//  4. Map failure codes to HTTP status, store cacheable successes, respond.
func Extract(ex *extractor.Extractor, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     err.Error(),
				ErrorCode: models.ErrCodeInvalidInput,
			})
			return
		}
		req.Defaults()

		// ── 2. Cache lookup ─────────────────────────────────────────
		var cacheKey string
		if cc != nil && req.MaxAge > 0 {
			cacheKey = cache.Key(req.URL, req.Provider, req.Language, req.OutputFormat)
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				cached.CacheStatus = "hit"
				cached.Timing = models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				}
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		// ── 3. Extract ──────────────────────────────────────────────
		resp := ex.Extract(c.Request.Context(), &req)

		// ── 4. Respond ──────────────────────────────────────────────
		if resp.ErrorCode != "" {
			c.JSON(mapErrorToStatus(resp.ErrorCode), resp)
			return
		}

		if cacheKey != "" {
			cc.Set(cacheKey, resp)
			resp.CacheStatus = "miss"
		}
		c.JSON(http.StatusOK, resp)
	}
}

// mapErrorToStatus translates extraction error codes to HTTP status codes.
func mapErrorToStatus(code string) int {
	switch code {
	case models.ErrCodeInvalidInput, models.ErrCodeInvalidProvider:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeNoContent:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeProxyUnavailable:
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}
