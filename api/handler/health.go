package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/longform-dev/longform/extractor"
	"github.com/longform-dev/longform/models"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports the configured proxy providers and fallback extractor; status
// degrades when no provider has credentials.
func Health(ex *extractor.Extractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		providers := ex.Providers()

		status := "healthy"
		if len(providers) == 0 {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    ex.Uptime().Round(time.Second).String(),
			Providers: providers,
			Fallback:  ex.Fallback(),
			Version:   "0.1.0",
		})
	}
}
