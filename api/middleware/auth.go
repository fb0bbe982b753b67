package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/longform-dev/longform/models"
)

// Auth returns API-key authentication middleware. Clients present the key
// either as `X-API-Key: <key>` or `Authorization: Bearer <key>`.
//
// Keys are compared in constant time so response timing leaks nothing about
// how much of a guessed key matched. An empty key list disables auth entirely
// (open access); the router skips installing the middleware in that case too.
func Auth(apiKeys []string) gin.HandlerFunc {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	if len(keys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := requestKey(c)
		if key == "" {
			unauthorized(c, "missing API key: provide X-API-Key header or Authorization: Bearer <key>")
			return
		}
		if !keyMatches([]byte(key), keys) {
			unauthorized(c, "invalid API key")
			return
		}

		c.Set("api_key", key)
		c.Next()
	}
}

func keyMatches(candidate []byte, keys [][]byte) bool {
	matched := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare(candidate, k) == 1 {
			matched = true
		}
	}
	return matched
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:     msg,
		ErrorCode: models.ErrCodeUnauthorized,
	})
}

// requestKey pulls the API key from the request, X-API-Key first.
func requestKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
