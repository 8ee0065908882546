package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	"github.com/dev-mohitbeniwal/themis/util"
)

const APIKeyHeader = "WAY-API-KEY"

// RequireAPIKey rejects requests whose WAY-API-KEY header does not match
// key. An empty key disables the check.
func RequireAPIKey(key string) gin.HandlerFunc {
	expected := []byte(key)
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		provided := []byte(c.GetHeader(APIKeyHeader))
		if subtle.ConstantTimeCompare(provided, expected) != 1 {
			util.RespondWithDomainError(c, themis_errors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
