// util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	logger "github.com/dev-mohitbeniwal/themis/logging"
)

// DebugErrors adds the wrapped error text to error bodies.
var DebugErrors bool

func RespondWithError(c *gin.Context, code int, message string, err error) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	}
	if code >= 500 {
		logger.Error(message, fields...)
	} else {
		logger.Warn(message, fields...)
	}

	body := gin.H{"error": message, "kind": themis_errors.Kind(err)}
	if DebugErrors && err != nil {
		body["detail"] = err.Error()
	}
	c.AbortWithStatusJSON(code, body)
}

// RespondWithDomainError derives status and message from the error's kind.
func RespondWithDomainError(c *gin.Context, err error) {
	RespondWithError(c, themis_errors.HTTPStatus(err), themis_errors.Message(err), err)
}
