// util/validation_util.go

package util

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
)

// BindJSON decodes the request body into obj. Decoding and binding failures
// wrap ErrSchemaViolation.
func BindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return SchemaError(err)
	}
	return nil
}

// SchemaError tags err as a schema violation unless it already is one.
func SchemaError(err error) error {
	if err == nil || errors.Is(err, themis_errors.ErrSchemaViolation) {
		return err
	}
	return fmt.Errorf("%w: %v", themis_errors.ErrSchemaViolation, err)
}
