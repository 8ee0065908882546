package helper_util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetPaginationParams reads limit and offset, defaulting to 10 and 0.
func GetPaginationParams(c *gin.Context) (limit int, offset int, err error) {
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 0 {
		return 0, 0, errInvalid(err)
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, errInvalid(err)
	}
	return limit, offset, nil
}

// GetBoolParam reads a boolean query parameter.
func GetBoolParam(c *gin.Context, name string, def bool) (bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errInvalid(err)
	}
	return v, nil
}

// GetIntParam reads a non-negative integer query parameter.
func GetIntParam(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errInvalid(err)
	}
	return v, nil
}
