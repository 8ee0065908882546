package helper_util

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ParseTime parses an RFC3339 timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// GetTimeParam reads an RFC3339 query parameter, returning def when absent.
func GetTimeParam(c *gin.Context, name string, def time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	t, err := ParseTime(raw)
	if err != nil {
		return time.Time{}, errInvalid(err)
	}
	return t, nil
}
