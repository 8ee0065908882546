package helper_util

import (
	"fmt"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
)

func errInvalid(cause error) error {
	if cause == nil {
		return themis_errors.ErrInvalidPagination
	}
	return fmt.Errorf("%w: %v", themis_errors.ErrInvalidPagination, cause)
}
