// errors/policy_errors.go
package errors

import "errors"

var (
	ErrPolicyNotFound     = errors.New("policy not found")
	ErrDatabaseOperation  = errors.New("database operation failed")
	ErrSchemaViolation    = errors.New("schema violation")
	ErrPolicyConflict     = errors.New("policy already exists")
	ErrInternalServer     = errors.New("internal server error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidPagination  = errors.New("invalid pagination parameters")
	ErrTooManyRequests    = errors.New("too many requests")
	ErrCancelled          = errors.New("request cancelled")
	ErrAttributeCollision = errors.New("attribute collision")
	ErrRateLimited        = errors.New("rate limit exceeded")
)
