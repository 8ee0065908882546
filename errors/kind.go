// errors/kind.go
package errors

import (
	"context"
	"errors"
	"net/http"
)

// Kind tags reported to clients, in bulk results and in error bodies.
const (
	KindSchemaViolation      = "SchemaViolation"
	KindDuplicateName        = "DuplicateName"
	KindAlreadyRegistered    = "AlreadyRegistered"
	KindNotFound             = "NotFound"
	KindUnregisteredSubject  = "UnregisteredSubject"
	KindAttributeCollision   = "AttributeCollision"
	KindInvalidPassport      = "InvalidPassport"
	KindUnauthorized         = "Unauthorized"
	KindTooManyRequests      = "TooManyRequests"
	KindRateLimited          = "RateLimited"
	KindInvalidFetcherConfig = "InvalidFetcherConfig"
	KindUnknownFetcher       = "UnknownFetcher"
	KindNotInitialized       = "NotInitialized"
	KindCancelled            = "Cancelled"
	KindInternal             = "Internal"
)

type kindEntry struct {
	target error
	kind   string
	status int
}

// Checked in order; the first match wins.
var kinds = []kindEntry{
	{ErrSchemaViolation, KindSchemaViolation, http.StatusBadRequest},
	{ErrInvalidPagination, KindSchemaViolation, http.StatusBadRequest},
	{ErrPolicyConflict, KindDuplicateName, http.StatusConflict},
	{ErrEntityAlreadyRegistered, KindAlreadyRegistered, http.StatusConflict},
	{ErrPolicyNotFound, KindNotFound, http.StatusNotFound},
	{ErrEntityNotFound, KindNotFound, http.StatusNotFound},
	{ErrUnregisteredSubject, KindUnregisteredSubject, http.StatusNotFound},
	{ErrAttributeCollision, KindAttributeCollision, http.StatusBadRequest},
	{ErrInvalidPassport, KindInvalidPassport, http.StatusUnauthorized},
	{ErrUnauthorized, KindUnauthorized, http.StatusUnauthorized},
	{ErrTooManyRequests, KindTooManyRequests, http.StatusRequestEntityTooLarge},
	{ErrRateLimited, KindRateLimited, http.StatusTooManyRequests},
	{ErrInvalidFetcherConfig, KindInvalidFetcherConfig, http.StatusInternalServerError},
	{ErrUnknownFetcher, KindUnknownFetcher, http.StatusInternalServerError},
	{ErrFetcherNotInitialized, KindNotInitialized, http.StatusInternalServerError},
	{ErrCancelled, KindCancelled, http.StatusServiceUnavailable},
	{context.Canceled, KindCancelled, http.StatusServiceUnavailable},
	{context.DeadlineExceeded, KindCancelled, http.StatusServiceUnavailable},
}

func lookup(err error) kindEntry {
	for _, k := range kinds {
		if errors.Is(err, k.target) {
			return k
		}
	}
	return kindEntry{ErrInternalServer, KindInternal, http.StatusInternalServerError}
}

// Kind returns the taxonomy tag for err. Unrecognized errors are Internal.
func Kind(err error) string {
	return lookup(err).kind
}

// HTTPStatus returns the status code a handler should answer with for err.
func HTTPStatus(err error) int {
	return lookup(err).status
}

// Message renders the client-facing error line: the kind, plus the offending
// key for collisions.
func Message(err error) string {
	var collision *AttributeCollisionError
	if errors.As(err, &collision) {
		return KindAttributeCollision + ": " + collision.Key
	}
	return Kind(err)
}
