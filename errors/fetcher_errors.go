// errors/fetcher_errors.go
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrEntityNotFound          = errors.New("entity not found")
	ErrEntityAlreadyRegistered = errors.New("entity already registered")
	ErrInvalidPassport         = errors.New("invalid passport")
	ErrUnregisteredSubject     = errors.New("subject is not registered")
	ErrInvalidFetcherConfig    = errors.New("invalid fetcher config")
	ErrUnknownFetcher          = errors.New("unknown fetcher")
	ErrFetcherNotInitialized   = errors.New("fetcher not initialized")
)

// AttributeCollisionError names the key whose supplied value disagrees with
// the fetched one.
type AttributeCollisionError struct {
	Key string
}

func (e *AttributeCollisionError) Error() string {
	return fmt.Sprintf("attribute collision on key %q", e.Key)
}

func (e *AttributeCollisionError) Is(target error) bool {
	return target == ErrAttributeCollision
}
