package errors_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
)

func TestKindAndStatus(t *testing.T) {
	cases := []struct {
		err    error
		kind   string
		status int
	}{
		{fmt.Errorf("principal: %w", themis_errors.ErrSchemaViolation), themis_errors.KindSchemaViolation, http.StatusBadRequest},
		{themis_errors.ErrPolicyConflict, themis_errors.KindDuplicateName, http.StatusConflict},
		{themis_errors.ErrEntityAlreadyRegistered, themis_errors.KindAlreadyRegistered, http.StatusConflict},
		{themis_errors.ErrEntityNotFound, themis_errors.KindNotFound, http.StatusNotFound},
		{&themis_errors.AttributeCollisionError{Key: "dept"}, themis_errors.KindAttributeCollision, http.StatusBadRequest},
		{fmt.Errorf("verify: %w", themis_errors.ErrInvalidPassport), themis_errors.KindInvalidPassport, http.StatusUnauthorized},
		{themis_errors.ErrTooManyRequests, themis_errors.KindTooManyRequests, http.StatusRequestEntityTooLarge},
		{themis_errors.ErrRateLimited, themis_errors.KindRateLimited, http.StatusTooManyRequests},
		{context.Canceled, themis_errors.KindCancelled, http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), themis_errors.KindInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.kind, themis_errors.Kind(tc.err), tc.err.Error())
		assert.Equal(t, tc.status, themis_errors.HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestMessageNamesCollisionKey(t *testing.T) {
	err := fmt.Errorf("resolve principal: %w", &themis_errors.AttributeCollisionError{Key: "dept"})
	assert.Equal(t, "AttributeCollision: dept", themis_errors.Message(err))
	assert.Equal(t, "InvalidPassport", themis_errors.Message(themis_errors.ErrInvalidPassport))
}
