package controller_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dev-mohitbeniwal/themis/controller"
	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	"github.com/dev-mohitbeniwal/themis/model"
	mock_service "github.com/dev-mohitbeniwal/themis/test/service_mock"
)

func TestDecisionController(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDecisionService := mock_service.NewMockIDecisionService(ctrl)
	router := setupRouter()
	controller.NewDecisionController(mockDecisionService).RegisterRoutes(router.Group(""))

	t.Run("Check_Success", func(t *testing.T) {
		mockDecisionService.EXPECT().
			Check(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req model.CheckRequest) (*model.CheckResponse, error) {
				assert.Equal(t, "user://alice", req.Principal.URI)
				assert.Equal(t, model.StringValue("public"), req.Resource.Attributes["visibility"])
				return &model.CheckResponse{Allowed: true, Reason: "p:r"}, nil
			})

		w := serve(router, http.MethodPost, "/check",
			`{"principal":{"uri":"user://alice"},"resource":{"attributes":[{"key":"visibility","value":"public"}]}}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"allowed":true,"reason":"p:r"}`, w.Body.String())
	})

	t.Run("Check_AttributeCollision", func(t *testing.T) {
		mockDecisionService.EXPECT().
			Check(gomock.Any(), gomock.Any()).
			Return(nil, &themis_errors.AttributeCollisionError{Key: "dept"})

		w := serve(router, http.MethodPost, "/check", `{"principal":{"uri":"u"},"resource":{"uri":"r"}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := errorBody(t, w)
		assert.Equal(t, "AttributeCollision: dept", body["error"])
		assert.Equal(t, "AttributeCollision", body["kind"])
	})

	t.Run("Check_DuplicateAttributeKeys", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/check",
			`{"principal":{"attributes":[{"key":"a","value":1},{"key":"a","value":2}]},"resource":{"uri":"r"}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "SchemaViolation", errorBody(t, w)["kind"])
	})

	t.Run("Check_Cancelled", func(t *testing.T) {
		mockDecisionService.EXPECT().
			Check(gomock.Any(), gomock.Any()).
			Return(nil, themis_errors.ErrCancelled)

		w := serve(router, http.MethodPost, "/check", `{"principal":{"uri":"u"},"resource":{"uri":"r"}}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("BulkCheck_Success", func(t *testing.T) {
		mockDecisionService.EXPECT().
			BulkCheck(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, reqs []model.CheckRequest) ([]model.CheckResponse, error) {
				require.Len(t, reqs, 3)
				assert.Equal(t, "u1", reqs[0].Principal.URI)
				assert.Equal(t, model.CheckRequest{}, reqs[1])
				return []model.CheckResponse{
					{Allowed: true, Reason: "p:r"},
					{Allowed: false, Reason: "SchemaViolation"},
					{Allowed: false, Reason: "p:default"},
				}, nil
			})

		w := serve(router, http.MethodPost, "/check/bulk", `[
			{"principal":{"uri":"u1"},"resource":{"uri":"r"}},
			{"principal":{"attributes":"not-an-object"}},
			{"principal":{"uri":"u3"},"resource":{"uri":"r"}}
		]`)
		assert.Equal(t, http.StatusOK, w.Code)
		var out []model.CheckResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Len(t, out, 3)
	})

	t.Run("BulkCheck_NotAnArray", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/check/bulk", `{"principal":{"uri":"u1"}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = serve(router, http.MethodPost, "/check/bulk", `null`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("BulkCheck_TooMany", func(t *testing.T) {
		mockDecisionService.EXPECT().
			BulkCheck(gomock.Any(), gomock.Any()).
			Return(nil, themis_errors.ErrTooManyRequests)

		w := serve(router, http.MethodPost, "/check/bulk", `[]`)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "TooManyRequests", errorBody(t, w)["kind"])
	})
}
