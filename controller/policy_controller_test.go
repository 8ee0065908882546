// controller/policy_controller_test.go
package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dev-mohitbeniwal/themis/controller"
	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	"github.com/dev-mohitbeniwal/themis/model"
	mock_service "github.com/dev-mohitbeniwal/themis/test/service_mock"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = true
	return r
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestPolicyController(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPolicyService := mock_service.NewMockIPolicyService(ctrl)
	policyController := controller.NewPolicyController(mockPolicyService)
	router := setupRouter()
	policyController.RegisterRoutes(router.Group("/admin"))

	t.Run("CreatePolicy_Success", func(t *testing.T) {
		mockPolicyService.EXPECT().
			CreatePolicy(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, p model.Policy) (*model.Policy, error) {
				assert.Equal(t, "Test Policy", p.Name)
				return &model.Policy{Name: "test-policy", Version: "1.0", DefaultEffect: model.EffectDeny}, nil
			})

		w := serve(router, http.MethodPost, "/admin/policies", `{"name":"Test Policy","rules":[]}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"test-policy"`)
	})

	t.Run("CreatePolicy_Failure_Conflict", func(t *testing.T) {
		mockPolicyService.EXPECT().
			CreatePolicy(gomock.Any(), gomock.Any()).
			Return(nil, themis_errors.ErrPolicyConflict)

		w := serve(router, http.MethodPost, "/admin/policies", `{"name":"dup"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "DuplicateName", errorBody(t, w)["kind"])
	})

	t.Run("CreatePolicy_Failure_BadJSON", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/admin/policies", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "SchemaViolation", errorBody(t, w)["kind"])
	})

	t.Run("CreateSimplePolicy_Success", func(t *testing.T) {
		mockPolicyService.EXPECT().
			CreateSimplePolicy(gomock.Any(), "engineers", gomock.Any()).
			Return(&model.Policy{Name: "engineers"}, nil)

		w := serve(router, http.MethodPost, "/admin/policies/simple?name=engineers",
			`{"principal":{"attributes":{"role":"engineer"}},"resource":{"attributes":{"kind":"doc"}}}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("GetPolicy_Success", func(t *testing.T) {
		mockPolicyService.EXPECT().
			GetPolicy(gomock.Any(), "admin-access").
			Return(&model.Policy{Name: "admin-access"}, nil)

		w := serve(router, http.MethodGet, "/admin/policies/admin-access", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GetPolicy_Failure_NotFound", func(t *testing.T) {
		mockPolicyService.EXPECT().
			GetPolicy(gomock.Any(), "missing").
			Return(nil, themis_errors.ErrPolicyNotFound)

		w := serve(router, http.MethodGet, "/admin/policies/missing", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NotFound", errorBody(t, w)["error"])
	})

	t.Run("ListPolicies_Success", func(t *testing.T) {
		mockPolicyService.EXPECT().
			ListPolicies(gomock.Any()).
			Return([]*model.Policy{{Name: "a"}, {Name: "b"}}, nil)

		w := serve(router, http.MethodGet, "/admin/policies", "")
		assert.Equal(t, http.StatusOK, w.Code)
		var policies []model.Policy
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &policies))
		assert.Len(t, policies, 2)
	})

	t.Run("DeletePolicy_Success", func(t *testing.T) {
		mockPolicyService.EXPECT().
			DeletePolicy(gomock.Any(), "a").
			Return(true, nil)

		w := serve(router, http.MethodDelete, "/admin/policies/a", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "true", w.Body.String())
	})

	t.Run("DeletePolicy_Missing", func(t *testing.T) {
		mockPolicyService.EXPECT().
			DeletePolicy(gomock.Any(), "gone").
			Return(false, nil)

		w := serve(router, http.MethodDelete, "/admin/policies/gone", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "false", w.Body.String())
	})
}
