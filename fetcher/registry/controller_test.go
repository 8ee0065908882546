package registry_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/themis/db"
	"github.com/dev-mohitbeniwal/themis/fetcher/registry"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.OpenSQL("sqlite://"+filepath.Join(t.TempDir(), "registry.sqlite"), db.SQLOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { db.CloseSQL(gdb) })

	r, err := registry.New(gdb)
	require.NoError(t, err)

	router := gin.New()
	router.UseRawPath = true
	router.UnescapePathValues = true
	registry.NewController(r).RegisterRoutes(router.Group("/fetchers/registry"))
	return router
}

func do(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegistryController(t *testing.T) {
	router := setupRouter(t)
	alice := "/fetchers/registry/entities/" + url.PathEscape("user://alice")

	t.Run("RegisterEntity_Success", func(t *testing.T) {
		w := do(router, "POST", "/fetchers/registry/entities",
			`{"uri":"user://alice","type":"principal","attributes":[{"key":"role","value":"admin"}]}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"uri":"user://alice"`)
	})

	t.Run("RegisterEntity_Duplicate", func(t *testing.T) {
		w := do(router, "POST", "/fetchers/registry/entities",
			`{"uri":"user://alice","attributes":{"role":"viewer"}}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("RegisterEntity_Invalid", func(t *testing.T) {
		w := do(router, "POST", "/fetchers/registry/entities", `{"uri":"user://x","attributes":{}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("GetEntity_Success", func(t *testing.T) {
		w := do(router, "GET", alice, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"key":"role"`)
	})

	t.Run("CountEntities", func(t *testing.T) {
		w := do(router, "GET", "/fetchers/registry/entities/$count", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1", w.Body.String())
	})

	t.Run("ListEntities", func(t *testing.T) {
		w := do(router, "GET", "/fetchers/registry/entities?offset=0&limit=5", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user://alice")

		w = do(router, "GET", "/fetchers/registry/entities?limit=abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UpdateEntity_URIMismatch", func(t *testing.T) {
		w := do(router, "PUT", alice, `{"uri":"user://bob","attributes":{"role":"owner"}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UpdateEntity_Override", func(t *testing.T) {
		w := do(router, "PUT", alice+"?override=true", `{"uri":"user://alice","attributes":{"dept":"eng"}}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), `"role"`)
		assert.Contains(t, w.Body.String(), `"dept"`)
	})

	t.Run("UpdateEntity_NotFound", func(t *testing.T) {
		w := do(router, "PUT", "/fetchers/registry/entities/missing", `{"attributes":{"a":1}}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DeleteEntity", func(t *testing.T) {
		w := do(router, "DELETE", alice, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = do(router, "DELETE", alice, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
