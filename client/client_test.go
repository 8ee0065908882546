package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/themis/model"
)

func TestClientSendsKeyAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get(APIKeyHeader))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/policies":
			_, _ = w.Write([]byte(`[{"name":"a","version":"1.0","rules":[],"default_effect":"deny"}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/admin/policies":
			var p model.Policy
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(p)
		case r.Method == http.MethodDelete && r.URL.EscapedPath() == "/admin/policies/a%2Fb":
			_, _ = w.Write([]byte(`true`))
		case r.Method == http.MethodPost && r.URL.Path == "/check":
			_, _ = w.Write([]byte(`{"allowed":true,"reason":"a:r"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := New(server.URL+"/", "k")
	ctx := context.Background()

	policies, err := c.ListPolicies(ctx)
	require.NoError(t, err)
	require.Len(t, policies, 1)
	assert.Equal(t, "a", policies[0].Name)

	created, err := c.CreatePolicy(ctx, model.Policy{Name: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", created.Name)

	removed, err := c.DeletePolicy(ctx, "a/b")
	require.NoError(t, err)
	assert.True(t, removed)

	resp, err := c.Check(ctx, model.CheckRequest{Principal: model.EntityRef{URI: "u"}})
	require.NoError(t, err)
	assert.Equal(t, &model.CheckResponse{Allowed: true, Reason: "a:r"}, resp)
}

func TestClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"DuplicateName","kind":"DuplicateName"}`))
	}))
	defer server.Close()

	_, err := New(server.URL, "").CreatePolicy(context.Background(), model.Policy{Name: "dup"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "DuplicateName", apiErr.Kind)
}

func TestNewDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")
	c := New("", "")
	assert.Equal(t, DefaultEndpoint, c.endpoint)
	assert.Equal(t, "from-env", c.apiKey)
}
