package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/themis/config"
	"github.com/dev-mohitbeniwal/themis/model"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "Themis v"+config.Version+"\n", out)
}

func TestInitWritesDefaultPolicy(t *testing.T) {
	dir := t.TempDir()
	policyFile := filepath.Join(dir, "policies.json")

	out, err := run(t, "", "init", "--policy-file", policyFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated policy file")

	out, err = run(t, "", "validate", policyFile)
	require.NoError(t, err)
	assert.Contains(t, out, "default-policy: 1 rules, default deny")

	_, err = run(t, "", "init", "--policy-file", policyFile)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "", "init", "--policy-file", policyFile, "--force")
	assert.NoError(t, err)
}

func TestInitSample(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")

	_, err := run(t, "", "init",
		"--policy-file", filepath.Join(dir, "policies.yaml"),
		"--sample", "--sample-file", envFile)
	require.NoError(t, err)

	data, err := os.ReadFile(envFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ADMIN_API_KEY=")
	assert.FileExists(t, filepath.Join(dir, "policies.yaml"))
}

func TestValidateRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"p","default_effect":"maybe"}`), 0o644))

	_, err := run(t, "", "validate", path)
	assert.Error(t, err)

	_, err = run(t, "", "validate")
	assert.Error(t, err)
}

type fakeServer struct {
	mu       sync.Mutex
	policies map[string]model.Policy
	deleted  []string
	keys     []string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, r.Header.Get("WAY-API-KEY"))

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/admin/policies":
		list := make([]model.Policy, 0, len(f.policies))
		for _, p := range f.policies {
			list = append(list, p)
		}
		_ = json.NewEncoder(w).Encode(list)
	case r.Method == http.MethodPost && r.URL.Path == "/admin/policies":
		var p model.Policy
		_ = json.NewDecoder(r.Body).Decode(&p)
		if _, ok := f.policies[p.Name]; ok {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"DuplicateName","kind":"DuplicateName"}`))
			return
		}
		f.policies[p.Name] = p
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(p)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/admin/policies/"):
		name := strings.TrimPrefix(r.URL.Path, "/admin/policies/")
		delete(f.policies, name)
		f.deleted = append(f.deleted, name)
		_, _ = w.Write([]byte(`true`))
	default:
		http.NotFound(w, r)
	}
}

func pushFixture(t *testing.T) (*fakeServer, string, string) {
	t.Helper()
	fake := &fakeServer{policies: map[string]model.Policy{"old": {Name: "old"}}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	path := filepath.Join(t.TempDir(), "policies.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"One"},{"name":"Two"}]`), 0o644))
	return fake, server.URL, path
}

func TestPush(t *testing.T) {
	fake, endpoint, path := pushFixture(t)

	out, err := run(t, "", "push", path, "--endpoint", endpoint, "--api-key", "k")
	require.NoError(t, err)
	assert.Contains(t, out, "Created one")
	assert.Contains(t, out, "Created two")
	assert.Len(t, fake.policies, 3)
	assert.Empty(t, fake.deleted)
	assert.Equal(t, []string{"k", "k"}, fake.keys)

	_, err = run(t, "", "push", path, "--endpoint", endpoint, "--api-key", "k")
	assert.ErrorContains(t, err, "create policy one")
}

func TestPushOverwriteAsksForConfirmation(t *testing.T) {
	fake, endpoint, path := pushFixture(t)

	_, err := run(t, "n\n", "push", path, "--endpoint", endpoint, "--overwrite")
	assert.ErrorIs(t, err, errAborted)
	assert.Contains(t, fake.policies, "old")

	out, err := run(t, "yes\n", "push", path, "--endpoint", endpoint, "--overwrite")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted old")
	assert.Equal(t, []string{"old"}, fake.deleted)
	assert.Len(t, fake.policies, 2)
}

func TestPushOverwriteWithYes(t *testing.T) {
	fake, endpoint, path := pushFixture(t)

	_, err := run(t, "", "push", path, "--endpoint", endpoint, "--overwrite", "--yes")
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, fake.deleted)
	assert.NotContains(t, fake.policies, "old")
}
