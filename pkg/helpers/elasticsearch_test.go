package helpers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeES(t *testing.T, status int, seen *map[string]any, path *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*path = r.Method + " " + r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, seen)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestUserIndexIndexUser(t *testing.T) {
	var doc map[string]any
	var path string
	srv := fakeES(t, http.StatusCreated, &doc, &path)

	es, err := NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)

	err = NewUserIndex(es, "users").IndexUser(context.Background(), "u-1", map[string]any{"email": "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "PUT /users/_doc/u-1", path)
	assert.Equal(t, "a@example.com", doc["email"])
}

func TestUserIndexErrorStatus(t *testing.T) {
	var doc map[string]any
	var path string
	srv := fakeES(t, http.StatusBadRequest, &doc, &path)

	es, err := NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)

	err = NewUserIndex(es, "users").IndexUser(context.Background(), "u-1", map[string]any{})
	assert.Error(t, err)
}

func TestUserIndexDisabled(t *testing.T) {
	var x *UserIndex
	assert.NoError(t, x.IndexUser(context.Background(), "u-1", nil))
	assert.NoError(t, NewUserIndex(nil, "users").IndexUser(context.Background(), "u-1", nil))
}
