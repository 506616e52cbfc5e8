package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return client.WithHTTPClient(server.Client()), calls
}

func TestDeleteBranch(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/repos/acme/app/git/refs/heads/feature/x", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, apiVersion, r.Header.Get("X-GitHub-Api-Version"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteBranch(context.Background(), "secret", "acme", "app", "feature/x"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClosePullRequest(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/repos/acme/app/pulls/42", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"state": "closed"}, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"number": 42, "state": "closed"}`))
	})

	require.NoError(t, client.ClosePullRequest(context.Background(), "secret", "acme", "app", 42))
}

func TestAPIErrorIsReturnedWithoutRetry(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "Reference does not exist"}`))
	})

	err := client.DeleteBranch(context.Background(), "secret", "acme", "app", "gone")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "Reference does not exist", apiErr.Message)
	assert.Contains(t, err.Error(), "delete branch gone")
	assert.Contains(t, err.Error(), "HTTP 422")
}

func TestErrorHelpers(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/app/pulls/1":
			w.WriteHeader(http.StatusNotFound)
		default:
			http.Error(w, "Bad credentials", http.StatusUnauthorized)
		}
	})

	err := client.ClosePullRequest(context.Background(), "t", "acme", "app", 1)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "HTTP 404 Not Found")

	err = client.ClosePullRequest(context.Background(), "t", "acme", "app", 2)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Bad credentials")
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient(url, time.Second, nil)
	require.NoError(t, err)
	err = client.DeleteBranch(context.Background(), "t", "acme", "app", "x")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, IsNotFound(err))
	assert.False(t, errors.As(err, &apiErr))
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://example.com", time.Second, nil)
	assert.Error(t, err)
	_, err = NewClient("::", time.Second, nil)
	assert.Error(t, err)

	c, err := NewClient("", time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, c.baseURL)
}

func TestWebURLs(t *testing.T) {
	w := WebURLs{}
	assert.Equal(t, "https://github.com/acme/app/compare/main...feature/x", w.CompareURL("acme", "app", "main", "feature/x"))
	assert.Equal(t, "https://github.com/acme/app/pull/42", w.PullRequestURL("acme", "app", 42))

	ghe := WebURLs{Base: "https://ghe.example.com/"}
	assert.Equal(t, "https://ghe.example.com/acme/app/pull/1", ghe.PullRequestURL("acme", "app", 1))
}
