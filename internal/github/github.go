package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultAPIURL = "https://api.github.com"
	DefaultWebURL = "https://github.com"

	apiVersion = "2022-11-28"

	// Error bodies larger than this are truncated; GitHub's are tiny.
	maxErrorBody = 64 << 10
)

// Client performs the dashboard's two mutations against the GitHub REST
// API. The token is supplied per call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("github: invalid API URL %q", baseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// DeleteBranch removes refs/heads/<branch>.
func (c *Client) DeleteBranch(ctx context.Context, token, owner, repo, branch string) error {
	path := fmt.Sprintf("/repos/%s/%s/git/refs/heads/%s",
		url.PathEscape(owner), url.PathEscape(repo), escapeRef(branch))
	if err := c.do(ctx, http.MethodDelete, path, token, nil); err != nil {
		return fmt.Errorf("delete branch %s: %w", branch, err)
	}
	return nil
}

// ClosePullRequest sets the PR state to closed.
func (c *Client) ClosePullRequest(ctx context.Context, token, owner, repo string, number int) error {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", url.PathEscape(owner), url.PathEscape(repo), number)
	body := map[string]string{"state": "closed"}
	if err := c.do(ctx, http.MethodPatch, path, token, body); err != nil {
		return fmt.Errorf("close PR #%d: %w", number, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("github request", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return parseAPIError(resp.StatusCode, data)
}

// escapeRef escapes each path segment of a ref name, keeping the slashes
// that separate them ("feature/x" stays two segments).
func escapeRef(ref string) string {
	parts := strings.Split(ref, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// APIError is a non-2xx response from the GitHub API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Message != "" {
		apiErr.Message = parsed.Message
	} else if s := strings.TrimSpace(string(body)); s != "" && len(s) <= 200 {
		apiErr.Message = s
	}
	return apiErr
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}

// WebURLs builds browser links on the GitHub web UI.
type WebURLs struct {
	Base string
}

func (w WebURLs) base() string {
	if w.Base == "" {
		return DefaultWebURL
	}
	return strings.TrimRight(w.Base, "/")
}

func (w WebURLs) CompareURL(owner, repo, base, head string) string {
	return fmt.Sprintf("%s/%s/%s/compare/%s...%s", w.base(), owner, repo, escapeRef(base), escapeRef(head))
}

func (w WebURLs) PullRequestURL(owner, repo string, number int) string {
	return fmt.Sprintf("%s/%s/%s/pull/%d", w.base(), owner, repo, number)
}
