package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ytwork/youtrack-mcp-server/internal/config"
)

// mockAuthenticator implements the Authenticator interface for testing
type mockAuthenticator struct{}

func (m *mockAuthenticator) Authenticate(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer test-token")
	return nil
}

// newTestClient creates a client for testing with a mock authenticator
func newTestClient(serverURL string, version string) *Client {
	cfg := newTestConfig(serverURL)

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
	}

	return &Client{
		httpClient:    httpClient,
		config:        cfg,
		logger:        zap.NewNop(),
		authenticator: &mockAuthenticator{},
		version:       version,
	}
}

// newTestConfig creates a test configuration pointing to the given server URL
func newTestConfig(serverURL string) *config.Config {
	return &config.Config{
		BaseURL:         serverURL,
		APIToken:        "perm:test-token", // pragma: allowlist secret
		Timeout:         5 * time.Second,
		MaxRetries:      2,
		RetryWaitMin:    100 * time.Millisecond,
		RetryWaitMax:    500 * time.Millisecond,
		MaxIdleConns:    10,
		IdleConnTimeout: 30 * time.Second,
		TLSVerify:       false, // Disable for test server
		EnableRateLimit: false,
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "context canceled",
			err:      context.Canceled,
			expected: false,
		},
		{
			name:     "context deadline exceeded",
			err:      context.DeadlineExceeded,
			expected: false,
		},
		{
			name:     "connection reset error message",
			err:      &mockError{msg: "connection reset by peer"},
			expected: true,
		},
		{
			name:     "connection refused error message",
			err:      &mockError{msg: "connection refused"},
			expected: true,
		},
		{
			name:     "network unreachable error message",
			err:      &mockError{msg: "network is unreachable"},
			expected: true,
		},
		{
			name:     "i/o timeout error message",
			err:      &mockError{msg: "i/o timeout"},
			expected: true,
		},
		{
			name:     "TLS handshake timeout",
			err:      &mockError{msg: "TLS handshake timeout"},
			expected: true,
		},
		{
			name:     "EOF error",
			err:      &mockError{msg: "EOF"},
			expected: true,
		},
		{
			name:     "unknown error - not retryable",
			err:      &mockError{msg: "some random error"},
			expected: false,
		},
		{
			name:     "authentication error - not retryable",
			err:      &mockError{msg: "invalid credentials"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRetryable(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		expected   bool
	}{
		{"429 Too Many Requests", http.StatusTooManyRequests, true},
		{"500 Internal Server Error", http.StatusInternalServerError, true},
		{"502 Bad Gateway", http.StatusBadGateway, true},
		{"503 Service Unavailable", http.StatusServiceUnavailable, true},
		{"504 Gateway Timeout", http.StatusGatewayTimeout, true},
		{"200 OK - no retry", http.StatusOK, false},
		{"201 Created - no retry", http.StatusCreated, false},
		{"400 Bad Request - no retry", http.StatusBadRequest, false},
		{"401 Unauthorized - no retry", http.StatusUnauthorized, false},
		{"403 Forbidden - no retry", http.StatusForbidden, false},
		{"404 Not Found - no retry", http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shouldRetry(tt.statusCode)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestRequestPathJoining(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"relative path", "issues/DEMO-1", "/api/issues/DEMO-1"},
		{"leading slash trimmed", "/issues/DEMO-1", "/api/issues/DEMO-1"},
		{"nested admin path", "admin/projects/0-0/timeTrackingSettings/workItemTypes", "/api/admin/projects/0-0/timeTrackingSettings/workItemTypes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedPath = r.URL.Path
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{}`))
			}))
			defer server.Close()

			c := newTestClient(server.URL, "test")

			_, err := c.doRequest(context.Background(), &Request{Method: "GET", Path: tt.path})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, capturedPath)
		})
	}
}

func TestURLEncoding(t *testing.T) {
	tests := []struct {
		name           string
		query          map[string]string
		expectedParams []string // params that should be in the URL (order may vary)
	}{
		{
			name: "simple query params",
			query: map[string]string{
				"$top":   "10",
				"fields": "id,summary",
			},
			expectedParams: []string{"%24top=10", "fields=id%2Csummary"},
		},
		{
			name: "issue search query",
			query: map[string]string{
				"query": "project: DEMO #Unresolved",
			},
			expectedParams: []string{"query=project%3A+DEMO+%23Unresolved"},
		},
		{
			name: "query params with spaces",
			query: map[string]string{
				"query": "hello world",
			},
			expectedParams: []string{"query=hello+world"},
		},
		{
			name: "query params with unicode",
			query: map[string]string{
				"query": "日本語",
			},
			expectedParams: []string{"query=%E6%97%A5%E6%9C%AC%E8%AA%9E"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedURL string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedURL = r.URL.String()
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{}`))
			}))
			defer server.Close()

			c := newTestClient(server.URL, "test")

			req := &Request{
				Method: "GET",
				Path:   "issues",
				Query:  tt.query,
			}

			_, _ = c.doRequest(context.Background(), req)

			for _, param := range tt.expectedParams {
				assert.Contains(t, capturedURL, param,
					"URL should contain properly encoded param: %s", param)
			}
		})
	}
}

func TestUserAgentHeader(t *testing.T) {
	var capturedUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, "1.2.3")

	_, _ = c.doRequest(context.Background(), &Request{Method: "GET", Path: "users/me"})

	assert.Equal(t, "youtrack-mcp-server/1.2.3", capturedUserAgent)
}

func TestAuthorizationHeader(t *testing.T) {
	var capturedAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, "test")

	_, _ = c.doRequest(context.Background(), &Request{Method: "GET", Path: "users/me"})

	assert.Equal(t, "Bearer test-token", capturedAuth)
}

func TestRequestIDHeader(t *testing.T) {
	var capturedHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeaders = r.Header
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, "test")

	req := &Request{
		Method:    "POST",
		Path:      "issues",
		RequestID: "test-123",
	}

	_, _ = c.doRequest(context.Background(), req)

	assert.Equal(t, "test-123", capturedHeaders.Get("X-Request-ID"))
}

func TestResponseParsing(t *testing.T) {
	tests := []struct {
		name         string
		statusCode   int
		responseBody string
	}{
		{
			name:         "successful response",
			statusCode:   http.StatusOK,
			responseBody: `{"id": "2-1", "idReadable": "DEMO-1"}`,
		},
		{
			name:         "empty response body",
			statusCode:   http.StatusNoContent,
			responseBody: "",
		},
		{
			name:         "large response body",
			statusCode:   http.StatusOK,
			responseBody: `{"description": "` + strings.Repeat("x", 10000) + `"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer server.Close()

			c := newTestClient(server.URL, "test")

			resp, err := c.doRequest(context.Background(), &Request{Method: "GET", Path: "issues"})
			require.NoError(t, err)
			assert.Equal(t, tt.statusCode, resp.StatusCode)
			assert.Equal(t, tt.responseBody, string(resp.Body))
		})
	}
}

func TestRequestBody(t *testing.T) {
	var capturedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, "test")

	testBody := map[string]interface{}{
		"summary":     "Login page broken",
		"description": "Reproduces on Safari",
		"project":     map[string]string{"id": "0-0"},
	}

	req := &Request{
		Method: "POST",
		Path:   "issues",
		Body:   testBody,
	}

	_, err := c.doRequest(context.Background(), req)
	require.NoError(t, err)

	var receivedBody map[string]interface{}
	err = json.Unmarshal(capturedBody, &receivedBody)
	require.NoError(t, err)

	assert.Equal(t, "Login page broken", receivedBody["summary"])
	assert.Equal(t, "Reproduces on Safari", receivedBody["description"])
}

func TestCustomHeaders(t *testing.T) {
	var capturedHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeaders = r.Header
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, "test")

	req := &Request{
		Method: "GET",
		Path:   "issues",
		Headers: map[string]string{
			"X-Custom-Header": "custom-value",
			"X-Another":       "another-value",
		},
	}

	_, _ = c.doRequest(context.Background(), req)

	assert.Equal(t, "custom-value", capturedHeaders.Get("X-Custom-Header"))
	assert.Equal(t, "another-value", capturedHeaders.Get("X-Another"))
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(server.URL, "test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.doRequest(ctx, &Request{Method: "GET", Path: "issues"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}

func TestRetryOn429(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requestCount++
		if requestCount == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": "rate limited"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, "test")

	resp, err := c.Do(context.Background(), &Request{Method: "GET", Path: "issues"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, requestCount, "Should have made 2 requests (1 failed + 1 success)")
}

func TestRetriesExhausted(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requestCount++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(server.URL, "test")

	_, err := c.Do(context.Background(), &Request{Method: "GET", Path: "issues"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, 3, requestCount, "initial attempt plus MaxRetries retries")
}

func TestClientErrorNotRetried(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requestCount++
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "Issue not found"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, "test")

	resp, err := c.Do(context.Background(), &Request{Method: "GET", Path: "issues/DEMO-999"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, requestCount)
}

// Helper types

type mockError struct {
	msg string
}

func (e *mockError) Error() string {
	return e.msg
}
