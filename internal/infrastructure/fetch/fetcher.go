package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"floristeria-calendar-sync/internal/domain"
	"floristeria-calendar-sync/internal/ports"

	"github.com/rs/zerolog"
)

const (
	userAgent = "Floristeria-Calendar/1.0"

	// DefaultFetchTimeout bounds a sync fetch; a hung endpoint must not
	// stall the poll cycle.
	DefaultFetchTimeout = 30 * time.Second

	// testTimeout is tighter: connection tests are interactive.
	testTimeout = 10 * time.Second

	// previewLimit truncates test-response bodies to a preview.
	previewLimit = 500

	// maxResponseBytes caps how much of any response is read.
	maxResponseBytes = 10 << 20
)

// HTTPFetcher retrieves integration endpoints with bounded timeouts and
// source-kind-specific credential placement.
type HTTPFetcher struct {
	client     *http.Client
	testClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPFetcher creates a fetcher. A non-positive timeout falls back to
// the default.
func NewHTTPFetcher(timeout time.Duration, logger zerolog.Logger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{
		client:     &http.Client{Timeout: timeout},
		testClient: &http.Client{Timeout: testTimeout},
		logger:     logger,
	}
}

// buildRequest assembles the request for an integration: method, body,
// administrator-supplied headers, and the API key placed where the
// source kind expects it.
func (f *HTTPFetcher) buildRequest(ctx context.Context, integration *domain.Integration) (*http.Request, error) {
	method := integration.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader = http.NoBody
	if method != http.MethodGet && integration.RequestBody != "" {
		body = strings.NewReader(integration.RequestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, integration.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range integration.Headers {
		req.Header.Set(k, v)
	}
	if integration.APIKey != "" {
		switch integration.SourceKind {
		case domain.SourceWeather:
			req.Header.Set("X-API-KEY", integration.APIKey)
		case domain.SourceEvents:
			req.Header.Set("Authorization", "Bearer "+integration.APIKey)
		default:
			req.Header.Set("API-KEY", integration.APIKey)
		}
	}
	return req, nil
}

// Fetch retrieves and decodes the integration's endpoint for a sync run.
func (f *HTTPFetcher) Fetch(ctx context.Context, integration *domain.Integration) (*ports.FetchResult, error) {
	req, err := f.buildRequest(ctx, integration)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", integration.Endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, integration.Endpoint)
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding response JSON: %w", err)
	}
	return &ports.FetchResult{
		StatusCode: resp.StatusCode,
		Body:       body,
		Payload:    payload,
	}, nil
}

// Test performs the fetch step only. Non-2xx responses are part of the
// result, not errors, and the body is truncated to a preview.
func (f *HTTPFetcher) Test(ctx context.Context, integration *domain.Integration) (*ports.FetchResult, error) {
	req, err := f.buildRequest(ctx, integration)
	if err != nil {
		return nil, err
	}

	resp, err := f.testClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection test against %s: %w", integration.Endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	result := &ports.FetchResult{StatusCode: resp.StatusCode}
	if len(body) > previewLimit {
		result.Body = body[:previewLimit]
	} else {
		result.Body = body
	}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var payload any
		if err := json.Unmarshal(body, &payload); err == nil {
			result.Payload = payload
		}
	}
	return result, nil
}
