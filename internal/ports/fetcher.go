package ports

import (
	"context"

	"floristeria-calendar-sync/internal/domain"
)

// FetchResult is the outcome of one request against an integration's
// endpoint.
type FetchResult struct {
	StatusCode int
	Body       []byte
	// Payload holds the decoded JSON document, nil when the response was
	// not JSON.
	Payload any
}

// PayloadFetcher performs the network step of a sync. Implementations
// must bound every request with a timeout; a hung endpoint must not
// stall the poll cycle.
type PayloadFetcher interface {
	// Fetch retrieves and decodes the integration's endpoint. Non-2xx
	// responses and undecodable bodies are errors.
	Fetch(ctx context.Context, integration *domain.Integration) (*FetchResult, error)

	// Test performs the fetch step only, for configuration validation.
	// Non-2xx responses are reported in the result, not as errors; the
	// body is truncated to a preview.
	Test(ctx context.Context, integration *domain.Integration) (*FetchResult, error)
}
