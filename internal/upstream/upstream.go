package upstream

import (
	"context"
	"fmt"
	"time"
)

// Fetcher downloads the raw payload of one upstream resource.
type Fetcher interface {
	Fetch(ctx context.Context, resourceID string) ([]byte, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, resourceID string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, resourceID string) ([]byte, error) {
	return f(ctx, resourceID)
}

// Config holds source-specific settings.
type Config struct {
	Source  string
	BaseURL string
	Dir     string
	Timeout time.Duration
}

// APIError reports a resource the upstream answered with a non-success status.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}
