package upstream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	Register("static", func(cfg Config) (Fetcher, error) {
		return FetcherFunc(func(_ context.Context, id string) ([]byte, error) {
			return []byte(cfg.BaseURL + "/" + id), nil
		}), nil
	})
	defer delete(registry, "static")

	f, err := New(Config{Source: "static", BaseURL: "base"})
	require.NoError(t, err)
	body, err := f.Fetch(context.Background(), "Comercio")
	require.NoError(t, err)
	assert.Equal(t, "base/Comercio", string(body))
	assert.Contains(t, Sources(), "static")

	_, err = Get("ftp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown upstream source")
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{StatusCode: 503, Body: "unavailable"}
	assert.Equal(t, "HTTP 503: unavailable", err.Error())
}
