package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/crimson-sun/vitigate/internal/upstream"
)

// DefaultBaseURL is the vitibrasil download area.
const DefaultBaseURL = "http://vitibrasil.cnpuv.embrapa.br/download"

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

func init() {
	upstream.Register("http", func(cfg upstream.Config) (upstream.Fetcher, error) {
		base := cfg.BaseURL
		if base == "" {
			base = DefaultBaseURL
		}
		if _, err := url.Parse(base); err != nil {
			return nil, fmt.Errorf("httpclient: base url: %w", err)
		}
		var opts []Option
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		return New(base, opts...), nil
	})
}

// Client downloads CSV resources over HTTP. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures Client behavior.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout reports the per-request limit of the underlying client.
func (c *Client) Timeout() time.Duration { return c.httpClient.Timeout }

// URL returns the address of a resource.
func (c *Client) URL(resourceID string) string {
	return c.baseURL + "/" + url.PathEscape(resourceID) + ".csv"
}

// Fetch sends GET {baseURL}/{resourceID}.csv and returns the body.
// Returns *upstream.APIError for non-2xx responses.
func (c *Client) Fetch(ctx context.Context, resourceID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(resourceID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")
	// Setting Accept-Encoding disables the transport's transparent
	// decompression, so gzip bodies are decoded below.
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", resourceID, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyStr := string(body)
		if len(bodyStr) > maxErrorBody {
			bodyStr = bodyStr[:maxErrorBody]
		}
		return nil, &upstream.APIError{StatusCode: resp.StatusCode, Body: bodyStr}
	}
	return body, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	if !strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		return io.ReadAll(resp.Body)
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
