package vitigate

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type options struct {
	baseURL    string
	localDir   string
	timeout    time.Duration
	charset    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Gateway.
type Option func(*options)

// WithBaseURL sets the upstream download area. Default: the Embrapa
// vitibrasil download URL.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithLocalDir reads {dir}/{resource}.csv instead of downloading.
// It takes precedence over WithBaseURL.
func WithLocalDir(dir string) Option {
	return func(o *options) { o.localDir = dir }
}

// WithTimeout bounds each Fetch, download and parse included. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithCharset sets the encoding upstream files are decoded from,
// e.g. "iso-8859-1". Default: UTF-8.
func WithCharset(name string) Option {
	return func(o *options) { o.charset = name }
}

// WithHTTPClient replaces the HTTP client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger enables diagnostic logging of failed fetches.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func defaultOptions() options {
	return options{
		timeout: 30 * time.Second,
		logger:  zap.NewNop(),
	}
}
