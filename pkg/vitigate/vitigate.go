package vitigate

import (
	"context"
	"fmt"

	"github.com/crimson-sun/vitigate/internal/parser"
	"github.com/crimson-sun/vitigate/internal/pipeline"
	"github.com/crimson-sun/vitigate/internal/taxonomy"
	"github.com/crimson-sun/vitigate/internal/upstream"
	"github.com/crimson-sun/vitigate/internal/upstream/httpclient"
	"github.com/crimson-sun/vitigate/internal/upstream/localdir"
)

// Gateway resolves dataset keys and fetches them from upstream.
// Safe for concurrent use.
type Gateway struct {
	pipeline *pipeline.Pipeline
}

// New creates a Gateway over the built-in taxonomy.
func New(opts ...Option) (*Gateway, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.charset != "" && !parser.ValidCharset(o.charset) {
		return nil, fmt.Errorf("vitigate: unknown charset %q", o.charset)
	}

	p := pipeline.New(taxonomy.Default(), newFetcher(o),
		pipeline.WithTimeout(o.timeout),
		pipeline.WithCharset(o.charset),
		pipeline.WithLogger(o.logger),
	)
	return &Gateway{pipeline: p}, nil
}

func newFetcher(o options) upstream.Fetcher {
	if o.localDir != "" {
		return localdir.New(o.localDir)
	}
	base := o.baseURL
	if base == "" {
		base = httpclient.DefaultBaseURL
	}
	var hcOpts []httpclient.Option
	if o.httpClient != nil {
		hcOpts = append(hcOpts, httpclient.WithHTTPClient(o.httpClient))
	} else if o.timeout > 0 {
		hcOpts = append(hcOpts, httpclient.WithTimeout(o.timeout))
	}
	return httpclient.New(base, hcOpts...)
}

// Fetch downloads and parses the dataset for (action, typ). An empty typ
// selects the action's default type. Failures are returned as *Error.
func (g *Gateway) Fetch(ctx context.Context, action, typ string) ([]Record, error) {
	recs, err := g.pipeline.Fetch(ctx, pipeline.Request{Action: action, Type: typ})
	if err != nil {
		return nil, errorFrom(err)
	}
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = Record(r)
	}
	return out, nil
}
