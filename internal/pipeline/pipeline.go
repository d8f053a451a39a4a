package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/crimson-sun/vitigate/internal/auth"
	"github.com/crimson-sun/vitigate/internal/model"
	"github.com/crimson-sun/vitigate/internal/parser"
	"github.com/crimson-sun/vitigate/internal/taxonomy"
	"github.com/crimson-sun/vitigate/internal/tracing"
	"github.com/crimson-sun/vitigate/internal/upstream"
)

// DefaultTimeout bounds a single request, fetch and parse included.
const DefaultTimeout = 30 * time.Second

// Request names the taxonomy key to serve. An empty Type selects the
// action's default type. Bearer is only consulted when the pipeline has an
// authenticator.
type Request struct {
	Action string
	Type   string
	Bearer string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAuthenticator protects the pipeline: requests must carry a valid bearer
// token. Without it every request is served openly.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(p *Pipeline) { p.auth = a }
}

// WithLogger sets the logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithTracer sets the tracer. Default: no-op.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithTimeout sets the per-request deadline. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithBodyLogging logs every raw upstream payload at debug level. It leaks
// upstream data into logs; keep it off in production.
func WithBodyLogging(enabled bool) Option {
	return func(p *Pipeline) { p.logBody = enabled }
}

// WithCharset sets the charset upstream payloads are decoded from.
func WithCharset(name string) Option {
	return func(p *Pipeline) { p.charset = name }
}

// Pipeline resolves a taxonomy key, fetches the upstream file and parses it
// into records. It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	registry *taxonomy.Registry
	fetcher  upstream.Fetcher
	auth     auth.Authenticator
	logger   *zap.Logger
	tracer   trace.Tracer
	timeout  time.Duration
	logBody  bool
	charset  string
}

// New creates a Pipeline over a registry and an upstream source.
func New(reg *taxonomy.Registry, fetcher upstream.Fetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: reg,
		fetcher:  fetcher,
		logger:   zap.NewNop(),
		tracer:   noop.NewTracerProvider().Tracer("noop"),
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the taxonomy the pipeline resolves against.
func (p *Pipeline) Registry() *taxonomy.Registry {
	return p.registry
}

// Handle runs the pipeline and wraps the outcome in an envelope. It never
// panics and never returns an error: every failure becomes an envelope.
func (p *Pipeline) Handle(ctx context.Context, req Request) model.Envelope {
	records, err := p.Fetch(ctx, req)
	if err != nil {
		env := Failure(err)
		p.logger.Warn("request failed",
			zap.String("action", req.Action),
			zap.String("type", req.Type),
			zap.Stringer("kind", KindOf(err)),
			zap.Int("status_code", env.StatusCode),
			zap.Error(err))
		return env
	}
	return Success(records)
}

// Fetch runs the pipeline and returns the parsed records, or a
// *model.GatewayError describing the first stage that failed.
func (p *Pipeline) Fetch(ctx context.Context, req Request) (records []model.Record, err error) {
	ctx, span := p.tracer.Start(ctx, tracing.SpanHandle, trace.WithAttributes(
		attribute.String(tracing.AttrAction, req.Action),
		attribute.String(tracing.AttrType, req.Type),
	))
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = &model.GatewayError{Kind: model.Internal, Message: fmt.Sprintf("internal error: %v", r)}
		}
		if err != nil {
			ge := classify(err)
			err = ge
			span.RecordError(ge)
			span.SetStatus(codes.Error, ge.Error())
			span.SetAttributes(
				attribute.String(tracing.AttrErrorKind, ge.Kind.String()),
				attribute.Int(tracing.AttrStatusCode, Failure(ge).StatusCode),
			)
		} else {
			span.SetAttributes(
				attribute.Int(tracing.AttrRecords, len(records)),
				attribute.Int(tracing.AttrStatusCode, http.StatusOK),
			)
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	entry, err := p.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := p.authorize(ctx, req.Bearer); err != nil {
		return nil, err
	}
	body, err := p.download(ctx, entry)
	if err != nil {
		return nil, err
	}
	return p.parse(ctx, entry, body)
}

func (p *Pipeline) resolve(ctx context.Context, req Request) (model.Entry, error) {
	_, span := p.tracer.Start(ctx, tracing.SpanResolve)
	defer span.End()

	typ := req.Type
	if typ == "" {
		def, ok := p.registry.Default(req.Action)
		if !ok {
			return model.Entry{}, model.Errorf(model.NotFound, "unknown action %q", req.Action)
		}
		typ = def
	}
	entry, err := p.registry.Lookup(req.Action, typ)
	if err != nil {
		return model.Entry{}, err
	}
	span.SetAttributes(attribute.String(tracing.AttrResource, entry.ResourceID))
	return entry, nil
}

func (p *Pipeline) authorize(ctx context.Context, bearer string) error {
	if p.auth == nil {
		return nil
	}
	ctx, span := p.tracer.Start(ctx, tracing.SpanAuth)
	defer span.End()

	if _, err := p.auth.Authenticate(ctx, bearer); err != nil {
		if auth.IsUnauthorized(err) {
			return &model.GatewayError{Kind: model.Unauthorized, Err: err}
		}
		return &model.GatewayError{Kind: model.Internal, Message: "authentication failed", Err: err}
	}
	return nil
}

func (p *Pipeline) download(ctx context.Context, entry model.Entry) ([]byte, error) {
	ctx, span := p.tracer.Start(ctx, tracing.SpanFetch, trace.WithAttributes(
		attribute.String(tracing.AttrResource, entry.ResourceID),
	))
	defer span.End()

	body, err := p.fetcher.Fetch(ctx, entry.ResourceID)
	if err != nil {
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) {
			return nil, &model.GatewayError{
				Kind:    model.UpstreamUnavailable,
				Message: fmt.Sprintf("could not retrieve upstream data (HTTP %d)", apiErr.StatusCode),
				Status:  apiErr.StatusCode,
			}
		}
		return nil, &model.GatewayError{
			Kind:    model.UpstreamUnavailable,
			Message: "could not retrieve upstream data",
			Err:     err,
		}
	}
	span.SetAttributes(attribute.Int(tracing.AttrBodyBytes, len(body)))

	if p.logBody {
		p.logger.Debug("upstream response",
			zap.String("resource", entry.ResourceID),
			zap.ByteString("body", body))
	}
	return body, nil
}

func (p *Pipeline) parse(ctx context.Context, entry model.Entry, body []byte) ([]model.Record, error) {
	_, span := p.tracer.Start(ctx, tracing.SpanParse)
	defer span.End()

	records, err := parser.Parse(body, entry.Comma(), parser.WithCharset(p.charset))
	if err != nil {
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			return nil, &model.GatewayError{Kind: model.ParseFailure, Err: pe}
		}
		return nil, err
	}
	return records, nil
}

// classify turns any error into a GatewayError; unknown errors are Internal.
func classify(err error) *model.GatewayError {
	var ge *model.GatewayError
	if errors.As(err, &ge) {
		return ge
	}
	return &model.GatewayError{Kind: model.Internal, Message: err.Error(), Err: err}
}

// KindOf returns the classification of err.
func KindOf(err error) model.Kind {
	return classify(err).Kind
}
