package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/crimson-sun/vitigate/internal/auth"
	"github.com/crimson-sun/vitigate/internal/model"
	"github.com/crimson-sun/vitigate/internal/taxonomy"
	"github.com/crimson-sun/vitigate/internal/tracing"
	"github.com/crimson-sun/vitigate/internal/upstream"
)

// --- mocks ---

// mockFetcher serves fixed bodies per resource and counts calls.
type mockFetcher struct {
	bodies map[string]string
	err    error
	calls  atomic.Int32

	mu   sync.Mutex
	seen []string
}

func (m *mockFetcher) Fetch(_ context.Context, resourceID string) ([]byte, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.seen = append(m.seen, resourceID)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	body, ok := m.bodies[resourceID]
	if !ok {
		return nil, &upstream.APIError{StatusCode: 404, Body: "missing"}
	}
	return []byte(body), nil
}

// mockAuth accepts a single token.
type mockAuth struct {
	valid string
	fault error
	calls atomic.Int32
}

func (m *mockAuth) Authenticate(_ context.Context, bearer string) (auth.Identity, error) {
	m.calls.Add(1)
	if m.fault != nil {
		return auth.Identity{}, m.fault
	}
	if bearer == "" {
		return auth.Identity{}, auth.ErrMissingToken
	}
	if bearer != m.valid {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	return auth.Identity{Subject: "zorzi"}, nil
}

// panicFetcher simulates an unexpected fault inside a stage.
type panicFetcher struct{}

func (panicFetcher) Fetch(context.Context, string) ([]byte, error) { panic("boom") }

func newPipeline(f upstream.Fetcher, opts ...Option) *Pipeline {
	return New(taxonomy.Default(), f, opts...)
}

func requireKind(t *testing.T, err error, kind model.Kind) *model.GatewayError {
	t.Helper()
	var ge *model.GatewayError
	require.True(t, errors.As(err, &ge), "expected *model.GatewayError, got %T: %v", err, err)
	require.Equal(t, kind, ge.Kind, "error: %v", err)
	return ge
}

// --- tests ---

func TestHandle_TabDelimitedSuccess(t *testing.T) {
	f := &mockFetcher{bodies: map[string]string{"ProcessaViniferas": "nome\tano\nCabernet\t2020\n"}}
	env := newPipeline(f).Handle(context.Background(), Request{Action: "processamento", Type: "viniferas"})

	require.Equal(t, 200, env.StatusCode)
	recs, ok := env.Records()
	require.True(t, ok)
	require.Len(t, recs, 1)
	assert.Equal(t, map[string]any{"nome": "Cabernet", "ano": int64(2020)}, recs[0].Values)
}

func TestHandle_StrayQuoteIsData(t *testing.T) {
	f := &mockFetcher{bodies: map[string]string{"ImpVinhos": "pais;ano\nVinho \"Fino\";2020\n"}}
	env := newPipeline(f).Handle(context.Background(), Request{Action: "importacao", Type: "vinhos"})

	require.Equal(t, 200, env.StatusCode, "data: %v", env.Data)
	recs, ok := env.Records()
	require.True(t, ok)
	assert.Equal(t, `Vinho "Fino"`, recs[0].Values["pais"])
}

func TestHandle_UnknownActionIgnoresUpstream(t *testing.T) {
	f := &mockFetcher{err: errors.New("upstream must not be called")}
	env := newPipeline(f).Handle(context.Background(), Request{Action: "nosuchaction", Type: "x"})

	assert.Equal(t, model.Envelope{StatusCode: 404, Data: "not found"}, env)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestHandle_UnknownType(t *testing.T) {
	f := &mockFetcher{}
	env := newPipeline(f).Handle(context.Background(), Request{Action: "importacao", Type: "cachaca"})
	assert.Equal(t, 404, env.StatusCode)
	assert.Equal(t, NotFoundMessage, env.Data)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestHandle_UpstreamStatusRelayed(t *testing.T) {
	f := &mockFetcher{err: &upstream.APIError{StatusCode: 503, Body: "maintenance"}}
	env := newPipeline(f).Handle(context.Background(), Request{Action: "importacao", Type: "vinhos"})

	assert.Equal(t, 503, env.StatusCode)
	msg, ok := env.Data.(string)
	require.True(t, ok)
	assert.Contains(t, msg, "503")
	assert.NotContains(t, msg, "maintenance", "upstream body is not echoed to clients")
}

func TestHandle_TransportFailureIs500(t *testing.T) {
	f := &mockFetcher{err: errors.New("dial tcp: connection refused")}
	p := newPipeline(f)

	_, err := p.Fetch(context.Background(), Request{Action: "exportacao", Type: "suco"})
	ge := requireKind(t, err, model.UpstreamUnavailable)
	assert.Zero(t, ge.Status)

	env := p.Handle(context.Background(), Request{Action: "exportacao", Type: "suco"})
	assert.Equal(t, 500, env.StatusCode)
	assert.Contains(t, env.Data, "connection refused")
}

func TestHandle_ColumnMismatchIs400(t *testing.T) {
	f := &mockFetcher{bodies: map[string]string{"Comercio": "a;b;c\n1;2\n"}}
	env := newPipeline(f).Handle(context.Background(), Request{Action: "comercializacao", Type: "todos"})

	assert.Equal(t, 400, env.StatusCode)
	assert.Contains(t, env.Data, "wrong number of fields")
}

func TestHandle_InvalidEncodingIs400(t *testing.T) {
	f := &mockFetcher{bodies: map[string]string{"Comercio": "produto\nRos\xe9\n"}}
	p := newPipeline(f)
	env := p.Handle(context.Background(), Request{Action: "comercializacao"})
	assert.Equal(t, 400, env.StatusCode)

	p = newPipeline(f, WithCharset("latin1"))
	env = p.Handle(context.Background(), Request{Action: "comercializacao"})
	require.Equal(t, 200, env.StatusCode)
	recs, _ := env.Records()
	assert.Equal(t, "Rosé", recs[0].Values["produto"])
}

func TestHandle_DefaultType(t *testing.T) {
	f := &mockFetcher{bodies: map[string]string{
		"Comercio":         "a\n1\n",
		"ProcessaSemclass": "a\n2\n",
	}}
	p := newPipeline(f)

	env := p.Handle(context.Background(), Request{Action: "comercializacao"})
	require.Equal(t, 200, env.StatusCode)
	env = p.Handle(context.Background(), Request{Action: "processamento"})
	require.Equal(t, 200, env.StatusCode)
	assert.Equal(t, []string{"Comercio", "ProcessaSemclass"}, f.seen)

	env = p.Handle(context.Background(), Request{Action: "nosuchaction"})
	assert.Equal(t, 404, env.StatusCode)
}

func TestHandle_EmptyFileYieldsEmptyList(t *testing.T) {
	f := &mockFetcher{bodies: map[string]string{"Comercio": "a;b\n"}}
	env := newPipeline(f).Handle(context.Background(), Request{Action: "comercializacao"})
	require.Equal(t, 200, env.StatusCode)
	assert.Equal(t, []model.Record{}, env.Data)
}

func TestAuthorize_MissingTokenIs401(t *testing.T) {
	f := &mockFetcher{bodies: map[string]string{"Comercio": "a\n1\n"}}
	a := &mockAuth{valid: "good"}
	p := newPipeline(f, WithAuthenticator(a))

	env := p.Handle(context.Background(), Request{Action: "comercializacao"})
	assert.Equal(t, 401, env.StatusCode)
	assert.Equal(t, int32(0), f.calls.Load(), "unauthorized requests never reach upstream")

	env = p.Handle(context.Background(), Request{Action: "comercializacao", Bearer: "bad"})
	assert.Equal(t, 401, env.StatusCode)

	env = p.Handle(context.Background(), Request{Action: "comercializacao", Bearer: "good"})
	assert.Equal(t, 200, env.StatusCode)
}

func TestAuthorize_AfterResolve(t *testing.T) {
	a := &mockAuth{valid: "good"}
	p := newPipeline(&mockFetcher{}, WithAuthenticator(a))

	// Unknown keys are reported as NotFound even to unauthenticated callers.
	env := p.Handle(context.Background(), Request{Action: "nosuchaction"})
	assert.Equal(t, 404, env.StatusCode)
	assert.Equal(t, int32(0), a.calls.Load())
}

func TestAuthorize_InternalFault(t *testing.T) {
	a := &mockAuth{fault: errors.New("keystore offline")}
	p := newPipeline(&mockFetcher{}, WithAuthenticator(a))

	_, err := p.Fetch(context.Background(), Request{Action: "comercializacao", Bearer: "x"})
	requireKind(t, err, model.Internal)

	env := p.Handle(context.Background(), Request{Action: "comercializacao", Bearer: "x"})
	assert.Equal(t, 500, env.StatusCode)
	assert.Contains(t, env.Data, "keystore offline")
}

func TestPriority_OneKindPerRequest(t *testing.T) {
	// Every stage would fail: resolution wins.
	f := &mockFetcher{err: &upstream.APIError{StatusCode: 503}}
	p := newPipeline(f, WithAuthenticator(&mockAuth{valid: "good"}))

	_, err := p.Fetch(context.Background(), Request{Action: "importacao", Type: "nada"})
	requireKind(t, err, model.NotFound)

	// Resolvable but unauthenticated: auth wins over upstream.
	_, err = p.Fetch(context.Background(), Request{Action: "importacao", Type: "vinhos"})
	requireKind(t, err, model.Unauthorized)

	_, err = p.Fetch(context.Background(), Request{Action: "importacao", Type: "vinhos", Bearer: "good"})
	requireKind(t, err, model.UpstreamUnavailable)
}

func TestHandle_PanicBecomesInternal(t *testing.T) {
	p := newPipeline(panicFetcher{})
	var env model.Envelope
	require.NotPanics(t, func() {
		env = p.Handle(context.Background(), Request{Action: "comercializacao"})
	})
	assert.Equal(t, 500, env.StatusCode)
	assert.Contains(t, env.Data, "boom")
}

func TestFetch_Timeout(t *testing.T) {
	slow := upstream.FetcherFunc(func(ctx context.Context, _ string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	p := newPipeline(slow, WithTimeout(20*time.Millisecond))

	start := time.Now()
	env := p.Handle(context.Background(), Request{Action: "comercializacao"})
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 500, env.StatusCode)
	assert.Contains(t, env.Data, "deadline exceeded")
}

func TestBodyLogging(t *testing.T) {
	f := &mockFetcher{bodies: map[string]string{"Comercio": "a\n1\n"}}

	core, logs := observer.New(zapcore.DebugLevel)
	p := newPipeline(f, WithLogger(zap.New(core)))
	p.Handle(context.Background(), Request{Action: "comercializacao"})
	assert.Zero(t, logs.FilterMessage("upstream response").Len(), "body logging is off by default")

	p = newPipeline(f, WithLogger(zap.New(core)), WithBodyLogging(true))
	p.Handle(context.Background(), Request{Action: "comercializacao"})
	entries := logs.FilterMessage("upstream response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a\n1\n", entries[0].ContextMap()["body"])
}

func TestFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := newPipeline(&mockFetcher{}, WithLogger(zap.New(core)))
	p.Handle(context.Background(), Request{Action: "nosuchaction"})

	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "NOT_FOUND", entries[0].ContextMap()["kind"])
}

func TestTracingSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	f := &mockFetcher{bodies: map[string]string{"Comercio": "a\n1\n"}}

	p := newPipeline(f, WithTracer(tp.Tracer("test")))
	p.Handle(context.Background(), Request{Action: "comercializacao"})

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{tracing.SpanResolve, tracing.SpanFetch, tracing.SpanParse, tracing.SpanHandle}, names)
}

func TestTracingStatusCode(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	f := &mockFetcher{bodies: map[string]string{"Comercio": "a\n1\n"}}
	p := newPipeline(f, WithTracer(tp.Tracer("test")))

	p.Handle(context.Background(), Request{Action: "comercializacao"})
	p.Handle(context.Background(), Request{Action: "nosuchaction"})

	var statuses []int64
	for _, s := range recorder.Ended() {
		if s.Name() != tracing.SpanHandle {
			continue
		}
		for _, kv := range s.Attributes() {
			if string(kv.Key) == tracing.AttrStatusCode {
				statuses = append(statuses, kv.Value.AsInt64())
			}
		}
	}
	assert.Equal(t, []int64{200, 404}, statuses)
}

func TestConcurrentHandle(t *testing.T) {
	f := &mockFetcher{bodies: map[string]string{
		"ImpVinhos": "pais;ano\nChile;2020\n",
		"ExpVinho":  "pais;ano\nParaguai;2021\n",
	}}
	p := newPipeline(f)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			action, want := "importacao", "Chile"
			if i%2 == 1 {
				action, want = "exportacao", "Paraguai"
			}
			env := p.Handle(context.Background(), Request{Action: action, Type: "vinhos"})
			recs, ok := env.Records()
			if !ok || len(recs) != 1 || recs[0].Values["pais"] != want {
				t.Errorf("%s: unexpected envelope %+v", action, env)
			}
		}(i)
	}
	wg.Wait()
}

func TestFailureMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", model.Errorf(model.NotFound, "x"), 404},
		{"parse", &model.GatewayError{Kind: model.ParseFailure, Message: "bad"}, 400},
		{"unauthorized", &model.GatewayError{Kind: model.Unauthorized, Err: auth.ErrMissingToken}, 401},
		{"upstream 502", &model.GatewayError{Kind: model.UpstreamUnavailable, Status: 502}, 502},
		{"upstream 404", &model.GatewayError{Kind: model.UpstreamUnavailable, Status: 404}, 404},
		{"upstream unknown", &model.GatewayError{Kind: model.UpstreamUnavailable}, 500},
		{"upstream odd status", &model.GatewayError{Kind: model.UpstreamUnavailable, Status: 304}, 500},
		{"internal", &model.GatewayError{Kind: model.Internal, Message: "x"}, 500},
		{"plain error", errors.New("unexpected"), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Failure(tt.err)
			assert.Equal(t, tt.status, env.StatusCode)
			_, isString := env.Data.(string)
			assert.True(t, isString, "failure data is always a message")
		})
	}
}
