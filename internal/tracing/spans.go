package tracing

// Span attribute keys.
const (
	AttrAction     = "gateway.action"
	AttrType       = "gateway.type"
	AttrResource   = "gateway.resource"
	AttrErrorKind  = "gateway.error.kind"
	AttrStatusCode = "gateway.status_code"
	AttrRecords    = "gateway.records"
	AttrBodyBytes  = "upstream.body.bytes"
	AttrRequestID  = "http.request.id"
	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.response.status_code"
)

// Span names.
const (
	SpanHandle  = "gateway.handle"
	SpanResolve = "gateway.resolve"
	SpanAuth    = "gateway.authorize"
	SpanFetch   = "gateway.fetch"
	SpanParse   = "gateway.parse"
	SpanHTTP    = "http.server"
)
