package vitigate

import (
	"errors"

	"github.com/crimson-sun/vitigate/internal/model"
	"github.com/crimson-sun/vitigate/internal/pipeline"
)

// Kind classifies a failed Fetch.
type Kind string

const (
	NotFound            Kind = "NOT_FOUND"
	Unauthorized        Kind = "UNAUTHORIZED"
	UpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	ParseFailure        Kind = "PARSE_FAILURE"
	Internal            Kind = "INTERNAL"
)

// Error describes a failed Fetch. StatusCode is the HTTP status the gateway
// would serve for it.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.err }

func errorFrom(err error) *Error {
	var ge *model.GatewayError
	if !errors.As(err, &ge) {
		ge = &model.GatewayError{Kind: model.Internal, Err: err}
	}
	env := pipeline.Failure(ge)
	msg, _ := env.Data.(string)
	return &Error{
		Kind:       Kind(ge.Kind.String()),
		Message:    msg,
		StatusCode: env.StatusCode,
		err:        ge,
	}
}
