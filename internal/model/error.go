package model

import "fmt"

// Kind classifies a gateway failure. A request yields exactly one kind.
type Kind int

const (
	Internal Kind = iota
	NotFound
	Unauthorized
	UpstreamUnavailable
	ParseFailure
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NOT_FOUND"
	case Unauthorized:
		return "UNAUTHORIZED"
	case UpstreamUnavailable:
		return "UPSTREAM_UNAVAILABLE"
	case ParseFailure:
		return "PARSE_FAILURE"
	default:
		return "INTERNAL"
	}
}

// GatewayError is a classified pipeline failure.
type GatewayError struct {
	Kind    Kind
	Message string
	Status  int   // upstream HTTP status when known, otherwise 0
	Err     error // underlying cause, may be nil
}

func (e *GatewayError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Errorf builds a GatewayError of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) *GatewayError {
	return &GatewayError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
