package output

import (
	"context"

	"github.com/crimson-sun/vitigate/internal/model"
)

// Result is the envelope served for one taxonomy key.
type Result struct {
	Action   string
	Type     string
	Envelope model.Envelope
}

// Output defines the interface for result destinations.
type Output interface {
	Write(ctx context.Context, result Result) error
	Close() error
}
