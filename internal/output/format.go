package output

import (
	"strings"

	"github.com/crimson-sun/vitigate/internal/model"
)

// Verbosity selects how much of a Result is written.
type Verbosity int

const (
	// Minimal writes only the envelope data: the record list or the error message.
	Minimal Verbosity = iota
	// Standard writes the envelope as served over HTTP.
	Standard
	// Full writes the envelope tagged with its action and type.
	Full
)

// ParseVerbosity converts "minimal", "standard" or "full". Unknown strings
// select Standard.
func ParseVerbosity(s string) Verbosity {
	switch strings.ToLower(s) {
	case "minimal":
		return Minimal
	case "full":
		return Full
	default:
		return Standard
	}
}

// Tagged is the Full rendering of a Result.
type Tagged struct {
	Action     string `json:"action"`
	Type       string `json:"type"`
	StatusCode int    `json:"status_code"`
	Data       any    `json:"data"`
}

// FormatResult returns the value to encode for r at the given verbosity.
func FormatResult(r Result, verbosity Verbosity) any {
	switch verbosity {
	case Minimal:
		return r.Envelope.Data
	case Full:
		return Tagged{
			Action:     r.Action,
			Type:       r.Type,
			StatusCode: r.Envelope.StatusCode,
			Data:       r.Envelope.Data,
		}
	default:
		return model.Envelope{StatusCode: r.Envelope.StatusCode, Data: r.Envelope.Data}
	}
}
