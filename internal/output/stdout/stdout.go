package stdout

import (
	"context"
	"fmt"
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/crimson-sun/vitigate/internal/output"
)

// Output writes JSON-encoded results to a terminal stream, one per line unless pretty.
type Output struct {
	mu        sync.Mutex
	enc       *jsoniter.Encoder
	verbosity output.Verbosity
}

// New creates an Output on w (normally the process stdout) with
// verbosity-aware shaping and optional pretty-printed JSON.
func New(w io.Writer, verbosity output.Verbosity, pretty bool) *Output {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Output{enc: enc, verbosity: verbosity}
}

func (o *Output) Write(_ context.Context, result output.Result) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.enc.Encode(output.FormatResult(result, o.verbosity)); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
