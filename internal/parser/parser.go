// Package parser turns delimited upstream payloads into records.
//
// The first line is the header. Cell types are inferred per column: a column
// whose non-empty cells are all integers becomes int64, all numeric becomes
// float64, all boolean literals becomes bool, anything else stays a string.
// Empty cells become nil.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/crimson-sun/vitigate/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseError reports a payload that does not match the parser's expectations.
type ParseError struct {
	Line int // 1-based line of the offending input, 0 when unknown
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	// ErrEmpty is returned when the payload has no header row.
	ErrEmpty = errors.New("no columns to parse from file")
	// ErrEncoding is returned when the payload is not valid in its charset.
	ErrEncoding = errors.New("payload is not valid UTF-8")
)

type options struct {
	charset string
}

// Option configures Parse.
type Option func(*options)

// WithCharset decodes the payload from the named charset before parsing.
// "", "utf-8" and "utf8" mean strict UTF-8.
func WithCharset(name string) Option {
	return func(o *options) { o.charset = name }
}

// Parse decodes body and splits it on delimiter into records, in file order.
func Parse(body []byte, delimiter rune, opts ...Option) ([]model.Record, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	text, err := decode(body, o.charset)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delimiter
	r.FieldsPerRecord = 0
	// Quotes only matter at the start of a field; a stray one inside a cell is data.
	r.LazyQuotes = true
	r.ReuseRecord = false

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Err: ErrEmpty}
	}
	if err != nil {
		return nil, wrapCSV(err)
	}
	columns := mangleDuplicates(header)

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapCSV(err)
		}
		rows = append(rows, row)
	}

	kinds := make([]cellKind, len(columns))
	for i := range columns {
		kinds[i] = inferColumn(rows, i)
	}

	records := make([]model.Record, len(rows))
	for n, row := range rows {
		values := make(map[string]any, len(columns))
		for i, col := range columns {
			values[col] = convert(row[i], kinds[i])
		}
		records[n] = model.Record{Columns: columns, Values: values}
	}
	return records, nil
}

func decode(body []byte, charset string) ([]byte, error) {
	if isUTF8(charset) {
		body = bytes.TrimPrefix(body, utf8BOM)
		if !utf8.Valid(body) {
			return nil, ErrEncoding
		}
		return body, nil
	}
	return decodeCharset(body, charset)
}

func wrapCSV(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Err: pe.Err}
	}
	return &ParseError{Err: err}
}

// mangleDuplicates names blank header cells "Unnamed: <index>" and renames
// repeated names to name.1, name.2, ...
func mangleDuplicates(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, name := range header {
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		n, dup := seen[name]
		if !dup {
			seen[name] = 0
			out[i] = name
			continue
		}
		candidate := name
		for dup {
			n++
			candidate = name + "." + strconv.Itoa(n)
			_, dup = seen[candidate]
		}
		seen[name] = n
		seen[candidate] = 0
		out[i] = candidate
	}
	return out
}
