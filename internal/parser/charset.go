package parser

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

func isUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// ValidCharset reports whether name is a charset Parse can decode.
func ValidCharset(name string) bool {
	if isUTF8(name) {
		return true
	}
	_, err := htmlindex.Get(name)
	return err == nil
}

func decodeCharset(body []byte, name string) ([]byte, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", name, err)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}
