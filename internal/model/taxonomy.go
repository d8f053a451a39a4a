package model

// DefaultDelimiter is the field separator used when an entry does not set one.
const DefaultDelimiter = ';'

// Entry is a taxonomy leaf: the upstream file behind an (action, type) pair
// and the separator its rows use.
type Entry struct {
	ResourceID string
	Delimiter  rune // zero means DefaultDelimiter
}

// Comma returns the field separator to parse this entry's payload with.
func (e Entry) Comma() rune {
	if e.Delimiter == 0 {
		return DefaultDelimiter
	}
	return e.Delimiter
}
