package model

// Envelope is the uniform response wrapper returned for every request outcome.
// Data holds []Record on success and a message string otherwise.
type Envelope struct {
	StatusCode int `json:"status_code"`
	Data       any `json:"data"`
}

// OK reports whether the envelope carries a successful result.
func (e Envelope) OK() bool {
	return e.StatusCode >= 200 && e.StatusCode < 300
}

// Records returns the record slice of a successful envelope.
func (e Envelope) Records() ([]Record, bool) {
	recs, ok := e.Data.([]Record)
	return recs, ok
}
