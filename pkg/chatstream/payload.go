package chatstream

import (
	"bytes"
	"encoding/json"

	"github.com/papercomputeco/binder/pkg/portfolio"
)

const (
	fieldText           = "text"
	fieldSources        = "sources"
	fieldConversationID = "conversation_id"
	fieldConfidence     = "confidence"
	fieldError          = "error"
)

// payload is a data line that parsed as JSON. Classification is by shape:
// the server does not tag every frame with an explicit type.
type payload struct {
	raw []byte

	// array is true when the payload is a bare JSON array.
	array bool

	// fields holds the top-level members of an object payload; nil for
	// arrays and scalars. Members whose value is JSON null are omitted.
	fields map[string]json.RawMessage
}

// parsePayload returns false when data is not valid JSON.
func parsePayload(data string) (*payload, bool) {
	raw := []byte(data)
	if !json.Valid(raw) {
		return nil, false
	}

	p := &payload{raw: raw}
	switch trimmed := bytes.TrimSpace(raw); trimmed[0] {
	case '[':
		p.array = true
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, false
		}
		for k, v := range fields {
			if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				delete(fields, k)
			}
		}
		p.fields = fields
	}

	return p, true
}

func (p *payload) has(field string) bool {
	_, ok := p.fields[field]
	return ok
}

// str returns a member as a string. Non-string values are returned as their
// raw JSON text; absent members are "".
func (p *payload) str(field string) string {
	v, ok := p.fields[field]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(v))
}

// confidence returns the confidence member, or 0 when absent or not a number.
func (p *payload) confidence() float64 {
	v, ok := p.fields[fieldConfidence]
	if !ok {
		return 0
	}

	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return 0
	}
	return f
}

// sourceList returns the sources carried by the payload: the payload itself
// when it is an array, its "sources" member when it is an object, and an
// empty list otherwise. The second return value counts entries that could
// not be decoded and were skipped.
func (p *payload) sourceList() ([]portfolio.Source, int) {
	switch {
	case p.array:
		return decodeSources(p.raw)
	case p.has(fieldSources):
		return decodeSources(p.fields[fieldSources])
	default:
		return []portfolio.Source{}, 0
	}
}

func decodeSources(raw json.RawMessage) ([]portfolio.Source, int) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []portfolio.Source{}, 1
	}

	sources := make([]portfolio.Source, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		if bytes.Equal(bytes.TrimSpace(entry), []byte("null")) {
			skipped++
			continue
		}

		var src portfolio.Source
		if err := json.Unmarshal(entry, &src); err != nil {
			skipped++
			continue
		}
		sources = append(sources, src)
	}
	return sources, skipped
}
