// Package model contains all domain models and data structures for the relay system.
package model

import (
	"bytes"
	"encoding/json"
)

// tablePrefix is prepended to every table name returned by TableName().
const tablePrefix = "relay_"

// Payload is an inbound message body: either a JSON document or an opaque
// text fallback. The kind is resolved once at ingress and the value is then
// carried uniformly through fan-out and persistence.
//
// Parse failure is not an error condition. A body that does not parse as JSON
// degrades to a raw text payload.
type Payload struct {
	json json.RawMessage
	text string
}

// ParsePayload classifies a raw message body.
// Valid JSON is kept verbatim; anything else becomes a text payload.
func ParsePayload(data []byte) Payload {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		raw := make(json.RawMessage, len(trimmed))
		copy(raw, trimmed)
		return Payload{json: raw}
	}
	return Payload{text: string(data)}
}

// JSONPayload wraps an existing JSON document as a payload.
func JSONPayload(raw json.RawMessage) Payload {
	return Payload{json: raw}
}

// TextPayload wraps a plain string as a payload.
func TextPayload(text string) Payload {
	return Payload{text: text}
}

// IsJSON reports whether the payload carries a JSON document.
func (p Payload) IsJSON() bool {
	return p.json != nil
}

// Text returns the raw text arm of the payload. Empty for JSON payloads.
func (p Payload) Text() string {
	return p.text
}

// MarshalJSON renders the payload as the JSON value it occupies on the wire
// and inside a topic's content document. Text payloads become JSON strings.
func (p Payload) MarshalJSON() ([]byte, error) {
	if p.json != nil {
		return p.json, nil
	}
	return json.Marshal(p.text)
}
