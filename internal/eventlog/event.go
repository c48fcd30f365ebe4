package eventlog

import (
	"encoding/json"
	"fmt"
	"time"
)

// Position is the append-order sequence number of an event (starting at 1).
// Cursors are expressed as the last processed Position; zero means "from the start".
type Position uint64

// Event is a stored, immutable record.
type Event struct {
	Position  Position        `json:"position"`
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Tags      []Tag           `json:"tags"`
	Timestamp time.Time       `json:"timestamp"`
}

// HasTag reports whether the event carries t.
func (e Event) HasTag(t Tag) bool {
	return containsTag(e.Tags, t)
}

// TagValue returns the value of the first tag with the given key.
func (e Event) TagValue(key string) (string, bool) {
	for _, t := range e.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// Clone returns a deep copy so callers cannot alter stored state.
func (e Event) Clone() Event {
	out := e
	out.Tags = append([]Tag(nil), e.Tags...)
	out.Payload = append(json.RawMessage(nil), e.Payload...)
	return out
}

// Payload is implemented by every typed event payload.
type Payload interface {
	EventType() string
}

// Draft is an event waiting to be appended: the log assigns ID, Position and Timestamp.
type Draft struct {
	Type    string
	Payload json.RawMessage
	Tags    []Tag
}

// NewDraft encodes a typed payload into a Draft.
func NewDraft(p Payload, tags ...Tag) (Draft, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return Draft{}, fmt.Errorf("eventlog: encode %s payload: %w", p.EventType(), err)
	}
	return Draft{
		Type:    p.EventType(),
		Payload: raw,
		Tags:    append([]Tag(nil), tags...),
	}, nil
}
