package eventlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	// ErrUnknownType indica un tipo de evento no registrado.
	ErrUnknownType = errors.New("eventlog: unknown event type")

	// ErrTypeMismatch indica que el tipo del evento no corresponde al payload pedido.
	ErrTypeMismatch = errors.New("eventlog: event type mismatch")
)

// Registry maps an event type name to its payload shape.
type Registry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]reflect.Type)}
}

// Register records the payload shape of each prototype under its EventType().
// Registering a different shape for an existing type is an error.
func (r *Registry) Register(prototypes ...Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range prototypes {
		t := reflect.TypeOf(p)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		name := p.EventType()
		if prev, ok := r.types[name]; ok && prev != t {
			return fmt.Errorf("eventlog: type %q already registered as %s", name, prev)
		}
		r.types[name] = t
	}
	return nil
}

// Types returns the registered type names.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for name := range r.types {
		out = append(out, name)
	}
	return out
}

// Decode returns the event payload as its registered concrete (non-pointer) type.
func (r *Registry) Decode(ev Event) (Payload, error) {
	r.mu.RLock()
	t, ok := r.types[ev.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, ev.Type)
	}
	v := reflect.New(t)
	if err := json.Unmarshal(ev.Payload, v.Interface()); err != nil {
		return nil, fmt.Errorf("eventlog: decode %s payload: %w", ev.Type, err)
	}
	p, ok := v.Elem().Interface().(Payload)
	if !ok {
		return nil, fmt.Errorf("eventlog: %s does not implement Payload", t)
	}
	return p, nil
}

// PayloadAs decodes the payload of ev into T, checking the event type first.
func PayloadAs[T Payload](ev Event) (T, error) {
	var out T
	if ev.Type != out.EventType() {
		return out, fmt.Errorf("%w: got %q, want %q", ErrTypeMismatch, ev.Type, out.EventType())
	}
	if err := json.Unmarshal(ev.Payload, &out); err != nil {
		return out, fmt.Errorf("eventlog: decode %s payload: %w", ev.Type, err)
	}
	return out, nil
}
