package connector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ContentCurator/internal/domain"
)

// RawBatch is whatever a connector fetched, before normalization.
type RawBatch struct {
	Source    string
	FetchedAt time.Time
	Payload   any
}

// Connector fetches raw data from one external source and normalizes it.
// Transform must not perform I/O.
type Connector interface {
	Name() string
	Fetch(ctx context.Context) (RawBatch, error)
	Transform(batch RawBatch) ([]domain.ContentItem, error)
}

// Registry keeps connectors in registration order, keyed by name.
type Registry struct {
	connectors map[string]Connector
	order      []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{connectors: map[string]Connector{}}
}

// Register adds or replaces a connector implementation.
func (r *Registry) Register(c Connector) {
	if r.connectors == nil {
		r.connectors = map[string]Connector{}
	}
	if _, exists := r.connectors[c.Name()]; !exists {
		r.order = append(r.order, c.Name())
	}
	r.connectors[c.Name()] = c
}

// Resolve returns a connector by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Connector, error) {
	if c, ok := r.connectors[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("connector %s is not registered", name)
}

// All returns connectors in registration order.
func (r *Registry) All() []Connector {
	out := make([]Connector, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.connectors[name])
	}
	return out
}

// Names returns the registered names sorted alphabetically.
func (r *Registry) Names() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// Len reports how many connectors are registered.
func (r *Registry) Len() int {
	return len(r.order)
}
