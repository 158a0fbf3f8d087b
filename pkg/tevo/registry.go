package tevo

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// Resource is the static identity of an endpoint type.
type Resource struct {
	// Type is the Go-facing type name, e.g. "TicketGroups".
	Type string
	// Plural is the path segment, e.g. "ticket_groups".
	Plural string
	// Singular is the endpoint name, e.g. "ticket_group".
	Singular string
}

// Model is a hydrated record. Records carry a back-reference to the Connection
// that fetched them.
type Model interface {
	Connection() *Connection
	attach(conn *Connection)
}

// Record is embedded by every model.
type Record struct {
	ID  int64  `json:"id"            yaml:"id"`
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	conn *Connection
}

// Connection returns the connection the record was fetched through.
func (r *Record) Connection() *Connection {
	return r.conn
}

func (r *Record) attach(conn *Connection) {
	r.conn = conn
}

type registry struct {
	mu        sync.RWMutex
	singulars map[string]func() Model
}

var singulars = &registry{singulars: make(map[string]func() Model)}

// RegisterSingular records the model type that list members of res hydrate into.
func RegisterSingular(res Resource, factory func() Model) {
	singulars.mu.Lock()
	defer singulars.mu.Unlock()

	singulars.singulars[res.Type] = factory
}

// SingularOf returns the model factory registered for res.
func SingularOf(res Resource) (func() Model, error) {
	singulars.mu.RLock()
	defer singulars.mu.RUnlock()

	factory, ok := singulars.singulars[res.Type]
	if !ok {
		return nil, errors.Wrapf(ErrNoSingularCounterpart, "resource %s", res.Type)
	}

	return factory, nil
}

// RegisteredResources lists the resource types that have a singular counterpart.
func RegisteredResources() []string {
	singulars.mu.RLock()
	defer singulars.mu.RUnlock()

	types := make([]string, 0, len(singulars.singulars))
	for typ := range singulars.singulars {
		types = append(types, typ)
	}

	sort.Strings(types)

	return types
}
