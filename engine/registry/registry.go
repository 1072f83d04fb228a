package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned when no asset is registered under a name.
	ErrNotFound = errors.New("asset not found")
	// ErrWrongType is returned when an asset exists but has an unexpected type.
	ErrWrongType = errors.New("asset has wrong type")
)

// namespace seeds name-derived asset IDs.
var namespace = uuid.MustParse("6f1d3c2a-8e4b-5a7d-9c10-2b3e4f5a6b7c")

// ID is a unique identifier for registered assets
type ID uuid.UUID

// NameID derives the stable ID for an asset name. The same name always
// yields the same ID, across processes.
func NameID(name string) ID {
	return ID(uuid.NewSHA1(namespace, []byte(name)))
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool {
	return id == ID(uuid.Nil)
}

// Asset is anything that can live in the registry
type Asset interface {
	ID() ID
	Name() string
}

// Meta is an embeddable Asset implementation.
type Meta struct {
	id   ID
	name string
}

// NewMeta returns asset metadata for name.
func NewMeta(name string) Meta {
	return Meta{id: NameID(name), name: name}
}

func (m Meta) ID() ID       { return m.id }
func (m Meta) Name() string { return m.name }

// Lookup resolves assets by name.
type Lookup interface {
	ByName(name string) (Asset, error)
}

// Registry holds every asset of a session, keyed by ID and indexed by name.
type Registry struct {
	mu     sync.RWMutex
	assets map[ID]Asset
	byName map[string]ID
	order  []ID
	log    zerolog.Logger
}

// New creates an empty registry
func New(logger zerolog.Logger) *Registry {
	return &Registry{
		assets: make(map[ID]Asset),
		byName: make(map[string]ID),
		log:    logger,
	}
}

// Put registers an asset. An asset already registered under the same name
// is replaced and keeps its position in registration order.
func (r *Registry) Put(a Asset) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := a.Name()
	if old, ok := r.byName[name]; ok {
		replaced = true
		if old != a.ID() {
			delete(r.assets, old)
			for i, id := range r.order {
				if id == old {
					r.order[i] = a.ID()
					break
				}
			}
		}
		r.log.Debug().Str("asset", name).Msg("Replacing registered asset")
	} else {
		r.order = append(r.order, a.ID())
	}
	r.assets[a.ID()] = a
	r.byName[name] = a.ID()
	return replaced
}

// Get returns the asset with the given ID
func (r *Registry) Get(id ID) (Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assets[id]
	return a, ok
}

// ByName returns the asset registered under name
func (r *Registry) ByName(name string) (Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return r.assets[id], nil
}

// Names returns every registered name in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.order))
	for _, id := range r.order {
		names = append(names, r.assets[id].Name())
	}
	return names
}

// Len returns the number of registered assets
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Clear drops every asset. Called when a session ends.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets = make(map[ID]Asset)
	r.byName = make(map[string]ID)
	r.order = nil
}

func (r *Registry) snapshot() []Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Asset, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.assets[id])
	}
	return out
}

// All returns every asset implementing T, in registration order
func All[T any](r *Registry) []T {
	var result []T
	for _, a := range r.snapshot() {
		if t, ok := a.(T); ok {
			result = append(result, t)
		}
	}
	return result
}

// LookupAs resolves name through l and asserts the asset to T.
func LookupAs[T any](l Lookup, name string) (T, error) {
	var zero T
	a, err := l.ByName(name)
	if err != nil {
		return zero, err
	}
	t, ok := a.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T", ErrWrongType, name, a)
	}
	return t, nil
}
