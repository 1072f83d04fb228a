package savedata

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownType is returned when a slot entry names a container kind
	// nobody registered.
	ErrUnknownType = errors.New("unknown container type")
	// ErrContainerType is returned by saveables handed a container of the
	// wrong kind.
	ErrContainerType = errors.New("container has wrong type")
)

// DataContainer is the snapshot a Saveable hands over for persistence.
// ContainerType names the kind so the snapshot can be rebuilt on load.
type DataContainer interface {
	ContainerType() string
}

// Saveable is an object whose state goes into save slots.
type Saveable interface {
	// UniqueIdentifier is the stable key of this object inside a slot.
	UniqueIdentifier() string
	SaveData() (DataContainer, error)
	LoadSaveData(data DataContainer) error
	// OnSave runs after the slot hit storage.
	OnSave()
	// OnLoad runs after every saveable of the slot was restored.
	OnLoad()
}

// Types maps container kinds to factories for empty containers.
type Types struct {
	mu        sync.RWMutex
	factories map[string]func() DataContainer
}

func NewTypes() *Types {
	return &Types{factories: make(map[string]func() DataContainer)}
}

// Register installs the factory for kind, replacing any previous one
func (t *Types) Register(kind string, factory func() DataContainer) {
	if kind == "" {
		panic("savedata: empty container kind")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.factories[kind] = factory
}

// New returns an empty container of kind
func (t *Types) New(kind string) (DataContainer, error) {
	t.mu.RLock()
	f, ok := t.factories[kind]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
	return f(), nil
}

// Kinds returns the registered kinds, sorted
func (t *Types) Kinds() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	kinds := make([]string, 0, len(t.factories))
	for k := range t.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Register installs *T under the kind its zero value reports.
func Register[T any, P interface {
	*T
	DataContainer
}](t *Types) {
	kind := P(new(T)).ContainerType()
	t.Register(kind, func() DataContainer { return P(new(T)) })
}
