package savedata

import (
	"errors"
	"sort"
)

// Payload is a serialized container still waiting for its concrete type.
type Payload interface {
	Decode(v any) error
}

// Entry is one object's snapshot inside a slot. Entries built by a save
// hold the container; entries read back from storage hold a Payload.
type Entry struct {
	Type    string
	value   DataContainer
	payload Payload
}

// Value returns the in-memory container, nil for decoded entries
func (e Entry) Value() DataContainer {
	return e.value
}

// Decode fills into from the stored payload.
func (e Entry) Decode(into DataContainer) error {
	if e.payload == nil {
		return errors.New("entry has no stored payload")
	}
	return e.payload.Decode(into)
}

// Data returns the snapshot as generic values: the container itself for
// fresh entries, maps and slices for decoded ones.
func (e Entry) Data() (any, error) {
	if e.value != nil {
		return e.value, nil
	}
	var v any
	if e.payload == nil {
		return nil, nil
	}
	if err := e.payload.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Slot maps unique identifiers to snapshots
type Slot struct {
	entries map[string]Entry
}

func NewSlot() *Slot {
	return &Slot{entries: make(map[string]Entry)}
}

// Put stores c under id, replacing any previous snapshot
func (s *Slot) Put(id string, c DataContainer) {
	s.entries[id] = Entry{Type: c.ContainerType(), value: c}
}

func (s *Slot) clone() *Slot {
	c := &Slot{entries: make(map[string]Entry, len(s.entries))}
	for id, e := range s.entries {
		c.entries[id] = e
	}
	return c
}

func (s *Slot) putPayload(id, kind string, p Payload) {
	s.entries[id] = Entry{Type: kind, payload: p}
}

func (s *Slot) Get(id string) (Entry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// IDs returns the stored identifiers, sorted
func (s *Slot) IDs() []string {
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Slot) Len() int {
	return len(s.entries)
}
