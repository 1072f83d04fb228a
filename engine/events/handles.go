package events

import "github.com/1siamBot/scenekit/engine/registry"

// Handle identifies one subscription. A handle goes stale once its
// subscription is removed, even if the slot is later reused.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h was never issued
func (h Handle) IsZero() bool {
	return h.gen == 0
}

type record[F any] struct {
	origin registry.ID
	name   string // origin display name at subscription time
	tag    string
	fn     F
}

type slot[F any] struct {
	gen  uint32
	live bool
	rec  record[F]
}

// table stores subscriber records in index-stable slots. order keeps
// subscription order; removed slots stay in order until prune compacts it.
type table[F any] struct {
	slots []slot[F]
	free  []uint32
	order []uint32
	dirty bool
	live  int
}

func (t *table[F]) add(rec record[F]) Handle {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot[F]{})
	}
	s := &t.slots[idx]
	s.gen++
	s.live = true
	s.rec = rec
	t.order = append(t.order, idx)
	t.live++
	return Handle{index: idx, gen: s.gen}
}

func (t *table[F]) valid(h Handle) bool {
	return h.gen != 0 && int(h.index) < len(t.slots) &&
		t.slots[h.index].live && t.slots[h.index].gen == h.gen
}

func (t *table[F]) remove(h Handle) bool {
	if !t.valid(h) {
		return false
	}
	s := &t.slots[h.index]
	s.live = false
	s.rec = record[F]{}
	t.dirty = true
	t.live--
	return true
}

func (t *table[F]) removeWhere(match func(record[F]) bool) int {
	n := 0
	for _, idx := range t.order {
		s := &t.slots[idx]
		if s.live && match(s.rec) {
			t.remove(Handle{index: idx, gen: s.gen})
			n++
		}
	}
	return n
}

// prune drops removed slots from order and recycles them.
func (t *table[F]) prune() {
	if !t.dirty {
		return
	}
	kept := t.order[:0]
	for _, idx := range t.order {
		if t.slots[idx].live {
			kept = append(kept, idx)
		} else {
			t.free = append(t.free, idx)
		}
	}
	t.order = kept
	t.dirty = false
}

// handles returns the live handles in subscription order
func (t *table[F]) handles() []Handle {
	out := make([]Handle, 0, t.live)
	for _, idx := range t.order {
		if s := t.slots[idx]; s.live {
			out = append(out, Handle{index: idx, gen: s.gen})
		}
	}
	return out
}

func (t *table[F]) get(h Handle) (F, bool) {
	if !t.valid(h) {
		var zero F
		return zero, false
	}
	return t.slots[h.index].rec.fn, true
}

func (t *table[F]) clear() {
	for i := range t.slots {
		if t.slots[i].live {
			t.slots[i].live = false
			t.slots[i].rec = record[F]{}
		}
	}
	t.free = t.free[:0]
	for i := len(t.slots) - 1; i >= 0; i-- {
		t.free = append(t.free, uint32(i))
	}
	t.order = t.order[:0]
	t.dirty = false
	t.live = 0
}
