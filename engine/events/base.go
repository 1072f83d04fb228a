package events

import (
	"sync"

	"github.com/1siamBot/scenekit/engine/registry"
)

// Origin is the asset a subscription belongs to
type Origin = registry.Asset

// subscribers is the subscription bookkeeping shared by every channel shape.
type subscribers[F any] struct {
	mu   sync.Mutex
	subs table[F]
	opts options
}

func (s *subscribers[F]) subscribe(origin Origin, tag string, fn F) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs.add(record[F]{
		origin: origin.ID(),
		name:   origin.Name(),
		tag:    tag,
		fn:     fn,
	})
}

// Unsubscribe removes the subscriptions of origin matching tag and returns
// how many were removed. See MatchMode for what "matching" means.
func (s *subscribers[F]) Unsubscribe(origin Origin, tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := origin.ID()
	n := s.subs.removeWhere(func(r record[F]) bool {
		if r.origin != id {
			return false
		}
		if s.opts.match == MatchOriginName {
			return r.name == tag
		}
		return r.tag == tag
	})
	s.subs.prune()
	return n
}

// UnsubscribeAll removes every subscription of origin
func (s *subscribers[F]) UnsubscribeAll(origin Origin) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := origin.ID()
	n := s.subs.removeWhere(func(r record[F]) bool { return r.origin == id })
	s.subs.prune()
	return n
}

// Remove drops a single subscription by handle
func (s *subscribers[F]) Remove(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs.remove(h)
}

// Len returns the number of live subscriptions
func (s *subscribers[F]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs.live
}

// Persistent reports whether the channel survives scene changes
func (s *subscribers[F]) Persistent() bool {
	return s.opts.persist
}

// live prunes and returns the live handles in subscription order.
func (s *subscribers[F]) live() []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs.prune()
	return s.subs.handles()
}

// each invokes call for every subscriber still live at its turn.
func (s *subscribers[F]) each(call func(F)) {
	for _, h := range s.live() {
		s.mu.Lock()
		fn, ok := s.subs.get(h)
		s.mu.Unlock()
		if ok {
			call(fn)
		}
	}
}
