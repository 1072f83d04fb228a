package events

import (
	"github.com/1siamBot/scenekit/engine/lifecycle"
	"github.com/1siamBot/scenekit/engine/registry"
)

// Event is the value-agnostic surface shared by every channel.
type Event interface {
	registry.Asset
	Raise()
	SubscribeFunc(origin Origin, tag string, fn func()) Handle
	Unsubscribe(origin Origin, tag string) int
	UnsubscribeAll(origin Origin) int
	HasRaised() bool
}

// Channel broadcasts values of type T to its subscribers. It lives in the
// registry and resets on scene unload unless it persists.
type Channel[T any] struct {
	registry.Meta
	lifecycle.Nop
	subscribers[func(T)]

	def    T
	last   T
	raised bool
}

// NewChannel creates a channel that raises def when raised without a value
func NewChannel[T any](name string, def T, opts ...Option) *Channel[T] {
	c := &Channel[T]{
		Meta: registry.NewMeta(name),
		def:  def,
		last: def,
	}
	c.opts = buildOptions(opts)
	return c
}

// Subscribe registers fn under (origin, tag)
func (c *Channel[T]) Subscribe(origin Origin, tag string, fn func(T)) Handle {
	return c.subscribe(origin, tag, fn)
}

// SubscribeFunc registers a callback that ignores the raised value
func (c *Channel[T]) SubscribeFunc(origin Origin, tag string, fn func()) Handle {
	return c.subscribe(origin, tag, func(T) { fn() })
}

// Raise delivers the default value
func (c *Channel[T]) Raise() {
	c.RaiseValue(c.def)
}

// RaiseValue delivers v to every live subscriber in subscription order, then
// records v as the last raised value.
func (c *Channel[T]) RaiseValue(v T) {
	c.each(func(fn func(T)) { fn(v) })

	c.mu.Lock()
	c.last = v
	c.raised = true
	c.mu.Unlock()
	c.opts.log.Trace().Str("event", c.Name()).Interface("value", v).Msg("Raised")
}

// LastValue returns the last raised value, or the default if the channel
// has not been raised since the last reset.
func (c *Channel[T]) LastValue() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// LastAny is LastValue for callers that do not know T.
func (c *Channel[T]) LastAny() any {
	return c.LastValue()
}

func (c *Channel[T]) Default() T {
	return c.def
}

func (c *Channel[T]) HasRaised() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raised
}

// OnSceneUnload clears subscribers and the raised state unless the channel
// persists through scene changes.
func (c *Channel[T]) OnSceneUnload(s lifecycle.Scene) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs.prune()
	if c.opts.persist {
		return
	}
	c.subs.clear()
	c.last = c.def
	c.raised = false
	c.opts.log.Debug().Str("event", c.Name()).Str("scene", s.Name).Msg("Reset on scene unload")
}
