package events

import (
	"github.com/1siamBot/scenekit/engine/lifecycle"
	"github.com/1siamBot/scenekit/engine/registry"
)

// Channel2 is a Channel carrying two values per raise.
type Channel2[T1, T2 any] struct {
	registry.Meta
	lifecycle.Nop
	subscribers[func(T1, T2)]

	def1  T1
	def2  T2
	last1 T1
	last2 T2

	raised bool
}

func NewChannel2[T1, T2 any](name string, def1 T1, def2 T2, opts ...Option) *Channel2[T1, T2] {
	c := &Channel2[T1, T2]{
		Meta:  registry.NewMeta(name),
		def1:  def1,
		def2:  def2,
		last1: def1,
		last2: def2,
	}
	c.opts = buildOptions(opts)
	return c
}

func (c *Channel2[T1, T2]) Subscribe(origin Origin, tag string, fn func(T1, T2)) Handle {
	return c.subscribe(origin, tag, fn)
}

func (c *Channel2[T1, T2]) SubscribeFunc(origin Origin, tag string, fn func()) Handle {
	return c.subscribe(origin, tag, func(T1, T2) { fn() })
}

// Raise delivers the default values
func (c *Channel2[T1, T2]) Raise() {
	c.RaiseValues(c.def1, c.def2)
}

func (c *Channel2[T1, T2]) RaiseValues(v1 T1, v2 T2) {
	c.each(func(fn func(T1, T2)) { fn(v1, v2) })

	c.mu.Lock()
	c.last1, c.last2 = v1, v2
	c.raised = true
	c.mu.Unlock()
}

func (c *Channel2[T1, T2]) LastValues() (T1, T2) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last1, c.last2
}

func (c *Channel2[T1, T2]) HasRaised() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raised
}

func (c *Channel2[T1, T2]) OnSceneUnload(lifecycle.Scene) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs.prune()
	if c.opts.persist {
		return
	}
	c.subs.clear()
	c.last1, c.last2 = c.def1, c.def2
	c.raised = false
}
