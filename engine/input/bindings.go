// Package input turns key presses into event raises. Which bindings are
// live depends on the loaded scene. Hosts supply key state via KeySource.
package input

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/1siamBot/scenekit/engine/lifecycle"
	"github.com/1siamBot/scenekit/engine/registry"
)

// Key names a key the way the host spells it, e.g. "Space" or "F5".
type Key string

// KeySource reports key state for the current frame.
type KeySource interface {
	JustPressed(k Key) bool
}

// Trigger is what a binding fires. Every event channel is one.
type Trigger interface {
	Name() string
	Raise()
}

// Binding raises Event when Key is pressed in one of Scenes. An empty
// scene list matches every scene.
type Binding struct {
	Key    Key
	Event  Trigger
	Scenes []string
}

func (b Binding) matches(scene string) bool {
	return len(b.Scenes) == 0 || slices.Contains(b.Scenes, scene)
}

// Bindings is a set of key bindings driven by scene loads.
type Bindings struct {
	registry.Meta
	lifecycle.Nop

	mu       sync.Mutex
	bindings []Binding
	enabled  []bool
	log      zerolog.Logger
}

func NewBindings(name string, logger zerolog.Logger) *Bindings {
	return &Bindings{Meta: registry.NewMeta(name), log: logger}
}

// Bind adds a binding, disabled until the next matching scene load.
func (b *Bindings) Bind(bindings ...Binding) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bd := range bindings {
		b.bindings = append(b.bindings, bd)
		b.enabled = append(b.enabled, false)
	}
}

func (b *Bindings) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bindings)
}

// Enabled returns the live bindings in bind order
func (b *Bindings) Enabled() []Binding {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Binding
	for i, bd := range b.bindings {
		if b.enabled[i] {
			out = append(out, bd)
		}
	}
	return out
}

// Keys returns the distinct keys of all bindings, in bind order.
func (b *Bindings) Keys() []Key {
	b.mu.Lock()
	defer b.mu.Unlock()
	var keys []Key
	for _, bd := range b.bindings {
		if !slices.Contains(keys, bd.Key) {
			keys = append(keys, bd.Key)
		}
	}
	return keys
}

// Poll raises the event of every live binding whose key was just pressed
// and returns how many fired.
func (b *Bindings) Poll(src KeySource) int {
	fired := 0
	for _, bd := range b.Enabled() {
		if bd.Event == nil || !src.JustPressed(bd.Key) {
			continue
		}
		b.log.Trace().Str("key", string(bd.Key)).Str("event", bd.Event.Name()).Msg("Binding fired")
		bd.Event.Raise()
		fired++
	}
	return fired
}

// OnSceneLoad enables the bindings matching s. A single load starts from
// nothing, an additive load keeps what is already live.
func (b *Bindings) OnSceneLoad(s lifecycle.Scene, mode lifecycle.LoadMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	live := 0
	for i, bd := range b.bindings {
		on := bd.matches(s.Name)
		if mode == lifecycle.LoadAdditive {
			on = on || b.enabled[i]
		}
		b.enabled[i] = on
		if on {
			live++
		}
	}
	b.log.Debug().Str("scene", s.Name).Int("live", live).Msg("Bindings updated")
}

func (b *Bindings) OnSceneUnload(lifecycle.Scene) {
	b.disableAll()
}

func (b *Bindings) OnSessionStop(lifecycle.Scene) {
	b.disableAll()
}

func (b *Bindings) disableAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.enabled {
		b.enabled[i] = false
	}
}
