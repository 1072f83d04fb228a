package lifecycle

import (
	"reflect"

	"github.com/rs/zerolog"

	"github.com/1siamBot/scenekit/engine/registry"
)

// State is the session state of a Dispatcher
type State uint8

const (
	StateIdle State = iota
	StateSession
)

func (s State) String() string {
	if s == StateSession {
		return "session"
	}
	return "idle"
}

// Dispatcher fans scene and session notifications out to its listeners in
// registration order. A panicking listener is not recovered and stops the
// fan-out.
type Dispatcher struct {
	listeners []Listener
	state     State
	active    Scene
	sequence  uint64
	log       zerolog.Logger
}

func NewDispatcher(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{log: logger}
}

// Discover registers every registry asset implementing Listener that is not
// registered yet and returns how many were added.
func (d *Dispatcher) Discover(r *registry.Registry) int {
	n := 0
	for _, l := range registry.All[Listener](r) {
		if d.add(l) {
			n++
		}
	}
	d.log.Debug().Int("listeners", n).Int("assets", r.Len()).Msg("Discovered lifecycle listeners")
	return n
}

// Register adds a listener after the current ones. A listener is only
// notified once however often it is registered.
func (d *Dispatcher) Register(l Listener) {
	d.add(l)
}

func (d *Dispatcher) add(l Listener) bool {
	for _, known := range d.listeners {
		if sameListener(known, l) {
			return false
		}
	}
	d.listeners = append(d.listeners, l)
	return true
}

// sameListener compares without panicking on uncomparable dynamic types.
func sameListener(a, b Listener) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() || va.Type() != vb.Type() || !va.Comparable() {
		return false
	}
	return va.Equal(vb)
}

// Listeners returns the number of registered listeners
func (d *Dispatcher) Listeners() int {
	return len(d.listeners)
}

// State returns the current session state
func (d *Dispatcher) State() State {
	return d.state
}

// Active returns the most recently loaded scene
func (d *Dispatcher) Active() Scene {
	return d.active
}

// Sequence increments on every scene load so callers can tell reloads apart.
func (d *Dispatcher) Sequence() uint64 {
	return d.sequence
}

// SceneLoaded notifies listeners that s finished loading
func (d *Dispatcher) SceneLoaded(s Scene, mode LoadMode) {
	d.active = s
	d.sequence++
	d.log.Debug().Str("scene", s.Name).Stringer("mode", mode).Msg("Scene loaded")
	for _, l := range d.listeners {
		l.OnSceneLoad(s, mode)
	}
}

// SceneUnloaded notifies listeners that s was unloaded
func (d *Dispatcher) SceneUnloaded(s Scene) {
	d.log.Debug().Str("scene", s.Name).Msg("Scene unloaded")
	for _, l := range d.listeners {
		l.OnSceneUnload(s)
	}
}

// SessionStarted moves to StateSession and notifies listeners with the
// active scene.
func (d *Dispatcher) SessionStarted() {
	d.state = StateSession
	d.log.Debug().Str("scene", d.active.Name).Int("listeners", len(d.listeners)).Msg("Session started")
	for _, l := range d.listeners {
		l.OnSessionStart(d.active)
	}
}

// SessionStopped notifies listeners and moves back to StateIdle. Listeners
// stay registered and keep receiving scene notifications.
func (d *Dispatcher) SessionStopped() {
	d.log.Debug().Str("scene", d.active.Name).Msg("Session stopped")
	for _, l := range d.listeners {
		l.OnSessionStop(d.active)
	}
	d.state = StateIdle
}
