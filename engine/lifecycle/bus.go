package lifecycle

// Event is a lifecycle message queued on a Bus
type Event struct {
	Type  EventType
	Tick  uint64
	Scene Scene
	Mode  LoadMode
}

type EventType uint8

const (
	EvtSceneLoaded EventType = iota
	EvtSceneUnloaded
	EvtSessionStarted
	EvtSessionStopped
)

func (t EventType) String() string {
	switch t {
	case EvtSceneLoaded:
		return "scene_loaded"
	case EvtSceneUnloaded:
		return "scene_unloaded"
	case EvtSessionStarted:
		return "session_started"
	case EvtSessionStopped:
		return "session_stopped"
	}
	return "unknown"
}

// Bus queues lifecycle events from the host and delivers them to a
// Dispatcher at a point the game loop chooses.
type Bus struct {
	queue []Event
}

func NewBus() *Bus {
	return &Bus{}
}

// Emit queues an event for dispatch
func (b *Bus) Emit(e Event) {
	b.queue = append(b.queue, e)
}

// Pending returns the number of queued events
func (b *Bus) Pending() int {
	return len(b.queue)
}

// Dispatch delivers all queued events in FIFO order. Events emitted by
// listeners during dispatch are delivered in the same call.
func (b *Bus) Dispatch(d *Dispatcher) int {
	n := 0
	for len(b.queue) > 0 {
		e := b.queue[0]
		b.queue = b.queue[1:]
		switch e.Type {
		case EvtSceneLoaded:
			d.SceneLoaded(e.Scene, e.Mode)
		case EvtSceneUnloaded:
			d.SceneUnloaded(e.Scene)
		case EvtSessionStarted:
			d.SessionStarted()
		case EvtSessionStopped:
			d.SessionStopped()
		}
		n++
	}
	b.queue = nil
	return n
}
