package savedata

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/1siamBot/scenekit/engine/command"
	"github.com/1siamBot/scenekit/engine/events"
	"github.com/1siamBot/scenekit/engine/lifecycle"
	"github.com/1siamBot/scenekit/engine/logging"
	"github.com/1siamBot/scenekit/engine/registry"
)

var (
	// ErrCorruptSlot is returned when a stored slot cannot be decoded at all.
	ErrCorruptSlot = errors.New("corrupt save slot")
	// ErrRestorePanic wraps a panic raised while a saveable restored itself.
	ErrRestorePanic = errors.New("saveable panicked during load")
)

// Executor runs a single command, usually the command manager.
type Executor interface {
	ExecuteSingle(ctx context.Context, c command.Command) error
}

// LoadReport lists what a Load did per saveable.
type LoadReport struct {
	Slot     int
	Restored []string
	// Missing holds saveables the slot had no entry for.
	Missing []string
	Failed  map[string]error
}

// OK reports whether every saveable with an entry was restored
func (r *LoadReport) OK() bool {
	return len(r.Failed) == 0
}

type Option func(*Manager)

func WithCodec(c Codec) Option { return func(m *Manager) { m.codec = c } }

func WithTypes(t *Types) Option { return func(m *Manager) { m.types = t } }

// WithRegistry makes session start locate saveables in r.
func WithRegistry(r *registry.Registry) Option { return func(m *Manager) { m.registry = r } }

func WithExecutor(e Executor) Option { return func(m *Manager) { m.exec = e } }

func WithLogger(l zerolog.Logger) Option { return func(m *Manager) { m.log = l } }

func WithSlotKey(key int) Option { return func(m *Manager) { m.slotKey = key } }

// Manager snapshots saveables into slots and restores them.
type Manager struct {
	registry.Meta
	lifecycle.Nop

	store    Store
	codec    Codec
	types    *Types
	registry *registry.Registry
	exec     Executor
	log      zerolog.Logger

	mu      sync.Mutex
	slotKey int
	slots   map[int]*Slot
	locks   map[int]*sync.Mutex
	tracked []Saveable
	located []Saveable

	// Saved and Loaded carry the slot key after each finished operation.
	Saved  *events.Channel[int]
	Loaded *events.Channel[int]
}

func NewManager(name string, store Store, opts ...Option) *Manager {
	m := &Manager{
		Meta:  registry.NewMeta(name),
		store: store,
		codec: JSONCodec{},
		log:   zerolog.Nop(),
		slots: make(map[int]*Slot),
		locks: make(map[int]*sync.Mutex),
	}
	for _, o := range opts {
		o(m)
	}
	if m.types == nil {
		m.types = NewTypes()
	}
	m.Saved = events.NewChannel(name+".Saved", 0, events.PersistThroughSceneChanges(), events.WithLogger(m.log))
	m.Loaded = events.NewChannel(name+".Loaded", 0, events.PersistThroughSceneChanges(), events.WithLogger(m.log))
	return m
}

func (m *Manager) Types() *Types { return m.types }

func (m *Manager) Codec() Codec { return m.codec }

func (m *Manager) SlotKey() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slotKey
}

func (m *Manager) SetSlotKey(key int) {
	m.mu.Lock()
	m.slotKey = key
	m.mu.Unlock()
}

// Track adds saveables by hand, next to the ones located in the registry.
func (m *Manager) Track(s ...Saveable) {
	m.mu.Lock()
	m.tracked = append(m.tracked, s...)
	m.mu.Unlock()
}

// Saveables returns the hand-tracked saveables followed by the located ones
func (m *Manager) Saveables() []Saveable {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Saveable, 0, len(m.tracked)+len(m.located))
	out = append(out, m.tracked...)
	return append(out, m.located...)
}

// Locate replaces the located saveables with every Saveable in the registry.
func (m *Manager) Locate() int {
	if m.registry == nil {
		return 0
	}
	found := registry.All[Saveable](m.registry)
	m.mu.Lock()
	m.located = found
	m.mu.Unlock()
	m.log.Debug().Int("count", len(found)).Msg("Located saveables")
	return len(found)
}

// Slot returns the in-memory slot for key, nil if nothing was saved there
func (m *Manager) Slot(key int) *Slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[key]
}

func (m *Manager) lockSlot(key int) func() {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Save snapshots every saveable into the current slot and writes it. The
// slot is released before OnSave and Saved run, so they may save or load
// again.
func (m *Manager) Save(ctx context.Context) error {
	key := m.SlotKey()
	defer logging.LogOperationStart(m.log, "save")()

	saveables := m.Saveables()
	if err := m.write(ctx, key, saveables); err != nil {
		return err
	}
	for _, s := range saveables {
		s.OnSave()
	}
	m.Saved.RaiseValue(key)
	return nil
}

// write snapshots into a copy of the slot and keeps the copy only once the
// store accepted it.
func (m *Manager) write(ctx context.Context, key int, saveables []Saveable) error {
	unlock := m.lockSlot(key)
	defer unlock()

	slot := NewSlot()
	if prev := m.Slot(key); prev != nil {
		slot = prev.clone()
	}
	for _, s := range saveables {
		id := s.UniqueIdentifier()
		c, err := s.SaveData()
		if err != nil {
			m.log.Error().Err(err).Str("id", id).Int("slot", key).Msg("Snapshot failed")
			return fmt.Errorf("snapshot %s: %w", id, err)
		}
		slot.Put(id, c)
	}

	data, err := m.codec.Encode(slot)
	if err != nil {
		return fmt.Errorf("encode slot %d: %w", key, err)
	}
	if err := m.store.Write(ctx, key, data); err != nil {
		m.log.Error().Err(err).Int("slot", key).Msg("Failed to write save slot")
		return fmt.Errorf("write slot %d: %w", key, err)
	}
	m.mu.Lock()
	m.slots[key] = slot
	m.mu.Unlock()
	m.log.Info().Int("slot", key).Int("containers", slot.Len()).Int("bytes", len(data)).Msg("Game saved")
	return nil
}

// Load reads the current slot and restores every saveable that has an
// entry in it. A missing slot is not an error. Failures of single
// saveables are logged and reported, the rest still load.
func (m *Manager) Load(ctx context.Context) (*LoadReport, error) {
	key := m.SlotKey()
	defer logging.LogOperationStart(m.log, "load")()

	saveables := m.Saveables()
	report, found, err := m.read(ctx, key, saveables)
	if err != nil || !found {
		return report, err
	}
	for _, s := range saveables {
		s.OnLoad()
	}
	m.Loaded.RaiseValue(key)
	return report, nil
}

func (m *Manager) read(ctx context.Context, key int, saveables []Saveable) (*LoadReport, bool, error) {
	unlock := m.lockSlot(key)
	defer unlock()

	report := &LoadReport{Slot: key, Failed: make(map[string]error)}
	data, err := m.store.Read(ctx, key)
	if errors.Is(err, ErrSlotNotFound) {
		m.log.Warn().Int("slot", key).Msg("No save data found for slot")
		return report, false, nil
	}
	if err != nil {
		m.log.Error().Err(err).Int("slot", key).Msg("Failed to read save slot")
		return nil, false, fmt.Errorf("read slot %d: %w", key, err)
	}
	loaded, err := m.codec.Decode(data)
	if err != nil {
		m.log.Error().Err(err).Int("slot", key).Msg("Failed to decode save slot")
		return nil, false, fmt.Errorf("%w %d: %w", ErrCorruptSlot, key, err)
	}

	for _, s := range saveables {
		id := s.UniqueIdentifier()
		entry, ok := loaded.Get(id)
		if !ok {
			report.Missing = append(report.Missing, id)
			continue
		}
		if err := m.restore(s, entry); err != nil {
			m.log.Error().Err(err).Str("id", id).Str("type", entry.Type).Msg("Failed to load saveable")
			report.Failed[id] = err
			continue
		}
		report.Restored = append(report.Restored, id)
	}
	m.log.Info().Int("slot", key).Int("restored", len(report.Restored)).
		Int("failed", len(report.Failed)).Msg("Game loaded")
	return report, true, nil
}

func (m *Manager) restore(s Saveable, e Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRestorePanic, r)
		}
	}()
	c, err := m.types.New(e.Type)
	if err != nil {
		return err
	}
	if err := e.Decode(c); err != nil {
		return fmt.Errorf("decode %s: %w", e.Type, err)
	}
	return s.LoadSaveData(c)
}

// Slots lists the slot numbers present in the store
func (m *Manager) Slots(ctx context.Context) ([]int, error) {
	return m.store.List(ctx)
}

// DeleteSlot removes a slot from the store and from memory.
func (m *Manager) DeleteSlot(ctx context.Context, key int) error {
	unlock := m.lockSlot(key)
	defer unlock()
	m.mu.Lock()
	delete(m.slots, key)
	m.mu.Unlock()
	return m.store.Delete(ctx, key)
}

// TriggerSave runs Save as a command through the executor.
func (m *Manager) TriggerSave(ctx context.Context) error {
	return m.run(ctx, command.NewFunc("SaveData", m.Save))
}

// TriggerLoad runs Load as a command through the executor.
func (m *Manager) TriggerLoad(ctx context.Context) error {
	return m.run(ctx, command.NewFunc("LoadData", func(ctx context.Context) error {
		_, err := m.Load(ctx)
		return err
	}))
}

func (m *Manager) run(ctx context.Context, c command.Command) error {
	if m.exec == nil {
		return c.Execute(ctx)
	}
	return m.exec.ExecuteSingle(ctx, c)
}

func (m *Manager) OnSessionStart(lifecycle.Scene) {
	m.Locate()
}

func (m *Manager) OnSessionStop(lifecycle.Scene) {
	m.mu.Lock()
	m.located = nil
	m.mu.Unlock()
}
