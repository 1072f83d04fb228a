package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/1siamBot/scenekit/engine/assets"
	"github.com/1siamBot/scenekit/engine/command"
	"github.com/1siamBot/scenekit/engine/config"
	"github.com/1siamBot/scenekit/engine/events"
	"github.com/1siamBot/scenekit/engine/inventory"
	"github.com/1siamBot/scenekit/engine/lifecycle"
	"github.com/1siamBot/scenekit/engine/registry"
	"github.com/1siamBot/scenekit/engine/savedata"
	"github.com/1siamBot/scenekit/engine/savedata/sqlitestore"
)

// SaveManagerName is the registry name of the runtime's save manager.
const SaveManagerName = "SaveData"

// ErrUnknownScene is returned for scenes the manifest does not list.
var ErrUnknownScene = errors.New("unknown scene")

// Runtime owns every framework service of one game instance. Scene and
// session calls are queued on the bus and reach listeners on the next
// Tick. Use it from a single goroutine.
type Runtime struct {
	Config     *config.Config
	Registry   *registry.Registry
	Dispatcher *lifecycle.Dispatcher
	Bus        *lifecycle.Bus
	Commands   *command.Manager
	Saves      *savedata.Manager
	Store      savedata.Store

	Manifest *assets.Manifest
	Assets   *assets.Populated

	ctx     context.Context
	cancel  context.CancelFunc
	log     zerolog.Logger
	tick    uint64
	elapsed float64
	session bool
}

// New wires the services described by cfg. Nothing is loaded yet.
func New(cfg *config.Config, logger zerolog.Logger) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	codec, err := savedata.CodecByName(cfg.Save.Codec)
	if err != nil {
		return nil, err
	}
	store, err := OpenStore(cfg, codec)
	if err != nil {
		return nil, err
	}

	reg := registry.New(logger.With().Str("component", "registry").Logger())
	cmds := command.NewManager(logger.With().Str("component", "command").Logger())
	types := savedata.NewTypes()
	inventory.RegisterTypes(types)

	saves := savedata.NewManager(SaveManagerName, store,
		savedata.WithCodec(codec),
		savedata.WithTypes(types),
		savedata.WithRegistry(reg),
		savedata.WithExecutor(cmds),
		savedata.WithSlotKey(cfg.Save.Slot),
		savedata.WithLogger(logger.With().Str("component", "savedata").Logger()),
	)
	reg.Put(saves)
	reg.Put(saves.Saved)
	reg.Put(saves.Loaded)

	dispatcher := lifecycle.NewDispatcher(logger.With().Str("component", "lifecycle").Logger())
	dispatcher.Discover(reg)

	ctx, cancel := context.WithCancel(context.Background())
	return &Runtime{
		Config:     cfg,
		Registry:   reg,
		Dispatcher: dispatcher,
		Bus:        lifecycle.NewBus(),
		Commands:   cmds,
		Saves:      saves,
		Store:      store,
		ctx:        ctx,
		cancel:     cancel,
		log:        logger.With().Str("component", "runtime").Logger(),
	}, nil
}

// OpenStore opens the save backend selected by cfg
func OpenStore(cfg *config.Config, codec savedata.Codec) (savedata.Store, error) {
	switch cfg.Save.Backend {
	case config.BackendSQLite:
		s, err := sqlitestore.Open(cfg.Save.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open save store: %w", err)
		}
		return s, nil
	case config.BackendFile, "":
		return savedata.NewFileStore(cfg.Save.Dir, codec.Extension()), nil
	}
	return nil, fmt.Errorf("unknown save backend %q", cfg.Save.Backend)
}

// Context is cancelled by Shutdown
func (r *Runtime) Context() context.Context {
	return r.ctx
}

// Start registers the assets of m and subscribes every lifecycle listener
// in the registry to scene and session notifications.
func (r *Runtime) Start(m *assets.Manifest) error {
	populated, err := m.Populate(r.Registry,
		assets.WithMatchMode(events.ParseMatchMode(r.Config.Events.MatchMode)),
		assets.WithLogger(r.log),
	)
	if err != nil {
		return fmt.Errorf("populate assets: %w", err)
	}
	r.Manifest = m
	r.Assets = populated
	n := r.Dispatcher.Discover(r.Registry)
	r.log.Debug().Int("listeners", n).Msg("Runtime started")
	return nil
}

func (r *Runtime) scene(name string) (lifecycle.Scene, error) {
	if r.Manifest == nil {
		return lifecycle.Scene{Name: name}, nil
	}
	s, ok := r.Manifest.Scene(name)
	if !ok {
		return lifecycle.Scene{}, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return s, nil
}

// LoadScene queues a scene load
func (r *Runtime) LoadScene(name string, mode lifecycle.LoadMode) error {
	s, err := r.scene(name)
	if err != nil {
		return err
	}
	r.Bus.Emit(lifecycle.Event{Type: lifecycle.EvtSceneLoaded, Tick: r.tick, Scene: s, Mode: mode})
	return nil
}

// UnloadScene queues a scene unload
func (r *Runtime) UnloadScene(name string) error {
	s, err := r.scene(name)
	if err != nil {
		return err
	}
	r.Bus.Emit(lifecycle.Event{Type: lifecycle.EvtSceneUnloaded, Tick: r.tick, Scene: s})
	return nil
}

// SwitchScene queues an unload of the active scene followed by a single load of name.
func (r *Runtime) SwitchScene(name string) error {
	s, err := r.scene(name)
	if err != nil {
		return err
	}
	if active := r.Dispatcher.Active(); active.Name != "" {
		r.Bus.Emit(lifecycle.Event{Type: lifecycle.EvtSceneUnloaded, Tick: r.tick, Scene: active})
	}
	r.Bus.Emit(lifecycle.Event{Type: lifecycle.EvtSceneLoaded, Tick: r.tick, Scene: s, Mode: lifecycle.LoadSingle})
	return nil
}

// BeginSession picks up listeners added to the registry since Start and
// queues the session start. It is a no-op while a session runs.
func (r *Runtime) BeginSession() {
	if r.session {
		return
	}
	r.session = true
	n := r.Dispatcher.Discover(r.Registry)
	r.log.Info().Int("listeners", n).Msg("Session starting")
	r.Bus.Emit(lifecycle.Event{Type: lifecycle.EvtSessionStarted, Tick: r.tick})
}

// EndSession queues the session stop
func (r *Runtime) EndSession() {
	if !r.session {
		return
	}
	r.session = false
	r.log.Info().Uint64("tick", r.tick).Msg("Session stopping")
	r.Bus.Emit(lifecycle.Event{Type: lifecycle.EvtSessionStopped, Tick: r.tick})
}

// InSession reports whether a session was begun and not ended
func (r *Runtime) InSession() bool {
	return r.session
}

// Flush delivers queued lifecycle events now
func (r *Runtime) Flush() int {
	return r.Bus.Dispatch(r.Dispatcher)
}

// Tick runs one fixed step: queued lifecycle events, then queued commands.
func (r *Runtime) Tick(dt float64) {
	r.tick++
	r.elapsed += dt
	r.Flush()
	if err := r.Commands.ExecuteAll(r.ctx); err != nil {
		r.log.Error().Err(err).Uint64("tick", r.tick).Msg("Command failed")
	}
}

// CurrentTick returns the number of ticks run
func (r *Runtime) CurrentTick() uint64 {
	return r.tick
}

// Elapsed returns the simulated seconds
func (r *Runtime) Elapsed() float64 {
	return r.elapsed
}

// Shutdown stops a running session, clears the registry and closes the store.
func (r *Runtime) Shutdown() error {
	r.EndSession()
	r.Flush()
	r.cancel()
	r.Registry.Clear()
	if err := r.Store.Close(); err != nil {
		return fmt.Errorf("close save store: %w", err)
	}
	r.log.Info().Uint64("ticks", r.tick).Msg("Runtime shut down")
	return nil
}
