package command

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/1siamBot/scenekit/engine/registry"
)

// Manager owns commands grouped by the asset that queued them.
type Manager struct {
	mu       sync.Mutex
	owners   []registry.ID
	commands map[registry.ID][]queued
	next     uint64
	invoker  *Invoker
	log      zerolog.Logger
}

// queued tags a command with its queue position so removals never compare
// command values.
type queued struct {
	seq uint64
	cmd Command
}

func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		commands: make(map[registry.ID][]queued),
		invoker:  NewInvoker(logger),
		log:      logger,
	}
}

// Add queues c under owner
func (m *Manager) Add(owner registry.Asset, c Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := owner.ID()
	if _, ok := m.commands[id]; !ok {
		m.owners = append(m.owners, id)
	}
	m.next++
	m.commands[id] = append(m.commands[id], queued{seq: m.next, cmd: c})
}

// Commands returns the commands queued under owner
func (m *Manager) Commands(owner registry.Asset) []Command {
	cmds, _ := m.snapshot(owner)
	return cmds
}

// Len returns the number of queued commands
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, q := range m.commands {
		n += len(q)
	}
	return n
}

// snapshot returns the queued commands of owner, or of every owner in
// first-queued order when owner is nil, with their sequence numbers.
func (m *Manager) snapshot(owner registry.Asset) ([]Command, []uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.owners
	if owner != nil {
		ids = []registry.ID{owner.ID()}
	}
	var (
		cmds []Command
		seqs []uint64
	)
	for _, id := range ids {
		for _, q := range m.commands[id] {
			cmds = append(cmds, q.cmd)
			seqs = append(seqs, q.seq)
		}
	}
	return cmds, seqs
}

// forget drops the queued commands a sequential run marked for removal.
func (m *Manager) forget(seqs []uint64, drop []bool) {
	gone := make(map[uint64]bool)
	for i, d := range drop {
		if d {
			gone[seqs[i]] = true
		}
	}
	if len(gone) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, q := range m.commands {
		rest := q[:0]
		for _, c := range q {
			if !gone[c.seq] {
				rest = append(rest, c)
			}
		}
		m.commands[id] = rest
	}
}

func (m *Manager) runSequence(ctx context.Context, owner registry.Asset) error {
	cmds, seqs := m.snapshot(owner)
	drop, err := m.invoker.sequence(ctx, cmds)
	m.forget(seqs, drop)
	return err
}

// ExecuteAll runs every queued command in order
func (m *Manager) ExecuteAll(ctx context.Context) error {
	return m.runSequence(ctx, nil)
}

// ExecuteAllSimultaneously runs every queued command at once
func (m *Manager) ExecuteAllSimultaneously(ctx context.Context) error {
	cmds, _ := m.snapshot(nil)
	return m.invoker.InvokeSimultaneously(ctx, cmds)
}

// ExecuteOwner runs the commands of owner in order
func (m *Manager) ExecuteOwner(ctx context.Context, owner registry.Asset) error {
	return m.runSequence(ctx, owner)
}

// ExecuteOwnerSimultaneously runs the commands of owner at once
func (m *Manager) ExecuteOwnerSimultaneously(ctx context.Context, owner registry.Asset) error {
	return m.invoker.InvokeSimultaneously(ctx, m.Commands(owner))
}

// ExecuteSimultaneously runs cmds at once without queueing them
func (m *Manager) ExecuteSimultaneously(ctx context.Context, cmds []Command) error {
	return m.invoker.InvokeSimultaneously(ctx, cmds)
}

// ExecuteSingle runs c without queueing it
func (m *Manager) ExecuteSingle(ctx context.Context, c Command) error {
	return m.invoker.Execute(ctx, c)
}
