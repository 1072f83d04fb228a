package command

import (
	"context"
	"sync/atomic"
	"time"
)

// Command is a unit of work run by an Invoker
type Command interface {
	Execute(ctx context.Context) error
	IsExecuting() bool
	RemoveAfterExecute() bool
}

// Base carries the flags every command shares. Embed it.
type Base struct {
	executing   atomic.Bool
	removeAfter bool
}

func (b *Base) IsExecuting() bool        { return b.executing.Load() }
func (b *Base) RemoveAfterExecute() bool { return b.removeAfter }

// SetRemoveAfterExecute marks the command to be dropped once a sequential
// run has executed it.
func (b *Base) SetRemoveAfterExecute(v bool) { b.removeAfter = v }

// Run marks the command executing for the duration of fn.
func (b *Base) Run(fn func() error) error {
	b.executing.Store(true)
	defer b.executing.Store(false)
	return fn()
}

// Option configures the built-in commands
type Option func(*Base)

// RemoveAfter drops the command after a sequential run executes it
func RemoveAfter() Option {
	return func(b *Base) { b.removeAfter = true }
}

// Func runs a named function
type Func struct {
	Base
	name string
	fn   func(ctx context.Context) error
}

func NewFunc(name string, fn func(ctx context.Context) error, opts ...Option) *Func {
	f := &Func{name: name, fn: fn}
	for _, opt := range opts {
		opt(&f.Base)
	}
	return f
}

func (f *Func) Name() string { return f.name }

func (f *Func) Execute(ctx context.Context) error {
	return f.Run(func() error { return f.fn(ctx) })
}

// Wait does nothing for a fixed duration. It stops early with the context's
// error when ctx is done.
type Wait struct {
	Base
	Duration time.Duration
}

func NewWait(d time.Duration, opts ...Option) *Wait {
	w := &Wait{Duration: d}
	for _, opt := range opts {
		opt(&w.Base)
	}
	return w
}

func (w *Wait) Execute(ctx context.Context) error {
	return w.Run(func() error {
		if w.Duration <= 0 {
			return ctx.Err()
		}
		t := time.NewTimer(w.Duration)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	})
}
