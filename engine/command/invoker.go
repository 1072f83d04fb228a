package command

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// IsCancellation reports whether err means the command was cancelled
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Invoker runs commands singly, together, or in order.
type Invoker struct {
	log zerolog.Logger
}

func NewInvoker(logger zerolog.Logger) *Invoker {
	return &Invoker{log: logger}
}

// Execute runs c. Cancellation is logged and swallowed; any other error is
// returned.
func (inv *Invoker) Execute(ctx context.Context, c Command) error {
	err := c.Execute(ctx)
	if err != nil && IsCancellation(err) {
		inv.log.Debug().Err(err).Msg("Command cancelled")
		return nil
	}
	return err
}

// InvokeSimultaneously starts every command at once and waits for all of
// them. The first error is returned; commands are not cancelled when a
// sibling fails.
func (inv *Invoker) InvokeSimultaneously(ctx context.Context, cmds []Command) error {
	var g errgroup.Group
	for _, c := range cmds {
		g.Go(func() error { return inv.Execute(ctx, c) })
	}
	return g.Wait()
}

// InvokeSequentially runs cmds in order, each after the previous one
// completes. It returns the commands to keep: cmds minus those flagged
// RemoveAfterExecute that ran. On error the failing command and everything
// after it are kept untouched.
func (inv *Invoker) InvokeSequentially(ctx context.Context, cmds []Command) ([]Command, error) {
	drop, err := inv.sequence(ctx, cmds)
	return keep(cmds, drop), err
}

// sequence runs cmds in order and marks the positions that ran and asked to
// be removed.
func (inv *Invoker) sequence(ctx context.Context, cmds []Command) ([]bool, error) {
	drop := make([]bool, len(cmds))
	for i, c := range cmds {
		if err := c.Execute(ctx); err != nil {
			return drop, err
		}
		drop[i] = c.RemoveAfterExecute()
	}
	return drop, nil
}

// InvokeReverse runs cmds from last to first. A cancelled command is logged
// and skipped over; any other error stops the run. The returned slice keeps
// the original order.
func (inv *Invoker) InvokeReverse(ctx context.Context, cmds []Command) ([]Command, error) {
	drop := make([]bool, len(cmds))
	var runErr error
	for i := len(cmds) - 1; i >= 0; i-- {
		err := cmds[i].Execute(ctx)
		if err != nil {
			if IsCancellation(err) {
				inv.log.Debug().Err(err).Int("index", i).Msg("Command cancelled")
				continue
			}
			runErr = err
			break
		}
		drop[i] = cmds[i].RemoveAfterExecute()
	}
	return keep(cmds, drop), runErr
}

func keep(cmds []Command, drop []bool) []Command {
	kept := make([]Command, 0, len(cmds))
	for i, c := range cmds {
		if !drop[i] {
			kept = append(kept, c)
		}
	}
	return kept
}
