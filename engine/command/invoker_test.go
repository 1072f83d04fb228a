package command_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/scenekit/engine/command"
)

type journal struct {
	mu   sync.Mutex
	runs []string
}

func (j *journal) add(name string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs = append(j.runs, name)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.runs...)
}

func record(j *journal, name string, opts ...command.Option) *command.Func {
	return command.NewFunc(name, func(context.Context) error {
		j.add(name)
		return nil
	}, opts...)
}

func failing(name string, err error) *command.Func {
	return command.NewFunc(name, func(context.Context) error { return err })
}

func names(cmds []command.Command) []string {
	var out []string
	for _, c := range cmds {
		out = append(out, c.(*command.Func).Name())
	}
	return out
}

func TestExecuteSwallowsCancellation(t *testing.T) {
	inv := command.NewInvoker(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, inv.Execute(ctx, command.NewWait(time.Hour)))
	assert.NoError(t, inv.Execute(context.Background(), failing("late", context.DeadlineExceeded)))

	boom := errors.New("boom")
	assert.ErrorIs(t, inv.Execute(context.Background(), failing("bad", boom)), boom)
}

func TestExecutingFlagIsSetWhileRunning(t *testing.T) {
	var during bool
	var c *command.Func
	c = command.NewFunc("probe", func(context.Context) error {
		during = c.IsExecuting()
		return nil
	})

	require.NoError(t, c.Execute(context.Background()))
	assert.True(t, during)
	assert.False(t, c.IsExecuting())
}

func TestInvokeSequentiallyRemovesFlaggedWithoutSkipping(t *testing.T) {
	j := &journal{}
	a := record(j, "A", command.RemoveAfter())
	b := record(j, "B")
	c := record(j, "C")
	inv := command.NewInvoker(zerolog.Nop())

	kept, err := inv.InvokeSequentially(context.Background(), []command.Command{a, b, c})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, j.list())
	assert.Equal(t, []string{"B", "C"}, names(kept))

	kept, err = inv.InvokeSequentially(context.Background(), kept)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "B", "C"}, j.list())
	assert.Equal(t, []string{"B", "C"}, names(kept))
}

func TestInvokeSequentiallyAdjacentRemovals(t *testing.T) {
	j := &journal{}
	cmds := []command.Command{
		record(j, "A", command.RemoveAfter()),
		record(j, "B", command.RemoveAfter()),
		record(j, "C"),
		record(j, "D", command.RemoveAfter()),
	}
	kept, err := command.NewInvoker(zerolog.Nop()).InvokeSequentially(context.Background(), cmds)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D"}, j.list())
	assert.Equal(t, []string{"C"}, names(kept))
}

func TestInvokeSequentiallyStopsOnError(t *testing.T) {
	j := &journal{}
	boom := errors.New("boom")
	cmds := []command.Command{
		record(j, "A", command.RemoveAfter()),
		failing("B", boom),
		record(j, "C"),
	}
	kept, err := command.NewInvoker(zerolog.Nop()).InvokeSequentially(context.Background(), cmds)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"A"}, j.list())
	assert.Equal(t, []string{"B", "C"}, names(kept))
}

func TestInvokeReverse(t *testing.T) {
	j := &journal{}
	cmds := []command.Command{
		record(j, "A"),
		record(j, "B", command.RemoveAfter()),
		failing("C", context.Canceled),
		record(j, "D", command.RemoveAfter()),
	}
	kept, err := command.NewInvoker(zerolog.Nop()).InvokeReverse(context.Background(), cmds)
	require.NoError(t, err)

	assert.Equal(t, []string{"D", "B", "A"}, j.list())
	assert.Equal(t, []string{"A", "C"}, names(kept))
}

func TestInvokeReverseStopsOnError(t *testing.T) {
	j := &journal{}
	boom := errors.New("boom")
	cmds := []command.Command{record(j, "A"), failing("B", boom), record(j, "C", command.RemoveAfter())}

	kept, err := command.NewInvoker(zerolog.Nop()).InvokeReverse(context.Background(), cmds)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"C"}, j.list())
	assert.Equal(t, []string{"A", "B"}, names(kept))
}

func TestInvokeSimultaneouslyAwaitsAll(t *testing.T) {
	var running, peak, done atomic.Int32
	release := make(chan struct{})
	mk := func() command.Command {
		return command.NewFunc("w", func(context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			running.Add(-1)
			done.Add(1)
			return nil
		})
	}
	cmds := []command.Command{mk(), mk(), mk()}

	errc := make(chan error, 1)
	go func() {
		errc <- command.NewInvoker(zerolog.Nop()).InvokeSimultaneously(context.Background(), cmds)
	}()

	require.Eventually(t, func() bool { return running.Load() == 3 }, time.Second, time.Millisecond)
	close(release)
	require.NoError(t, <-errc)
	assert.Equal(t, int32(3), done.Load())
	assert.Equal(t, int32(3), peak.Load())
}

func TestInvokeSimultaneouslyReturnsFailureAfterAllFinish(t *testing.T) {
	j := &journal{}
	boom := errors.New("boom")
	cmds := []command.Command{
		failing("bad", boom),
		failing("cancelled", context.Canceled),
		command.NewFunc("slow", func(context.Context) error {
			time.Sleep(10 * time.Millisecond)
			j.add("slow")
			return nil
		}),
	}

	err := command.NewInvoker(zerolog.Nop()).InvokeSimultaneously(context.Background(), cmds)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"slow"}, j.list())
}
