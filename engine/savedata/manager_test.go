package savedata_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/scenekit/engine/command"
	"github.com/1siamBot/scenekit/engine/lifecycle"
	"github.com/1siamBot/scenekit/engine/registry"
	"github.com/1siamBot/scenekit/engine/savedata"
)

func newManager(t *testing.T, opts ...savedata.Option) (*savedata.Manager, *savedata.FileStore) {
	t.Helper()
	store := savedata.NewFileStore(t.TempDir(), "json")
	opts = append([]savedata.Option{savedata.WithTypes(newTypes())}, opts...)
	return savedata.NewManager("SaveData", store, opts...), store
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 25} {
		t.Run(fmt.Sprintf("%d saveables", n), func(t *testing.T) {
			ctx := context.Background()
			m, _ := newManager(t)

			counters := make([]*counter, n)
			for i := range counters {
				counters[i] = &counter{id: fmt.Sprintf("counter.%d", i), n: i * 7}
				m.Track(counters[i])
			}
			require.NoError(t, m.Save(ctx))

			for _, c := range counters {
				assert.Equal(t, 1, c.saves)
				c.n = -1
			}
			report, err := m.Load(ctx)
			require.NoError(t, err)
			assert.True(t, report.OK())
			assert.Len(t, report.Restored, n)
			for i, c := range counters {
				assert.Equal(t, i*7, c.n)
				assert.Equal(t, 1, c.loads)
			}
		})
	}
}

func TestLoadMissingSlotChangesNothing(t *testing.T) {
	m, _ := newManager(t)
	c := &counter{id: "counter", n: 5}
	m.Track(c)

	report, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Restored)
	assert.Equal(t, 5, c.n)
	assert.Zero(t, c.loads)
	assert.False(t, m.Loaded.HasRaised())
}

func TestLoadSkipsSaveablesWithoutEntry(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	a := &counter{id: "a", n: 1}
	m.Track(a)
	require.NoError(t, m.Save(ctx))

	b := &counter{id: "b", n: 9}
	m.Track(b)
	report, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, report.Restored)
	assert.Equal(t, []string{"b"}, report.Missing)
	assert.Equal(t, 9, b.n)
	assert.Equal(t, 1, b.loads)
}

func TestLoadIsolatesBrokenEntries(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	doc := `{
  "containers": {
    "bad.payload": {"type": "counter", "data": {"n": "three"}},
    "bad.type":    {"type": "vanished", "data": {}},
    "mismatch":    {"type": "profile", "data": {"name": "x", "tags": []}},
    "fails":       {"type": "counter", "data": {"n": 1}},
    "panics":      {"type": "counter", "data": {"n": 1}},
    "good":        {"type": "counter", "data": {"n": 42}}
  }
}`
	require.NoError(t, os.WriteFile(store.Path(0), []byte(doc), 0o644))

	loadErr := errors.New("refused")
	good := &counter{id: "good"}
	mismatch := &counter{id: "mismatch"}
	m.Track(
		&counter{id: "bad.payload"},
		&counter{id: "bad.type"},
		mismatch,
		&counter{id: "fails", loadErr: loadErr},
		&counter{id: "panics", panics: true},
		good,
	)

	report, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, report.Restored)
	assert.Equal(t, 42, good.n)
	assert.Equal(t, 1, mismatch.loads)

	require.Len(t, report.Failed, 5)
	assert.ErrorIs(t, report.Failed["bad.type"], savedata.ErrUnknownType)
	assert.ErrorIs(t, report.Failed["mismatch"], savedata.ErrContainerType)
	assert.ErrorIs(t, report.Failed["fails"], loadErr)
	assert.ErrorIs(t, report.Failed["panics"], savedata.ErrRestorePanic)
	assert.Error(t, report.Failed["bad.payload"])
	assert.True(t, m.Loaded.HasRaised())
}

func TestLoadCorruptSlotAborts(t *testing.T) {
	m, store := newManager(t)
	c := &counter{id: "c", n: 3}
	m.Track(c)
	require.NoError(t, os.WriteFile(store.Path(0), []byte("{\"containers\": "), 0o644))

	report, err := m.Load(context.Background())
	require.ErrorIs(t, err, savedata.ErrCorruptSlot)
	assert.Nil(t, report)
	assert.Equal(t, 3, c.n)
	assert.Zero(t, c.loads)
}

func TestSaveSnapshotFailureAborts(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)
	ok := &counter{id: "ok"}
	m.Track(ok, &broken{counter{id: "broken"}})

	require.ErrorIs(t, m.Save(ctx), errSnapshot)
	assert.Zero(t, ok.saves)
	assert.Nil(t, m.Slot(0))
	_, err := store.Read(ctx, 0)
	require.ErrorIs(t, err, savedata.ErrSlotNotFound)
}

func TestFailedSaveKeepsPreviousSlot(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	ok := &counter{id: "ok", n: 1}
	m.Track(ok)
	require.NoError(t, m.Save(ctx))

	ok.n = 2
	m.Track(&broken{counter{id: "broken"}})
	require.ErrorIs(t, m.Save(ctx), errSnapshot)

	slot := m.Slot(0)
	require.NotNil(t, slot)
	assert.Equal(t, []string{"ok"}, slot.IDs())
	e, _ := slot.Get("ok")
	assert.Equal(t, &counterData{N: 1}, e.Value())
}

func TestSubscribersMaySaveAndLoadAgain(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	c := &counter{id: "c", n: 5}
	m.Track(c)

	var reloaded *savedata.LoadReport
	m.Saved.SubscribeFunc(m, "reload", func() {
		c.n = 0
		var err error
		reloaded, err = m.Load(ctx)
		assert.NoError(t, err)
	})
	autosaves := 0
	m.Loaded.SubscribeFunc(m, "autosave", func() {
		if autosaves == 0 {
			autosaves++
			assert.NoError(t, m.Save(ctx))
		}
	})

	done := make(chan error, 1)
	go func() { done <- m.Save(ctx) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("save did not return")
	}

	require.NotNil(t, reloaded)
	assert.Equal(t, []string{"c"}, reloaded.Restored)
	assert.Equal(t, 1, autosaves)
	assert.Equal(t, 5, c.n)
}

func TestSaveOverwritesById(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	c := &counter{id: "c", n: 1}
	m.Track(c)
	require.NoError(t, m.Save(ctx))
	c.n = 2
	require.NoError(t, m.Save(ctx))

	slot := m.Slot(0)
	require.NotNil(t, slot)
	assert.Equal(t, 1, slot.Len())
	e, _ := slot.Get("c")
	assert.Equal(t, &counterData{N: 2}, e.Value())
}

func TestSlotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	c := &counter{id: "c", n: 1}
	m.Track(c)

	require.NoError(t, m.Save(ctx))
	m.SetSlotKey(1)
	c.n = 2
	require.NoError(t, m.Save(ctx))

	m.SetSlotKey(0)
	_, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.n)

	slots, err := m.Slots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, slots)

	require.NoError(t, m.DeleteSlot(ctx, 1))
	assert.Nil(t, m.Slot(1))
	slots, err = m.Slots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, slots)
}

func TestEventsCarrySlotKey(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, savedata.WithSlotKey(4))
	var saved, loaded []int
	m.Saved.Subscribe(m, "test", func(k int) { saved = append(saved, k) })
	m.Loaded.Subscribe(m, "test", func(k int) { loaded = append(loaded, k) })

	require.NoError(t, m.Save(ctx))
	_, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, saved)
	assert.Equal(t, []int{4}, loaded)
}

func TestConcurrentSavesOnOneSlot(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	for i := 0; i < 8; i++ {
		m.Track(&counter{id: fmt.Sprintf("c%d", i), n: i})
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				errs <- m.Save(ctx)
				return
			}
			_, err := m.Load(ctx)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	report, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, report.Restored, 8)
}

func TestYAMLCodecManager(t *testing.T) {
	ctx := context.Background()
	store := savedata.NewFileStore(t.TempDir(), savedata.YAMLCodec{}.Extension())
	m := savedata.NewManager("SaveData", store,
		savedata.WithTypes(newTypes()), savedata.WithCodec(savedata.YAMLCodec{}))
	c := &counter{id: "c", n: 11}
	m.Track(c)
	require.NoError(t, m.Save(ctx))
	assert.FileExists(t, store.Path(0))

	c.n = 0
	_, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, c.n)
}

// savedCounter is a registry asset that is also a Saveable.
type savedCounter struct {
	registry.Meta
	counter
}

func TestSessionLocatesSaveables(t *testing.T) {
	r := registry.New(zerolog.Nop())
	sc := &savedCounter{Meta: registry.NewMeta("Coins"), counter: counter{id: "coins", n: 3}}
	r.Put(sc)

	m, _ := newManager(t, savedata.WithRegistry(r))
	r.Put(m)

	d := lifecycle.NewDispatcher(zerolog.Nop())
	d.Discover(r)
	d.SceneLoaded(lifecycle.Scene{Name: "Farm"}, lifecycle.LoadSingle)
	d.SessionStarted()
	require.Len(t, m.Saveables(), 1)

	ctx := context.Background()
	require.NoError(t, m.Save(ctx))
	sc.n = 0
	_, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sc.n)

	d.SessionStopped()
	assert.Empty(t, m.Saveables())
}

func TestTriggerRunsThroughExecutor(t *testing.T) {
	exec := command.NewManager(zerolog.Nop())
	m, store := newManager(t, savedata.WithExecutor(exec))
	c := &counter{id: "c", n: 8}
	m.Track(c)

	ctx := context.Background()
	require.NoError(t, m.TriggerSave(ctx))
	assert.FileExists(t, store.Path(0))

	c.n = 0
	require.NoError(t, m.TriggerLoad(ctx))
	assert.Equal(t, 8, c.n)
}

func TestTriggerWithoutExecutor(t *testing.T) {
	m, _ := newManager(t)
	c := &counter{id: "c", n: 2}
	m.Track(c)
	ctx := context.Background()
	require.NoError(t, m.TriggerSave(ctx))
	c.n = 0
	require.NoError(t, m.TriggerLoad(ctx))
	assert.Equal(t, 2, c.n)
}
