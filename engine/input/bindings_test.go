package input_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/1siamBot/scenekit/engine/events"
	"github.com/1siamBot/scenekit/engine/input"
	"github.com/1siamBot/scenekit/engine/lifecycle"
)

// pressed is a KeySource with a fixed set of pressed keys.
type pressed map[input.Key]bool

func (p pressed) JustPressed(k input.Key) bool { return p[k] }

func setup() (*input.Bindings, *events.Channel[struct{}], *events.Channel[struct{}], *int, *int) {
	harvest := events.NewChannel("Harvest", struct{}{})
	pause := events.NewChannel("Pause", struct{}{})
	var harvests, pauses int
	harvest.SubscribeFunc(harvest, "test", func() { harvests++ })
	pause.SubscribeFunc(pause, "test", func() { pauses++ })

	b := input.NewBindings("Bindings", zerolog.Nop())
	b.Bind(
		input.Binding{Key: "Space", Event: harvest, Scenes: []string{"Farm"}},
		input.Binding{Key: "Escape", Event: pause},
	)
	return b, harvest, pause, &harvests, &pauses
}

func TestBindingsDisabledUntilSceneLoad(t *testing.T) {
	b, _, _, harvests, pauses := setup()
	assert.Zero(t, b.Poll(pressed{"Space": true, "Escape": true}))
	assert.Zero(t, *harvests)
	assert.Zero(t, *pauses)
	assert.Equal(t, []input.Key{"Space", "Escape"}, b.Keys())
}

func TestBindingsFollowScene(t *testing.T) {
	tests := []struct {
		scene        string
		wantHarvests int
		wantPauses   int
	}{
		{scene: "Farm", wantHarvests: 1, wantPauses: 1},
		{scene: "Town", wantHarvests: 0, wantPauses: 1},
	}
	for _, tt := range tests {
		t.Run(tt.scene, func(t *testing.T) {
			b, _, _, harvests, pauses := setup()
			b.OnSceneLoad(lifecycle.Scene{Name: tt.scene}, lifecycle.LoadSingle)
			b.Poll(pressed{"Space": true, "Escape": true})
			assert.Equal(t, tt.wantHarvests, *harvests)
			assert.Equal(t, tt.wantPauses, *pauses)
		})
	}
}

func TestOnlyPressedKeysFire(t *testing.T) {
	b, _, _, harvests, pauses := setup()
	b.OnSceneLoad(lifecycle.Scene{Name: "Farm"}, lifecycle.LoadSingle)
	assert.Equal(t, 1, b.Poll(pressed{"Space": true}))
	assert.Equal(t, 1, *harvests)
	assert.Zero(t, *pauses)
}

func TestAdditiveLoadKeepsLiveBindings(t *testing.T) {
	b, _, _, _, _ := setup()
	b.OnSceneLoad(lifecycle.Scene{Name: "Farm"}, lifecycle.LoadSingle)
	b.OnSceneLoad(lifecycle.Scene{Name: "Overlay"}, lifecycle.LoadAdditive)
	assert.Len(t, b.Enabled(), 2)

	b.OnSceneLoad(lifecycle.Scene{Name: "Town"}, lifecycle.LoadSingle)
	assert.Len(t, b.Enabled(), 1)
}

func TestUnloadDisablesEverything(t *testing.T) {
	b, _, _, harvests, _ := setup()
	b.OnSceneLoad(lifecycle.Scene{Name: "Farm"}, lifecycle.LoadSingle)
	b.OnSceneUnload(lifecycle.Scene{Name: "Farm"})
	assert.Empty(t, b.Enabled())
	assert.Zero(t, b.Poll(pressed{"Space": true}))
	assert.Zero(t, *harvests)
}

func TestBindingsDrivenByDispatcher(t *testing.T) {
	b, harvest, _, harvests, _ := setup()
	d := lifecycle.NewDispatcher(zerolog.Nop())
	d.Register(b)
	d.SceneLoaded(lifecycle.Scene{Name: "Farm"}, lifecycle.LoadSingle)
	d.SessionStarted()

	b.Poll(pressed{"Space": true})
	assert.Equal(t, 1, *harvests)
	assert.True(t, harvest.HasRaised())

	d.SessionStopped()
	assert.Empty(t, b.Enabled())
	assert.Equal(t, 2, b.Len())
}
