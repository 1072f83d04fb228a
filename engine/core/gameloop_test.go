package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/1siamBot/scenekit/engine/core"
)

type countingTicker struct {
	ticks int
	dt    float64
}

func (c *countingTicker) Tick(dt float64) {
	c.ticks++
	c.dt = dt
}

func TestGameLoopFixedStep(t *testing.T) {
	target := &countingTicker{}
	gl := core.NewGameLoop(10, 250*time.Millisecond, target)
	gl.Play()

	alpha := gl.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, target.ticks)
	assert.InDelta(t, 0.1, target.dt, 1e-9)
	assert.InDelta(t, 0, alpha, 1e-9)

	gl.Advance(50 * time.Millisecond)
	assert.Equal(t, 1, target.ticks)
	gl.Advance(50 * time.Millisecond)
	assert.Equal(t, 2, target.ticks)
	assert.Equal(t, uint64(2), gl.CurrentTick())
}

func TestGameLoopCapsLongFrames(t *testing.T) {
	target := &countingTicker{}
	gl := core.NewGameLoop(10, 250*time.Millisecond, target)
	gl.Play()

	alpha := gl.Advance(5 * time.Second)
	assert.Equal(t, 2, target.ticks)
	assert.InDelta(t, 0.5, alpha, 1e-6)
}

func TestGameLoopOnlyTicksWhilePlaying(t *testing.T) {
	tests := []struct {
		name  string
		setup func(gl *core.GameLoop)
		want  core.GameState
	}{
		{"menu", func(*core.GameLoop) {}, core.StateMenu},
		{"paused", func(gl *core.GameLoop) { gl.Play(); gl.TogglePause() }, core.StatePaused},
		{"loading", func(gl *core.GameLoop) { gl.Loading() }, core.StateLoading},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := &countingTicker{}
			gl := core.NewGameLoop(10, 0, target)
			tt.setup(gl)
			assert.Equal(t, tt.want, gl.State)
			gl.Advance(200 * time.Millisecond)
			assert.Zero(t, target.ticks)
			assert.Equal(t, tt.name, gl.State.String())
		})
	}
}

func TestGameLoopTogglePause(t *testing.T) {
	gl := core.NewGameLoop(10, 0, &countingTicker{})
	gl.TogglePause()
	assert.Equal(t, core.StateMenu, gl.State)
	gl.Play()
	gl.TogglePause()
	gl.TogglePause()
	assert.Equal(t, core.StatePlaying, gl.State)
}
