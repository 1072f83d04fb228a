package core

import "time"

// GameState represents the overall game state
type GameState uint8

const (
	StateMenu GameState = iota
	StatePlaying
	StatePaused
	StateLoading
)

func (s GameState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateLoading:
		return "loading"
	}
	return "menu"
}

// Ticker advances the simulation by one fixed step of dt seconds.
type Ticker interface {
	Tick(dt float64)
}

// GameLoop turns variable host frames into fixed simulation ticks
type GameLoop struct {
	State    GameState
	TickRate float64 // fixed ticks per second
	// MaxFrame caps one frame's contribution to avoid a spiral of death.
	MaxFrame time.Duration

	target      Ticker
	accumulator float64
	lastTime    time.Time
	ticks       uint64
	now         func() time.Time
}

// NewGameLoop creates a game loop with fixed tick rate
func NewGameLoop(tickRate float64, maxFrame time.Duration, target Ticker) *GameLoop {
	if maxFrame <= 0 {
		maxFrame = 250 * time.Millisecond
	}
	return &GameLoop{
		TickRate: tickRate,
		MaxFrame: maxFrame,
		target:   target,
		now:      time.Now,
		lastTime: time.Now(),
	}
}

// Update should be called every render frame. It measures the frame with
// the wall clock and returns the interpolation alpha.
func (gl *GameLoop) Update() float64 {
	now := gl.now()
	frame := now.Sub(gl.lastTime)
	gl.lastTime = now
	return gl.Advance(frame)
}

// Advance feeds one frame of the given length into the accumulator and
// runs every whole tick it covers. Ticks only reach the target while
// playing; other states drain the accumulator without simulating.
func (gl *GameLoop) Advance(frame time.Duration) float64 {
	if frame > gl.MaxFrame {
		frame = gl.MaxFrame
	}
	if frame < 0 {
		frame = 0
	}

	dt := 1.0 / gl.TickRate
	gl.accumulator += frame.Seconds()

	for gl.accumulator >= dt {
		if gl.State == StatePlaying {
			gl.target.Tick(dt)
			gl.ticks++
		}
		gl.accumulator -= dt
	}

	// Return interpolation alpha for smooth rendering
	return gl.accumulator / dt
}

// Play starts or resumes the game
func (gl *GameLoop) Play() {
	gl.State = StatePlaying
	gl.lastTime = gl.now()
}

// Pause pauses the game
func (gl *GameLoop) Pause() {
	gl.State = StatePaused
}

// TogglePause switches between playing and paused
func (gl *GameLoop) TogglePause() {
	switch gl.State {
	case StatePlaying:
		gl.Pause()
	case StatePaused:
		gl.Play()
	}
}

// Loading marks a scene transition; no ticks run until Play.
func (gl *GameLoop) Loading() {
	gl.State = StateLoading
}

// CurrentTick returns the number of ticks run
func (gl *GameLoop) CurrentTick() uint64 {
	return gl.ticks
}
