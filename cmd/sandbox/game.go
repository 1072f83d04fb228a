package main

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"

	"github.com/1siamBot/scenekit/engine/core"
	"github.com/1siamBot/scenekit/engine/events"
	"github.com/1siamBot/scenekit/engine/inventory"
	"github.com/1siamBot/scenekit/engine/lifecycle"
	"github.com/1siamBot/scenekit/engine/registry"
)

const (
	ScreenWidth  = 960
	ScreenHeight = 540
	starterSeeds = 3
)

// Game implements ebiten.Game and is itself a lifecycle listener so it can
// resubscribe to scene-scoped events after every load.
type Game struct {
	registry.Meta
	lifecycle.Nop

	rt    *core.Runtime
	loop  *core.GameLoop
	keys  *keySource
	face  *text.GoXFace
	inv   *inventory.Inventory
	score *events.Channel[int]
	log   zerolog.Logger

	scenes      []string
	lastHarvest float64
	status      string
}

func NewGame(rt *core.Runtime, log zerolog.Logger) (*Game, error) {
	if len(rt.Assets.Inventories) == 0 {
		return nil, fmt.Errorf("manifest declares no inventory")
	}
	if len(rt.Manifest.Scenes) == 0 {
		return nil, fmt.Errorf("manifest declares no scenes")
	}
	g := &Game{
		Meta: registry.NewMeta("Sandbox"),
		rt:   rt,
		keys: newKeySource(rt.Assets.Bindings.Keys(), log),
		face: text.NewGoXFace(basicfont.Face7x13),
		inv:  rt.Assets.Inventories[0],
		log:  log,
	}
	g.loop = core.NewGameLoop(rt.Config.Loop.TickRate, rt.Config.Loop.MaxFrame, rt)
	if score, err := registry.LookupAs[*events.Channel[int]](rt.Registry, "Score"); err == nil {
		g.score = score
	}
	for _, s := range rt.Manifest.Scenes {
		g.scenes = append(g.scenes, s.Name)
	}
	rt.Registry.Put(g)

	if err := rt.LoadScene(g.scenes[0], lifecycle.LoadSingle); err != nil {
		return nil, err
	}
	rt.BeginSession()
	rt.Flush()
	g.loop.Play()
	return g, nil
}

func (g *Game) OnSceneLoad(s lifecycle.Scene, mode lifecycle.LoadMode) {
	g.subscribe("Harvest", g.harvest)
	g.subscribe("Pause", g.loop.TogglePause)
	g.status = "Entered " + s.Name
}

func (g *Game) subscribe(name string, fn func()) {
	e, err := registry.LookupAs[events.Event](g.rt.Registry, name)
	if err != nil {
		return
	}
	e.SubscribeFunc(g, "sandbox", fn)
}

// OnSessionStart hands out starter seeds.
func (g *Game) OnSessionStart(lifecycle.Scene) {
	for _, it := range g.rt.Assets.Items {
		if seed, ok := it.(*inventory.Seed); ok && g.inv.Quantity(seed) == 0 {
			if _, err := g.inv.Add(seed, starterSeeds); err != nil {
				g.log.Warn().Err(err).Str("seed", seed.Name()).Msg("Could not hand out starter seeds")
			}
		}
	}
}

// harvest turns the growth since the last harvest into crops
func (g *Game) harvest() {
	now := g.rt.Elapsed()
	grown := time.Duration((now - g.lastHarvest) * float64(time.Second))
	g.lastHarvest = now

	total := 0
	for _, it := range g.rt.Assets.Items {
		seed, ok := it.(*inventory.Seed)
		if !ok || seed.Crop.IsZero() {
			continue
		}
		yield := seed.Yield(grown) * g.inv.Quantity(seed)
		if yield == 0 {
			continue
		}
		crop, err := seed.Crop.Resolve(g.rt.Registry)
		if err != nil {
			g.log.Error().Err(err).Str("seed", seed.Name()).Msg("Crop missing")
			continue
		}
		added, err := g.inv.Add(crop, yield)
		if err != nil {
			g.log.Warn().Err(err).Str("crop", crop.Name()).Msg("Harvest did not fit")
			continue
		}
		total += added
	}
	if total == 0 {
		g.status = "Nothing to harvest yet"
		return
	}
	g.status = fmt.Sprintf("Harvested %d", total)
	if g.score != nil {
		g.score.RaiseValue(g.score.LastValue() + total)
	}
}

func (g *Game) switchScene(i int) {
	if i >= len(g.scenes) || g.scenes[i] == g.rt.Dispatcher.Active().Name {
		return
	}
	g.loop.Loading()
	if err := g.rt.SwitchScene(g.scenes[i]); err != nil {
		g.log.Error().Err(err).Msg("Scene switch failed")
	}
	g.rt.Flush()
	g.loop.Play()
}

func (g *Game) trigger(what string, fn func() error) {
	if err := fn(); err != nil {
		g.log.Error().Err(err).Str("op", what).Msg("Save operation failed")
		g.status = what + " failed: " + err.Error()
		return
	}
	g.status = fmt.Sprintf("%s slot %d", what, g.rt.Saves.SlotKey())
}

func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		g.switchScene(0)
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		g.switchScene(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		g.trigger("Saved", func() error { return g.rt.Saves.TriggerSave(g.rt.Context()) })
	case inpututil.IsKeyJustPressed(ebiten.KeyF9):
		g.trigger("Loaded", func() error { return g.rt.Saves.TriggerLoad(g.rt.Context()) })
	}

	g.rt.Assets.Bindings.Poll(g.keys)
	g.loop.Update()
	return nil
}

var sceneColors = []color.RGBA{
	{0x2e, 0x4a, 0x2b, 0xff},
	{0x3b, 0x3a, 0x52, 0xff},
}

func (g *Game) Draw(screen *ebiten.Image) {
	bg := sceneColors[0]
	for i, name := range g.scenes {
		if name == g.rt.Dispatcher.Active().Name {
			bg = sceneColors[i%len(sceneColors)]
		}
	}
	screen.Fill(bg)
	g.drawHUD(screen)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	var b strings.Builder
	fmt.Fprintf(&b, "scenekit sandbox | FPS: %.0f | Tick: %d | %s\n",
		ebiten.ActualFPS(), g.rt.CurrentTick(), g.loop.State)
	fmt.Fprintf(&b, "Scene: %s | Slot: %d\n", g.rt.Dispatcher.Active().Name, g.rt.Saves.SlotKey())
	b.WriteString("[1/2] Scene  [Space] Harvest  [Esc] Pause  [F5] Save  [F9] Load\n\n")

	b.WriteString("Inventory\n")
	for _, s := range g.inv.Stacks() {
		fmt.Fprintf(&b, "  %-12s %d\n", s.Item.Name(), s.Quantity)
	}
	b.WriteString("\nEvents\n")
	for _, e := range g.rt.Assets.Events {
		if v, ok := e.(interface{ LastAny() any }); ok {
			fmt.Fprintf(&b, "  %-12s %v\n", e.Name(), v.LastAny())
		}
	}
	if g.status != "" {
		fmt.Fprintf(&b, "\n%s\n", g.status)
	}

	op := &text.DrawOptions{}
	op.GeoM.Translate(12, 12)
	op.LineSpacing = 16
	op.ColorScale.ScaleWithColor(color.White)
	text.Draw(screen, b.String(), g.face, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}
