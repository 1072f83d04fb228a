package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"github.com/1siamBot/scenekit/engine/input"
)

// keySource answers binding polls from ebiten's keyboard state
type keySource struct {
	keys map[input.Key]ebiten.Key
}

func newKeySource(names []input.Key, log zerolog.Logger) *keySource {
	s := &keySource{keys: make(map[input.Key]ebiten.Key, len(names))}
	for _, name := range names {
		var k ebiten.Key
		if err := k.UnmarshalText([]byte(name)); err != nil {
			log.Warn().Str("key", string(name)).Msg("Unknown key in bindings, ignoring")
			continue
		}
		s.keys[name] = k
	}
	return s
}

// JustPressed returns true if key was just pressed this frame
func (s *keySource) JustPressed(name input.Key) bool {
	k, ok := s.keys[name]
	return ok && inpututil.IsKeyJustPressed(k)
}
