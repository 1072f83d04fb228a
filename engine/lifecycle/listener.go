package lifecycle

// Scene identifies a loaded scene
type Scene struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path" json:"path"`
}

// LoadMode says how a scene joins the running set
type LoadMode uint8

const (
	LoadSingle LoadMode = iota
	LoadAdditive
)

func (m LoadMode) String() string {
	if m == LoadAdditive {
		return "additive"
	}
	return "single"
}

// Listener receives scene and session notifications.
type Listener interface {
	OnSceneLoad(s Scene, mode LoadMode)
	OnSceneUnload(s Scene)
	OnSessionStart(s Scene)
	OnSessionStop(s Scene)
}

// Nop implements Listener with empty hooks. Embed it and override what you need.
type Nop struct{}

func (Nop) OnSceneLoad(Scene, LoadMode) {}
func (Nop) OnSceneUnload(Scene)         {}
func (Nop) OnSessionStart(Scene)        {}
func (Nop) OnSessionStop(Scene)         {}
