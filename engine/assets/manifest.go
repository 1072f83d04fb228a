// Package assets reads the YAML manifest describing a game's scenes,
// event channels, items and key bindings, and registers them.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1siamBot/scenekit/engine/lifecycle"
)

// ErrInvalidManifest wraps every validation failure.
var ErrInvalidManifest = errors.New("invalid asset manifest")

// Event value kinds.
const (
	KindVoid   = "void"
	KindInt    = "int"
	KindFloat  = "float"
	KindString = "string"
	KindBool   = "bool"
)

type Manifest struct {
	Scenes      []lifecycle.Scene `yaml:"scenes"`
	Events      []EventSpec       `yaml:"events"`
	Items       []ItemSpec        `yaml:"items"`
	Seeds       []SeedSpec        `yaml:"seeds"`
	Inventories []InventorySpec   `yaml:"inventories"`
	Bindings    []BindingSpec     `yaml:"bindings"`
}

type EventSpec struct {
	Name    string    `yaml:"name"`
	Kind    string    `yaml:"type"`
	Default yaml.Node `yaml:"default"`
	Persist bool      `yaml:"persist"`
}

type ItemSpec struct {
	Name     string `yaml:"name"`
	Display  string `yaml:"display"`
	MaxStack int    `yaml:"max_stack"`
}

type SeedSpec struct {
	Name         string        `yaml:"name"`
	GrowthTime   time.Duration `yaml:"growth_time"`
	GrowthSpeed  float64       `yaml:"growth_speed"`
	GrowthAmount int           `yaml:"growth_amount"`
	Crop         string        `yaml:"crop"`
}

type InventorySpec struct {
	Name string `yaml:"name"`
}

type BindingSpec struct {
	Key    string   `yaml:"key"`
	Event  string   `yaml:"event"`
	Scenes []string `yaml:"scenes"`
}

// Load reads and validates the manifest at path
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates a manifest. Unknown fields are rejected.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Scene returns the scene called name
func (m *Manifest) Scene(name string) (lifecycle.Scene, bool) {
	for _, s := range m.Scenes {
		if s.Name == name {
			return s, true
		}
	}
	return lifecycle.Scene{}, false
}

// Validate checks names and cross references.
func (m *Manifest) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidManifest, fmt.Sprintf(format, args...))
	}

	scenes := make(map[string]bool)
	for _, s := range m.Scenes {
		if s.Name == "" {
			return invalid("scene without name")
		}
		if scenes[s.Name] {
			return invalid("duplicate scene %q", s.Name)
		}
		scenes[s.Name] = true
	}

	// events, items, seeds and inventories share the registry namespace
	names := make(map[string]string)
	claim := func(kind, name string) error {
		if name == "" {
			return invalid("%s without name", kind)
		}
		if prev, ok := names[name]; ok {
			return invalid("%s %q already declared as %s", kind, name, prev)
		}
		names[name] = kind
		return nil
	}

	eventNames := make(map[string]bool)
	for _, e := range m.Events {
		if err := claim("event", e.Name); err != nil {
			return err
		}
		switch e.Kind {
		case KindVoid, KindInt, KindFloat, KindString, KindBool:
		default:
			return invalid("event %q has unknown type %q", e.Name, e.Kind)
		}
		if _, err := e.defaultValue(); err != nil {
			return invalid("event %q default: %v", e.Name, err)
		}
		eventNames[e.Name] = true
	}
	items := make(map[string]bool)
	for _, it := range m.Items {
		if err := claim("item", it.Name); err != nil {
			return err
		}
		if it.MaxStack < 0 {
			return invalid("item %q has negative max_stack", it.Name)
		}
		items[it.Name] = true
	}
	for _, s := range m.Seeds {
		if err := claim("seed", s.Name); err != nil {
			return err
		}
		if s.GrowthTime <= 0 {
			return invalid("seed %q needs a positive growth_time", s.Name)
		}
		if s.Crop != "" && !items[s.Crop] {
			return invalid("seed %q grows unknown item %q", s.Name, s.Crop)
		}
	}
	for _, inv := range m.Inventories {
		if err := claim("inventory", inv.Name); err != nil {
			return err
		}
	}
	for _, b := range m.Bindings {
		if b.Key == "" {
			return invalid("binding for %q without key", b.Event)
		}
		if !eventNames[b.Event] {
			return invalid("binding %s raises unknown event %q", b.Key, b.Event)
		}
		for _, s := range b.Scenes {
			if !scenes[s] {
				return invalid("binding %s names unknown scene %q", b.Key, s)
			}
		}
	}
	return nil
}

// defaultValue decodes the default into the Go type of the event kind.
func (e EventSpec) defaultValue() (any, error) {
	switch e.Kind {
	case KindInt:
		return decodeDefault[int](e.Default)
	case KindFloat:
		return decodeDefault[float64](e.Default)
	case KindString:
		return decodeDefault[string](e.Default)
	case KindBool:
		return decodeDefault[bool](e.Default)
	case KindVoid:
		if e.Default.Kind != 0 {
			return nil, errors.New("void events take no default")
		}
		return struct{}{}, nil
	}
	return nil, fmt.Errorf("unknown type %q", e.Kind)
}

func decodeDefault[T any](n yaml.Node) (T, error) {
	var v T
	if n.Kind == 0 {
		return v, nil
	}
	err := n.Decode(&v)
	return v, err
}
