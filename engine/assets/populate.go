package assets

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/1siamBot/scenekit/engine/events"
	"github.com/1siamBot/scenekit/engine/input"
	"github.com/1siamBot/scenekit/engine/inventory"
	"github.com/1siamBot/scenekit/engine/registry"
)

// BindingsName is the registry name of the key bindings built from a manifest.
const BindingsName = "Bindings"

type populateOptions struct {
	match events.MatchMode
	log   zerolog.Logger
}

type Option func(*populateOptions)

// WithMatchMode sets the unsubscribe match mode of created channels.
func WithMatchMode(m events.MatchMode) Option {
	return func(o *populateOptions) { o.match = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *populateOptions) { o.log = l }
}

// Populated lists what Populate created.
type Populated struct {
	Events      []events.Event
	Items       []inventory.Item
	Inventories []*inventory.Inventory
	Bindings    *input.Bindings
}

// Populate builds every asset in the manifest and puts it into r.
// Items go in before seeds so crops resolve.
func (m *Manifest) Populate(r *registry.Registry, opts ...Option) (*Populated, error) {
	o := populateOptions{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	out := &Populated{}
	for _, spec := range m.Events {
		e, err := newEvent(spec, o)
		if err != nil {
			return nil, err
		}
		r.Put(e)
		out.Events = append(out.Events, e)
	}
	for _, spec := range m.Items {
		it := inventory.NewItem(spec.Name, spec.Display, spec.MaxStack)
		r.Put(it)
		out.Items = append(out.Items, it)
	}
	for _, spec := range m.Seeds {
		var crop registry.Ref[inventory.Item]
		if spec.Crop != "" {
			crop = registry.RefNamed[inventory.Item](spec.Crop)
			if _, err := crop.Resolve(r); err != nil {
				return nil, fmt.Errorf("seed %q: %w", spec.Name, err)
			}
		}
		s := inventory.NewSeed(spec.Name, spec.GrowthTime, spec.GrowthSpeed, spec.GrowthAmount, crop)
		r.Put(s)
		out.Items = append(out.Items, s)
	}
	for _, spec := range m.Inventories {
		inv := inventory.New(spec.Name, r, o.log)
		r.Put(inv)
		out.Inventories = append(out.Inventories, inv)
	}

	out.Bindings = input.NewBindings(BindingsName, o.log)
	for _, spec := range m.Bindings {
		trigger, err := registry.LookupAs[input.Trigger](r, spec.Event)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", spec.Key, err)
		}
		out.Bindings.Bind(input.Binding{Key: input.Key(spec.Key), Event: trigger, Scenes: spec.Scenes})
	}
	r.Put(out.Bindings)

	o.log.Info().Int("events", len(out.Events)).Int("items", len(out.Items)).
		Int("inventories", len(out.Inventories)).Int("bindings", out.Bindings.Len()).
		Msg("Assets registered")
	return out, nil
}

func newEvent(spec EventSpec, o populateOptions) (events.Event, error) {
	def, err := spec.defaultValue()
	if err != nil {
		return nil, fmt.Errorf("%w: event %q default: %w", ErrInvalidManifest, spec.Name, err)
	}
	opts := []events.Option{
		events.WithPersist(spec.Persist),
		events.WithMatchMode(o.match),
		events.WithLogger(o.log),
	}
	switch v := def.(type) {
	case int:
		return events.NewChannel(spec.Name, v, opts...), nil
	case float64:
		return events.NewChannel(spec.Name, v, opts...), nil
	case string:
		return events.NewChannel(spec.Name, v, opts...), nil
	case bool:
		return events.NewChannel(spec.Name, v, opts...), nil
	case struct{}:
		return events.NewChannel(spec.Name, v, opts...), nil
	}
	return nil, fmt.Errorf("%w: event %q has unknown type %q", ErrInvalidManifest, spec.Name, spec.Kind)
}
