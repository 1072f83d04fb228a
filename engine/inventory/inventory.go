package inventory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/1siamBot/scenekit/engine/events"
	"github.com/1siamBot/scenekit/engine/lifecycle"
	"github.com/1siamBot/scenekit/engine/registry"
	"github.com/1siamBot/scenekit/engine/savedata"
)

// ContainerKind tags inventory snapshots in save slots.
const ContainerKind = "inventory"

var (
	ErrInsufficient    = errors.New("insufficient quantity")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrStackFull       = errors.New("stack is full")
)

// Stack is a quantity of one item
type Stack struct {
	Item     registry.Ref[Item] `json:"item" yaml:"item"`
	Quantity int                `json:"quantity" yaml:"quantity"`
}

// Data is the saved form of an Inventory.
type Data struct {
	Items []Stack `json:"items" yaml:"items"`
}

func (*Data) ContainerType() string { return ContainerKind }

// RegisterTypes installs the inventory container kind.
func RegisterTypes(t *savedata.Types) {
	savedata.Register[Data](t)
}

// Inventory holds item quantities keyed by item name. It is a registry
// asset, a lifecycle listener and a Saveable.
type Inventory struct {
	registry.Meta
	lifecycle.Nop

	mu         sync.Mutex
	quantities map[string]int
	lookup     *registry.Registry
	log        zerolog.Logger

	// Changed carries the item name and its new quantity.
	Changed *events.Channel2[string, int]
}

var _ savedata.Saveable = (*Inventory)(nil)

// New creates an inventory resolving items through lookup, which may be nil.
func New(name string, lookup *registry.Registry, logger zerolog.Logger) *Inventory {
	return &Inventory{
		Meta:       registry.NewMeta(name),
		quantities: make(map[string]int),
		lookup:     lookup,
		log:        logger.With().Str("inventory", name).Logger(),
		Changed: events.NewChannel2(name+".Changed", "", 0,
			events.PersistThroughSceneChanges(), events.WithLogger(logger)),
	}
}

// Add puts n of item into the inventory and returns how many fit.
func (inv *Inventory) Add(item Item, n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidQuantity
	}
	inv.mu.Lock()
	have := inv.quantities[item.Name()]
	added := n
	if limit := item.MaxStack(); limit > 0 && have+n > limit {
		added = limit - have
	}
	if added <= 0 {
		inv.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrStackFull, item.Name())
	}
	total := have + added
	inv.quantities[item.Name()] = total
	inv.mu.Unlock()

	inv.Changed.RaiseValues(item.Name(), total)
	return added, nil
}

// Remove takes n of item out; it fails without change when fewer are held.
func (inv *Inventory) Remove(item Item, n int) error {
	if n <= 0 {
		return ErrInvalidQuantity
	}
	inv.mu.Lock()
	have := inv.quantities[item.Name()]
	if have < n {
		inv.mu.Unlock()
		return fmt.Errorf("%w: have %d %s, need %d", ErrInsufficient, have, item.Name(), n)
	}
	total := have - n
	inv.quantities[item.Name()] = total
	inv.mu.Unlock()

	inv.Changed.RaiseValues(item.Name(), total)
	return nil
}

func (inv *Inventory) Quantity(item Item) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.quantities[item.Name()]
}

func (inv *Inventory) Has(item Item, n int) bool {
	return inv.Quantity(item) >= n
}

// Stacks returns every known item, zero quantities included, sorted by name
func (inv *Inventory) Stacks() []Stack {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := make([]Stack, 0, len(inv.quantities))
	for name, q := range inv.quantities {
		out = append(out, Stack{Item: registry.RefNamed[Item](name), Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.Name() < out[j].Item.Name() })
	return out
}

func (inv *Inventory) UniqueIdentifier() string {
	return "inventory." + inv.Name()
}

func (inv *Inventory) SaveData() (savedata.DataContainer, error) {
	return &Data{Items: inv.Stacks()}, nil
}

// LoadSaveData replaces the held quantities with the snapshot.
func (inv *Inventory) LoadSaveData(d savedata.DataContainer) error {
	data, ok := d.(*Data)
	if !ok {
		return fmt.Errorf("%w: want %s, got %s", savedata.ErrContainerType, ContainerKind, d.ContainerType())
	}
	restored := make(map[string]int, len(data.Items))
	for _, s := range data.Items {
		if s.Item.IsZero() {
			continue
		}
		if inv.lookup != nil {
			if _, err := s.Item.Resolve(inv.lookup); err != nil {
				inv.log.Warn().Err(err).Str("item", s.Item.Name()).Msg("Dropping unknown item from save")
				continue
			}
		}
		restored[s.Item.Name()] = s.Quantity
	}
	inv.mu.Lock()
	inv.quantities = restored
	inv.mu.Unlock()
	return nil
}

func (inv *Inventory) OnSave() {
	inv.log.Debug().Msg("Inventory saved")
}

func (inv *Inventory) OnLoad() {
	inv.log.Debug().Int("stacks", len(inv.Stacks())).Msg("Inventory loaded")
}

// OnSessionStart seeds every registered item at zero.
func (inv *Inventory) OnSessionStart(lifecycle.Scene) {
	if inv.lookup == nil {
		return
	}
	items := registry.All[Item](inv.lookup)
	inv.mu.Lock()
	for _, it := range items {
		if _, ok := inv.quantities[it.Name()]; !ok {
			inv.quantities[it.Name()] = 0
		}
	}
	inv.mu.Unlock()
}

func (inv *Inventory) OnSessionStop(lifecycle.Scene) {
	inv.mu.Lock()
	inv.quantities = make(map[string]int)
	inv.mu.Unlock()
}
