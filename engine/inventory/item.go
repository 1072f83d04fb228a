package inventory

import (
	"time"

	"github.com/1siamBot/scenekit/engine/registry"
)

// Item is anything an Inventory can hold.
type Item interface {
	registry.Asset
	DisplayName() string
	// MaxStack caps the quantity held; 0 means unlimited.
	MaxStack() int
}

// BasicItem is a plain Item.
type BasicItem struct {
	registry.Meta
	Display string
	Stack   int
}

func NewItem(name, display string, maxStack int) *BasicItem {
	if display == "" {
		display = name
	}
	return &BasicItem{Meta: registry.NewMeta(name), Display: display, Stack: maxStack}
}

func (i *BasicItem) DisplayName() string { return i.Display }
func (i *BasicItem) MaxStack() int       { return i.Stack }

// Seed is an item that grows into a crop.
type Seed struct {
	BasicItem
	// GrowthTime is one growth cycle at speed 1.
	GrowthTime   time.Duration
	GrowthSpeed  float64
	GrowthAmount int
	Crop         registry.Ref[Item]
}

func NewSeed(name string, growthTime time.Duration, speed float64, amount int, crop registry.Ref[Item]) *Seed {
	if speed <= 0 {
		speed = 1
	}
	return &Seed{
		BasicItem:    *NewItem(name, "", 0),
		GrowthTime:   growthTime,
		GrowthSpeed:  speed,
		GrowthAmount: amount,
		Crop:         crop,
	}
}

// Cycles returns how many full growth cycles fit in elapsed
func (s *Seed) Cycles(elapsed time.Duration) int {
	if s.GrowthTime <= 0 || elapsed <= 0 {
		return 0
	}
	return int(float64(elapsed) * s.GrowthSpeed / float64(s.GrowthTime))
}

// Yield is the crop quantity grown over elapsed.
func (s *Seed) Yield(elapsed time.Duration) int {
	return s.Cycles(elapsed) * s.GrowthAmount
}
