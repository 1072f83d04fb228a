package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1siamBot/scenekit/engine/events"
)

func TestConstantVariable(t *testing.T) {
	v := events.Constant(4)
	assert.Equal(t, 4, v.Value())
	v.Set(9)
	assert.Equal(t, 9, v.Value())
	assert.Nil(t, v.Channel())
}

func TestBoundVariableReadsLastRaised(t *testing.T) {
	c := events.NewChannel("Gold", 100)
	v := events.Bound(c)
	assert.Equal(t, 100, v.Value())

	var seen []int
	c.Subscribe(newOrigin("hud"), "gold", func(g int) { seen = append(seen, g) })

	v.Set(250)
	assert.Equal(t, 250, v.Value())
	assert.Equal(t, []int{250}, seen)

	c.RaiseValue(30)
	assert.Equal(t, 30, v.Value())
}
