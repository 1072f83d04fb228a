package savedata_test

import (
	"errors"

	"github.com/1siamBot/scenekit/engine/savedata"
)

type counterData struct {
	N int `json:"n" yaml:"n"`
}

func (*counterData) ContainerType() string { return "counter" }

type profileData struct {
	Name string   `json:"name" yaml:"name"`
	Tags []string `json:"tags" yaml:"tags"`
}

func (*profileData) ContainerType() string { return "profile" }

// counter is a Saveable holding one integer.
type counter struct {
	id      string
	n       int
	saves   int
	loads   int
	loadErr error
	panics  bool
}

func (c *counter) UniqueIdentifier() string { return c.id }

func (c *counter) SaveData() (savedata.DataContainer, error) {
	return &counterData{N: c.n}, nil
}

func (c *counter) LoadSaveData(d savedata.DataContainer) error {
	if c.panics {
		panic("boom")
	}
	if c.loadErr != nil {
		return c.loadErr
	}
	cd, ok := d.(*counterData)
	if !ok {
		return savedata.ErrContainerType
	}
	c.n = cd.N
	return nil
}

func (c *counter) OnSave() { c.saves++ }
func (c *counter) OnLoad() { c.loads++ }

// broken fails to produce a snapshot.
type broken struct{ counter }

var errSnapshot = errors.New("snapshot failed")

func (b *broken) SaveData() (savedata.DataContainer, error) {
	return nil, errSnapshot
}

func newTypes() *savedata.Types {
	types := savedata.NewTypes()
	savedata.Register[counterData](types)
	savedata.Register[profileData](types)
	return types
}
