package savedata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Codec turns a slot into bytes and back.
type Codec interface {
	Name() string
	// Extension is the file extension used by file-backed stores.
	Extension() string
	Encode(s *Slot) ([]byte, error)
	Decode(data []byte) (*Slot, error)
}

// CodecByName returns the codec registered under name
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml":
		return YAMLCodec{}, nil
	}
	return nil, fmt.Errorf("unknown save codec %q", name)
}

type jsonEntry struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type jsonSlot struct {
	Containers map[string]jsonEntry `json:"containers"`
}

type jsonPayload json.RawMessage

func (p jsonPayload) Decode(v any) error {
	dec := json.NewDecoder(bytes.NewReader(p))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// JSONCodec writes indented JSON with sorted keys.
type JSONCodec struct{}

func (JSONCodec) Name() string      { return "json" }
func (JSONCodec) Extension() string { return "json" }

func (JSONCodec) Encode(s *Slot) ([]byte, error) {
	doc := jsonSlot{Containers: make(map[string]jsonEntry, s.Len())}
	for id, e := range s.entries {
		v, err := e.Data()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", id, err)
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", id, err)
		}
		doc.Containers[id] = jsonEntry{Type: e.Type, Data: raw}
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func (JSONCodec) Decode(data []byte) (*Slot, error) {
	var doc jsonSlot
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	s := NewSlot()
	for id, e := range doc.Containers {
		s.putPayload(id, e.Type, jsonPayload(e.Data))
	}
	return s, nil
}

type yamlEntry struct {
	Type string     `yaml:"type"`
	Data *yaml.Node `yaml:"data"`
}

type yamlSlot struct {
	Containers map[string]yamlEntry `yaml:"containers"`
}

type yamlPayload struct {
	node *yaml.Node
}

func (p yamlPayload) Decode(v any) error {
	if p.node == nil {
		return errors.New("empty payload")
	}
	return p.node.Decode(v)
}

// YAMLCodec writes slots as YAML documents.
type YAMLCodec struct{}

func (YAMLCodec) Name() string      { return "yaml" }
func (YAMLCodec) Extension() string { return "yaml" }

func (YAMLCodec) Encode(s *Slot) ([]byte, error) {
	doc := yamlSlot{Containers: make(map[string]yamlEntry, s.Len())}
	for id, e := range s.entries {
		v, err := e.Data()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", id, err)
		}
		node := &yaml.Node{}
		if err := node.Encode(v); err != nil {
			return nil, fmt.Errorf("encode %s: %w", id, err)
		}
		doc.Containers[id] = yamlEntry{Type: e.Type, Data: node}
	}
	return yaml.Marshal(doc)
}

func (YAMLCodec) Decode(data []byte) (*Slot, error) {
	var doc yamlSlot
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	s := NewSlot()
	for id, e := range doc.Containers {
		s.putPayload(id, e.Type, yamlPayload{node: e.Data})
	}
	return s, nil
}
