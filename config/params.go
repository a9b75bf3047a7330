package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// OrderedMap is a decoded mapping that remembers the order of its keys.
// Table parameters keep their column order through it.
type OrderedMap struct {
	Keys   []string
	Values map[string]any
}

// NewOrderedMap creates an empty mapping.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{Values: make(map[string]any)}
}

// Set stores v under key. A repeated key keeps its first position.
func (m *OrderedMap) Set(key string, v any) {
	if _, ok := m.Values[key]; !ok {
		m.Keys = append(m.Keys, key)
	}
	m.Values[key] = v
}

// MarshalJSON writes the keys in their stored order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.Values[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Params are report parameters. Nested mappings decode as *OrderedMap.
type Params map[string]any

func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	v, err := nodeValue(node)
	if err != nil {
		return err
	}
	switch m := v.(type) {
	case nil:
		*p = nil
	case *OrderedMap:
		*p = m.Values
	default:
		return fmt.Errorf("line %d: parameters must be a mapping", node.Line)
	}
	return nil
}

func nodeValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return nodeValue(node.Content[0])
	case yaml.AliasNode:
		return nodeValue(node.Alias)
	case yaml.MappingNode:
		m := NewOrderedMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			var key string
			if err := node.Content[i].Decode(&key); err != nil {
				return nil, err
			}
			v, err := nodeValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		}
		return m, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := nodeValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeJSON reads one JSON value. Objects decode as *OrderedMap and
// numbers as json.Number.
func DecodeJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return jsonValue(dec)
}

// DecodeParams reads a JSON object of parameters.
func DecodeParams(r io.Reader) (map[string]any, error) {
	v, err := DecodeJSON(r)
	if err != nil {
		return nil, err
	}
	m, ok := v.(*OrderedMap)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
	return m.Values, nil
}

func jsonValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		m := NewOrderedMap()
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := tok.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v is not a string", tok)
			}
			v, err := jsonValue(dec)
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return m, nil
	case '[':
		list := []any{}
		for dec.More() {
			v, err := jsonValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	}
	return nil, errors.New("unexpected " + delim.String())
}
