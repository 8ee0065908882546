// model/attributes.go
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
)

// Attribute is one key/value pair of an entity's attribute set.
type Attribute struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// Attributes is an entity's attribute bag. It decodes from either a JSON
// object or a list of {key, value} pairs.
type Attributes map[string]Value

func (a *Attributes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*a = nil
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var pairs []Attribute
		if err := json.Unmarshal(trimmed, &pairs); err != nil {
			return fmt.Errorf("%w: attributes: %v", themis_errors.ErrSchemaViolation, err)
		}
		out := make(Attributes, len(pairs))
		for _, pair := range pairs {
			if pair.Key == "" {
				return fmt.Errorf("%w: attributes: empty key", themis_errors.ErrSchemaViolation)
			}
			if _, dup := out[pair.Key]; dup {
				return fmt.Errorf("%w: attributes: duplicate key %q", themis_errors.ErrSchemaViolation, pair.Key)
			}
			out[pair.Key] = pair.Value
		}
		*a = out
		return nil
	}

	var fields map[string]Value
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return fmt.Errorf("%w: attributes: %v", themis_errors.ErrSchemaViolation, err)
	}
	*a = fields
	return nil
}

// List returns the attributes as pairs ordered by key.
func (a Attributes) List() []Attribute {
	out := make([]Attribute, 0, len(a))
	for _, k := range a.Keys() {
		out = append(out, Attribute{Key: k, Value: a[k]})
	}
	return out
}

func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Object views the attributes as an object Value.
func (a Attributes) Object() Value {
	return ObjectValue(map[string]Value(a.Clone()))
}

// AttributesFromList builds an attribute bag, rejecting duplicate keys.
func AttributesFromList(pairs []Attribute) (Attributes, error) {
	out := make(Attributes, len(pairs))
	for _, pair := range pairs {
		if _, dup := out[pair.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate attribute key %q", themis_errors.ErrSchemaViolation, pair.Key)
		}
		out[pair.Key] = pair.Value
	}
	return out, nil
}
