package schema

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Item is one option of an enum, set or bool field
type Item struct {
	Key   string
	Label string
}

// Items is an ordered mapping of option keys to labels
type Items []Item

// NewItems builds Items from alternating keys and labels
func NewItems(keysAndLabels ...string) Items {
	items := make(Items, 0, len(keysAndLabels)/2)
	for i := 0; i+1 < len(keysAndLabels); i += 2 {
		items = append(items, Item{Key: keysAndLabels[i], Label: keysAndLabels[i+1]})
	}
	return items
}

// BoolItems builds the two-element items of a bool field
func BoolItems(falseLabel, trueLabel string) Items {
	return Items{{Key: "0", Label: falseLabel}, {Key: "1", Label: trueLabel}}
}

// Lookup returns the label of key
func (it Items) Lookup(key string) (string, bool) {
	for _, item := range it {
		if item.Key == key {
			return item.Label, true
		}
	}
	return "", false
}

// Has reports whether key is one of the options
func (it Items) Has(key string) bool {
	_, ok := it.Lookup(key)
	return ok
}

// Keys returns the option keys in order
func (it Items) Keys() []string {
	keys := make([]string, len(it))
	for i, item := range it {
		keys[i] = item.Key
	}
	return keys
}

func (it Items) clone() Items {
	if it == nil {
		return nil
	}
	return append(Items(nil), it...)
}

// UnmarshalYAML keeps the document order of a mapping. A sequence is keyed
// by position, so [No, Yes] becomes {0: No, 1: Yes}
func (it *Items) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		items := make(Items, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			k, v := value.Content[i], value.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: item %q must have a scalar label", v.Line, k.Value)
			}
			items = append(items, Item{Key: k.Value, Label: v.Value})
		}
		*it = items
	case yaml.SequenceNode:
		items := make(Items, 0, len(value.Content))
		for i, v := range value.Content {
			if v.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: item %d must be a scalar label", v.Line, i)
			}
			items = append(items, Item{Key: strconv.Itoa(i), Label: v.Value})
		}
		*it = items
	case yaml.ScalarNode:
		if value.Tag != "!!null" {
			return fmt.Errorf("line %d: items must be a mapping or a list", value.Line)
		}
		*it = nil
	default:
		return fmt.Errorf("line %d: items must be a mapping or a list", value.Line)
	}
	return nil
}

// UnmarshalJSON decodes a JSON object keeping its key order. JSON is
// decoded through the YAML parser, which preserves mapping order
func (it *Items) UnmarshalJSON(data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if len(doc.Content) == 0 {
		*it = nil
		return nil
	}
	return it.UnmarshalYAML(doc.Content[0])
}

// MarshalJSON encodes the items as an object in option order
func (it Items) MarshalJSON() ([]byte, error) {
	if it == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range it {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(item.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(item.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
