package business

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalYAML renders the record as a YAML mapping in document order.
func (r Record) MarshalYAML() (any, error) {
	if r.null {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range r.Keys() {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}

		valNode := &yaml.Node{}
		if raw, ok := r.extra[key]; ok {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("business record: field %q: %w", key, err)
			}
			if err := valNode.Encode(v); err != nil {
				return nil, fmt.Errorf("business record: field %q: %w", key, err)
			}
		} else {
			valNode.Kind = yaml.ScalarNode
			valNode.Tag = "!!str"
			valNode.Value = r.knownValue(key)
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}

// UnmarshalYAML reads a YAML mapping, remembering key order.
//
// yaml.v3 never hands a null node to an unmarshaler nested in a slice of values; decode lists
// into []*Record and map nil entries to Null(), as the local reader does.
func (r *Record) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!null" {
		*r = Null()
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("business record: line %d: expected mapping", value.Line)
	}

	*r = Record{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, valNode := value.Content[i], value.Content[i+1]
		key := keyNode.Value

		var v any
		if err := valNode.Decode(&v); err != nil {
			return fmt.Errorf("business record: field %q: %w", key, err)
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("business record: field %q: %w", key, err)
		}
		r.SetExtra(key, raw)
	}
	return nil
}
