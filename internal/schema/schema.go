// Package schema models the JSON-Schema-like trees that test cases declare
// for structured output, and rewrites them into the dialects the individual
// vendors accept.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v4"
)

// Schema is a JSON-Schema-like tree. Property declaration order from the
// source document is preserved, because some vendors require a required-list
// that is synchronized with every declared property and the synthesized list
// has to be deterministic.
type Schema struct {
	Type                 string
	Description          string
	Enum                 []any
	Properties           *Properties
	Items                *Schema
	Required             []string
	AdditionalProperties any
	// Extra holds keywords this benchmark does not interpret (minimum,
	// format, ...). They are passed through to the vendors untouched.
	Extra []ExtraField
}

// ExtraField is an uninterpreted schema keyword carried through verbatim.
type ExtraField struct {
	Key   string
	Value any
}

// Tool is a named structured-output option a test case offers to the model.
type Tool struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Schema      *Schema `yaml:"schema" json:"schema"`
}

// Clone returns a deep copy. Vendor adaptation always works on copies so the
// test case's declared schema is never mutated.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := &Schema{
		Type:        s.Type,
		Description: s.Description,
		Items:       s.Items.Clone(),
	}
	if s.Enum != nil {
		out.Enum = append([]any(nil), s.Enum...)
	}
	if s.Required != nil {
		out.Required = append([]string(nil), s.Required...)
	}
	if s.Properties != nil {
		out.Properties = NewProperties()
		for _, name := range s.Properties.Keys() {
			prop, _ := s.Properties.Get(name)
			out.Properties.Set(name, prop.Clone())
		}
	}
	out.AdditionalProperties = s.AdditionalProperties
	if s.Extra != nil {
		out.Extra = append([]ExtraField(nil), s.Extra...)
	}
	return out
}

// MarshalJSON emits fields in a fixed order so request payloads are stable
// across runs.
func (s *Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	field := func(key string, value any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal schema field %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if s.Type != "" {
		if err := field("type", s.Type); err != nil {
			return nil, err
		}
	}
	if s.Description != "" {
		if err := field("description", s.Description); err != nil {
			return nil, err
		}
	}
	if len(s.Enum) > 0 {
		if err := field("enum", s.Enum); err != nil {
			return nil, err
		}
	}
	if s.Properties != nil && s.Properties.Len() > 0 {
		if err := field("properties", s.Properties); err != nil {
			return nil, err
		}
	}
	if s.Items != nil {
		if err := field("items", s.Items); err != nil {
			return nil, err
		}
	}
	if len(s.Required) > 0 {
		if err := field("required", s.Required); err != nil {
			return nil, err
		}
	}
	if s.AdditionalProperties != nil {
		if err := field("additionalProperties", s.AdditionalProperties); err != nil {
			return nil, err
		}
	}
	for _, extra := range s.Extra {
		if err := field(extra.Key, extra.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts a schema object, keeping property declaration order.
func (s *Schema) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("schema must be an object")
	}
	*s = Schema{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("schema key %q: %w", key, err)
		}
		if err := s.setJSONField(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token() // closing brace
	return err
}

func (s *Schema) setJSONField(key string, raw json.RawMessage) error {
	var err error
	switch key {
	case "type":
		err = json.Unmarshal(raw, &s.Type)
	case "description":
		err = json.Unmarshal(raw, &s.Description)
	case "enum":
		err = json.Unmarshal(raw, &s.Enum)
	case "properties":
		s.Properties = NewProperties()
		err = json.Unmarshal(raw, s.Properties)
	case "items":
		s.Items = &Schema{}
		err = json.Unmarshal(raw, s.Items)
	case "required":
		err = json.Unmarshal(raw, &s.Required)
	case "additionalProperties":
		err = json.Unmarshal(raw, &s.AdditionalProperties)
	default:
		var value any
		if err = json.Unmarshal(raw, &value); err == nil {
			s.Extra = append(s.Extra, ExtraField{Key: key, Value: value})
		}
	}
	if err != nil {
		return fmt.Errorf("schema key %q: %w", key, err)
	}
	return nil
}

// UnmarshalYAML decodes a schema mapping from the benchmark config,
// preserving the order in which properties were written.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: schema must be a mapping", node.Line)
	}
	*s = Schema{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		var err error
		switch keyNode.Value {
		case "type":
			err = valueNode.Decode(&s.Type)
		case "description":
			err = valueNode.Decode(&s.Description)
		case "enum":
			err = valueNode.Decode(&s.Enum)
		case "properties":
			s.Properties = NewProperties()
			err = valueNode.Decode(s.Properties)
		case "items":
			s.Items = &Schema{}
			err = valueNode.Decode(s.Items)
		case "required":
			err = valueNode.Decode(&s.Required)
		case "additionalProperties":
			err = valueNode.Decode(&s.AdditionalProperties)
		default:
			var value any
			if err = valueNode.Decode(&value); err == nil {
				s.Extra = append(s.Extra, ExtraField{Key: keyNode.Value, Value: value})
			}
		}
		if err != nil {
			return fmt.Errorf("schema key %q: %w", keyNode.Value, err)
		}
	}
	return nil
}

// Properties is an insertion-ordered name → Schema map.
type Properties struct {
	keys   []string
	fields map[string]*Schema
}

func NewProperties() *Properties {
	return &Properties{fields: make(map[string]*Schema)}
}

// Set adds or replaces a property. A new name is appended at the end of the
// declaration order.
func (p *Properties) Set(name string, s *Schema) {
	if _, exists := p.fields[name]; !exists {
		p.keys = append(p.keys, name)
	}
	p.fields[name] = s
}

func (p *Properties) Get(name string) (*Schema, bool) {
	s, ok := p.fields[name]
	return s, ok
}

func (p *Properties) Has(name string) bool {
	_, ok := p.fields[name]
	return ok
}

// Keys returns the property names in declaration order.
func (p *Properties) Keys() []string {
	return append([]string(nil), p.keys...)
}

func (p *Properties) Len() int {
	return len(p.keys)
}

func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.fields[name])
		if err != nil {
			return nil, fmt.Errorf("marshal property %q: %w", name, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *Properties) UnmarshalJSON(data []byte) error {
	if p.fields == nil {
		p.fields = make(map[string]*Schema)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("properties must be an object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name := keyTok.(string)
		prop := &Schema{}
		if err := dec.Decode(prop); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		p.Set(name, prop)
	}
	_, err = dec.Token()
	return err
}

func (p *Properties) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: properties must be a mapping", node.Line)
	}
	if p.fields == nil {
		p.fields = make(map[string]*Schema)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		prop := &Schema{}
		if err := node.Content[i+1].Decode(prop); err != nil {
			return fmt.Errorf("property %q: %w", node.Content[i].Value, err)
		}
		p.Set(node.Content[i].Value, prop)
	}
	return nil
}
