package schema

import "fmt"

// Discriminator is the property injected into a union schema so a model
// limited to single-schema structured output can still indicate which tool
// it conceptually picked.
const Discriminator = "item_type"

// StripUnsupported returns a copy of s with every additionalProperties key
// removed, at every depth reachable through properties and items. Only that
// key is removed; other keywords a vendor might reject are passed through
// unchanged. The input is not mutated and the function is idempotent.
func StripUnsupported(s *Schema) *Schema {
	if s == nil {
		return nil
	}
	out := s.Clone()
	stripInPlace(out)
	return out
}

func stripInPlace(s *Schema) {
	s.AdditionalProperties = nil
	if s.Properties != nil {
		for _, name := range s.Properties.Keys() {
			prop, _ := s.Properties.Get(name)
			stripInPlace(prop)
		}
	}
	if s.Items != nil {
		stripInPlace(s.Items)
	}
}

// StrictRequired returns a copy of s whose required list names every declared
// property, in declaration order. OpenAI's strict json_schema mode rejects
// schemas whose required list is not synchronized with properties; the other
// vendors keep the declared required list untouched.
func StrictRequired(s *Schema) *Schema {
	if s == nil {
		return nil
	}
	out := s.Clone()
	if out.Properties != nil && out.Properties.Len() > 0 {
		out.Required = out.Properties.Keys()
	}
	return out
}

// UnionTools folds a list of tools into one envelope schema for vendors whose
// structured-output mechanism accepts a single schema only. The envelope
// carries an item_type discriminator (enum of the tool names, always
// required) plus every property declared by any tool. Its required list is
// item_type plus the union of the tools' own required fields.
//
// Known limitation: when two tools declare the same property name with
// different definitions, the first-seen definition wins. Later tools' fields
// can therefore be misrepresented; this matches the vendor-observed behavior
// the benchmark compares against and is deliberately not merged any deeper.
func UnionTools(tools []Tool) (*Schema, error) {
	if len(tools) == 0 {
		return nil, fmt.Errorf("union schema requires at least one tool")
	}

	names := make([]any, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}

	props := NewProperties()
	props.Set(Discriminator, &Schema{
		Type:        "string",
		Enum:        names,
		Description: "The type of analysis performed - which tool was conceptually used",
	})
	required := []string{Discriminator}

	for _, tool := range tools {
		if tool.Schema == nil {
			continue
		}
		if tool.Schema.Properties != nil {
			for _, name := range tool.Schema.Properties.Keys() {
				if props.Has(name) {
					continue
				}
				prop, _ := tool.Schema.Properties.Get(name)
				props.Set(name, prop.Clone())
			}
		}
		for _, field := range tool.Schema.Required {
			if !contains(required, field) {
				required = append(required, field)
			}
		}
	}

	return &Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
