package ai

// SchemaType is a JSON schema primitive
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
)

// Schema is a provider-neutral description of the expected model output.
// It converts to OpenAI JSON schema and to the Gemini schema.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Order       []string // property order, used for required lists
	Items       *Schema
	Enum        []string
	Minimum     *float64
	Maximum     *float64
}

// Object builds an object schema whose properties are all required
func Object(props ...Property) *Schema {
	s := &Schema{Type: TypeObject, Properties: make(map[string]*Schema, len(props))}
	for _, p := range props {
		s.Properties[p.Name] = p.Schema
		s.Order = append(s.Order, p.Name)
	}
	return s
}

// Property is a named object member
type Property struct {
	Name   string
	Schema *Schema
}

// Prop is shorthand for Property{name, schema}
func Prop(name string, schema *Schema) Property {
	return Property{Name: name, Schema: schema}
}

func ArrayOf(items *Schema) *Schema { return &Schema{Type: TypeArray, Items: items} }

func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

func Enum(values ...string) *Schema {
	return &Schema{Type: TypeString, Enum: values}
}

func Integer(description string) *Schema {
	return &Schema{Type: TypeInteger, Description: description}
}

// Number builds a bounded number schema
func Number(min, max float64) *Schema {
	return &Schema{Type: TypeNumber, Minimum: &min, Maximum: &max}
}

// JSONSchema renders s as a JSON schema document
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Minimum != nil {
		out["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		out["maximum"] = *s.Maximum
	}
	switch s.Type {
	case TypeArray:
		out["items"] = s.Items.JSONSchema()
	case TypeObject:
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.JSONSchema()
		}
		out["properties"] = props
		out["required"] = append([]string(nil), s.Order...)
		out["additionalProperties"] = false
	}
	return out
}
