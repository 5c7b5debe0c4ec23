package bml

import "sort"

// PropType is the closed set of property types a schema may declare.
type PropType uint8

const (
	TypeString PropType = iota // raw text, trimmed
	TypeNumber                 // float64
	TypeBool                   // HTML boolean-attribute convention
	TypeVec3                   // "x y z" or a single broadcast number
	TypeColor                  // hex, rgb(), or a CSS color name
	TypeMap                    // "k1: v1; k2: v2" for single-property schemas, "k=v, k=v" inside one
)

// String returns the schema name of the type.
func (t PropType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeVec3:
		return "vec3"
	case TypeColor:
		return "color"
	case TypeMap:
		return "map"
	default:
		return "unknown"
	}
}

// Property declares one schema field. Default must hold the Go type that
// corresponds to Type: string, float64, bool, Vec3, Color, or
// map[string]string. A nil Default is replaced by the type's zero value.
type Property struct {
	Type    PropType
	Default any
}

// defaultValue returns the declared default, normalized to the property's Go
// type so that parsed data never holds nil for a declared property.
func (p Property) defaultValue() any {
	switch p.Type {
	case TypeString:
		if s, ok := p.Default.(string); ok {
			return s
		}
		return ""
	case TypeNumber:
		if f, ok := toFloat(p.Default); ok {
			return f
		}
		return 0.0
	case TypeBool:
		if b, ok := p.Default.(bool); ok {
			return b
		}
		return false
	case TypeVec3:
		if v, ok := p.Default.(Vec3); ok {
			return v
		}
		return Vec3{}
	case TypeColor:
		return normalizeColor(p.Default)
	case TypeMap:
		m, _ := p.Default.(map[string]string)
		return copyStringMap(m)
	}
	return nil
}

// ValueKey is the Data key under which a single-property schema stores its
// value.
const ValueKey = ""

// Schema is the declared shape of a component's data. A schema is either a
// single bare property (the whole attribute is one value) or a set of named
// properties written as a "key: value" list.
type Schema struct {
	single *Property
	props  map[string]Property
	order  []string
}

// Single returns a schema whose attribute is one bare value.
func Single(t PropType, def any) Schema {
	return Schema{single: &Property{Type: t, Default: def}}
}

// Fields returns a multi-property schema. Property order is the sorted key
// order and is what Serialize emits.
func Fields(props map[string]Property) Schema {
	s := Schema{props: make(map[string]Property, len(props))}
	for k, p := range props {
		s.props[k] = p
		s.order = append(s.order, k)
	}
	sort.Strings(s.order)
	return s
}

// IsZero reports whether the schema declares nothing. Registration rejects
// definitions with a zero schema.
func (s Schema) IsZero() bool {
	return s.single == nil && s.props == nil
}

// IsSingle reports whether the schema is a single bare property.
func (s Schema) IsSingle() bool {
	return s.single != nil
}

// Property returns the named property. For single-property schemas use
// ValueKey.
func (s Schema) Property(name string) (Property, bool) {
	if s.single != nil {
		if name == ValueKey {
			return *s.single, true
		}
		return Property{}, false
	}
	p, ok := s.props[name]
	return p, ok
}

// Keys returns the property names in serialization order. A single-property
// schema returns [ValueKey].
func (s Schema) Keys() []string {
	if s.single != nil {
		return []string{ValueKey}
	}
	return s.order
}

// Defaults returns a fresh Data populated with every declared default.
func (s Schema) Defaults() Data {
	d := make(Data, len(s.order)+1)
	if s.single != nil {
		d[ValueKey] = s.single.defaultValue()
		return d
	}
	for _, k := range s.order {
		d[k] = s.props[k].defaultValue()
	}
	return d
}

// Data is the parsed, schema-conformant value of one component instance.
// Multi-property components key by property name; single-property components
// store their value under ValueKey.
type Data map[string]any

// Value returns the value of a single-property component.
func (d Data) Value() any { return d[ValueKey] }

// Number returns the named number, or 0.
func (d Data) Number(key string) float64 {
	f, _ := d[key].(float64)
	return f
}

// String returns the named string, or "".
func (d Data) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Bool returns the named boolean, or false.
func (d Data) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// Vec3 returns the named vector, or the zero vector.
func (d Data) Vec3(key string) Vec3 {
	v, _ := d[key].(Vec3)
	return v
}

// Color returns the named color, or black.
func (d Data) Color(key string) Color {
	c, _ := d[key].(Color)
	return c
}

// Map returns the named key-value map, or nil.
func (d Data) Map(key string) map[string]string {
	m, _ := d[key].(map[string]string)
	return m
}

// Clone returns a copy of d. Map values are copied; other values are
// immutable.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	for k, v := range d {
		if m, ok := v.(map[string]string); ok {
			v = copyStringMap(m)
		}
		out[k] = v
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// toFloat converts any Go numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
