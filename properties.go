package tiled

import "fmt"

// PropertyKind identifies the type of a custom property value.
type PropertyKind uint8

const (
	PropertyString PropertyKind = iota // free-form text
	PropertyBool                       // true or false
	PropertyFloat                      // float64
	PropertyInt                        // int64
	PropertyColor                      // RGBA color
	PropertyFile                       // path relative to the map
	PropertyObject                     // object ID reference, 0 = none
)

var propertyKindNames = [...]string{"string", "bool", "float", "int", "color", "file", "object"}

func (k PropertyKind) String() string {
	if int(k) < len(propertyKindNames) {
		return propertyKindNames[k]
	}
	return fmt.Sprintf("PropertyKind(%d)", k)
}

// ParsePropertyKind maps a type name as written in map documents to a kind.
func ParsePropertyKind(name string) (PropertyKind, bool) {
	for i, n := range propertyKindNames {
		if n == name {
			return PropertyKind(i), true
		}
	}
	return 0, false
}

// PropertyValue is a tagged custom property value. Only the field matching
// Kind is meaningful.
type PropertyValue struct {
	Kind   PropertyKind
	Bool   bool
	Float  float64
	Int    int64
	Color  Color
	String string // also holds PropertyFile paths
	Object uint32
}

func StringProperty(v string) PropertyValue { return PropertyValue{Kind: PropertyString, String: v} }
func BoolProperty(v bool) PropertyValue     { return PropertyValue{Kind: PropertyBool, Bool: v} }
func FloatProperty(v float64) PropertyValue { return PropertyValue{Kind: PropertyFloat, Float: v} }
func IntProperty(v int64) PropertyValue     { return PropertyValue{Kind: PropertyInt, Int: v} }
func ColorProperty(v Color) PropertyValue   { return PropertyValue{Kind: PropertyColor, Color: v} }
func FileProperty(path string) PropertyValue {
	return PropertyValue{Kind: PropertyFile, String: path}
}
func ObjectProperty(id uint32) PropertyValue { return PropertyValue{Kind: PropertyObject, Object: id} }

// Properties is a string-keyed property bag.
type Properties map[string]PropertyValue

// Bool returns the named bool property.
func (p Properties) Bool(name string) (bool, bool) {
	v, ok := p[name]
	if !ok || v.Kind != PropertyBool {
		return false, false
	}
	return v.Bool, true
}

// Float returns the named numeric property. Int properties are widened.
func (p Properties) Float(name string) (float64, bool) {
	v, ok := p[name]
	if !ok {
		return 0, false
	}
	switch v.Kind {
	case PropertyFloat:
		return v.Float, true
	case PropertyInt:
		return float64(v.Int), true
	}
	return 0, false
}

// Int returns the named int property.
func (p Properties) Int(name string) (int64, bool) {
	v, ok := p[name]
	if !ok || v.Kind != PropertyInt {
		return 0, false
	}
	return v.Int, true
}

// Text returns the named string or file property.
func (p Properties) Text(name string) (string, bool) {
	v, ok := p[name]
	if !ok || (v.Kind != PropertyString && v.Kind != PropertyFile) {
		return "", false
	}
	return v.String, true
}

// Color returns the named color property.
func (p Properties) Color(name string) (Color, bool) {
	v, ok := p[name]
	if !ok || v.Kind != PropertyColor {
		return Color{}, false
	}
	return v.Color, true
}

// Object returns the named object reference.
func (p Properties) Object(name string) (uint32, bool) {
	v, ok := p[name]
	if !ok || v.Kind != PropertyObject {
		return 0, false
	}
	return v.Object, true
}

// Merge returns a new bag holding base overlaid with p. Neither input is
// modified.
func (p Properties) Merge(base Properties) Properties {
	out := make(Properties, len(base)+len(p))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range p {
		out[k] = v
	}
	return out
}
