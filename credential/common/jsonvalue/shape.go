package jsonvalue

// Shape classifies a property that may hold one value or a list of values.
type Shape int

const (
	// ShapeAbsent means the key is not present.
	ShapeAbsent Shape = iota
	// ShapeNull means the key is present with a null value.
	ShapeNull
	// ShapeScalar means a string, number or boolean.
	ShapeScalar
	ShapeObject
	ShapeArray
)

func (s Shape) String() string {
	switch s {
	case ShapeAbsent:
		return "absent"
	case ShapeNull:
		return "null"
	case ShapeScalar:
		return "scalar"
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	}
	return "unknown"
}

// OneOrMany is a property resolved to its shape once, so callers handle the
// single and plural forms in one place.
type OneOrMany struct {
	Shape Shape
	value Value
}

// Normalize resolves the property key of obj. A nil obj yields ShapeAbsent.
func Normalize(obj *Object, key string) OneOrMany {
	v, ok := obj.Get(key)
	if !ok {
		return OneOrMany{Shape: ShapeAbsent}
	}
	return Of(v)
}

// Of resolves the shape of a value that is known to be present.
func Of(v Value) OneOrMany {
	switch v.kind {
	case KindNull:
		return OneOrMany{Shape: ShapeNull, value: v}
	case KindArray:
		return OneOrMany{Shape: ShapeArray, value: v}
	case KindObject:
		return OneOrMany{Shape: ShapeObject, value: v}
	}
	return OneOrMany{Shape: ShapeScalar, value: v}
}

// Present reports whether the key exists, even with a null value.
func (o OneOrMany) Present() bool {
	return o.Shape != ShapeAbsent
}

// Value returns the value as found in the source.
func (o OneOrMany) Value() Value {
	return o.value
}

// Items returns the values as a list: none for an absent or null property, the
// elements of an array, or a one-element list otherwise.
func (o OneOrMany) Items() []Value {
	switch o.Shape {
	case ShapeAbsent, ShapeNull:
		return nil
	case ShapeArray:
		return o.value.arr
	}
	return []Value{o.value}
}

// Strings returns the items when all of them are strings. The index of the
// first non-string item is returned otherwise.
func (o OneOrMany) Strings() ([]string, int, bool) {
	items := o.Items()
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.AsString()
		if !ok {
			return nil, i, false
		}
		out = append(out, s)
	}
	return out, -1, true
}

// Single collapses a list to its only element, the inverse of Normalize for
// re-emitting properties that were given as a single value.
func Single(items []Value) Value {
	if len(items) == 1 {
		return items[0]
	}
	return ArrayValue(items...)
}

// StringArray builds an array value from a list of strings.
func StringArray(items []string) Value {
	out := make([]Value, len(items))
	for i, s := range items {
		out[i] = StringValue(s)
	}
	return ArrayValue(out...)
}
