package util

import (
	"strings"

	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
)

// RequiredString reads a member that must be a non-blank string.
func RequiredString(obj *jsonvalue.Object, key string) (string, error) {
	v, ok := obj.Get(key)
	if !ok {
		return "", parseerr.New(parseerr.ErrMissingField, "missing required '%s'", key)
	}
	s, ok := v.AsString()
	if !ok {
		return "", parseerr.New(parseerr.ErrInvalidShape, "'%s' must be a string, got %s", key, v.Kind())
	}
	if strings.TrimSpace(s) == "" {
		return "", parseerr.New(parseerr.ErrInvalidShape, "'%s' must not be empty", key)
	}
	return s, nil
}

// OptionalString reads a member that, when present and not null, must be a string.
func OptionalString(obj *jsonvalue.Object, key string) (string, error) {
	v, ok := obj.Get(key)
	if !ok || v.IsNull() {
		return "", nil
	}
	s, ok := v.AsString()
	if !ok {
		return "", parseerr.New(parseerr.ErrInvalidShape, "'%s' must be a string, got %s", key, v.Kind())
	}
	return s, nil
}

// StringList reads a member holding a string or an array of strings.
// An absent or null member yields an empty list.
func StringList(obj *jsonvalue.Object, key string) ([]string, error) {
	n := jsonvalue.Normalize(obj, key)
	if n.Shape == jsonvalue.ShapeObject {
		return nil, parseerr.New(parseerr.ErrInvalidShape, "'%s' must be a string or an array of strings", key)
	}
	list, idx, ok := n.Strings()
	if !ok {
		return nil, parseerr.New(parseerr.ErrInvalidShape, "'%s' entry at index %d must be a string", key, idx)
	}
	return list, nil
}

// ParseContexts validates the @context member. Entries are strings or inline
// context objects.
func ParseContexts(obj *jsonvalue.Object) ([]jsonvalue.Value, error) {
	items := jsonvalue.Normalize(obj, "@context").Items()
	contexts := make([]jsonvalue.Value, 0, len(items))
	for i, item := range items {
		switch item.Kind() {
		case jsonvalue.KindString:
			s, _ := item.AsString()
			if s == "" {
				return nil, parseerr.New(parseerr.ErrInvalidShape, "context string at index %d is empty", i)
			}
		case jsonvalue.KindObject:
			ctx, _ := item.Object()
			if ctx.Has("@context") {
				return nil, parseerr.New(parseerr.ErrInvalidShape, "context object at index %d must not contain nested @context", i)
			}
		default:
			return nil, parseerr.New(parseerr.ErrInvalidShape, "invalid context entry at index %d: must be string or object, got %s", i, item.Kind())
		}
		contexts = append(contexts, item.Clone())
	}
	return contexts, nil
}

// ContextStrings lists contexts as text; inline context objects are rendered as compact JSON.
func ContextStrings(contexts []jsonvalue.Value) []string {
	return MapSlice(contexts, func(v jsonvalue.Value) string {
		if s, ok := v.AsString(); ok {
			return s
		}
		return v.String()
	})
}

// SerializeTypes converts a slice of type strings to a JSON-LD compatible value.
// A single type is written as a plain string.
func SerializeTypes(types []string) jsonvalue.Value {
	if len(types) == 0 {
		return jsonvalue.NullValue()
	}
	if len(types) == 1 {
		return jsonvalue.StringValue(types[0])
	}
	return jsonvalue.StringArray(types)
}

// MapSlice transforms a slice of type T to a slice of type U using a mapping function.
func MapSlice[T any, U any](slice []T, mapFn func(T) U) []U {
	result := make([]U, 0, len(slice))
	for _, v := range slice {
		result = append(result, mapFn(v))
	}
	return result
}

// CloneValues returns deep copies of values.
func CloneValues(values []jsonvalue.Value) []jsonvalue.Value {
	return MapSlice(values, jsonvalue.Value.Clone)
}
