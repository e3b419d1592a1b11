package jsonvalue

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// DefaultMaxDepth is the nesting limit applied by Parse.
const DefaultMaxDepth = 512

var (
	// ErrEmpty is returned for input that is empty or only whitespace.
	ErrEmpty = errors.New("empty input")
	// ErrSyntax is returned for input that is not a single valid JSON value.
	ErrSyntax = errors.New("invalid JSON syntax")
	// ErrTooDeep is returned when arrays and objects nest deeper than the limit.
	ErrTooDeep = errors.New("JSON nesting too deep")
)

// Parse decodes data using DefaultMaxDepth.
func Parse(data []byte) (Value, error) {
	return ParseWithDepth(data, DefaultMaxDepth)
}

// ParseWithDepth decodes data into a Value, rejecting input nested deeper than
// maxDepth. A maxDepth of zero or less selects DefaultMaxDepth.
// Duplicate object keys keep the position of the first and the value of the last.
func ParseWithDepth(data []byte, maxDepth int) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, ErrEmpty
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if err := checkDepth(data, maxDepth); err != nil {
		return Value{}, err
	}
	if !gjson.ValidBytes(data) {
		return Value{}, ErrSyntax
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// ParseObject decodes data and requires the top-level value to be an object.
func ParseObject(data []byte, maxDepth int) (*Object, error) {
	v, err := ParseWithDepth(data, maxDepth)
	if err != nil {
		return nil, err
	}
	obj, ok := v.Object()
	if !ok {
		return nil, fmt.Errorf("%w: expected an object, got %s", ErrSyntax, v.Kind())
	}
	return obj, nil
}

// checkDepth scans data once, counting open brackets outside of strings.
func checkDepth(data []byte, maxDepth int) error {
	depth := 0
	inString := false
	escaped := false
	for _, c := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
			if depth > maxDepth {
				return fmt.Errorf("%w: limit is %d", ErrTooDeep, maxDepth)
			}
		case '}', ']':
			depth--
		}
	}
	return nil
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.False:
		return BoolValue(false)
	case gjson.True:
		return BoolValue(true)
	case gjson.Number:
		return Value{kind: KindNumber, s: r.Raw}
	case gjson.String:
		return StringValue(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			items := make([]Value, 0)
			r.ForEach(func(_, item gjson.Result) bool {
				items = append(items, fromResult(item))
				return true
			})
			return ArrayValue(items...)
		}
		obj := NewObject()
		r.ForEach(func(key, item gjson.Result) bool {
			obj.Set(key.Str, fromResult(item))
			return true
		})
		return ObjectValue(obj)
	}
	return NullValue()
}
