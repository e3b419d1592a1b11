package jsonvalue

import (
	"bytes"
	"encoding/json"
)

const hexDigits = "0123456789abcdef"

// AppendJSON appends the compact JSON encoding of v to dst. Strings are written
// with their UTF-8 bytes as-is; only quotes, backslashes and control characters
// are escaped.
func AppendJSON(dst []byte, v Value) []byte {
	switch v.kind {
	case KindBool:
		if v.b {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindNumber:
		return append(dst, v.s...)
	case KindString:
		return appendString(dst, v.s)
	case KindArray:
		dst = append(dst, '[')
		for i, item := range v.arr {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendJSON(dst, item)
		}
		return append(dst, ']')
	case KindObject:
		dst = append(dst, '{')
		for i, m := range v.obj.members {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendString(dst, m.Key)
			dst = append(dst, ':')
			dst = AppendJSON(dst, m.Value)
		}
		return append(dst, '}')
	}
	return append(dst, "null"...)
}

func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"', '\\':
			dst = append(dst, '\\', c)
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
		}
		start = i + 1
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}

// Bytes returns the compact JSON encoding of v.
func (v Value) Bytes() []byte {
	return AppendJSON(nil, v)
}

func (v Value) String() string {
	return string(v.Bytes())
}

func (v Value) MarshalJSON() ([]byte, error) {
	return v.Bytes(), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (o *Object) MarshalJSON() ([]byte, error) {
	return ObjectValue(o).Bytes(), nil
}

// Indent returns the encoding of v indented with two spaces.
func Indent(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, v.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
