// model/value.go
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind discriminates the variants of Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JSON-shaped attribute value. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	obj  map[string]Value
}

func Null() Value { return Value{} }
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }
func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func ListValue(items ...Value) Value { return Value{kind: KindList, list: items} }
func ObjectValue(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindObject, obj: fields}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

func (v Value) AsObject() (map[string]Value, bool) {
	return v.obj, v.kind == KindObject
}

// AsFloat widens Int to float64.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// Get walks a dotted path through object fields and list indices. Anything
// that cannot be followed yields Null.
func (v Value) Get(path string) Value {
	if path == "" {
		return Null()
	}
	current := v
	for _, segment := range strings.Split(path, ".") {
		switch current.kind {
		case KindObject:
			next, ok := current.obj[segment]
			if !ok {
				return Null()
			}
			current = next
		case KindList:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(current.list) {
				return Null()
			}
			current = current.list[idx]
		default:
			return Null()
		}
	}
	return current
}

// Equal is deep structural equality. Int and Float compare by numeric value.
func (v Value) Equal(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		c, _ := CompareNumbers(v, other)
		return c == 0
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, a := range v.obj {
			b, ok := other.obj[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	}
	return false
}

// CompareNumbers orders two numeric values. ok is false when either side is
// not a number.
func CompareNumbers(a, b Value) (cmp int, ok bool) {
	if !a.IsNumber() || !b.IsNumber() {
		return 0, false
	}
	if a.kind == KindInt && b.kind == KindInt {
		switch {
		case a.i < b.i:
			return -1, true
		case a.i > b.i:
			return 1, true
		}
		return 0, true
	}
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	}
	return 0, true
}

func (v Value) String() string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(data)
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return strconv.AppendBool(nil, v.b), nil
	case KindInt:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("unsupported float value %v", v.f)
		}
		out := strconv.FormatFloat(v.f, 'g', -1, 64)
		if !strings.ContainsAny(out, ".eE") {
			out += ".0"
		}
		return []byte(out), nil
	case KindString:
		return json.Marshal(v.s)
	case KindList:
		items := v.list
		if items == nil {
			items = []Value{}
		}
		return json.Marshal(items)
	case KindObject:
		fields := v.obj
		if fields == nil {
			fields = map[string]Value{}
		}
		return json.Marshal(fields)
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = FromNative(raw)
	return nil
}

// ParseValue decodes JSON text into a Value.
func ParseValue(text string) (Value, error) {
	var v Value
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return Null(), err
	}
	return v, nil
}

// FromNative converts decoded JSON/YAML data or driver values into a Value.
// Types with no JSON counterpart are rendered with fmt.
func FromNative(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case bool:
		return BoolValue(x)
	case int:
		return IntValue(int64(x))
	case int8:
		return IntValue(int64(x))
	case int16:
		return IntValue(int64(x))
	case int32:
		return IntValue(int64(x))
	case int64:
		return IntValue(x)
	case uint8:
		return IntValue(int64(x))
	case uint16:
		return IntValue(int64(x))
	case uint32:
		return IntValue(int64(x))
	case uint64:
		if x > math.MaxInt64 {
			return FloatValue(float64(x))
		}
		return IntValue(int64(x))
	case float32:
		return FloatValue(float64(x))
	case float64:
		return FloatValue(x)
	case json.Number:
		if !strings.ContainsAny(string(x), ".eE") {
			if i, err := x.Int64(); err == nil {
				return IntValue(i)
			}
		}
		f, err := x.Float64()
		if err != nil {
			return StringValue(string(x))
		}
		return FloatValue(f)
	case string:
		return StringValue(x)
	case time.Time:
		return StringValue(x.Format(time.RFC3339Nano))
	case []Value:
		return ListValue(x...)
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = FromNative(item)
		}
		return ListValue(items...)
	case []string:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = StringValue(item)
		}
		return ListValue(items...)
	case map[string]Value:
		return ObjectValue(x)
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, item := range x {
			fields[k] = FromNative(item)
		}
		return ObjectValue(fields)
	case map[any]any:
		fields := make(map[string]Value, len(x))
		for k, item := range x {
			fields[fmt.Sprint(k)] = FromNative(item)
		}
		return ObjectValue(fields)
	default:
		return StringValue(fmt.Sprint(x))
	}
}

// Native converts the Value back to plain Go data.
func (v Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Native()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, item := range v.obj {
			out[k] = item.Native()
		}
		return out
	}
	return nil
}

// Keys returns the object's field names in sorted order.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
