package decode

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind is the decoder discriminator.
type Kind uint8

const (
	KindSucceed Kind = iota
	KindFail
	KindString
	KindInt
	KindFloat
	KindBool
	KindValue
	KindNull
	KindField
	KindIndex
	KindList
	KindMap
	KindAndThen
	KindOneOf
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindSucceed:
		return "Succeed"
	case KindFail:
		return "Fail"
	case KindString:
		return "String"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindValue:
		return "Value"
	case KindNull:
		return "Null"
	case KindField:
		return "Field"
	case KindIndex:
		return "Index"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindAndThen:
		return "AndThen"
	case KindOneOf:
		return "OneOf"
	default:
		return "Unknown"
	}
}

// Decoder describes how to turn a raw value into a typed one.
type Decoder struct {
	kind    Kind
	value   any // Succeed result, Null result
	msg     string
	field   string
	index   int
	subs    []*Decoder
	mapFn   func(args []any) any
	mapRef  any // identity of mapFn for MapRef
	andThen func(v any) *Decoder
}

// Kind returns the decoder discriminator.
func (d *Decoder) Kind() Kind { return d.kind }

// Succeed ignores the input and produces v.
func Succeed(v any) *Decoder { return &Decoder{kind: KindSucceed, value: v} }

// Fail always fails with msg.
func Fail(msg string) *Decoder { return &Decoder{kind: KindFail, msg: msg} }

// String decodes a string.
func String() *Decoder { return &Decoder{kind: KindString} }

// Int decodes an integral number to int.
func Int() *Decoder { return &Decoder{kind: KindInt} }

// Float decodes a number to float64.
func Float() *Decoder { return &Decoder{kind: KindFloat} }

// Bool decodes a boolean.
func Bool() *Decoder { return &Decoder{kind: KindBool} }

// Value passes the raw value through unchanged.
func Value() *Decoder { return &Decoder{kind: KindValue} }

// Null succeeds with v when the input is nil.
func Null(v any) *Decoder { return &Decoder{kind: KindNull, value: v} }

// Field decodes the named field of an object.
func Field(name string, d *Decoder) *Decoder {
	return &Decoder{kind: KindField, field: name, subs: []*Decoder{d}}
}

// At decodes a nested field path.
func At(path []string, d *Decoder) *Decoder {
	for i := len(path) - 1; i >= 0; i-- {
		d = Field(path[i], d)
	}
	return d
}

// Index decodes the i-th element of an array.
func Index(i int, d *Decoder) *Decoder {
	return &Decoder{kind: KindIndex, index: i, subs: []*Decoder{d}}
}

// List decodes every element of an array with d, producing []any.
func List(d *Decoder) *Decoder {
	return &Decoder{kind: KindList, subs: []*Decoder{d}}
}

// Map transforms the result of d.
func Map(fn func(any) any, d *Decoder) *Decoder {
	return &Decoder{
		kind:  KindMap,
		subs:  []*Decoder{d},
		mapFn: func(args []any) any { return fn(args[0]) },
	}
}

// MapRef is Map with an identity for fn. Two MapRef decoders are equal when
// their refs are the same comparable value and their inner decoders are
// equal, so handlers built on every render still compare equal. ref is
// typically a pointer the caller holds across renders.
func MapRef(ref any, fn func(any) any, d *Decoder) *Decoder {
	m := Map(fn, d)
	m.mapRef = ref
	return m
}

// Map2 combines the results of two decoders run on the same input.
func Map2(fn func(a, b any) any, da, db *Decoder) *Decoder {
	return &Decoder{
		kind:  KindMap,
		subs:  []*Decoder{da, db},
		mapFn: func(args []any) any { return fn(args[0], args[1]) },
	}
}

// AndThen picks the next decoder based on the result of d.
func AndThen(fn func(any) *Decoder, d *Decoder) *Decoder {
	return &Decoder{kind: KindAndThen, subs: []*Decoder{d}, andThen: fn}
}

// OneOf tries each decoder in order and returns the first success.
func OneOf(ds ...*Decoder) *Decoder {
	return &Decoder{kind: KindOneOf, subs: ds}
}

// Nullable decodes nil to nil and anything else with d.
func Nullable(d *Decoder) *Decoder {
	return OneOf(Null(nil), d)
}

// Error describes where and why decoding failed.
type Error struct {
	Path  []string
	Msg   string
	Value any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Path) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("at %s: %s", strings.Join(e.Path, ""), e.Msg)
}

// Run decodes raw with d.
func Run(d *Decoder, raw any) (any, error) {
	v, err := run(d, raw)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// FromJSON parses data into a raw value suitable for Run.
func FromJSON(data []byte) (any, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// inIntRange reports whether n converts to an int without overflow.
func inIntRange(n float64) bool {
	return !math.IsInf(n, 0) && n >= math.MinInt && n < math.MaxInt
}

func run(d *Decoder, raw any) (any, *Error) {
	switch d.kind {
	case KindSucceed:
		return d.value, nil

	case KindFail:
		return nil, &Error{Msg: d.msg, Value: raw}

	case KindString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return nil, expecting("a STRING", raw)

	case KindInt:
		if n, ok := toFloat(raw); ok && n == math.Trunc(n) && inIntRange(n) {
			return int(n), nil
		}
		return nil, expecting("an INT", raw)

	case KindFloat:
		if n, ok := toFloat(raw); ok {
			return n, nil
		}
		return nil, expecting("a FLOAT", raw)

	case KindBool:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
		return nil, expecting("a BOOL", raw)

	case KindValue:
		return raw, nil

	case KindNull:
		if raw == nil {
			return d.value, nil
		}
		return nil, expecting("null", raw)

	case KindField:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, expecting(fmt.Sprintf("an OBJECT with a field named `%s`", d.field), raw)
		}
		fv, ok := obj[d.field]
		if !ok {
			return nil, expecting(fmt.Sprintf("an OBJECT with a field named `%s`", d.field), raw)
		}
		v, err := run(d.subs[0], fv)
		if err != nil {
			err.Path = append([]string{"." + d.field}, err.Path...)
			return nil, err
		}
		return v, nil

	case KindIndex:
		arr, ok := raw.([]any)
		if !ok {
			return nil, expecting("an ARRAY", raw)
		}
		if d.index < 0 || d.index >= len(arr) {
			return nil, expecting(fmt.Sprintf("a LONGER array. Need index %d but only see %d entries", d.index, len(arr)), raw)
		}
		v, err := run(d.subs[0], arr[d.index])
		if err != nil {
			err.Path = append([]string{"[" + strconv.Itoa(d.index) + "]"}, err.Path...)
			return nil, err
		}
		return v, nil

	case KindList:
		arr, ok := raw.([]any)
		if !ok {
			return nil, expecting("a LIST", raw)
		}
		out := make([]any, len(arr))
		for i, item := range arr {
			v, err := run(d.subs[0], item)
			if err != nil {
				err.Path = append([]string{"[" + strconv.Itoa(i) + "]"}, err.Path...)
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case KindMap:
		args := make([]any, len(d.subs))
		for i, sub := range d.subs {
			v, err := run(sub, raw)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return d.mapFn(args), nil

	case KindAndThen:
		v, err := run(d.subs[0], raw)
		if err != nil {
			return nil, err
		}
		return run(d.andThen(v), raw)

	case KindOneOf:
		var msgs []string
		for _, sub := range d.subs {
			v, err := run(sub, raw)
			if err == nil {
				return v, nil
			}
			msgs = append(msgs, err.Error())
		}
		if len(msgs) == 0 {
			return nil, &Error{Msg: "ran into a OneOf with no possibilities", Value: raw}
		}
		return nil, &Error{Msg: "all possibilities failed: " + strings.Join(msgs, "; "), Value: raw}
	}

	panic(fmt.Sprintf("decode: unknown decoder kind %d", d.kind))
}

func expecting(what string, raw any) *Error {
	return &Error{Msg: fmt.Sprintf("expecting %s but got %s", what, describe(raw)), Value: raw}
}

func describe(raw any) string {
	if raw == nil {
		return "null"
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Sprintf("%T", raw)
	}
	return string(b)
}

func toFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Equal reports whether two decoders are structurally identical. Decoders
// that carry functions (Map, AndThen) are only equal to themselves, since Go
// functions cannot be compared.
func Equal(a, b *Decoder) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindSucceed, KindNull:
		return reflect.DeepEqual(a.value, b.value)
	case KindFail:
		return a.msg == b.msg
	case KindString, KindInt, KindFloat, KindBool, KindValue:
		return true
	case KindField:
		return a.field == b.field && Equal(a.subs[0], b.subs[0])
	case KindIndex:
		return a.index == b.index && Equal(a.subs[0], b.subs[0])
	case KindList:
		return Equal(a.subs[0], b.subs[0])
	case KindMap:
		return sameRef(a.mapRef, b.mapRef) && len(a.subs) == 1 && len(b.subs) == 1 &&
			Equal(a.subs[0], b.subs[0])
	case KindOneOf:
		if len(a.subs) != len(b.subs) {
			return false
		}
		for i := range a.subs {
			if !Equal(a.subs[i], b.subs[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func sameRef(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	if !reflect.TypeOf(a).Comparable() || reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return a == b
}
