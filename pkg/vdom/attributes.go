package vdom

import (
	"fmt"
	"strconv"

	"github.com/vango-dev/vela/pkg/decode"
)

type factKind uint8

const (
	factProp factKind = iota
	factAttr
	factAttrNS
	factStyle
	factEvent
)

// Fact is a single property, attribute, style or event handler attached to
// an element. Facts are collected into Facts when the element is built.
type Fact struct {
	kind  factKind
	key   string
	ns    string
	value any
}

// Facts is the organized form of an element's facts.
type Facts struct {
	Props   map[string]any
	Attrs   map[string]string
	AttrsNS map[string]NSValue
	Styles  map[string]string
	Events  map[string]*Handler
}

// NSValue is a namespaced attribute value.
type NSValue struct {
	Namespace string
	Value     string
}

// Options are the event flags honoured after a successful decode.
type Options struct {
	StopPropagation bool
	PreventDefault  bool
}

// Handler is an event handler: the decoder turns the raw event into a
// message.
type Handler struct {
	Decoder *decode.Decoder
	Options Options
}

// Property sets a property. Properties are applied as attributes by the
// patch engine; className and htmlFor map to class and for.
func Property(key string, value any) Fact {
	return Fact{kind: factProp, key: key, value: value}
}

// Attribute sets a raw attribute.
func Attribute(key, value string) Fact {
	return Fact{kind: factAttr, key: key, value: value}
}

// AttributeNS sets a namespaced attribute.
func AttributeNS(ns, key, value string) Fact {
	return Fact{kind: factAttrNS, key: key, ns: ns, value: value}
}

// Style sets an inline style property.
func Style(key, value string) Fact {
	return Fact{kind: factStyle, key: key, value: value}
}

// On attaches a handler for event.
func On(event string, d *decode.Decoder) Fact {
	return OnWith(event, Options{}, d)
}

// OnWith attaches a handler with explicit options.
func OnWith(event string, opts Options, d *decode.Decoder) Fact {
	return Fact{kind: factEvent, key: event, value: &Handler{Decoder: d, Options: opts}}
}

// Class sets the className property. Multiple Class facts on one element
// are joined with spaces.
func Class(name string) Fact { return Property("className", name) }

// ID sets the id property.
func ID(id string) Fact { return Property("id", id) }

// Value sets the value property.
func Value(v string) Fact { return Property("value", v) }

// Checked sets the checked property.
func Checked(b bool) Fact { return Property("checked", b) }

// Href sets the href attribute.
func Href(url string) Fact { return Attribute("href", url) }

// OnClick sends msg when the element is clicked.
func OnClick(msg any) Fact { return On("click", decode.Succeed(msg)) }

// OnInput decodes event.target.value and passes it through toMsg. The
// closure is new on every render, so the handler never compares equal to
// the previous one and each diff reports a Facts patch for it. Use
// OnInputTagger to avoid that.
func OnInput[M any](toMsg func(string) M) Fact {
	return OnWith("input", Options{StopPropagation: true}, decode.Map(
		func(v any) any { return toMsg(v.(string)) },
		inputValue,
	))
}

// OnInputTagger decodes event.target.value and passes it through t. Handlers
// built from the same Tagger compare equal across renders.
func OnInputTagger(t *Tagger) Fact {
	return OnWith("input", Options{StopPropagation: true}, decode.MapRef(t, t.Apply, inputValue))
}

var inputValue = decode.At([]string{"target", "value"}, decode.String())

// organizeFacts sorts facts into categories. The className property and the
// class attribute merge; every other duplicate key overwrites.
func organizeFacts(facts []Fact) Facts {
	var f Facts
	for _, fact := range facts {
		switch fact.kind {
		case factProp:
			if f.Props == nil {
				f.Props = make(map[string]any)
			}
			if fact.key == "className" {
				f.Props[fact.key] = mergeClass(f.Props[fact.key], fact.value)
				continue
			}
			f.Props[fact.key] = fact.value

		case factAttr:
			if f.Attrs == nil {
				f.Attrs = make(map[string]string)
			}
			v := fact.value.(string)
			if fact.key == "class" {
				if existing, ok := f.Attrs["class"]; ok {
					v = existing + " " + v
				}
			}
			f.Attrs[fact.key] = v

		case factAttrNS:
			if f.AttrsNS == nil {
				f.AttrsNS = make(map[string]NSValue)
			}
			f.AttrsNS[fact.key] = NSValue{Namespace: fact.ns, Value: fact.value.(string)}

		case factStyle:
			if f.Styles == nil {
				f.Styles = make(map[string]string)
			}
			f.Styles[fact.key] = fact.value.(string)

		case factEvent:
			if f.Events == nil {
				f.Events = make(map[string]*Handler)
			}
			f.Events[fact.key] = fact.value.(*Handler)
		}
	}
	return f
}

func mergeClass(existing, next any) any {
	if existing == nil {
		return next
	}
	return propToString(existing) + " " + propToString(next)
}

// propertyAttr maps a property name to the attribute that carries it.
func propertyAttr(key string) string {
	switch key {
	case "className":
		return "class"
	case "htmlFor":
		return "for"
	default:
		return key
	}
}

// propToString converts a prop value to its attribute form.
func propToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
