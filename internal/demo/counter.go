package demo

import (
	"strconv"

	"github.com/vango-dev/vela/pkg/effects"
	"github.com/vango-dev/vela/pkg/vdom"
)

// CounterMsg is a counter message.
type CounterMsg int

const (
	Increment CounterMsg = iota
	Decrement
	Reset
)

// historySize is how many past values the counter lists.
const historySize = 5

// CounterModel is the counter state. History holds the most recent values,
// newest first; each entry keeps the id it was created with so the keyed
// list can move it instead of redrawing it.
type CounterModel struct {
	Count   int
	History []CounterEntry
	nextID  int
}

// CounterEntry is one remembered counter value.
type CounterEntry struct {
	ID    int
	Value int
}

// Counter is a counter with a keyed history list.
var Counter = &App{
	Name:        "counter",
	Description: "Counter with a keyed history of recent values",
	Init: func(any) (any, *effects.Bag) {
		return CounterModel{}, nil
	},
	Update: counterUpdate,
	View:   counterView,
}

func counterUpdate(msg, model any) (any, *effects.Bag) {
	m := model.(CounterModel)
	switch msg {
	case Increment:
		m.Count++
	case Decrement:
		m.Count--
	case Reset:
		return CounterModel{nextID: m.nextID}, nil
	default:
		return m, nil
	}

	m.nextID++
	history := make([]CounterEntry, 0, historySize)
	history = append(history, CounterEntry{ID: m.nextID, Value: m.Count})
	for _, e := range m.History {
		if len(history) == historySize {
			break
		}
		history = append(history, e)
	}
	m.History = history
	return m, nil
}

var historyItem = vdom.LazyView1(func(e CounterEntry) *vdom.VNode {
	return vdom.Li(vdom.Textf("%d", e.Value))
})

func counterView(model any) *vdom.VNode {
	m := model.(CounterModel)
	return vdom.Div(vdom.Class("counter"),
		vdom.H1("Counter"),
		vdom.Div(vdom.Class("controls"),
			vdom.Button(vdom.OnClick(Decrement), "-"),
			vdom.Span(vdom.Class("count"), vdom.Textf("%d", m.Count)),
			vdom.Button(vdom.OnClick(Increment), "+"),
			vdom.Button(vdom.OnClick(Reset), "reset"),
		),
		vdom.Keyed("ul", []vdom.Fact{vdom.Class("history")}, vdom.RangeKeyed(m.History,
			func(e CounterEntry) string { return strconv.Itoa(e.ID) },
			func(e CounterEntry) *vdom.VNode { return vdom.Lazy(historyItem, e) },
		)),
	)
}
