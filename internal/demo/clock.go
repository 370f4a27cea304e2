package demo

import (
	"fmt"
	"math"
	"time"

	"github.com/vango-dev/vela/pkg/effects"
	"github.com/vango-dev/vela/pkg/task"
	"github.com/vango-dev/vela/pkg/vdom"
)

// ClockModel is the clock state.
type ClockModel struct {
	Now     time.Time
	Running bool
	Ticks   int
}

// ClockTick carries the current time.
type ClockTick struct {
	Time time.Time
}

// ClockToggle pauses or resumes the clock.
type ClockToggle struct{}

// Clock is a clock driven by a time subscription.
var Clock = &App{
	Name:        "clock",
	Description: "SVG clock driven by a one second time subscription",
	Init: func(any) (any, *effects.Bag) {
		return ClockModel{Running: true}, effects.Perform(func(v any) any {
			return ClockTick{Time: v.(time.Time)}
		}, task.Now())
	},
	Update: clockUpdate,
	View:   clockView,
	Subscriptions: func(model any) *effects.Bag {
		if !model.(ClockModel).Running {
			return effects.None()
		}
		return effects.Every(time.Second, func(t time.Time) any { return ClockTick{Time: t} })
	},
}

func clockUpdate(msg, model any) (any, *effects.Bag) {
	m := model.(ClockModel)
	switch msg := msg.(type) {
	case ClockTick:
		m.Now = msg.Time
		m.Ticks++
	case ClockToggle:
		m.Running = !m.Running
	}
	return m, nil
}

// clockFace only changes once a second, so the lazy node skips the diff
// for every other update.
var clockFace = vdom.LazyView1(func(second int) *vdom.VNode {
	angle := float64(second) * math.Pi / 30
	x := 50 + 40*math.Sin(angle)
	y := 50 - 40*math.Cos(angle)
	return vdom.Svg([]vdom.Fact{
		vdom.Attribute("viewBox", "0 0 100 100"),
		vdom.Attribute("width", "100"),
		vdom.Attribute("height", "100"),
	},
		vdom.Circle(
			vdom.Attribute("cx", "50"),
			vdom.Attribute("cy", "50"),
			vdom.Attribute("r", "45"),
			vdom.Attribute("fill", "none"),
			vdom.Attribute("stroke", "#333"),
		),
		vdom.Circle(
			vdom.Attribute("cx", fmt.Sprintf("%.1f", x)),
			vdom.Attribute("cy", fmt.Sprintf("%.1f", y)),
			vdom.Attribute("r", "3"),
			vdom.Attribute("fill", "#c00"),
		),
	)
})

func clockView(model any) *vdom.VNode {
	m := model.(ClockModel)
	label := "pause"
	if !m.Running {
		label = "resume"
	}
	return vdom.Div(vdom.Class("clock"),
		vdom.H1("Clock"),
		vdom.Lazy(clockFace, m.Now.Second()),
		vdom.P(vdom.Class("time"), m.Now.Format("15:04:05")),
		vdom.Button(vdom.OnClick(ClockToggle{}), label),
	)
}
