package program

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	velaerrors "github.com/vango-dev/vela/internal/errors"
	"github.com/vango-dev/vela/internal/metrics"
	"github.com/vango-dev/vela/pkg/decode"
	"github.com/vango-dev/vela/pkg/effects"
	"github.com/vango-dev/vela/pkg/host"
	"github.com/vango-dev/vela/pkg/scheduler"
	"github.com/vango-dev/vela/pkg/task"
	"github.com/vango-dev/vela/pkg/vdom"
)

type counterApp struct {
	doc     *host.Document
	driver  *scheduler.ManualDriver
	program *Program
	patches []string
}

func counterView(model any) *vdom.VNode {
	return vdom.Div(
		vdom.Button(vdom.OnClick("inc"), "+"),
		vdom.Span(vdom.Textf("%d", model.(int))),
	)
}

func counterUpdate(msg, model any) (any, *effects.Bag) {
	n := model.(int)
	switch msg {
	case "inc":
		return n + 1, nil
	case "inc-later":
		return n, effects.Perform(func(any) any { return "inc" }, task.Succeed(nil))
	}
	return n, nil
}

func newCounterApp(t *testing.T, opts ...RendererOption) *counterApp {
	t.Helper()
	app := &counterApp{
		doc:    host.NewDocument(),
		driver: scheduler.NewManualDriver(),
	}
	opts = append(opts, WithPatchObserver(func(p *vdom.Patch) {
		app.patches = append(app.patches, p.Kind.String())
	}))

	p, err := Initialize(Config{
		Init:      func(any) (any, *effects.Bag) { return 0, nil },
		Update:    counterUpdate,
		Renderer:  ViewRenderer(app.doc, app.doc.Body(), counterView, opts...),
		Scheduler: scheduler.New(scheduler.Config{Driver: app.driver}),
	})
	require.NoError(t, err)
	app.program = p
	app.driver.Drain()
	return app
}

func (a *counterApp) click() {
	button := a.doc.Find(a.doc.Body(), 0, 0)
	a.doc.Dispatch(button, "click", map[string]any{})
	a.driver.Drain()
}

func (a *counterApp) count() string {
	return host.TextContent(a.doc.Find(a.doc.Body(), 0, 1))
}

func TestCounterPatchesTextOnly(t *testing.T) {
	app := newCounterApp(t)
	require.Equal(t, "0", app.count())
	created := app.doc.Created()

	app.click()
	app.click()
	app.click()

	require.Equal(t, "3", app.count())
	require.Equal(t, 3, app.program.Model())
	require.Equal(t, []string{"Text", "Text", "Text"}, app.patches)
	require.Equal(t, created, app.doc.Created(), "patching created new nodes")
}

func TestCommandsFeedBackIntoUpdate(t *testing.T) {
	app := newCounterApp(t)

	app.program.Send("inc-later")
	app.driver.Drain()

	require.Equal(t, 1, app.program.Model())
	require.Equal(t, "1", app.count())
}

func TestRenderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))
	app := newCounterApp(t, WithRenderMetrics(m))

	app.click()
	app.click()

	expected := `
# HELP vela_renders_total Total number of render cycles
# TYPE vela_renders_total counter
vela_renders_total 3
# HELP vela_patches_applied_total Total number of patches applied to the retained tree
# TYPE vela_patches_applied_total counter
vela_patches_applied_total{kind="Text"} 2
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"vela_renders_total", "vela_patches_applied_total")
	require.NoError(t, err)
}

func TestStop(t *testing.T) {
	app := newCounterApp(t)

	require.NoError(t, app.program.Stop())
	err := app.program.Stop()
	require.True(t, velaerrors.HasCode(err, "E001"), "got %v", err)

	app.click()
	require.Equal(t, 0, app.program.Model())
	require.Equal(t, "0", app.count())
}

func TestInitializeErrors(t *testing.T) {
	doc := host.NewDocument()
	base := func() Config {
		return Config{
			Init:      func(any) (any, *effects.Bag) { return 0, nil },
			Update:    counterUpdate,
			Renderer:  ViewRenderer(doc, doc.Body(), counterView),
			Scheduler: scheduler.New(scheduler.Config{Driver: scheduler.NewManualDriver()}),
		}
	}

	tests := []struct {
		name   string
		modify func(*Config)
		code   string
	}{
		{"missing update", func(c *Config) { c.Update = nil }, "E105"},
		{"missing renderer", func(c *Config) { c.Renderer = nil }, "E105"},
		{"flags without decoder", func(c *Config) { c.Flags = 1 }, "E101"},
		{"requires flags without decoder", func(c *Config) { c.RequiresFlags = true }, "E102"},
		{"flags fail to decode", func(c *Config) {
			c.FlagsDecoder = decode.Int()
			c.Flags = "one"
		}, "E103"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.modify(&cfg)
			p, err := Initialize(cfg)
			require.Nil(t, p)
			require.True(t, velaerrors.HasCode(err, tt.code), "got %v, want %s", err, tt.code)
		})
	}
	require.Empty(t, doc.Body().Children, "a failed Initialize rendered")
}

func TestFlagsReachInit(t *testing.T) {
	doc := host.NewDocument()
	driver := scheduler.NewManualDriver()

	var got any
	p, err := Initialize(Config{
		Init: func(flags any) (any, *effects.Bag) {
			got = flags
			return flags.(int), nil
		},
		Update:       counterUpdate,
		Renderer:     ViewRenderer(doc, doc.Body(), counterView),
		Scheduler:    scheduler.New(scheduler.Config{Driver: driver}),
		Flags:        map[string]any{"start": 7.0},
		FlagsDecoder: decode.Field("start", decode.Int()),
	})
	require.NoError(t, err)
	driver.Drain()

	require.Equal(t, 7, got)
	require.Equal(t, "7", host.TextContent(doc.Find(doc.Body(), 0, 1)))
	require.NoError(t, p.Stop())
}
