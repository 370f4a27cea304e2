// Package demo holds the example applications run by the vela CLI.
package demo

import (
	"log/slog"
	"sort"

	"github.com/vango-dev/vela/internal/errors"
	"github.com/vango-dev/vela/internal/metrics"
	"github.com/vango-dev/vela/pkg/effects"
	"github.com/vango-dev/vela/pkg/host"
	"github.com/vango-dev/vela/pkg/program"
	"github.com/vango-dev/vela/pkg/scheduler"
	"github.com/vango-dev/vela/pkg/vdom"
)

// App is a complete example program.
type App struct {
	Name        string
	Description string

	Init          func(flags any) (any, *effects.Bag)
	Update        func(msg, model any) (any, *effects.Bag)
	View          func(model any) *vdom.VNode
	Subscriptions func(model any) *effects.Bag
}

var apps = map[string]*App{
	"counter": Counter,
	"clock":   Clock,
}

// Lookup returns the demo called name.
func Lookup(name string) (*App, error) {
	app, ok := apps[name]
	if !ok {
		return nil, errors.New("E180").
			WithDetailf("no demo named %q", name).
			WithSuggestion("Run 'vela run --list' to see the available demos")
	}
	return app, nil
}

// All returns every demo sorted by name.
func All() []*App {
	out := make([]*App, 0, len(apps))
	for _, app := range apps {
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Options configures Start.
type Options struct {
	Scheduler *scheduler.Scheduler
	Logger    *slog.Logger
	Metrics   *metrics.Metrics

	// Observer sees every applied patch.
	Observer func(*vdom.Patch)
}

// Start runs app inside doc, mounted under the body.
func (a *App) Start(doc *host.Document, opts Options) (*program.Program, error) {
	renderOpts := []program.RendererOption{
		program.WithRenderLogger(opts.Logger),
		program.WithRenderMetrics(opts.Metrics),
	}
	if opts.Observer != nil {
		renderOpts = append(renderOpts, program.WithPatchObserver(opts.Observer))
	}

	return program.Initialize(program.Config{
		Init:          a.Init,
		Update:        a.Update,
		Subscriptions: a.Subscriptions,
		Renderer:      program.ViewRenderer(doc, doc.Body(), a.View, renderOpts...),
		Scheduler:     opts.Scheduler,
		Logger:        opts.Logger,
		Metrics:       opts.Metrics,
	})
}
