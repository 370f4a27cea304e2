package program

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vela/internal/metrics"
	"github.com/vango-dev/vela/pkg/host"
	"github.com/vango-dev/vela/pkg/vdom"
)

const defaultTracerName = "vela"

type rendererConfig struct {
	tracerName string
	logger     *slog.Logger
	metrics    *metrics.Metrics
	observer   func(*vdom.Patch)
}

// RendererOption configures ViewRenderer.
type RendererOption func(*rendererConfig)

// WithTracerName sets the tracer used for render spans (default: "vela").
func WithTracerName(name string) RendererOption {
	return func(c *rendererConfig) {
		c.tracerName = name
	}
}

// WithRenderLogger sets the logger for the patch engine.
func WithRenderLogger(logger *slog.Logger) RendererOption {
	return func(c *rendererConfig) {
		c.logger = logger
	}
}

// WithRenderMetrics records render cycles and patch kinds.
func WithRenderMetrics(m *metrics.Metrics) RendererOption {
	return func(c *rendererConfig) {
		c.metrics = m
	}
}

// WithPatchObserver is called for every patch before it is applied.
func WithPatchObserver(fn func(*vdom.Patch)) RendererOption {
	return func(c *rendererConfig) {
		c.observer = fn
	}
}

// ViewRenderer returns a Renderer that draws view(model) under mount in h
// and patches it on every later model. Each cycle runs in a "vela.render"
// span from the global tracer provider.
func ViewRenderer(h host.Host, mount host.Node, view func(model any) *vdom.VNode, opts ...RendererOption) Renderer {
	config := rendererConfig{tracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	return func(send func(msg any), model any) Stepper {
		tracer := otel.Tracer(config.tracerName)
		engine := vdom.NewEngine(h,
			vdom.WithLogger(config.logger),
			vdom.WithPatchObserver(func(p *vdom.Patch) {
				config.metrics.PatchApplied(p.Kind.String())
				if config.observer != nil {
					config.observer(p)
				}
			}),
		)
		v := vdom.NewView(engine, mount, send)

		draw := func(model any) {
			_, span := tracer.Start(context.Background(), "vela.render",
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			start := time.Now()
			patches := v.Update(view(model))
			config.metrics.RenderCompleted(time.Since(start))
			span.SetAttributes(attribute.Int("vela.patches", len(patches)))
		}

		draw(model)
		return draw
	}
}
