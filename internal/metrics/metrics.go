// Package metrics holds the Prometheus collectors for the scheduler and the
// patch engine. Every method is safe to call on a nil *Metrics, so
// components take an optional *Metrics and never check it themselves.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "vela").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vela",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is the set of vela collectors.
type Metrics struct {
	processesSpawned prometheus.Counter
	processesKilled  prometheus.Counter
	messagesSent     prometheus.Counter
	steps            prometheus.Counter
	ticks            prometheus.Counter
	budgetExhausted  prometheus.Counter
	queueDepth       prometheus.Gauge

	patchesApplied *prometheus.CounterVec
	renders        prometheus.Counter
	renderDuration prometheus.Histogram
	effectCycles   prometheus.Counter
}

// New creates and registers the collectors.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		processesSpawned: counter("processes_spawned_total", "Total number of processes spawned"),
		processesKilled:  counter("processes_killed_total", "Total number of processes killed"),
		messagesSent:     counter("messages_sent_total", "Total number of messages delivered to mailboxes"),
		steps:            counter("scheduler_steps_total", "Total number of interpreter steps"),
		ticks:            counter("scheduler_ticks_total", "Total number of scheduler ticks"),
		budgetExhausted:  counter("scheduler_budget_exhausted_total", "Ticks that ended because the step budget ran out"),

		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scheduler_queue_depth",
			Help:        "Processes waiting in the work queue at the end of a tick",
			ConstLabels: config.ConstLabels,
		}),

		patchesApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_applied_total",
			Help:        "Total number of patches applied to the retained tree",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		renders: counter("renders_total", "Total number of render cycles"),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Duration of view, diff and apply for one render cycle",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		effectCycles: counter("effect_cycles_total", "Total number of effect dispatch cycles"),
	}
}

// ProcessSpawned records a new process.
func (m *Metrics) ProcessSpawned() {
	if m == nil {
		return
	}
	m.processesSpawned.Inc()
}

// ProcessKilled records a killed process.
func (m *Metrics) ProcessKilled() {
	if m == nil {
		return
	}
	m.processesKilled.Inc()
}

// MessageSent records a mailbox delivery.
func (m *Metrics) MessageSent() {
	if m == nil {
		return
	}
	m.messagesSent.Inc()
}

// TickCompleted records one scheduler tick.
func (m *Metrics) TickCompleted(steps, queued int, exhausted bool) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.steps.Add(float64(steps))
	m.queueDepth.Set(float64(queued))
	if exhausted {
		m.budgetExhausted.Inc()
	}
}

// PatchApplied records one applied patch of the given kind.
func (m *Metrics) PatchApplied(kind string) {
	if m == nil {
		return
	}
	m.patchesApplied.WithLabelValues(kind).Inc()
}

// RenderCompleted records one render cycle.
func (m *Metrics) RenderCompleted(d time.Duration) {
	if m == nil {
		return
	}
	m.renders.Inc()
	m.renderDuration.Observe(d.Seconds())
}

// EffectsDispatched records one effect dispatch cycle.
func (m *Metrics) EffectsDispatched() {
	if m == nil {
		return
	}
	m.effectCycles.Inc()
}
