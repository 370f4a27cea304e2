package program

import (
	"log/slog"
	"sync"
	"sync/atomic"

	velaerrors "github.com/vango-dev/vela/internal/errors"
	"github.com/vango-dev/vela/internal/metrics"
	"github.com/vango-dev/vela/pkg/decode"
	"github.com/vango-dev/vela/pkg/effects"
	"github.com/vango-dev/vela/pkg/scheduler"
	"github.com/vango-dev/vela/pkg/task"
)

// Stepper brings the presentation in line with a new model.
type Stepper func(model any)

// Renderer builds the presentation for the initial model. send delivers
// messages back to the program.
type Renderer func(send func(msg any), model any) Stepper

// Config describes a program.
type Config struct {
	// Init builds the initial model and commands from the decoded flags.
	Init func(flags any) (model any, cmd *effects.Bag)

	// Update handles one message.
	Update func(msg, model any) (any, *effects.Bag)

	// Subscriptions lists the subscriptions wanted for a model. Optional.
	Subscriptions func(model any) *effects.Bag

	// Renderer draws the model. See ViewRenderer.
	Renderer Renderer

	// Registry holds the effect managers.
	// Default: effects.DefaultRegistry()
	Registry *effects.Registry

	// Scheduler runs the program and its managers.
	// Default: a scheduler driven by a ManualDriver
	Scheduler *scheduler.Scheduler

	// Flags is the startup value handed to Init after decoding.
	Flags any

	// FlagsDecoder decodes Flags. A program without one takes no flags.
	FlagsDecoder *decode.Decoder

	// RequiresFlags marks a program that cannot start without flags.
	RequiresFlags bool

	// Logger receives program lifecycle events.
	// Default: slog.Default()
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *metrics.Metrics
}

// Program is a running application: a main process receiving messages, a
// renderer and the effect managers.
type Program struct {
	sched      *scheduler.Scheduler
	dispatcher *effects.Dispatcher
	main       *scheduler.Process
	logger     *slog.Logger

	update        func(msg, model any) (any, *effects.Bag)
	subscriptions func(model any) *effects.Bag
	stepper       Stepper

	mu    sync.Mutex
	model any

	stopped atomic.Bool
}

// Initialize validates cfg, decodes the flags, renders the initial model
// and starts the main process. Configuration problems are returned as
// *errors.VelaError values and nothing is started.
func Initialize(cfg Config) (*Program, error) {
	if cfg.Init == nil || cfg.Update == nil || cfg.Renderer == nil {
		return nil, velaerrors.New("E105")
	}

	flags, err := decodeFlags(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Registry == nil {
		cfg.Registry = effects.DefaultRegistry()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = scheduler.New(scheduler.Config{Logger: cfg.Logger, Metrics: cfg.Metrics})
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Subscriptions == nil {
		cfg.Subscriptions = func(any) *effects.Bag { return nil }
	}

	p := &Program{
		sched:         cfg.Scheduler,
		logger:        cfg.Logger,
		update:        cfg.Update,
		subscriptions: cfg.Subscriptions,
	}

	model, cmd := cfg.Init(flags)
	p.model = model

	p.dispatcher = effects.NewDispatcher(p.sched, cfg.Registry, p.Send,
		effects.WithLogger(cfg.Logger),
		effects.WithMetrics(cfg.Metrics),
	)
	p.main = p.sched.Spawn(p.loop())
	p.stepper = cfg.Renderer(p.Send, model)
	p.dispatcher.Dispatch(cmd, cfg.Subscriptions(model))

	p.logger.Debug("program initialized", "pid", p.main.ID())
	return p, nil
}

func decodeFlags(cfg Config) (any, error) {
	if cfg.FlagsDecoder == nil {
		if cfg.RequiresFlags {
			return nil, velaerrors.New("E102")
		}
		if cfg.Flags != nil {
			return nil, velaerrors.New("E101").WithDetailf("got flags of type %T", cfg.Flags)
		}
		return nil, nil
	}

	flags, err := decode.Run(cfg.FlagsDecoder, cfg.Flags)
	if err != nil {
		return nil, velaerrors.New("E103").Wrap(err)
	}
	return flags, nil
}

// loop is the main process: one update, render and dispatch per message.
func (p *Program) loop() *task.Task {
	var next func(any) *task.Task
	next = func(any) *task.Task {
		return task.Receive(func(msg any) *task.Task {
			p.mu.Lock()
			model, cmd := p.update(msg, p.model)
			p.model = model
			p.mu.Unlock()

			p.stepper(model)
			p.dispatcher.Dispatch(cmd, p.subscriptions(model))
			return next(nil)
		})
	}
	return next(nil)
}

// Send delivers msg to the main process. It is safe to call from any
// goroutine.
func (p *Program) Send(msg any) {
	p.sched.Send(p.main, msg)
}

// Model returns the current model.
func (p *Program) Model() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model
}

// Scheduler returns the scheduler running the program.
func (p *Program) Scheduler() *scheduler.Scheduler { return p.sched }

// Dispatcher returns the effect dispatcher of the program.
func (p *Program) Dispatcher() *effects.Dispatcher { return p.dispatcher }

// Stop kills the main process and every effect manager. Stopping twice
// returns an error.
func (p *Program) Stop() error {
	if !p.stopped.CompareAndSwap(false, true) {
		return velaerrors.New("E001")
	}
	p.sched.Kill(p.main)
	p.dispatcher.Stop()
	p.logger.Debug("program stopped", "pid", p.main.ID())
	return nil
}
