package demo

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/vela/internal/errors"
	"github.com/vango-dev/vela/internal/metrics"
	"github.com/vango-dev/vela/pkg/host"
	"github.com/vango-dev/vela/pkg/program"
	"github.com/vango-dev/vela/pkg/scheduler"
	"github.com/vango-dev/vela/pkg/vdom"
)

// SessionConfig configures a Session.
type SessionConfig struct {
	App      *App
	MaxSteps int
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Session runs one demo on its own scheduler loop goroutine with its own
// document. The document is only touched on the loop goroutine; callers go
// through Do.
type Session struct {
	doc     *host.Document
	loop    *scheduler.Loop
	sched   *scheduler.Scheduler
	program *program.Program
	logger  *slog.Logger

	// Loop goroutine only.
	patches map[string]int
	dirty   bool

	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

// NewSession starts cfg.App. The session stops when ctx is done or Close is
// called.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		doc:     host.NewDocument(),
		loop:    scheduler.NewLoop(cfg.Logger),
		logger:  cfg.Logger,
		patches: make(map[string]int),
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	s.sched = scheduler.New(scheduler.Config{
		MaxSteps: cfg.MaxSteps,
		Driver:   s.loop,
		Logger:   cfg.Logger,
		Metrics:  cfg.Metrics,
	})

	go func() {
		defer close(s.stopped)
		if err := s.loop.Run(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("session loop failed", "error", err)
		}
	}()

	var err error
	doErr := s.Do(func(doc *host.Document) {
		s.program, err = cfg.App.Start(doc, Options{
			Scheduler: s.sched,
			Logger:    cfg.Logger,
			Metrics:   cfg.Metrics,
			Observer: func(p *vdom.Patch) {
				s.patches[p.Kind.String()]++
				s.dirty = true
			},
		})
	})
	if doErr != nil {
		cancel()
		return nil, doErr
	}
	if err != nil {
		cancel()
		<-s.stopped
		return nil, err
	}
	return s, nil
}

// Do runs fn on the loop goroutine and waits for it.
func (s *Session) Do(fn func(doc *host.Document)) error {
	done := make(chan struct{})
	s.loop.Post(func() {
		defer close(done)
		fn(s.doc)
	})
	select {
	case <-done:
		return nil
	case <-s.stopped:
		return errors.New("E001")
	}
}

// Dispatch delivers an event to the node at path below the body.
func (s *Session) Dispatch(path []int, eventType string, payload any) error {
	var found bool
	err := s.Do(func(doc *host.Document) {
		target := doc.Find(doc.Body(), path...)
		if target == nil {
			return
		}
		found = true
		doc.Dispatch(target, eventType, payload)
	})
	if err != nil {
		return err
	}
	if !found {
		return errors.Newf(errors.CategoryRuntime, "no node at path %v", path)
	}
	return nil
}

// Click clicks the first button whose text is label. It reports whether
// one was found.
func (s *Session) Click(label string) (bool, error) {
	var found bool
	err := s.Do(func(doc *host.Document) {
		if b := findButton(doc.Body(), label); b != nil {
			found = true
			doc.Dispatch(b, "click", map[string]any{})
		}
	})
	return found, err
}

func findButton(n *host.MemNode, label string) *host.MemNode {
	if n.Tag == "button" && host.TextContent(n) == label {
		return n
	}
	for _, c := range n.Children {
		if b := findButton(c, label); b != nil {
			return b
		}
	}
	return nil
}

// HTML returns the current inner HTML of the body.
func (s *Session) HTML() (string, error) {
	var html string
	err := s.Do(func(doc *host.Document) {
		html = innerHTML(doc.Body())
	})
	return html, err
}

// Flush returns the body HTML if any patch was applied since the last
// Flush.
func (s *Session) Flush() (html string, changed bool, err error) {
	err = s.Do(func(doc *host.Document) {
		if !s.dirty {
			return
		}
		s.dirty = false
		changed = true
		html = innerHTML(doc.Body())
	})
	return html, changed, err
}

func innerHTML(n *host.MemNode) string {
	var out string
	for _, c := range n.Children {
		out += host.HTML(c)
	}
	return out
}

// PatchCounts returns how many patches of each kind were applied.
func (s *Session) PatchCounts() (map[string]int, error) {
	counts := make(map[string]int)
	err := s.Do(func(*host.Document) {
		for k, v := range s.patches {
			counts[k] = v
		}
	})
	return counts, err
}

// Scheduler returns the session scheduler.
func (s *Session) Scheduler() *scheduler.Scheduler { return s.sched }

// Close stops the program and the loop.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		err = s.Do(func(*host.Document) {
			if stopErr := s.program.Stop(); stopErr != nil {
				s.logger.Debug("program already stopped", "error", stopErr)
			}
		})
		s.cancel()
		<-s.stopped
	})
	return err
}
