// Package live serves vela demos to a browser. Every WebSocket connection
// runs its own program against its own in-memory document; the server
// pushes the rendered HTML and forwards browser events back to the
// document.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/vela/internal/demo"
	"github.com/vango-dev/vela/internal/errors"
	"github.com/vango-dev/vela/internal/metrics"
)

// Config configures a Server.
type Config struct {
	// App is the demo every connection runs.
	App *demo.App

	// MaxSteps is the per-connection scheduler budget.
	MaxSteps int

	// MetricsPath exposes Gatherer when both are set.
	MetricsPath string
	Gatherer    prometheus.Gatherer
	Metrics     *metrics.Metrics

	// FlushInterval is how often changed documents are pushed.
	// Default: 16ms.
	FlushInterval time.Duration

	// WriteTimeout bounds each WebSocket write. Default: 5s.
	WriteTimeout time.Duration

	Logger *slog.Logger
}

// ClientMessage is an event sent by the browser.
type ClientMessage struct {
	Type    string         `json:"type"`
	Path    []int          `json:"path"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ServerMessage is a document update sent to the browser.
type ServerMessage struct {
	Type  string `json:"type"`
	HTML  string `json:"html,omitempty"`
	Error string `json:"error,omitempty"`
}

// Server serves one demo over HTTP and WebSocket.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
	router   chi.Router

	mu      sync.Mutex
	clients int
}

// New creates a Server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 16 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger.With("component", "live", "demo", cfg.App.Name),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.MetricsPath != "" && cfg.Gatherer != nil {
		r.Handle(cfg.MetricsPath, promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Clients returns the number of open connections.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clients
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.New("E181").Wrap(err).WithDetailf("cannot listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.New("E181").Wrap(err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown failed", "error", err)
		}
		return nil
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexPage.Execute(w, s.cfg.App); err != nil {
		s.logger.Error("render index", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.mu.Lock()
	s.clients++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.clients--
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	logger := s.logger.With("remote", r.RemoteAddr)
	session, err := demo.NewSession(ctx, demo.SessionConfig{
		App:      s.cfg.App,
		MaxSteps: s.cfg.MaxSteps,
		Logger:   logger,
		Metrics:  s.cfg.Metrics,
	})
	if err != nil {
		logger.Error("start session", "error", err)
		s.write(conn, ServerMessage{Type: "error", Error: err.Error()})
		return
	}
	defer session.Close()

	logger.Info("session started")
	defer logger.Info("session closed")

	// The first frame always carries the initial render.
	html, err := session.HTML()
	if err != nil {
		return
	}
	if err := s.write(conn, ServerMessage{Type: "html", HTML: html}); err != nil {
		return
	}
	session.Flush()

	go s.pushLoop(ctx, cancel, conn, session)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug("bad client message", "error", err)
			continue
		}
		if err := session.Dispatch(msg.Path, msg.Type, msg.Payload); err != nil {
			logger.Debug("dispatch failed", "type", msg.Type, "path", msg.Path, "error", err)
		}
	}
}

// pushLoop sends the document whenever it changed. Writes only happen here
// after the first frame, so the connection has a single writer. Closing the
// connection on exit unblocks the reader.
func (s *Server) pushLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, session *demo.Session) {
	defer conn.Close()
	defer cancel()

	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			html, changed, err := session.Flush()
			if err != nil {
				return
			}
			if !changed {
				continue
			}
			if err := s.write(conn, ServerMessage{Type: "html", HTML: html}); err != nil {
				return
			}
		}
	}
}

func (s *Server) write(conn *websocket.Conn, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}
