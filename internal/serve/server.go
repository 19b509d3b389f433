// Package serve hosts the live view over SSH. Every session gets its own
// world and simulator; nothing is shared between sessions.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/san-kum/radialsim/internal/config"
	"github.com/san-kum/radialsim/internal/viz"
)

const (
	defaultHost            = "::"
	defaultPort            = "2222"
	defaultHostKeyPath     = ".ssh/radialsim_ed25519"
	defaultShutdownTimeout = 5 * time.Second
)

type Options struct {
	Host            string
	Port            string
	HostKeyPath     string
	Scale           float64
	Config          *config.Config
	Logger          *log.Logger
	ShutdownTimeout time.Duration
}

// DefaultOptions reads RADIALSIM_SSH_HOST, RADIALSIM_SSH_PORT and
// RADIALSIM_SSH_HOST_KEY, falling back to [::]:2222 and a key under .ssh.
func DefaultOptions() Options {
	return Options{
		Host:            config.GetEnv("RADIALSIM_SSH_HOST", defaultHost),
		Port:            config.GetEnv("RADIALSIM_SSH_PORT", defaultPort),
		HostKeyPath:     config.GetEnv("RADIALSIM_SSH_HOST_KEY", defaultHostKeyPath),
		Scale:           viz.DefaultScale,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

type Server struct {
	opts     Options
	srv      *ssh.Server
	sessions atomic.Int64
}

func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{opts: opts}
	srvOpts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(opts.Host, opts.Port)),
		wish.WithMiddleware(
			bm.Middleware(s.teaHandler),
			s.trackSessions,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(opts.Logger),
		),
	}
	if opts.HostKeyPath != "" {
		srvOpts = append(srvOpts, wish.WithHostKeyPath(opts.HostKeyPath))
	}

	srv, err := wish.NewServer(srvOpts...)
	if err != nil {
		return nil, fmt.Errorf("create ssh server: %w", err)
	}
	s.srv = srv
	return s, nil
}

// teaHandler builds a fresh live view for the session, styled for the
// client's terminal.
func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	m, err := viz.NewModel(viz.Options{
		Config:   s.opts.Config,
		Scale:    s.opts.Scale,
		Renderer: bm.MakeRenderer(sess),
		Logger:   s.opts.Logger,
	})
	if err != nil {
		s.opts.Logger.Error("session setup failed", "user", sess.User(), "err", err)
		return nil, nil
	}
	return m, viz.ProgramOptions()
}

func (s *Server) trackSessions(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, _, _ := sess.Pty()
		n := s.sessions.Add(1)
		s.opts.Logger.Info("session started",
			"user", sess.User(),
			"term", pty.Term,
			"width", pty.Window.Width,
			"height", pty.Window.Height,
			"sessions", n,
		)
		defer func() {
			left := s.sessions.Add(-1)
			s.opts.Logger.Info("session ended", "user", sess.User(), "sessions", left)
		}()
		next(sess)
	}
}

// Sessions reports the number of connected sessions.
func (s *Server) Sessions() int64 { return s.sessions.Load() }

func (s *Server) Addr() string { return s.srv.Addr }

// ListenAndServe serves until ctx is done, then shuts down gracefully,
// giving open sessions ShutdownTimeout to finish.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("starting ssh server", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("ssh server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.opts.Logger.Info("shutting down ssh server", "sessions", s.Sessions())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
