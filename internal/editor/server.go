package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/sandbox/internal/core"
)

// ServerConfig holds configuration for the remote editor console.
type ServerConfig struct {
	// Address is the host:port to listen on (e.g., "127.0.0.1:23235").
	Address string

	// HostKeyPath is the path to the host key file. It is generated on first use.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// Server serves the editor console over SSH. Every session gets its own
// Console attached to the same board and inbox.
type Server struct {
	config ServerConfig
	scene  string
	board  *core.StatusBoard
	inbox  chan<- core.Command
	server *ssh.Server
	logger *log.Logger
}

// NewServer creates an SSH server for the console. It does not listen until Start.
func NewServer(cfg ServerConfig, scene string, board *core.StatusBoard, inbox chan<- core.Command, logger *log.Logger) (*Server, error) {
	if cfg.Address == "" {
		return nil, errors.New("editor: ssh address is required")
	}
	if cfg.HostKeyPath == "" {
		return nil, errors.New("editor: host key path is required")
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}

	srv := &Server{
		config: cfg,
		scene:  scene,
		board:  board,
		inbox:  inbox,
		logger: logger.WithPrefix("editor-ssh"),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.HostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a console for each SSH session.
func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	m := NewConsole(s.scene, s.board, s.inbox)
	m.width = pty.Window.Width
	m.height = pty.Window.Height
	m.table = m.createTable()
	m.refresh()

	return m, []tea.ProgramOption{tea.WithAltScreen()}
}

// loggingMiddleware logs SSH session events.
func (s *Server) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("console attached",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		next(sess)
		s.logger.Info("console detached",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// Start begins serving in the background.
func (s *Server) Start() {
	s.logger.Info("listening", "address", s.config.Address)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()
}

// Shutdown stops the server, waiting up to 10s for sessions to end.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.config.Address
}
