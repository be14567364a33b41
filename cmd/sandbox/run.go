package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/sandbox/internal/config"
	"github.com/vovakirdan/sandbox/internal/core"
	"github.com/vovakirdan/sandbox/internal/crashlog"
	"github.com/vovakirdan/sandbox/internal/editor"
	"github.com/vovakirdan/sandbox/internal/platform/desktop"
	"github.com/vovakirdan/sandbox/internal/registry"
	"github.com/vovakirdan/sandbox/internal/runner"
)

var (
	flagWidth     int
	flagHeight    int
	flagTitle     string
	flagWindowed  bool
	flagEditor    bool
	flagEditorSSH string
	flagCrashLog  string
)

var runCmd = &cobra.Command{
	Use:   "run <scene>",
	Short: "Run a scene in a window",
	Long: `Open a window and run the specified scene.

In-window controls:
  F3         - Toggle HUD
  F5         - Play/Pause (editor)
  F6         - Step one tick (editor)
  F7         - Reset (editor)
  Esc        - Quit

With --editor the simulation starts paused. When stdin is a terminal an
editor console opens there; --editor-ssh serves the same console over SSH.

Examples:
  sandbox run bounce
  sandbox run bounce --windowed --width 800 --height 600
  sandbox run fountain --editor
  sandbox run bounce --editor --editor-ssh 127.0.0.1:23235`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagWidth, "width", 0, "Window width in pixels")
	runCmd.Flags().IntVar(&flagHeight, "height", 0, "Window height in pixels")
	runCmd.Flags().StringVar(&flagTitle, "title", "", "Window title")
	runCmd.Flags().BoolVar(&flagWindowed, "windowed", false, "Open a window instead of fullscreen")
	runCmd.Flags().BoolVar(&flagEditor, "editor", false, "Enable the editor (start paused)")
	runCmd.Flags().StringVar(&flagEditorSSH, "editor-ssh", "", "Serve the editor console over SSH on this address")
	runCmd.Flags().StringVar(&flagCrashLog, "crash-log", "", "Crash log path (default ~/.sandbox/crash.log)")
}

func runRun(cmd *cobra.Command, args []string) error {
	scene := args[0]
	if !registry.Exists(scene) {
		return fmt.Errorf("unknown scene %q, run 'sandbox list' to see available scenes", scene)
	}

	var o config.Overrides
	flags := cmd.Flags()
	if flags.Changed("width") {
		o.Width = &flagWidth
	}
	if flags.Changed("height") {
		o.Height = &flagHeight
	}
	if flags.Changed("title") {
		o.Title = &flagTitle
	}
	if flags.Changed("windowed") {
		o.Windowed = &flagWindowed
	}
	if flags.Changed("editor") {
		o.Editor = &flagEditor
	}
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	if flags.Changed("editor-ssh") {
		cfg.Editor.SSHAddr = flagEditorSSH
	}

	crashPath := flagCrashLog
	if crashPath == "" {
		crashPath = cfg.CrashLogPath()
	}
	logger := newLogger(cfg)

	if crashPath == "" {
		return runDesktop(cmd.Context(), scene, cfg, logger)
	}
	crash := crashlog.New(crashPath)
	return crash.Guard(func() error {
		return runDesktop(cmd.Context(), scene, cfg, logger)
	})
}

// runDesktop runs scene in a GLFW window on the calling (main) thread.
func runDesktop(ctx context.Context, scene string, cfg config.SandboxConfig, logger *log.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	host, err := desktop.Open(cfg.Window, logger)
	if err != nil {
		return err
	}
	defer host.Close()

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	inbox := make(chan core.Command, 16)
	board := core.NewStatusBoard()

	r, err := runner.New(runner.Options{
		Scene:  scene,
		Config: cfg,
		Host:   host,
		Canvas: host.Canvas(),
		Store:  store,
		Logger: logger,
		Sink:   host.Sink(time.Now),
		Inbox:  inbox,
		Board:  board,
	})
	if err != nil {
		return err
	}

	if cfg.Editor.SSHAddr != "" {
		srv, err := editor.NewServer(editor.ServerConfig{
			Address:     cfg.Editor.SSHAddr,
			HostKeyPath: cfg.HostKeyPath(),
		}, scene, board, inbox, logger)
		if err != nil {
			return err
		}
		srv.Start()
		defer func() {
			if err := srv.Shutdown(); err != nil {
				logger.Warn("editor ssh shutdown", "error", err)
			}
		}()
	}

	if cfg.Editor.Enabled && term.IsTerminal(int(os.Stdin.Fd())) {
		done := startConsole(ctx, scene, board, inbox, logger)
		defer done()
	}

	return r.Run(ctx)
}

// startConsole runs the local editor console alongside the loop. The returned
// func stops the console and waits for the terminal to be restored.
func startConsole(ctx context.Context, scene string, board *core.StatusBoard, inbox chan<- core.Command, logger *log.Logger) func() {
	ctx, cancel := context.WithCancel(ctx)
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		err := editor.Run(ctx, editor.NewConsole(scene, board, inbox))
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
			logger.Error("editor console", "error", err)
		}
	}()

	return func() {
		cancel()
		<-exited
	}
}
