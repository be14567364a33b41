package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/sandbox/internal/config"
	"github.com/vovakirdan/sandbox/internal/core"
	"github.com/vovakirdan/sandbox/internal/overlay"
	"github.com/vovakirdan/sandbox/internal/platform/headless"
	"github.com/vovakirdan/sandbox/internal/registry"
	"github.com/vovakirdan/sandbox/internal/runner"
)

var (
	flagFrames     int
	flagDt         float64
	flagStallEvery int
	flagStall      float64
	flagSnapshot   bool
	flagCols       int
	flagRows       int
	flagSave       bool
)

var benchCmd = &cobra.Command{
	Use:   "bench <scene>",
	Short: "Run a scene headless and report frame timings",
	Long: `Run the specified scene against a headless host driven by scripted
frame deltas, then print simulation counters and per-subsystem costs.

Audio is disabled. Sessions are only saved with --save.

Examples:
  sandbox bench bounce
  sandbox bench bounce --frames 600 --dt 0.033
  sandbox bench fountain --stall-every 30 --stall 0.25
  sandbox bench bounce --snapshot --cols 100 --rows 30`,
	Args: cobra.ExactArgs(1),
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&flagFrames, "frames", 300, "Number of frames to run")
	benchCmd.Flags().Float64Var(&flagDt, "dt", core.FixedDt, "Seconds between frames")
	benchCmd.Flags().IntVar(&flagStallEvery, "stall-every", 0, "Insert a stalled frame every N frames (0 = never)")
	benchCmd.Flags().Float64Var(&flagStall, "stall", 0.25, "Duration of a stalled frame in seconds")
	benchCmd.Flags().BoolVar(&flagSnapshot, "snapshot", false, "Print the last presented frame")
	benchCmd.Flags().IntVar(&flagCols, "cols", 80, "Snapshot width in cells")
	benchCmd.Flags().IntVar(&flagRows, "rows", 24, "Snapshot height in cells")
	benchCmd.Flags().BoolVar(&flagSave, "save", false, "Save the session to the database")
}

func runBench(cmd *cobra.Command, args []string) error {
	scene := args[0]
	if !registry.Exists(scene) {
		return fmt.Errorf("unknown scene %q, run 'sandbox list' to see available scenes", scene)
	}
	if flagFrames <= 0 {
		return fmt.Errorf("--frames must be positive, got %d", flagFrames)
	}
	if flagDt < 0 || flagStall < 0 {
		return errors.New("frame deltas must not be negative")
	}

	cfg, err := loadConfig(cmd, config.Overrides{})
	if err != nil {
		return err
	}
	cfg.Audio.Enabled = false
	cfg.Editor.Enabled = false
	logger := newLogger(cfg)

	frames := headless.Steady(flagFrames, flagDt)
	if flagStallEvery > 0 {
		frames = headless.Stalling(flagFrames, flagDt, flagStallEvery, flagStall)
	}
	host := headless.New(frames, headless.Options{
		Cols:   flagCols,
		Rows:   flagRows,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
	})

	opts := runner.Options{
		Scene:  scene,
		Config: cfg,
		Host:   host,
		Canvas: host.Canvas(),
		Clock:  host.Clock(),
		Logger: logger,
	}
	if flagSave {
		opts.Store = openStore(cfg, logger)
		if opts.Store != nil {
			defer opts.Store.Close()
		}
	}

	r, err := runner.New(opts)
	if err != nil {
		return err
	}

	stats := newBenchStats()
	host.OnPresent(func(int, *core.Screen) {
		stats.add(r.Recorder.SortedLast())
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	if err := r.Run(ctx); err != nil {
		return err
	}
	wall := time.Since(start)

	fmt.Fprintln(os.Stdout, benchReport(benchSummary{
		Scene:    scene,
		Frames:   r.Loop.Frames(),
		Ticks:    r.Controller.Ticks(),
		Resets:   r.Controller.Resets(),
		FPSAvg:   r.Recorder.FPSAvg(),
		Wall:     wall,
		Overlays: r.Overlay.Frames(),
	}, stats))

	if flagSnapshot {
		fmt.Fprintln(os.Stdout)
		fmt.Fprintln(os.Stdout, overlay.RenderScreen(host.Screen()))
	}
	return nil
}

type benchSummary struct {
	Scene    string
	Frames   uint64
	Ticks    uint64
	Resets   uint64
	FPSAvg   float64
	Wall     time.Duration
	Overlays uint64
}

// benchStats accumulates per-subsystem costs across presented frames.
type benchStats struct {
	sum   map[string]float64
	max   map[string]float64
	count map[string]int
}

func newBenchStats() *benchStats {
	return &benchStats{
		sum:   make(map[string]float64),
		max:   make(map[string]float64),
		count: make(map[string]int),
	}
}

func (s *benchStats) add(timings []core.Timing) {
	for _, t := range timings {
		s.sum[t.Name] += t.Ms
		s.max[t.Name] = max(s.max[t.Name], t.Ms)
		s.count[t.Name]++
	}
}

func (s *benchStats) names() []string {
	names := make([]string, 0, len(s.count))
	for name := range s.count {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var (
	reportTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	reportHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	reportCellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// benchReport renders the counters and the timings table.
func benchReport(sum benchSummary, stats *benchStats) string {
	var b strings.Builder
	b.WriteString(reportTitleStyle.Render("BENCH - " + sum.Scene))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  frames    %d\n", sum.Frames)
	fmt.Fprintf(&b, "  ticks     %d\n", sum.Ticks)
	fmt.Fprintf(&b, "  resets    %d\n", sum.Resets)
	fmt.Fprintf(&b, "  fps avg   %.1f\n", sum.FPSAvg)
	fmt.Fprintf(&b, "  overlays  %d\n", sum.Overlays)
	fmt.Fprintf(&b, "  wall      %s\n", sum.Wall.Round(time.Millisecond))
	if sum.Frames > 0 {
		perFrame := float64(sum.Wall.Microseconds()) / float64(sum.Frames) / 1000
		fmt.Fprintf(&b, "  per frame %.3fms\n", perFrame)
	}

	names := stats.names()
	if len(names) == 0 {
		return b.String()
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		avg := stats.sum[name] / float64(stats.count[name])
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%.3f", avg),
			fmt.Sprintf("%.3f", stats.max[name]),
			fmt.Sprintf("%d", stats.count[name]),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return reportHeaderStyle
			}
			return reportCellStyle
		}).
		Headers("Subsystem", "Avg ms", "Max ms", "Samples").
		Rows(rows...)

	b.WriteString("\n")
	b.WriteString(t.String())
	return b.String()
}
