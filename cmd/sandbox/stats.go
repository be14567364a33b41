package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/sandbox/internal/config"
	"github.com/vovakirdan/sandbox/internal/crashlog"
	"github.com/vovakirdan/sandbox/internal/registry"
	"github.com/vovakirdan/sandbox/internal/storage"
)

var (
	flagLimit   int
	flagSession string
	flagCrashes bool
	flagClear   bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [scene]",
	Short: "Show recorded sessions",
	Long: `Display recent sessions, per-scene totals and per-subsystem averages.

Examples:
  sandbox stats
  sandbox stats bounce --limit 5
  sandbox stats --session 3f1c...
  sandbox stats --crashes
  sandbox stats bounce --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of recent sessions to show")
	statsCmd.Flags().StringVar(&flagSession, "session", "", "Show one session with its timings")
	statsCmd.Flags().BoolVar(&flagCrashes, "crashes", false, "Show crash log records")
	statsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete recorded sessions of the scene")
}

func runStats(cmd *cobra.Command, args []string) error {
	scene := ""
	if len(args) == 1 {
		scene = args[0]
		if !registry.Exists(scene) {
			return fmt.Errorf("unknown scene %q, run 'sandbox list' to see available scenes", scene)
		}
	}

	cfg, err := loadConfig(cmd, config.Overrides{})
	if err != nil {
		return err
	}

	if flagCrashes {
		entries, err := crashlog.ReadAll(cfg.CrashLogPath())
		if err != nil {
			return err
		}
		printCrashes(os.Stdout, entries)
		return nil
	}

	path := cfg.DatabasePath()
	if path == "" {
		return errors.New("no session database path")
	}
	store, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	switch {
	case flagClear:
		if scene == "" {
			return errors.New("--clear needs a scene")
		}
		if err := store.ClearSessions(scene); err != nil {
			return err
		}
		fmt.Printf("Cleared sessions of %s.\n", scene)
		return nil

	case flagSession != "":
		sess, err := store.Session(flagSession)
		if err != nil {
			return err
		}
		if sess == nil {
			return fmt.Errorf("no session %q", flagSession)
		}
		printSession(os.Stdout, sess)
		return nil
	}

	return printOverview(os.Stdout, store, scene, flagLimit)
}

func printOverview(w io.Writer, store *storage.Store, scene string, limit int) error {
	all, err := store.AllSceneStats()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(w, "No sessions recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Run 'sandbox run <scene>' to record one.")
		return nil
	}

	ids := make([]string, 0, len(all))
	for id := range all {
		if scene == "" || id == scene {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	fmt.Fprintln(w, "Scenes")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-10s  %-8s  %-10s  %-8s  %s\n", "Scene", "Sessions", "Frames", "Avg FPS", "Last run")
	fmt.Fprintf(w, "  %-10s  %-8s  %-10s  %-8s  %s\n", "-----", "--------", "------", "-------", "--------")
	for _, id := range ids {
		st := all[id]
		fmt.Fprintf(w, "  %-10s  %-8d  %-10d  %-8.1f  %s\n",
			st.Scene, st.Sessions, st.TotalFrames, st.AvgFPS, st.LastRun.Local().Format("2006-01-02 15:04"))
	}

	sessions, err := store.RecentSessions(scene, limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recent sessions")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-36s  %-10s  %-8s  %-8s  %s\n", "ID", "Scene", "Frames", "Avg FPS", "Date")
	fmt.Fprintf(w, "  %-36s  %-10s  %-8s  %-8s  %s\n", "--", "-----", "------", "-------", "----")
	for _, s := range sessions {
		fmt.Fprintf(w, "  %-36s  %-10s  %-8d  %-8.1f  %s\n",
			s.ID, s.Scene, s.Frames, s.AvgFPS, s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	if scene != "" {
		timings, err := store.SceneTimings(scene)
		if err != nil {
			return err
		}
		if len(timings) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Subsystem costs - %s\n", scene)
			fmt.Fprintln(w)
			printTimings(w, timings)
		}
	}
	return nil
}

func printSession(w io.Writer, s *storage.Session) {
	fmt.Fprintf(w, "Session %s\n", s.ID)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  scene     %s\n", s.Scene)
	fmt.Fprintf(w, "  date      %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  duration  %s\n", s.Duration)
	fmt.Fprintf(w, "  frames    %d\n", s.Frames)
	fmt.Fprintf(w, "  ticks     %d\n", s.Ticks)
	fmt.Fprintf(w, "  resets    %d\n", s.Resets)
	fmt.Fprintf(w, "  fps avg   %.1f\n", s.AvgFPS)
	if len(s.Timings) > 0 {
		fmt.Fprintln(w)
		printTimings(w, s.Timings)
	}
}

func printTimings(w io.Writer, timings []storage.SubsystemTiming) {
	fmt.Fprintf(w, "  %-12s  %-8s  %-8s  %s\n", "Subsystem", "Avg ms", "Max ms", "Samples")
	fmt.Fprintf(w, "  %-12s  %-8s  %-8s  %s\n", "---------", "------", "------", "-------")
	for _, t := range timings {
		fmt.Fprintf(w, "  %-12s  %-8.3f  %-8.3f  %d\n", t.Name, t.AvgMs, t.MaxMs, t.Samples)
	}
}

func printCrashes(w io.Writer, entries []crashlog.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No crashes recorded.")
		return
	}
	fmt.Fprintf(w, "  %-20s  %-6s  %s\n", "Time", "Reason", "Detail")
	fmt.Fprintf(w, "  %-20s  %-6s  %s\n", "----", "------", "------")
	for _, e := range entries {
		fmt.Fprintf(w, "  %-20s  %-6s  %s\n", e.Time.UTC().Format(crashlog.TimeFormat), e.Reason, e.Detail)
	}
}
