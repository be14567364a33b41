package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/sandbox/internal/core"
	"github.com/vovakirdan/sandbox/internal/crashlog"
	"github.com/vovakirdan/sandbox/internal/storage"
)

func TestBenchStatsAccumulates(t *testing.T) {
	s := newBenchStats()
	s.add([]core.Timing{{Name: "physics", Ms: 1}, {Name: "renderer", Ms: 0.5}})
	s.add([]core.Timing{{Name: "physics", Ms: 3}})

	if got := s.names(); len(got) != 2 || got[0] != "physics" || got[1] != "renderer" {
		t.Fatalf("names() = %v", got)
	}
	if s.sum["physics"] != 4 || s.max["physics"] != 3 || s.count["physics"] != 2 {
		t.Errorf("physics sum=%v max=%v count=%d", s.sum["physics"], s.max["physics"], s.count["physics"])
	}
}

func TestBenchReport(t *testing.T) {
	s := newBenchStats()
	s.add([]core.Timing{{Name: "physics", Ms: 2}})
	s.add([]core.Timing{{Name: "physics", Ms: 4}})

	out := benchReport(benchSummary{
		Scene:  "bounce",
		Frames: 2,
		Ticks:  2,
		FPSAvg: 60,
		Wall:   10 * time.Millisecond,
	}, s)

	for _, want := range []string{"bounce", "frames    2", "fps avg   60.0", "physics", "3.000", "4.000"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestBenchReportWithoutTimings(t *testing.T) {
	out := benchReport(benchSummary{Scene: "fountain"}, newBenchStats())
	if strings.Contains(out, "Subsystem") {
		t.Errorf("empty stats should not render a table:\n%s", out)
	}
	if strings.Contains(out, "per frame") {
		t.Error("per frame cost needs at least one frame")
	}
}

func TestPrintOverview(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	var buf bytes.Buffer
	if err := printOverview(&buf, store, "", 10); err != nil {
		t.Fatalf("printOverview: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions recorded yet.") {
		t.Errorf("empty store output:\n%s", buf.String())
	}

	_, err = store.SaveSession(storage.Session{
		Scene:   "bounce",
		Frames:  120,
		Ticks:   118,
		AvgFPS:  59.8,
		Timings: []storage.SubsystemTiming{{Name: "physics", AvgMs: 0.2, MaxMs: 0.9, Samples: 120}},
	})
	if err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	buf.Reset()
	if err := printOverview(&buf, store, "bounce", 10); err != nil {
		t.Fatalf("printOverview: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Scenes", "bounce", "120", "Recent sessions", "Subsystem costs - bounce", "physics"} {
		if !strings.Contains(out, want) {
			t.Errorf("overview missing %q:\n%s", want, out)
		}
	}
}

func TestPrintCrashes(t *testing.T) {
	var buf bytes.Buffer
	printCrashes(&buf, nil)
	if !strings.Contains(buf.String(), "No crashes") {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	printCrashes(&buf, []crashlog.Entry{{
		Time:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Reason: crashlog.ReasonError,
		Detail: "host closed",
	}})
	if !strings.Contains(buf.String(), "2024-05-01T12:00:00Z") || !strings.Contains(buf.String(), "host closed") {
		t.Errorf("output = %q", buf.String())
	}
}
