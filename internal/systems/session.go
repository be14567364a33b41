package systems

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/sandbox/internal/core"
	"github.com/vovakirdan/sandbox/internal/storage"
)

type costStat struct {
	sum   float64
	max   float64
	count int
}

// SessionLog samples telemetry once per frame and, on shutdown, saves a session
// summary with per-subsystem averages and maxima. A nil store only keeps the
// summary in memory.
type SessionLog struct {
	store  *storage.Store
	rec    *core.Recorder
	ctrl   *core.Controller
	clock  core.Clock
	scene  string
	logger *log.Logger

	start  time.Time
	frames uint64
	fpsSum float64
	costs  map[string]*costStat
	saved  string
}

// NewSessionLog creates the session recorder.
func NewSessionLog(store *storage.Store, rec *core.Recorder, ctrl *core.Controller, clock core.Clock,
	scene string, logger *log.Logger) *SessionLog {
	if clock == nil {
		clock = core.SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SessionLog{
		store:  store,
		rec:    rec,
		ctrl:   ctrl,
		clock:  clock,
		scene:  scene,
		logger: logger,
		costs:  make(map[string]*costStat),
	}
}

func (s *SessionLog) Name() string { return "session" }

func (s *SessionLog) Initialize() error {
	s.start = s.clock.Now()
	return nil
}

// Draw folds the previous frame's timings into the running totals.
func (s *SessionLog) Draw() error {
	s.frames++
	s.fpsSum += s.rec.FPS()
	for name, ms := range s.rec.LastTimings() {
		c, ok := s.costs[name]
		if !ok {
			c = &costStat{}
			s.costs[name] = c
		}
		c.sum += ms
		c.max = max(c.max, ms)
		c.count++
	}
	return nil
}

// Summary returns the session as it would be saved now.
func (s *SessionLog) Summary() storage.Session {
	sess := storage.Session{
		Scene:     s.scene,
		Frames:    s.frames,
		Ticks:     s.ctrl.Ticks(),
		Resets:    s.ctrl.Resets(),
		Duration:  s.clock.Now().Sub(s.start),
		CreatedAt: s.start,
	}
	if s.frames > 0 {
		sess.AvgFPS = s.fpsSum / float64(s.frames)
	}
	for name, c := range s.costs {
		sess.Timings = append(sess.Timings, storage.SubsystemTiming{
			Name:    name,
			AvgMs:   c.sum / float64(c.count),
			MaxMs:   c.max,
			Samples: c.count,
		})
	}
	sort.Slice(sess.Timings, func(i, j int) bool {
		return sess.Timings[i].Name < sess.Timings[j].Name
	})
	return sess
}

// SavedID returns the stored session id, empty until Shutdown saved one.
func (s *SessionLog) SavedID() string { return s.saved }

// Shutdown persists the summary.
func (s *SessionLog) Shutdown() error {
	if s.store == nil || s.frames == 0 {
		return nil
	}
	sess := s.Summary()
	id, err := s.store.SaveSession(sess)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.saved = id
	s.logger.Info("session saved", "id", id, "scene", s.scene, "frames", sess.Frames, "avg_fps", fmt.Sprintf("%.1f", sess.AvgFPS))
	return nil
}
