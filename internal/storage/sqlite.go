// Package storage persists sandbox session telemetry in SQLite.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for session telemetry.
type Store struct {
	db *sql.DB
}

// Session is the summary of one run of a scene.
type Session struct {
	ID        string // uuid; assigned by SaveSession when empty
	Scene     string
	Frames    uint64
	Ticks     uint64
	Resets    uint64
	AvgFPS    float64
	Duration  time.Duration
	CreatedAt time.Time

	Timings []SubsystemTiming
}

// SubsystemTiming is one subsystem's per-frame cost over a session.
type SubsystemTiming struct {
	Name    string
	AvgMs   float64
	MaxMs   float64
	Samples int
}

// SceneStats aggregates every stored session of a scene.
type SceneStats struct {
	Scene       string
	Sessions    int
	TotalFrames int64
	AvgFPS      float64
	LastRun     time.Time
}

const sqliteTime = "2006-01-02 15:04:05"

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			scene TEXT NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			resets INTEGER NOT NULL DEFAULT 0,
			avg_fps REAL NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_scene ON sessions(scene, created_at DESC);

		CREATE TABLE IF NOT EXISTS subsystem_timings (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			avg_ms REAL NOT NULL,
			max_ms REAL NOT NULL,
			samples INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (session_id, name)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSession records a session and its subsystem timings in one transaction.
// Returns the session ID, generating a UUID when sess.ID is empty.
func (s *Store) SaveSession(sess Session) (string, error) {
	if sess.Scene == "" {
		return "", errors.New("storage: session has no scene")
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, scene, frames, ticks, resets, avg_fps, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Scene, int64(sess.Frames), int64(sess.Ticks), int64(sess.Resets),
		sess.AvgFPS, sess.Duration.Milliseconds(), sess.CreatedAt.UTC().Format(sqliteTime),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save session: %w", err)
	}

	for _, st := range sess.Timings {
		_, err := tx.Exec(
			`INSERT INTO subsystem_timings (session_id, name, avg_ms, max_ms, samples)
			 VALUES (?, ?, ?, ?, ?)`,
			sess.ID, st.Name, st.AvgMs, st.MaxMs, st.Samples,
		)
		if err != nil {
			return "", fmt.Errorf("storage: cannot save timing %s: %w", st.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: cannot commit session: %w", err)
	}
	return sess.ID, nil
}

// RecentSessions retrieves the most recent sessions, newest first.
// An empty scene matches every scene. Timings are not loaded.
func (s *Store) RecentSessions(scene string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, scene, frames, ticks, resets, avg_fps, duration_ms, created_at
		 FROM sessions
		 WHERE ? = '' OR scene = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		scene, scene, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var frames, ticks, resets, durationMs int64
		var createdAt any
		if err := rows.Scan(&sess.ID, &sess.Scene, &frames, &ticks, &resets, &sess.AvgFPS, &durationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sess.Frames = uint64(frames)
		sess.Ticks = uint64(ticks)
		sess.Resets = uint64(resets)
		sess.Duration = time.Duration(durationMs) * time.Millisecond
		sess.CreatedAt = parseTime(createdAt)
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sessions, nil
}

// Session loads one session with its timings. Returns nil when the ID is unknown.
func (s *Store) Session(id string) (*Session, error) {
	var sess Session
	var frames, ticks, resets, durationMs int64
	var createdAt any

	err := s.db.QueryRow(
		`SELECT id, scene, frames, ticks, resets, avg_fps, duration_ms, created_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.Scene, &frames, &ticks, &resets, &sess.AvgFPS, &durationMs, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session: %w", err)
	}
	sess.Frames = uint64(frames)
	sess.Ticks = uint64(ticks)
	sess.Resets = uint64(resets)
	sess.Duration = time.Duration(durationMs) * time.Millisecond
	sess.CreatedAt = parseTime(createdAt)

	sess.Timings, err = s.SessionTimings(id)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// SessionTimings returns a session's subsystem timings, most expensive first.
func (s *Store) SessionTimings(sessionID string) ([]SubsystemTiming, error) {
	rows, err := s.db.Query(
		`SELECT name, avg_ms, max_ms, samples
		 FROM subsystem_timings
		 WHERE session_id = ?
		 ORDER BY avg_ms DESC, name`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query timings: %w", err)
	}
	defer rows.Close()

	var timings []SubsystemTiming
	for rows.Next() {
		var st SubsystemTiming
		if err := rows.Scan(&st.Name, &st.AvgMs, &st.MaxMs, &st.Samples); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		timings = append(timings, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return timings, nil
}

// SceneTimings averages each subsystem's cost across every session of a scene.
func (s *Store) SceneTimings(scene string) ([]SubsystemTiming, error) {
	rows, err := s.db.Query(
		`SELECT t.name, AVG(t.avg_ms), MAX(t.max_ms), SUM(t.samples)
		 FROM subsystem_timings t
		 JOIN sessions s ON s.id = t.session_id
		 WHERE s.scene = ?
		 GROUP BY t.name
		 ORDER BY AVG(t.avg_ms) DESC, t.name`,
		scene,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scene timings: %w", err)
	}
	defer rows.Close()

	var timings []SubsystemTiming
	for rows.Next() {
		var st SubsystemTiming
		if err := rows.Scan(&st.Name, &st.AvgMs, &st.MaxMs, &st.Samples); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		timings = append(timings, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return timings, nil
}

// SceneStats retrieves aggregated statistics for a specific scene.
func (s *Store) SceneStats(scene string) (*SceneStats, error) {
	stats := &SceneStats{Scene: scene}
	var lastRun any

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(frames), 0), COALESCE(AVG(avg_fps), 0), MAX(created_at)
		 FROM sessions WHERE scene = ?`,
		scene,
	).Scan(&stats.Sessions, &stats.TotalFrames, &stats.AvgFPS, &lastRun)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get scene stats: %w", err)
	}
	stats.LastRun = parseTime(lastRun)

	return stats, nil
}

// AllSceneStats retrieves statistics for every scene that has sessions.
func (s *Store) AllSceneStats() (map[string]*SceneStats, error) {
	rows, err := s.db.Query(
		`SELECT scene, COUNT(*), SUM(frames), AVG(avg_fps), MAX(created_at)
		 FROM sessions
		 GROUP BY scene`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all scene stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*SceneStats)
	for rows.Next() {
		var st SceneStats
		var lastRun any
		if err := rows.Scan(&st.Scene, &st.Sessions, &st.TotalFrames, &st.AvgFPS, &lastRun); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastRun = parseTime(lastRun)
		stats[st.Scene] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// ClearSessions deletes every session of the given scene along with its timings.
func (s *Store) ClearSessions(scene string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM subsystem_timings WHERE session_id IN (SELECT id FROM sessions WHERE scene = ?)`,
		scene,
	); err != nil {
		return fmt.Errorf("storage: cannot clear timings: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM sessions WHERE scene = ?", scene); err != nil {
		return fmt.Errorf("storage: cannot clear sessions: %w", err)
	}
	return tx.Commit()
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(sqliteTime, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
