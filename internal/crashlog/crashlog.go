// Package crashlog appends one-line failure records of the form
// YYYY-MM-DDTHH:MM:SSZ|reason|detail to a file owned by the process.
package crashlog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// TimeFormat is the UTC timestamp layout of every record.
const TimeFormat = "2006-01-02T15:04:05Z"

// Reasons recorded by Guard.
const (
	ReasonPanic = "panic"
	ReasonError = "error"
)

// ErrMalformed is returned by Parse for lines that are not crash records.
var ErrMalformed = errors.New("crashlog: malformed record")

// Entry is one parsed record.
type Entry struct {
	Time   time.Time
	Reason string
	Detail string
}

// String formats e as a record line without the trailing newline.
func (e Entry) String() string {
	return e.Time.UTC().Format(TimeFormat) + "|" + sanitize(e.Reason) + "|" + sanitize(e.Detail)
}

// Logger appends records to a file. Safe for concurrent use.
type Logger struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// New creates a logger writing to path. The file and its directory are created
// on the first record.
func New(path string) *Logger {
	return &Logger{path: path, now: time.Now}
}

// Path returns the log file location.
func (l *Logger) Path() string {
	return l.path
}

// Record appends one line. Newlines in reason or detail become spaces and '|'
// becomes '/', so every record stays a single parseable line.
func (l *Logger) Record(reason, detail string) error {
	line := Entry{Time: l.now(), Reason: reason, Detail: detail}.String() + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("crashlog: create directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("crashlog: open %s: %w", l.path, err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("crashlog: write: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("crashlog: sync: %w", err)
	}
	return f.Close()
}

// Guard runs fn. A returned error is recorded with ReasonError and returned.
// A panic is recorded with ReasonPanic, its stack is written to stderr, and the
// panic continues so the process still terminates.
func (l *Logger) Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			_ = l.Record(ReasonPanic, fmt.Sprint(r))
			fmt.Fprintf(os.Stderr, "\r\nCRASH: %v\r\n%s\r\n", r, debug.Stack())
			os.Stderr.Sync()
			panic(r)
		}
	}()

	if err = fn(); err != nil {
		_ = l.Record(ReasonError, err.Error())
	}
	return err
}

// Parse reads a single record line.
func Parse(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r\n")
	ts, rest, ok := strings.Cut(line, "|")
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	reason, detail, ok := strings.Cut(rest, "|")
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	t, err := time.Parse(TimeFormat, ts)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: timestamp %q", ErrMalformed, ts)
	}
	return Entry{Time: t, Reason: reason, Detail: detail}, nil
}

// ReadAll parses every record in path, oldest first. Malformed lines are skipped.
// A missing file yields no entries.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("crashlog: open %s: %w", path, err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if e, err := Parse(sc.Text()); err == nil {
			entries = append(entries, e)
		}
	}
	if err := sc.Err(); err != nil {
		return entries, fmt.Errorf("crashlog: read %s: %w", path, err)
	}
	return entries, nil
}

var sanitizer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "|", "/")

func sanitize(s string) string {
	return sanitizer.Replace(s)
}
