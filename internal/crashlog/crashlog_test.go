package crashlog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	l := New(filepath.Join(t.TempDir(), "logs", "crash.log"))
	l.now = func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 500, time.FixedZone("X", 3*3600)) }
	return l
}

func TestRecordFormat(t *testing.T) {
	l := newTestLogger(t)
	if err := l.Record("init", "subsystem audio: no device"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "2026-05-06T04:08:09Z|init|subsystem audio: no device\n"
	if string(data) != want {
		t.Errorf("record = %q, want %q", data, want)
	}
}

func TestRecordSanitizesFields(t *testing.T) {
	l := newTestLogger(t)
	if err := l.Record("a|b", "line one\nline two|three\r\nfour"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := ReadAll(l.Path())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one record, got %d", len(entries))
	}
	if entries[0].Reason != "a/b" || entries[0].Detail != "line one line two/three four" {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestRecordAppends(t *testing.T) {
	l := newTestLogger(t)
	for _, reason := range []string{"first", "second", "third"} {
		if err := l.Record(reason, ""); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := ReadAll(l.Path())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(entries) != 3 || entries[0].Reason != "first" || entries[2].Reason != "third" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestGuardRecordsError(t *testing.T) {
	l := newTestLogger(t)
	boom := errors.New("graphics host lost context")

	if err := l.Guard(func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Guard returned %v", err)
	}
	if err := l.Guard(func() error { return nil }); err != nil {
		t.Fatalf("Guard returned %v", err)
	}

	entries, _ := ReadAll(l.Path())
	if len(entries) != 1 || entries[0].Reason != ReasonError || entries[0].Detail != boom.Error() {
		t.Errorf("entries = %+v", entries)
	}
}

func TestGuardRecordsPanicAndRepanics(t *testing.T) {
	l := newTestLogger(t)

	defer func() {
		r := recover()
		if r != "physics exploded" {
			t.Fatalf("recovered %v, expected the original panic", r)
		}
		entries, _ := ReadAll(l.Path())
		if len(entries) != 1 || entries[0].Reason != ReasonPanic || entries[0].Detail != "physics exploded" {
			t.Errorf("entries = %+v", entries)
		}
	}()

	_ = l.Guard(func() error { panic("physics exploded") })
}

func TestParse(t *testing.T) {
	tests := []struct {
		line    string
		wantErr bool
		reason  string
		detail  string
	}{
		{"2026-01-02T03:04:05Z|init|audio", false, "init", "audio"},
		{"2026-01-02T03:04:05Z|panic|", false, "panic", ""},
		{"2026-01-02T03:04:05Z|error|a:b c\n", false, "error", "a:b c"},
		{"2026-01-02T03:04:05Z|only-reason", true, "", ""},
		{"not a record", true, "", ""},
		{"2026-01-02 03:04:05|init|x", true, "", ""},
	}

	for _, tc := range tests {
		e, err := Parse(tc.line)
		if tc.wantErr {
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Parse(%q) error = %v, expected ErrMalformed", tc.line, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.line, err)
			continue
		}
		if e.Reason != tc.reason || e.Detail != tc.detail {
			t.Errorf("Parse(%q) = %+v", tc.line, e)
		}
		if e.Time.Location() != time.UTC {
			t.Errorf("Parse(%q) time not UTC", tc.line)
		}
	}
}

func TestReadAllSkipsMalformedAndMissing(t *testing.T) {
	dir := t.TempDir()

	entries, err := ReadAll(filepath.Join(dir, "none.log"))
	if err != nil || entries != nil {
		t.Errorf("missing file: %v, %v", entries, err)
	}

	path := filepath.Join(dir, "crash.log")
	content := strings.Join([]string{
		"2026-01-02T03:04:05Z|init|a",
		"garbage",
		"2026-01-02T03:04:06Z|panic|b",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	entries, err = ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(entries) != 2 || entries[1].Detail != "b" {
		t.Errorf("entries = %+v", entries)
	}
}
