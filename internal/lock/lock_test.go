package lock

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "main", "tui.lock")

	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if l.Path() != path {
		t.Errorf("Path() = %q, want %q", l.Path(), path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	if !strings.HasPrefix(string(data), "pid=") {
		t.Errorf("lock file content = %q, want pid= prefix", data)
	}

	if err := l.Release(); err != nil {
		t.Errorf("Release() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("lock file still present after Release: %v", err)
	}
}

func TestDoubleAcquireFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui.lock")

	l1, err := Acquire(path)
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer func() { _ = l1.Release() }()

	_, err = Acquire(path)
	if err == nil {
		t.Fatal("second Acquire() should fail")
	}
	var held *HeldError
	if !errors.As(err, &held) {
		t.Fatalf("expected HeldError, got %T: %v", err, err)
	}
	if held.PID != os.Getpid() {
		t.Errorf("HeldError.PID = %d, want %d", held.PID, os.Getpid())
	}
}

func TestHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui.lock")

	if _, held := Holder(path); held {
		t.Error("Holder() on missing file reports held")
	}

	l, err := Acquire(path)
	if err != nil {
		t.Fatal(err)
	}
	pid, held := Holder(path)
	if !held || pid != os.Getpid() {
		t.Errorf("Holder() = %d, %v; want %d, true", pid, held, os.Getpid())
	}

	_ = l.Release()
	if _, held := Holder(path); held {
		t.Error("Holder() after Release reports held")
	}
}

func TestStaleFileIsNotHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tui.lock")
	if err := os.WriteFile(path, []byte("pid=999999\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, held := Holder(path); held {
		t.Error("stale lock file reported as held")
	}
	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() over stale file error = %v", err)
	}
	_ = l.Release()
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Errorf("nil Release() error = %v", err)
	}
	if l.Path() != "" {
		t.Error("nil Path() should be empty")
	}
}

func TestReleaseIdempotent(t *testing.T) {
	l, err := Acquire(filepath.Join(t.TempDir(), "tui.lock"))
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("first Release() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
}
