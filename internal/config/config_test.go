package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := &Config{DefaultSession: "work", ProbeTimeout: Duration(3 * time.Second), LogLevel: "debug"}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

func TestSaveWritesDurationString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `probe_timeout = "10s"`) {
		t.Errorf("saved config:\n%s\nwant probe_timeout = \"10s\"", raw)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("/nonexistent/config.toml"); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadOrDefaultMissing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Timeout() != DefaultProbeTimeout || cfg.LogLevel != "info" || cfg.DefaultSession != "" {
		t.Errorf("LoadOrDefault() = %+v, want defaults", cfg)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`default_session = "work"`+"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultSession != "work" {
		t.Errorf("DefaultSession = %q, want work", cfg.DefaultSession)
	}
	if cfg.Timeout() != DefaultProbeTimeout {
		t.Errorf("Timeout() = %s, want %s", cfg.Timeout(), DefaultProbeTimeout)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad duration", `probe_timeout = "soon"`},
		{"negative duration", `probe_timeout = "-1s"`},
		{"bad level", `log_level = "loud"`},
		{"bad toml", `default_session = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.body+"\n"), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("Load(%q) expected error", tt.body)
			}
			if _, err := LoadOrDefault(path); err == nil {
				t.Errorf("LoadOrDefault(%q) expected error", tt.body)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := (&Config{LogLevel: tt.in}).Level()
		if err != nil {
			t.Errorf("Level(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Level(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTimeoutZeroUsesDefault(t *testing.T) {
	if got := (&Config{}).Timeout(); got != DefaultProbeTimeout {
		t.Errorf("Timeout() = %s, want %s", got, DefaultProbeTimeout)
	}
}

func TestSavePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := Save(path, &Config{DefaultSession: "main"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
