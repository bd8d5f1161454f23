package session

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the base directory when set.
const HomeEnv = "EVOWPP_HOME"

// BaseDir returns $EVOWPP_HOME, or ~/.evowpp.
func BaseDir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".evowpp")
}

// Dir returns the session-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "sessions", name)
}

// StorePath returns the session's SQLite database path.
func StorePath(name string) string {
	return filepath.Join(Dir(name), "evo.db")
}

// LogDir returns the log directory for a session.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the session log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "evo.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the session directory tree with proper permissions.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}

// LockPath returns the lock file held by the terminal UI of a session.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "tui.lock")
}
