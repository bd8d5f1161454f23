package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirDefault(t *testing.T) {
	t.Setenv(HomeEnv, "")
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".evowpp", "sessions", "main"), Dir("main"))
}

func TestPathsUnderHomeOverride(t *testing.T) {
	base := t.TempDir()
	t.Setenv(HomeEnv, base)

	assert.Equal(t, filepath.Join(base, "sessions", "work", "evo.db"), StorePath("work"))
	assert.Equal(t, filepath.Join(base, "sessions", "work", "logs", "evo.log"), LogPath("work"))
	assert.Equal(t, filepath.Join(base, "config.toml"), ConfigPath())
}

func TestEnsureDir(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())

	require.NoError(t, EnsureDir("test"))
	for _, d := range []string{Dir("test"), LogDir("test")} {
		info, err := os.Stat(d)
		require.NoError(t, err, d)
		assert.True(t, info.IsDir(), d)
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm(), d)
	}
}
