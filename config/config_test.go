package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesPrecgraphDefaultPalette(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.POSIX)
	assert.Equal(t, "red", cfg.Palette.BothDegreeOne)
	assert.Equal(t, "black", cfg.Palette.Default)
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bisongo.toml")
	require.NoError(t, os.WriteFile(path, []byte("posix = false\n\n[palette]\nboth_degree_one = \"magenta\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.POSIX)
	assert.Equal(t, "magenta", cfg.Palette.BothDegreeOne)
	assert.Equal(t, "black", cfg.Palette.Default, "fields absent from the file keep the default")
}
