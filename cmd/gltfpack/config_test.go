package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), defaultConfigPath), false)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.toml"), true)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[pack]
out_dir = "build"
variant = "geometry"
progress = false

[log]
level = "debug"

[watch]
debounce = "1s"
`), 0o644))

	cfg, err := loadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, "build", cfg.Pack.OutDir)
	assert.Equal(t, "geometry", cfg.Pack.Variant)
	assert.False(t, cfg.Pack.Progress)
	assert.Equal(t, defaultConfig().Pack.Workers, cfg.Pack.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Timestamps)

	d, err := cfg.Watch.debounce()
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[pack\nvariant = 1"), 0o644))

	_, err := loadConfig(path, true)
	assert.Error(t, err)
}

func TestFlagsOverlayConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[pack]
out_dir = "build"
variant = "geometry"
workers = 3
`), 0o644))

	f := &flags{}
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	f.register(set)
	require.NoError(t, set.Parse([]string{
		"-config", path, "-variant", "scene", "-quiet", "-debounce", "2s", "-log-level", "warn", "a.gltf",
	}))
	assert.Equal(t, []string{"a.gltf"}, set.Args())

	cfg, err := f.resolve()
	require.NoError(t, err)
	assert.Equal(t, "build", cfg.Pack.OutDir)
	assert.Equal(t, "scene", cfg.Pack.Variant)
	assert.Equal(t, 3, cfg.Pack.Workers)
	assert.False(t, cfg.Pack.Progress)
	assert.Equal(t, "warn", cfg.Log.Level)

	d, err := cfg.Watch.debounce()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
}

func TestParseArgsNeedsFiles(t *testing.T) {
	_, _, err := parseArgs("pack", []string{"-quiet"})
	assert.Error(t, err)

	f, files, err := parseArgs("pack", []string{"-o", "out.gltfpack", "in.glb"})
	require.NoError(t, err)
	assert.Equal(t, "out.gltfpack", f.output)
	assert.Equal(t, []string{"in.glb"}, files)
}

func TestDebounce(t *testing.T) {
	d, err := WatchConfig{}.debounce()
	require.NoError(t, err)
	assert.Equal(t, defaultDebounce, d)

	_, err = WatchConfig{Debounce: "soon"}.debounce()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(LogConfig{Level: "debug"})
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())

	_, err = newLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestAffected(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.gltf")
	b := filepath.Join(dir, "b.gltf")
	other := filepath.Join(t.TempDir(), "c.gltf")
	sources := []string{a, b, other}

	assert.Equal(t, []string{a}, affected(sources, a))
	assert.Equal(t, []string{a, b}, affected(sources, filepath.Join(dir, "mesh.bin")))
	assert.Empty(t, affected(sources, filepath.Join(dir, "notes.txt")))
}
