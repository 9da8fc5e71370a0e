package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "shredder.yaml", "threads: 4\nmax_bytes: 123\nno_color: true\nfail_on: high\ninclude: \"**/*.log\"\n")
	cfg, err := LoadFile(p)
	require.NoError(t, err)
	require.NotNil(t, cfg.Threads)
	assert.Equal(t, 4, *cfg.Threads)
	assert.Equal(t, int64(123), *cfg.MaxBytes)
	assert.True(t, *cfg.NoColor)
	assert.Equal(t, "high", *cfg.FailOn)
	assert.Equal(t, "**/*.log", *cfg.Include)
	assert.Nil(t, cfg.ServeAddr)
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "shredder.yaml", "threads: [nope\n")
	_, err := LoadFile(p)
	assert.Error(t, err)
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "shredder.yaml", "threads: 1\n")
	writeTemp(t, dir, ".shredder.yaml", "threads: 7\n")
	cfg, err := LoadLocal(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, *cfg.Threads)
}

func TestLoadLocal_NoConfig(t *testing.T) {
	_, err := LoadLocal(t.TempDir())
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shredder"), 0o755))
	writeTemp(t, filepath.Join(dir, "shredder"), "config.yml", "threads: 9\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	require.NoError(t, err)
	assert.Equal(t, 9, *cfg.Threads)
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	_, err := LoadGlobal()
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestLoadEnv_FileAndProcess(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, ".env", "SHREDDER_THREADS=3\nSHREDDER_OUT_DIR=/tmp/clean\nSHREDDER_QUIET=true\nOTHER=x\n")
	t.Setenv("SHREDDER_OUT_DIR", "/srv/out")

	cfg, err := LoadEnv(p)
	require.NoError(t, err)
	assert.Equal(t, 3, *cfg.Threads)
	assert.Equal(t, "/srv/out", *cfg.OutDir, "process environment wins over the file")
	assert.True(t, *cfg.Quiet)
	assert.Nil(t, cfg.FailOn)
}

func TestLoadEnv_MissingFileAndBadValue(t *testing.T) {
	cfg, err := LoadEnv(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Threads)

	t.Setenv("SHREDDER_MAX_BYTES", "lots")
	_, err = LoadEnv("")
	assert.ErrorContains(t, err, "SHREDDER_MAX_BYTES")
}

func TestMergeAndResolve(t *testing.T) {
	one, two, three := 1, 2, 3
	addr := "127.0.0.1:9000"
	flags := FileConfig{Threads: &one}
	env := FileConfig{Threads: &two, ServeAddr: &addr}
	local := FileConfig{Threads: &three}

	s := Merge(flags, env, local).Resolve()
	assert.Equal(t, 1, s.Threads)
	assert.Equal(t, addr, s.ServeAddr)
	assert.Equal(t, DefaultMaxBytes, s.MaxBytes)

	s = Merge().Resolve()
	assert.Equal(t, DefaultServeAddr, s.ServeAddr)
	assert.Zero(t, s.Threads)
}
