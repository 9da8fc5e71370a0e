package shredder

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unformat/shredder/internal/config"
	"github.com/unformat/shredder/internal/engine"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the root command in-process from an isolated working
// directory.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func writeSamples(t *testing.T, dir string) {
	t.Helper()
	_, stderr, err := runCLI(t, "sample", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "sample.pdf")
	for _, name := range []string{"sample.pdf", "sample.jpg", "sample.log"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}
}

func TestInspect_JSON(t *testing.T) {
	dir := isolate(t)
	writeSamples(t, dir)

	stdout, stderr, err := runCLI(t, "inspect", "--json", filepath.Join(dir, "sample.pdf"))
	require.NoError(t, err)
	assert.Contains(t, stderr, "[PROCESS] INSPECTING_PDF_STREAM...")

	var got inspectOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "sample.pdf", got.File)
	assert.Len(t, got.Fingerprint, 16)
	found := false
	for _, f := range got.Findings {
		if f.Key == "Author" {
			found = true
			assert.Equal(t, "John Doe (CEO)", f.Value)
		}
	}
	assert.True(t, found, "Author finding present")
	assert.Contains(t, stdout, `"category": "document"`)
}

func TestInspect_TableAndQuiet(t *testing.T) {
	dir := isolate(t)
	writeSamples(t, dir)

	stdout, stderr, err := runCLI(t, "inspect", "--quiet", filepath.Join(dir, "sample.log"))
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "IPv4 Address")
	assert.Contains(t, stdout, "Findings:")
}

func TestInspect_FailOnGate(t *testing.T) {
	dir := isolate(t)
	writeSamples(t, dir)
	pdf := filepath.Join(dir, "sample.pdf")

	_, _, err := runCLI(t, "inspect", "--quiet", "--fail-on", "medium", pdf)
	assert.ErrorIs(t, err, errGate)

	_, _, err = runCLI(t, "inspect", "--quiet", "--fail-on", "high", pdf)
	assert.NoError(t, err)

	_, _, err = runCLI(t, "inspect", "--quiet", "--fail-on", "severe", pdf)
	require.Error(t, err)
	assert.False(t, errors.Is(err, errGate))
}

func TestInspect_FailOnFromEnvFile(t *testing.T) {
	dir := isolate(t)
	writeSamples(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SHREDDER_FAIL_ON=low\n"), 0o644))

	_, _, err := runCLI(t, "inspect", "--quiet", filepath.Join(dir, "sample.pdf"))
	assert.ErrorIs(t, err, errGate)

	// an explicit flag beats the env file
	_, _, err = runCLI(t, "inspect", "--quiet", "--fail-on", "none", filepath.Join(dir, "sample.pdf"))
	assert.NoError(t, err)
}

func TestInspect_LocalConfigMaxBytes(t *testing.T) {
	dir := isolate(t)
	writeSamples(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".shredder.yml"), []byte("max_bytes: 10\n"), 0o644))

	_, _, err := runCLI(t, "inspect", "--quiet", filepath.Join(dir, "sample.log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds max-bytes")
}

func TestInspect_Unsupported(t *testing.T) {
	dir := isolate(t)
	p := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(p, []byte{0, 1, 2, 3}, 0o644))

	_, _, err := runCLI(t, "inspect", "--quiet", p)
	assert.ErrorIs(t, err, engine.ErrUnsupportedFileType)
}

func TestClean_DryRunThenWrite(t *testing.T) {
	dir := isolate(t)
	src := filepath.Join(dir, "in")
	writeSamples(t, src)

	stdout, _, err := runCLI(t, "clean", "--quiet", "--json", "--dry-run", src)
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, true, r["changed"], r["path"])
	}
	matches, _ := filepath.Glob(filepath.Join(src, "CLEAN_*"))
	assert.Empty(t, matches)

	out := filepath.Join(dir, "out")
	stdout, _, err = runCLI(t, "clean", "--quiet", "--out", out, src)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Files: 3 (cleaned: 3, skipped: 0, failed: 0)")
	cleaned, err := os.ReadFile(filepath.Join(out, "CLEAN_sample.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(cleaned), "10.0.4.17")
	assert.Contains(t, string(cleaned), "xxx.xxx.xxx.xxx")
	_, err = os.Stat(filepath.Join(out, "CLEAN_sample.pdf"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "CLEAN_sample.jpg"))
	assert.NoError(t, err)
}

func TestClean_BadGlob(t *testing.T) {
	dir := isolate(t)
	_, _, err := runCLI(t, "clean", "--include", "[", dir)
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	dir := isolate(t)
	p := filepath.Join(dir, "cfg.yml")

	stdout, _, err := runCLI(t, "config", "init", "--output", p, "--threads", "4", "--fail-on", "high")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote")

	fc, err := config.LoadFile(p)
	require.NoError(t, err)
	require.NotNil(t, fc.Threads)
	assert.Equal(t, 4, *fc.Threads)
	assert.Equal(t, "high", *fc.FailOn)
	assert.Equal(t, config.DefaultMaxBytes, *fc.MaxBytes)
	assert.Equal(t, config.DefaultServeAddr, *fc.ServeAddr)
	assert.Nil(t, fc.OutDir)

	_, _, err = runCLI(t, "config", "init", "--output", p)
	assert.ErrorContains(t, err, "--force")

	_, _, err = runCLI(t, "config", "init", "--output", p, "--force")
	assert.NoError(t, err)
}

func TestServe_RefusesPublicAddr(t *testing.T) {
	isolate(t)
	_, _, err := runCLI(t, "serve", "--addr", "0.0.0.0:8787")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-loopback")
}

func TestVersionAndCompletion(t *testing.T) {
	isolate(t)
	stdout, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "shredder "+version+"\n", stdout)

	stdout, _, err = runCLI(t, "completion", "bash")
	require.NoError(t, err)
	assert.True(t, strings.Contains(stdout, "shredder"))

	_, _, err = runCLI(t, "completion", "tcsh")
	assert.Error(t, err)
}
