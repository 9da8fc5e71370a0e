package shredder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/unformat/shredder/internal/classify"
	"github.com/unformat/shredder/internal/config"
	"github.com/unformat/shredder/internal/engine"
	"github.com/unformat/shredder/internal/types"
)

// loadSettings resolves flag > env > local file > global file > default.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	env, err := config.LoadEnv(flagEnvFile)
	if err != nil {
		return config.Settings{}, err
	}
	var local config.FileConfig
	if cwd, err := os.Getwd(); err == nil {
		local, err = config.LoadLocal(cwd)
		if err != nil && !errors.Is(err, config.ErrNoConfig) {
			return config.Settings{}, fmt.Errorf("local config: %w", err)
		}
	}
	global, err := config.LoadGlobal()
	if err != nil && !errors.Is(err, config.ErrNoConfig) {
		return config.Settings{}, fmt.Errorf("global config: %w", err)
	}
	return config.Merge(flagLayer(cmd.Flags()), env, local, global).Resolve(), nil
}

// flagLayer turns explicitly set flags into a config layer.
func flagLayer(f *pflag.FlagSet) config.FileConfig {
	var fc config.FileConfig
	changed := func(name string) bool { return f.Lookup(name) != nil && f.Changed(name) }
	if changed("threads") {
		v, _ := f.GetInt("threads")
		fc.Threads = &v
	}
	if changed("no-color") {
		v, _ := f.GetBool("no-color")
		fc.NoColor = &v
	}
	if changed("quiet") {
		v, _ := f.GetBool("quiet")
		fc.Quiet = &v
	}
	if changed("out") {
		v, _ := f.GetString("out")
		fc.OutDir = &v
	}
	if changed("include") {
		v, _ := f.GetString("include")
		fc.Include = &v
	}
	if changed("exclude") {
		v, _ := f.GetString("exclude")
		fc.Exclude = &v
	}
	if changed("max-bytes") {
		v, _ := f.GetInt64("max-bytes")
		fc.MaxBytes = &v
	}
	if changed("fail-on") {
		v, _ := f.GetString("fail-on")
		fc.FailOn = &v
	}
	if changed("addr") {
		v, _ := f.GetString("addr")
		fc.ServeAddr = &v
	}
	return fc
}

func newEngine() *engine.Engine { return engine.New() }

// noColor disables color when asked to or when w is not a terminal.
func noColor(s config.Settings, w io.Writer) bool {
	if s.NoColor {
		return true
	}
	f, ok := w.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}

// stderrNarrator prints narration lines to w unless quiet. Safe for
// concurrent use.
func stderrNarrator(w io.Writer, quiet bool, prefix string) types.Narrator {
	if quiet {
		return types.Discard
	}
	return func(msg string) {
		narrateMu.Lock()
		defer narrateMu.Unlock()
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, msg)
			return
		}
		fmt.Fprintln(w, msg)
	}
}

var narrateMu sync.Mutex

// readInput loads a file from disk and sniffs its media type.
func readInput(path string, maxBytes int64) (engine.File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return engine.File{}, err
	}
	if st.IsDir() {
		return engine.File{}, fmt.Errorf("%s is a directory (use clean for batches)", path)
	}
	if maxBytes > 0 && st.Size() > maxBytes {
		return engine.File{}, fmt.Errorf("%s: %d bytes exceeds max-bytes %d", path, st.Size(), maxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.File{}, err
	}
	name := filepath.Base(path)
	return engine.File{Name: name, MIME: classify.Sniff(data, name), Data: data}, nil
}
