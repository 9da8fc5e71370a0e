package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape. Nil fields are unset
// and fall through to the next layer.
type FileConfig struct {
	Threads   *int    `yaml:"threads,omitempty"`
	NoColor   *bool   `yaml:"no_color,omitempty"`
	Quiet     *bool   `yaml:"quiet,omitempty"`
	OutDir    *string `yaml:"out_dir,omitempty"`
	Include   *string `yaml:"include,omitempty"`
	Exclude   *string `yaml:"exclude,omitempty"`
	MaxBytes  *int64  `yaml:"max_bytes,omitempty"`
	FailOn    *string `yaml:"fail_on,omitempty"`
	ServeAddr *string `yaml:"serve_addr,omitempty"`
}

// ErrNoConfig is returned by LoadLocal and LoadGlobal when no file exists.
var ErrNoConfig = errors.New("config: no config file")

// Defaults.
const (
	DefaultMaxBytes  int64 = 64 << 20
	DefaultServeAddr       = "127.0.0.1:8787"
)

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LocalNames are searched in order by LoadLocal.
var LocalNames = []string{".shredder.yml", ".shredder.yaml", "shredder.yml", "shredder.yaml"}

// LoadLocal searches for a project-local config file in dir.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, ErrNoConfig
}

// GlobalPath returns $XDG_CONFIG_HOME/shredder/config.yml (or the ~/.config
// equivalent).
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "shredder", "config.yml"), nil
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	p, err := GlobalPath()
	if err != nil {
		return cfg, ErrNoConfig
	}
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, ErrNoConfig
}

// Merge layers configs; for each field the first non-nil value wins, so pass
// the highest-precedence layer first.
func Merge(layers ...FileConfig) FileConfig {
	var out FileConfig
	for _, l := range layers {
		if out.Threads == nil {
			out.Threads = l.Threads
		}
		if out.NoColor == nil {
			out.NoColor = l.NoColor
		}
		if out.Quiet == nil {
			out.Quiet = l.Quiet
		}
		if out.OutDir == nil {
			out.OutDir = l.OutDir
		}
		if out.Include == nil {
			out.Include = l.Include
		}
		if out.Exclude == nil {
			out.Exclude = l.Exclude
		}
		if out.MaxBytes == nil {
			out.MaxBytes = l.MaxBytes
		}
		if out.FailOn == nil {
			out.FailOn = l.FailOn
		}
		if out.ServeAddr == nil {
			out.ServeAddr = l.ServeAddr
		}
	}
	return out
}

// Settings is a fully resolved configuration.
type Settings struct {
	Threads   int
	NoColor   bool
	Quiet     bool
	OutDir    string
	Include   string
	Exclude   string
	MaxBytes  int64
	FailOn    string
	ServeAddr string
}

// Resolve fills unset fields with defaults.
func (fc FileConfig) Resolve() Settings {
	s := Settings{MaxBytes: DefaultMaxBytes, ServeAddr: DefaultServeAddr}
	if fc.Threads != nil {
		s.Threads = *fc.Threads
	}
	if fc.NoColor != nil {
		s.NoColor = *fc.NoColor
	}
	if fc.Quiet != nil {
		s.Quiet = *fc.Quiet
	}
	if fc.OutDir != nil {
		s.OutDir = *fc.OutDir
	}
	if fc.Include != nil {
		s.Include = *fc.Include
	}
	if fc.Exclude != nil {
		s.Exclude = *fc.Exclude
	}
	if fc.MaxBytes != nil {
		s.MaxBytes = *fc.MaxBytes
	}
	if fc.FailOn != nil {
		s.FailOn = *fc.FailOn
	}
	if fc.ServeAddr != nil {
		s.ServeAddr = *fc.ServeAddr
	}
	return s
}
