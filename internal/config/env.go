package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment key.
const EnvPrefix = "SHREDDER_"

// LoadEnv reads SHREDDER_* keys from the dotenv file at path (skipped when
// path is empty or missing) and from the process environment. Process values
// win over file values.
func LoadEnv(path string) (FileConfig, error) {
	vals := map[string]string{}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			m, err := godotenv.Read(path)
			if err != nil {
				return FileConfig{}, fmt.Errorf("read %s: %w", path, err)
			}
			vals = m
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			return v, true
		}
		v, ok := vals[EnvPrefix+key]
		return v, ok
	}

	var cfg FileConfig
	var err error
	str := func(key string) *string {
		if v, ok := lookup(key); ok {
			return &v
		}
		return nil
	}
	boolean := func(key string) *bool {
		v, ok := lookup(key)
		if !ok || err != nil {
			return nil
		}
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			err = fmt.Errorf("%s%s: %w", EnvPrefix, key, perr)
			return nil
		}
		return &b
	}
	integer := func(key string) *int64 {
		v, ok := lookup(key)
		if !ok || err != nil {
			return nil
		}
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			err = fmt.Errorf("%s%s: %w", EnvPrefix, key, perr)
			return nil
		}
		return &n
	}

	if n := integer("THREADS"); n != nil {
		t := int(*n)
		cfg.Threads = &t
	}
	cfg.NoColor = boolean("NO_COLOR")
	cfg.Quiet = boolean("QUIET")
	cfg.OutDir = str("OUT_DIR")
	cfg.Include = str("INCLUDE")
	cfg.Exclude = str("EXCLUDE")
	cfg.MaxBytes = integer("MAX_BYTES")
	cfg.FailOn = str("FAIL_ON")
	cfg.ServeAddr = str("SERVE_ADDR")
	if err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}
