// Package config loads shredder settings from YAML files and a dotenv-style
// environment file, and merges them with CLI flags. Precedence, highest
// first: flag, environment, local file, global file, default.
package config
