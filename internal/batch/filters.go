package batch

import (
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

var defaultExcludeDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".cache":       true,
}

// OS cruft that is never worth cleaning
var defaultExcludeFileNames = map[string]bool{
	".DS_Store":   true,
	"Thumbs.db":   true,
	"desktop.ini": true,
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name] || strings.HasPrefix(name, ".git")
}

func isDefaultFileExcluded(name string) bool {
	return defaultExcludeFileNames[name]
}

// isCleanOutput reports whether name is a previous run's output.
func isCleanOutput(name string) bool {
	return strings.HasPrefix(name, "CLEAN_")
}

// allowedByGlobs returns true if relPath passes the include/exclude globs.
// Include globs, if any, act as a positive filter; excludes are subtracted
// last. Globs match either the slash-separated relative path or its base name.
func allowedByGlobs(relPath string, include, exclude []string) bool {
	rp := filepath.ToSlash(relPath)
	if len(include) > 0 && !matchAnyGlob(rp, include) {
		return false
	}
	if len(exclude) > 0 && matchAnyGlob(rp, exclude) {
		return false
	}
	return true
}

// ParseGlobs splits a comma-separated glob list. Each glob is also added
// without a leading "./" or "**/" so that it matches top-level files.
func ParseGlobs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
		if t := trimGlobPrefix(p); t != p {
			out = append(out, t)
		}
	}
	return out
}

// ValidateGlobs reports the first malformed pattern.
func ValidateGlobs(globs []string) error {
	for _, g := range globs {
		if !doublestar.ValidatePattern(g) {
			return &GlobError{Pattern: g}
		}
	}
	return nil
}

// GlobError reports a malformed include/exclude pattern.
type GlobError struct{ Pattern string }

func (e *GlobError) Error() string { return "invalid glob pattern: " + e.Pattern }

func matchAnyGlob(p string, globs []string) bool {
	base := p
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		base = p[i+1:]
	}
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, p); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, base); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
