package batch

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFile is read from the top of every walked directory root.
const IgnoreFile = ".shredderignore"

// LoadIgnore reads exclude patterns from root/.shredderignore. One pattern per
// line; blank lines and '#' comments are skipped; a trailing '/' marks a
// directory. A missing file yields no patterns.
func LoadIgnore(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, IgnoreFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if dir, ok := strings.CutSuffix(line, "/"); ok {
			dir = trimGlobPrefix(dir)
			out = append(out, dir+"/**", "**/"+dir+"/**")
			continue
		}
		out = append(out, line)
		if t := trimGlobPrefix(line); t != line {
			out = append(out, t)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := ValidateGlobs(out); err != nil {
		return nil, err
	}
	return out, nil
}
