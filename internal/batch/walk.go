package batch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

// target is one file selected for processing.
type target struct {
	path string // path on disk
	rel  string // path relative to its root, used for globs and OutDir layout
	size int64
}

// collect expands roots into targets in walk order. Explicitly named files
// bypass the glob filters; files found under directories do not.
func collect(ctx context.Context, roots []string, opts Options) ([]target, error) {
	include, exclude := ParseGlobs(opts.Include), ParseGlobs(opts.Exclude)
	var out []target
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, target{path: root, rel: filepath.Base(root), size: info.Size()})
			continue
		}
		ignored, err := LoadIgnore(root)
		if err != nil {
			return nil, err
		}
		excl := append(append([]string(nil), exclude...), ignored...)
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			name := d.Name()
			if d.IsDir() {
				if p != root && !opts.NoDefaultExcludes && isDefaultDirExcluded(name) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || isCleanOutput(name) || name == IgnoreFile {
				return nil
			}
			if !opts.NoDefaultExcludes && isDefaultFileExcluded(name) {
				return nil
			}
			rel, _ := filepath.Rel(root, p)
			if !allowedByGlobs(rel, include, excl) {
				return nil
			}
			var size int64
			if fi, err := d.Info(); err == nil {
				size = fi.Size()
			}
			out = append(out, target{path: p, rel: rel, size: size})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
