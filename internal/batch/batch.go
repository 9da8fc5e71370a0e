// Package batch cleans many files at once: it walks paths, filters them with
// doublestar globs, and runs inspection and redaction on a bounded worker
// pool. A failing file never aborts the batch.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	xxhash "github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/unformat/shredder/internal/classify"
	"github.com/unformat/shredder/internal/engine"
	"github.com/unformat/shredder/internal/redact"
	"github.com/unformat/shredder/internal/types"
)

// Options controls file selection and output.
type Options struct {
	Include           string // comma-separated globs
	Exclude           string // comma-separated globs
	MaxBytes          int64  // 0 means no limit
	Threads           int    // 0 means GOMAXPROCS
	OutDir            string // empty writes next to the source
	DryRun            bool
	NoDefaultExcludes bool
	// Narrator, when set, returns the narrator for one file. It is called
	// from worker goroutines.
	Narrator func(path string) types.Narrator
}

// Skip reasons.
const (
	SkipTooLarge    = "exceeds max bytes"
	SkipUnsupported = "unsupported file type"
)

// Result is the outcome for one file.
type Result struct {
	Path     string          `json:"path"`
	MIME     string          `json:"mime,omitempty"`
	Category types.Category  `json:"category"`
	Findings []types.Finding `json:"findings,omitempty"`
	Output   string          `json:"output,omitempty"`
	Digest   string          `json:"digest,omitempty"`
	// Changed is set in dry-run mode when cleaning would alter the file.
	Changed bool   `json:"changed,omitempty"`
	Skipped string `json:"skipped,omitempty"`
	Err     error  `json:"-"`
}

// Error returns the failure text, or "" on success.
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// MaxRisk is the highest risk among the findings.
func (r Result) MaxRisk() types.Risk {
	top := types.RiskNone
	for _, f := range r.Findings {
		if f.Risk > top {
			top = f.Risk
		}
	}
	return top
}

// Run processes every file under roots. Results come back in walk order.
// The returned error is set only for walk failures or cancellation.
func Run(ctx context.Context, eng *engine.Engine, roots []string, opts Options) ([]Result, error) {
	if err := ValidateGlobs(append(ParseGlobs(opts.Include), ParseGlobs(opts.Exclude)...)); err != nil {
		return nil, err
	}
	targets, err := collect(ctx, roots, opts)
	if err != nil {
		return nil, err
	}
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, t := range targets {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = processOne(eng, t, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func processOne(eng *engine.Engine, t target, opts Options) Result {
	res := Result{Path: t.path}
	if opts.MaxBytes > 0 && t.size > opts.MaxBytes {
		res.Skipped = SkipTooLarge
		return res
	}
	data, err := os.ReadFile(t.path)
	if err != nil {
		res.Err = err
		return res
	}
	name := filepath.Base(t.path)
	res.MIME = classify.Sniff(data, name)
	res.Category = eng.Classify(res.MIME, name)
	if res.Category == types.CatUnsupported {
		res.Skipped = SkipUnsupported
		return res
	}

	var narrate types.Narrator
	if opts.Narrator != nil {
		narrate = opts.Narrator(t.path)
	}
	f := engine.File{Name: name, MIME: res.MIME, Data: data}
	res.Findings, err = eng.Inspect(f, res.Category, narrate)
	if err != nil {
		res.Err = err
		return res
	}

	if opts.DryRun {
		res.Changed = wouldChange(f, res)
		return res
	}

	art, err := eng.Redact(f, res.Category, narrate)
	if err != nil {
		res.Err = err
		return res
	}
	out := outputPath(t, opts.OutDir)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		res.Err = err
		return res
	}
	if err := os.WriteFile(out, art.Data, 0o644); err != nil {
		res.Err = fmt.Errorf("write %s: %w", out, err)
		return res
	}
	res.Output = out
	res.Digest = fastHash(art.Data)
	return res
}

func wouldChange(f engine.File, res Result) bool {
	if res.Category == types.CatText {
		text, err := redact.Decode(f.Data)
		return err == nil && redact.WouldChange(text, redact.RedactionRules)
	}
	// images are always re-rendered; documents always get fresh dates
	return res.Category == types.CatImage || res.Category == types.CatDocument
}

func outputPath(t target, outDir string) string {
	clean := engine.CleanName(filepath.Base(t.path))
	if outDir == "" {
		return filepath.Join(filepath.Dir(t.path), clean)
	}
	return filepath.Join(outDir, filepath.Dir(t.rel), clean)
}

func fastHash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

// Failed counts results with an error.
func Failed(rs []Result) int {
	n := 0
	for _, r := range rs {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// IsCanceled reports whether err stems from context cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
