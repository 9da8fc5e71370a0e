package shredder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/unformat/shredder/internal/batch"
	"github.com/unformat/shredder/internal/report"
	"github.com/unformat/shredder/internal/types"
)

var flagNoDefaultExcludes bool

func init() {
	cmd := &cobra.Command{
		Use:   "clean <paths...>",
		Short: "Write cleaned CLEAN_<name> copies of files and directories",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runClean,
	}
	cmd.Flags().String("out", "", "write cleaned files under this directory (layout preserved)")
	cmd.Flags().String("include", "", "comma-separated globs to include")
	cmd.Flags().String("exclude", "", "comma-separated globs to exclude")
	cmd.Flags().Int("threads", 0, "worker count (0 = GOMAXPROCS)")
	cmd.Flags().Bool("dry-run", false, "inspect only; report what would change")
	cmd.Flags().Int64("max-bytes", 0, "skip files larger than this")
	cmd.Flags().BoolVar(&flagNoDefaultExcludes, "no-default-excludes", false, "do not skip VCS, dependency and build directories")
	rootCmd.AddCommand(cmd)
}

type cleanOutput struct {
	batch.Result
	Error string `json:"error,omitempty"`
}

func runClean(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stderr := cmd.ErrOrStderr()
	start := time.Now()
	results, err := batch.Run(ctx, newEngine(), args, batch.Options{
		Include:           s.Include,
		Exclude:           s.Exclude,
		MaxBytes:          s.MaxBytes,
		Threads:           s.Threads,
		OutDir:            s.OutDir,
		DryRun:            dryRun,
		NoDefaultExcludes: flagNoDefaultExcludes,
		Narrator: func(path string) types.Narrator {
			return stderrNarrator(stderr, s.Quiet, path)
		},
	})
	if err != nil {
		if batch.IsCanceled(err) {
			return fmt.Errorf("interrupted: %w", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		view := make([]cleanOutput, len(results))
		for i, r := range results {
			view[i] = cleanOutput{Result: r, Error: r.Error()}
		}
		if err := report.WriteJSON(out, view); err != nil {
			return err
		}
	} else {
		report.PrintBatch(out, results, report.PrintOptions{NoColor: noColor(s, out), Duration: time.Since(start)})
	}
	if n := batch.Failed(results); n > 0 {
		return fmt.Errorf("%d file(s) failed", n)
	}
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
