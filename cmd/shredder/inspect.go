package shredder

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/unformat/shredder/internal/report"
	"github.com/unformat/shredder/internal/session"
	"github.com/unformat/shredder/internal/types"
)

func init() {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "List the metadata and secrets found in a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	cmd.Flags().String("fail-on", "", "exit 1 when a finding reaches none|low|medium|high")
	cmd.Flags().Int64("max-bytes", 0, "refuse files larger than this")
	rootCmd.AddCommand(cmd)
}

type inspectOutput struct {
	File        string          `json:"file"`
	Size        int64           `json:"size"`
	Category    types.Category  `json:"category"`
	Fingerprint string          `json:"fingerprint"`
	Findings    []types.Finding `json:"findings"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	f, err := readInput(args[0], s.MaxBytes)
	if err != nil {
		return err
	}

	narrate := stderrNarrator(cmd.ErrOrStderr(), s.Quiet, "")
	sess := session.New(newEngine(), session.WithListener(func(e session.LogEntry) { narrate(e.Message) }))
	start := time.Now()
	findings, err := sess.Load(f)
	if err != nil {
		return err
	}
	st := sess.Snapshot()

	out := cmd.OutOrStdout()
	if flagJSON {
		if err := report.WriteJSON(out, inspectOutput{
			File:        st.File,
			Size:        st.Size,
			Category:    st.Category,
			Fingerprint: st.Fingerprint,
			Findings:    findings,
		}); err != nil {
			return err
		}
	} else {
		report.PrintFindings(out, findings, report.PrintOptions{
			NoColor:  noColor(s, out),
			File:     st.File,
			Category: st.Category,
			Duration: time.Since(start),
		})
	}

	trip, err := report.ShouldFail(findings, s.FailOn)
	if err != nil {
		return err
	}
	if trip {
		return errGate
	}
	return nil
}
