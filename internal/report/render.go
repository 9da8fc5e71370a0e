package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/unformat/shredder/internal/batch"
	"github.com/unformat/shredder/internal/types"
)

type PrintOptions struct {
	NoColor  bool
	File     string
	Category types.Category
	Duration time.Duration
}

// Counts tallies findings per risk, ignoring the STATUS entry.
type Counts struct {
	High, Medium, Low, None int
}

func (c Counts) Total() int { return c.High + c.Medium + c.Low + c.None }

func Count(findings []types.Finding) Counts {
	var c Counts
	for _, f := range findings {
		if f.Key == types.StatusKey {
			continue
		}
		switch f.Risk {
		case types.RiskHigh:
			c.High++
		case types.RiskMedium:
			c.Medium++
		case types.RiskLow:
			c.Low++
		default:
			c.None++
		}
	}
	return c
}

// PrintFindings renders one file's findings as a table followed by a summary.
func PrintFindings(w io.Writer, findings []types.Finding, opts PrintOptions) {
	if opts.File != "" {
		fmt.Fprintf(w, "%s (%s)\n", opts.File, opts.Category)
	}
	if len(findings) == 1 && findings[0].Key == types.StatusKey {
		fmt.Fprintf(w, "%s: %s ✅\n", types.StatusKey, findings[0].Value)
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header("Risk", "Key", "Value")
	for _, f := range findings {
		_ = table.Append([]string{riskLabel(f.Risk, opts.NoColor), f.Key, types.Truncate(f.Value, 60)})
	}
	_ = table.Render()

	c := Count(findings)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d (high: %d, medium: %d, low: %d, none: %d)\n", c.Total(), c.High, c.Medium, c.Low, c.None)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Inspection duration: %.2fs\n", opts.Duration.Seconds())
	}
}

// PrintBatch renders one row per file of a batch run.
func PrintBatch(w io.Writer, results []batch.Result, opts PrintOptions) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No files matched")
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header("File", "Type", "Risk", "Findings", "Result")
	cleaned, skipped := 0, 0
	for _, r := range results {
		status := r.Output
		switch {
		case r.Err != nil:
			status = errLabel("error: "+r.Err.Error(), opts.NoColor)
		case r.Skipped != "":
			status = "skipped: " + r.Skipped
			skipped++
		case r.Output == "" && r.Changed:
			status = "would clean"
		case r.Output == "":
			status = "clean"
		default:
			cleaned++
		}
		risk, count := "-", "-"
		if r.Skipped == "" && r.Err == nil {
			risk = riskLabel(r.MaxRisk(), opts.NoColor)
			count = fmt.Sprint(Count(r.Findings).Total())
		}
		_ = table.Append([]string{r.Path, r.Category.String(), risk, count, status})
	}
	_ = table.Render()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files: %d (cleaned: %d, skipped: %d, failed: %d)\n", len(results), cleaned, skipped, batch.Failed(results))
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Duration: %.2fs\n", opts.Duration.Seconds())
	}
}

func riskLabel(r types.Risk, noColor bool) string {
	if noColor {
		return r.String()
	}
	var c *color.Color
	switch r {
	case types.RiskHigh:
		c = color.New(color.FgRed, color.Bold)
	case types.RiskMedium:
		c = color.New(color.FgYellow)
	case types.RiskLow:
		c = color.New(color.FgCyan)
	default:
		c = color.New(color.Faint)
	}
	c.EnableColor()
	return c.Sprint(r.String())
}

func errLabel(s string, noColor bool) string {
	if noColor {
		return s
	}
	c := color.New(color.FgRed)
	c.EnableColor()
	return c.Sprint(s)
}
