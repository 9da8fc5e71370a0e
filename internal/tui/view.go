package tui

import (
	"fmt"
	"strings"

	"github.com/unformat/shredder/internal/report"
	"github.com/unformat/shredder/internal/session"
	"github.com/unformat/shredder/internal/types"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.sess.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("SHREDDER"))
	b.WriteString(stageStyle.Render(strings.ToUpper(st.Stage.String())))
	if st.File != "" {
		b.WriteString(hintStyle.Render(fmt.Sprintf("  %s (%s, %s)", st.File, st.Category, report.FormatBytes(st.Size, 2))))
	}
	b.WriteString("\n\n")

	switch {
	case m.busy:
		verb := "INSPECTING"
		if st.Stage == session.StageShredding {
			verb = "SHREDDING"
		}
		fmt.Fprintf(&b, "%s %s...\n", m.spinner.View(), verb)
	case st.Stage == session.StageIdle:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("enter: inspect | esc: quit"))
		b.WriteString("\n")
	default:
		b.WriteString(paneBorderStyle.Render(m.table.View()))
		b.WriteString("\n")
		b.WriteString(riskSummary(st.Findings))
		b.WriteString("\n")
		if st.Output != nil {
			b.WriteString(titleStyle.Render("OUTPUT " + st.Output.Name))
			b.WriteString("\n")
			b.WriteString(paneBorderStyle.Render(m.preview.View()))
			b.WriteString("\n")
		}
	}

	if len(st.Log) > 0 {
		b.WriteString(titleStyle.Render("LOG"))
		b.WriteString("\n")
		b.WriteString(paneBorderStyle.Render(m.logView.View()))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(" " + m.status + " "))
	}
	return b.String()
}

// riskSummary renders per-risk counts; the status finding is not counted.
func riskSummary(fs []types.Finding) string {
	c := report.Count(fs)
	parts := []string{
		riskStyle(types.RiskHigh).Render(fmt.Sprintf("%d high", c.High)),
		riskStyle(types.RiskMedium).Render(fmt.Sprintf("%d medium", c.Medium)),
		riskStyle(types.RiskLow).Render(fmt.Sprintf("%d low", c.Low)),
		riskStyle(types.RiskNone).Render(fmt.Sprintf("%d none", c.None)),
	}
	return strings.Join(parts, "  ")
}
