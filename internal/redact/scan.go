package redact

import (
	"fmt"

	"github.com/unformat/shredder/internal/types"
)

const (
	maxNarratedMatches = 3
	matchPreviewLen    = 20
)

// Scan runs DetectionPatterns over text. Each pattern with at least one match
// yields one high-risk aggregate finding; the first few matches are narrated.
// Text without any match yields a single clean status finding.
func Scan(text string, narrate types.Narrator) []types.Finding {
	var out []types.Finding
	total := 0
	for _, p := range DetectionPatterns {
		matches := p.Re.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		out = append(out, types.Finding{
			Key:   p.Label,
			Value: fmt.Sprintf("Found %d instance(s)", len(matches)),
			Risk:  types.RiskHigh,
		})
		total += len(matches)
		for i, m := range matches {
			if i == maxNarratedMatches {
				break
			}
			narrate.Sayf("[RedFlag] SENSITIVE_DATA: %s -> %s", p.Label, types.Truncate(m, matchPreviewLen))
		}
	}
	if len(out) == 0 {
		narrate.Say("[INFO] TEXT_ANALYSIS_COMPLETE: CLEAN")
		return []types.Finding{types.StatusFinding("CLEAN")}
	}
	narrate.Sayf("[ALERT] TEXT_ANALYSIS_COMPLETE: %d ISSUES FOUND", total)
	return out
}
