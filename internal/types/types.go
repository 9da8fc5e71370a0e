package types

import (
	"fmt"
	"sort"
	"strings"
)

// Category is the processing branch a file is routed to. It is computed once
// per file and never re-derived mid-pipeline.
type Category int

const (
	CatUnsupported Category = iota
	CatImage
	CatDocument
	CatText
)

func (c Category) String() string {
	switch c {
	case CatImage:
		return "image"
	case CatDocument:
		return "document"
	case CatText:
		return "text"
	default:
		return "unsupported"
	}
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(b []byte) error {
	switch string(b) {
	case "image":
		*c = CatImage
	case "document":
		*c = CatDocument
	case "text":
		*c = CatText
	case "unsupported":
		*c = CatUnsupported
	default:
		return fmt.Errorf("unknown category %q", b)
	}
	return nil
}

// Risk is a coarse-grained severity for a finding. The ordinal is used only
// for ordering.
type Risk int

const (
	RiskNone Risk = iota
	RiskLow
	RiskMedium
	RiskHigh
)

func (r Risk) String() string {
	switch r {
	case RiskHigh:
		return "high"
	case RiskMedium:
		return "medium"
	case RiskLow:
		return "low"
	default:
		return "none"
	}
}

// ParseRisk maps a risk name to its level.
func ParseRisk(s string) (Risk, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return RiskHigh, nil
	case "medium", "med":
		return RiskMedium, nil
	case "low":
		return RiskLow, nil
	case "none", "":
		return RiskNone, nil
	}
	return RiskNone, fmt.Errorf("unknown risk level %q", s)
}

func (r Risk) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Risk) UnmarshalText(b []byte) error {
	v, err := ParseRisk(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// StatusKey is the key of the synthetic finding emitted when nothing was found.
const StatusKey = "STATUS"

// Finding describes one discovered metadata item or sensitive-data pattern.
type Finding struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Risk  Risk   `json:"risk"`
}

// StatusFinding returns the synthetic "nothing found" finding.
func StatusFinding(value string) Finding {
	return Finding{Key: StatusKey, Value: value, Risk: RiskNone}
}

// SortFindings orders findings by descending risk, keeping encounter order
// for equal risks.
func SortFindings(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].Risk > fs[j].Risk })
}

// Narrator receives human-readable progress messages. It is advisory only:
// results never depend on it.
type Narrator func(message string)

// Discard is a Narrator that drops every message.
var Discard Narrator = func(string) {}

// Say forwards msg to n; a nil Narrator is a no-op.
func (n Narrator) Say(msg string) {
	if n != nil {
		n(msg)
	}
}

// Sayf formats and forwards a message.
func (n Narrator) Sayf(format string, args ...any) {
	if n != nil {
		n(fmt.Sprintf(format, args...))
	}
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
