package core

import (
	"github.com/unformat/shredder/internal/classify"
	"github.com/unformat/shredder/internal/engine"
	"github.com/unformat/shredder/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	File        = engine.File
	Artifact    = engine.Artifact
	Finding     = types.Finding
	Category    = types.Category
	Risk        = types.Risk
	Narrator    = types.Narrator
	DecodeError = engine.DecodeError
	EncodeError = engine.EncodeError
)

const (
	Unsupported = types.CatUnsupported
	Image       = types.CatImage
	Document    = types.CatDocument
	Text        = types.CatText
)

const (
	RiskNone   = types.RiskNone
	RiskLow    = types.RiskLow
	RiskMedium = types.RiskMedium
	RiskHigh   = types.RiskHigh
)

// ErrUnsupportedFileType is returned for files no branch can handle.
var ErrUnsupportedFileType = engine.ErrUnsupportedFileType

var defaultEngine = engine.New()

// Classify routes a declared media type and file name to a category.
func Classify(mime, name string) Category { return classify.Classify(mime, name) }

// Sniff derives a media type from content and name when none was declared.
func Sniff(data []byte, name string) string { return classify.Sniff(data, name) }

// Inspect lists the findings for f. narrate may be nil.
func Inspect(f File, narrate Narrator) ([]Finding, error) {
	return defaultEngine.Inspect(f, Classify(f.MIME, f.Name), narrate)
}

// Redact returns a cleaned copy of f named CleanName(f.Name).
func Redact(f File, narrate Narrator) (Artifact, error) {
	return defaultEngine.Redact(f, Classify(f.MIME, f.Name), narrate)
}

// CleanName is the download name of a cleaned file.
func CleanName(name string) string { return engine.CleanName(name) }
