package redact

import (
	"bytes"
	"fmt"
	"io"

	"github.com/unformat/shredder/internal/types"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode turns raw file bytes into text. A UTF-16 or UTF-8 byte order mark
// selects the encoding; everything else is read as UTF-8 with invalid
// sequences replaced by U+FFFD.
func Decode(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), dec))
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}

// Apply runs every rule over text in order and returns the result together
// with the number of replacements made.
func Apply(text string, reps []Replacement) (string, int) {
	total := 0
	for _, r := range reps {
		n := len(r.Pattern.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		total += n
		text = r.Pattern.ReplaceAllString(text, r.Replace)
	}
	return text, total
}

// WouldChange reports whether applying reps would modify text.
func WouldChange(text string, reps []Replacement) bool {
	out, _ := Apply(text, reps)
	return out != text
}

// Redact decodes data, applies RedactionRules and returns UTF-8 output.
func Redact(data []byte, narrate types.Narrator) ([]byte, error) {
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}
	out, n := Apply(text, RedactionRules)
	narrate.Sayf("[INFO] MASKED_TOKENS: %d", n)
	narrate.Say("[SUCCESS] REDACTION_COMPLETE: PATTERNS_MASKED")
	return []byte(out), nil
}
