// Package classify maps a file's declared media type and name to the
// processing category that decides which inspection and redaction branch runs.
package classify

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"github.com/unformat/shredder/internal/types"
)

var textSuffixes = []string{".log", ".json", ".txt", ".sql", ".env"}

// Classify returns the category for a declared media type and file name.
// Rules are evaluated in order and the first match wins.
func Classify(declaredType, fileName string) types.Category {
	// Only the top-level type counts; "image" elsewhere in the string does not.
	if strings.HasPrefix(declaredType, "image/") || strings.HasSuffix(fileName, ".heic") || strings.HasSuffix(fileName, ".HEIC") {
		return types.CatImage
	}
	if declaredType == "application/pdf" {
		return types.CatDocument
	}
	if declaredType == "text/plain" || declaredType == "application/json" {
		return types.CatText
	}
	for _, s := range textSuffixes {
		if strings.HasSuffix(fileName, s) {
			return types.CatText
		}
	}
	return types.CatUnsupported
}

// sniffLen is the amount of leading content inspected by Sniff.
const sniffLen = 8192

// Sniff derives a media type for content that arrived without one (files read
// from disk). Magic numbers win, then the extension table, then a textual
// heuristic.
func Sniff(data []byte, fileName string) string {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	if ext := filepath.Ext(fileName); ext != "" {
		if t := mime.TypeByExtension(strings.ToLower(ext)); t != "" {
			if mt, _, err := mime.ParseMediaType(t); err == nil {
				return mt
			}
			return t
		}
	}
	if looksTextual(head) {
		return "text/plain"
	}
	return "application/octet-stream"
}

func looksTextual(b []byte) bool {
	if bytes.IndexByte(b, 0) >= 0 {
		return false
	}
	// a multi-byte rune may be cut at the sniff boundary
	for i := 0; i < utf8.UTFMax && len(b) > 0 && !utf8.Valid(b); i++ {
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}
