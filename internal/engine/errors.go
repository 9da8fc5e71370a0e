package engine

import (
	"errors"
	"fmt"

	"github.com/unformat/shredder/internal/types"
)

// ErrUnsupportedFileType is returned when a file classifies as unsupported.
// Callers are expected to reject such files before inspection.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// DecodeError reports malformed or unparseable input.
type DecodeError struct {
	Category types.Category
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Category, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a failure to serialize the cleaned output.
type EncodeError struct {
	Category types.Category
	Err      error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Category, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
