// Package redact implements the text pipeline: detection patterns that report
// what sensitive data a text file holds, and the narrower replacement rules
// that mask it.
//
// The two pattern sets are intentionally different. DetectionPatterns favour
// recall so the user sees anything that might be sensitive; RedactionRules
// favour precision so cleaning never mangles unrelated text. Do not derive one
// from the other.
package redact
