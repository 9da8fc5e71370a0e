// Package core provides a small, stable facade over shredder's internal
// engine for external integrations. It re-exports a narrow API surface so
// other programs can inspect and clean buffers without importing internal
// packages.
//
// Example:
//
//	f := core.File{Name: "photo.jpg", MIME: "image/jpeg", Data: data}
//	findings, err := core.Inspect(f, nil)
//	if err != nil { /* handle */ }
//	out, err := core.Redact(f, nil)
//	_ = core.MarshalFindings(os.Stdout, findings)
package core
