// Package engine routes a file to its format pipeline and runs inspection
// (what metadata or secrets does it carry) and redaction (produce a cleaned
// copy). The engine holds no per-call state and may be shared between
// goroutines. External consumers should use the facade in pkg/core.
package engine
