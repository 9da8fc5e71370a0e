// Package shredder provides the command-line interface for the shredder
// tool. It wires subcommands (inspect, clean, tui, serve, sample, etc.),
// resolves configuration layers, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/unformat/shredder/cmd/shredder"
//	func main() { shredder.Execute() }
package shredder
