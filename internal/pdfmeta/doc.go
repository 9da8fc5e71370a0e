// Package pdfmeta reads and scrubs the document information dictionary of a
// PDF. Reading goes through github.com/ledongthuc/pdf; scrubbing rebuilds
// the document with github.com/pdfcpu/pdfcpu.
package pdfmeta
