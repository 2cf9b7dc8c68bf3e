// Package diag defines the structured, located diagnostics produced by
// every stage of the telemetry schema resolver.
package diag

import "fmt"

// Location records where a diagnostic originated: the source document
// (absolute path or URL) and, when known, the line/column within it.
type Location struct {
	Source string
	Line   int
	Column int
}

// String renders the location the way a compiler would: "source:line:col".
func (l Location) String() string {
	if l.Source == "" {
		return "<unknown>"
	}
	if l.Line <= 0 {
		return l.Source
	}
	if l.Column <= 0 {
		return fmt.Sprintf("%s:%d", l.Source, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.Source, l.Line, l.Column)
}
