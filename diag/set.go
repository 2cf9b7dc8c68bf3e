package diag

import (
	"strings"
	"sync"
)

// Set collects the diagnostics produced over the course of one resolution
// run. It is safe for concurrent use by parallel resolution stages: each
// worker appends through Add while the coordinator owns reading the
// final collection.
type Set struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewSet returns an empty diagnostic set.
func NewSet() *Set { return &Set{} }

// Add appends a diagnostic. Nil diagnostics are ignored so call sites can
// unconditionally call Add(maybeNil) without a guard.
func (s *Set) Add(d Diagnostic) {
	if d == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, d)
}

// Merge appends every diagnostic from other into s.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	other.mu.Lock()
	items := append([]Diagnostic(nil), other.items...)
	other.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
}

// All returns a snapshot of every diagnostic collected so far, in the
// order they were added.
func (s *Set) All() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Diagnostic(nil), s.items...)
}

// Fatal reports whether any collected diagnostic belongs to a fatal kind
// (ParseError, ParentSchemaCycle, ExtendsCycle). A fatal diagnostic means
// the overall run must fail even under best_effort.
func (s *Set) Fatal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.items {
		if d.Kind().IsFatal() {
			return true
		}
	}
	return false
}

// Empty reports whether no diagnostics at all were collected.
func (s *Set) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Error implements the error interface, joining every diagnostic's message
// with newlines, so a non-empty Set can be returned/wrapped as a plain Go
// error where that is more convenient than threading the Set explicitly.
func (s *Set) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return "no diagnostics"
	}
	var b strings.Builder
	for i, d := range s.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.Error())
	}
	return b.String()
}
