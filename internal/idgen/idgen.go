// Package idgen allocates display-ordered order identifiers of the form
// OP-0001. A plain counter rather than uuid because the dashboard sorts
// orders by id.
package idgen

import (
	"fmt"
	"sync"
)

// Sequence hands out prefixed, zero-padded, strictly increasing ids.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequence creates a sequence starting at start.
func NewSequence(prefix string, start int) *Sequence {
	if start < 1 {
		start = 1
	}
	return &Sequence{prefix: prefix, next: start}
}

// Next returns the next identifier.
func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := fmt.Sprintf("%s-%04d", s.prefix, s.next)
	s.next++
	return id
}
