// Package undo provides a bounded undo stack. The capacity is an explicit
// parameter so the undo depth is visible and testable rather than an
// implicit convention of the caller.
package undo

// Stack holds up to capacity entries. Pushing past the bound drops the
// oldest entry, so the stack always retains the most recent operations.
type Stack[T any] struct {
	entries  []T
	capacity int
}

// NewStack creates a Stack with the given capacity. A capacity below 1 is
// treated as 1.
func NewStack[T any](capacity int) *Stack[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Stack[T]{capacity: capacity}
}

// Push records an entry, evicting the oldest one if the bound is reached.
func (s *Stack[T]) Push(entry T) {
	if len(s.entries) == s.capacity {
		copy(s.entries, s.entries[1:])
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.entries = append(s.entries, entry)
}

// Pop removes and returns the most recent entry. The second return value
// is false when the stack is empty.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.entries) == 0 {
		return zero, false
	}
	entry := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return entry, true
}

// Len returns the number of stored entries.
func (s *Stack[T]) Len() int {
	return len(s.entries)
}

// Capacity returns the configured bound.
func (s *Stack[T]) Capacity() int {
	return s.capacity
}

// Clear drops all stored entries.
func (s *Stack[T]) Clear() {
	s.entries = s.entries[:0]
}
