// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldvm

// stack is a fixed-capacity operand stack.
// Accesses past either end are clamped instead of failing.
type stack struct {
	values []float32
	n      int
}

func newStack(capacity int) stack {
	return stack{values: make([]float32, max(capacity, minStackCapacity))}
}

// minStackCapacity is large enough for any single instruction.
const minStackCapacity = 2

func (s *stack) reset() {
	s.n = 0
}

func (s *stack) height() int {
	return s.n
}

// push adds v to the top of the stack.
// If the stack is full, v replaces the top value
// and push returns false.
func (s *stack) push(v float32) bool {
	if s.n >= len(s.values) {
		s.values[len(s.values)-1] = v
		return false
	}
	s.values[s.n] = v
	s.n++
	return true
}

// pop removes and returns the top value of the stack.
// If the stack is empty, pop returns (0, false).
func (s *stack) pop() (float32, bool) {
	if s.n == 0 {
		return 0, false
	}
	s.n--
	return s.values[s.n], true
}

// bottom returns the first value pushed onto the stack
// or zero if the stack is empty.
func (s *stack) bottom() float32 {
	if s.n == 0 {
		return 0
	}
	return s.values[0]
}
