// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldcode

import (
	"fmt"
	"iter"
	"math/bits"
	"strings"
)

// OpSet is a bitmap of opcodes.
// Only opcodes below 64 (the range of [ImmediateInstruction]) can be members.
// The zero value is an empty set.
type OpSet uint64

const opSetSize = 64

// NewOpSet returns a new set that contains the arguments passed to it.
func NewOpSet(ops ...OpCode) OpSet {
	var s OpSet
	s.Add(ops...)
	return s
}

// PrimitiveOps returns the set of all primitive opcodes.
func PrimitiveOps() OpSet {
	var s OpSet
	for _, op := range OpCodes() {
		if op.IsPrimitive() {
			s.Add(op)
		}
	}
	return s
}

// CombinatorOps returns the set of all combinator opcodes.
func CombinatorOps() OpSet {
	var s OpSet
	for _, op := range OpCodes() {
		if op.IsCombinator() {
			s.Add(op)
		}
	}
	return s
}

// AllOps returns the set of all valid opcodes except [OpNop].
func AllOps() OpSet {
	return NewOpSet(OpCodes()...)
}

// Add adds the arguments to the set.
// Add panics if an opcode is 64 or above.
func (s *OpSet) Add(ops ...OpCode) {
	for _, op := range ops {
		if op >= opSetSize {
			panic("opcode out of range for OpSet")
		}
		*s |= 1 << op
	}
}

// Delete removes op from the set if present.
func (s *OpSet) Delete(op OpCode) {
	if op < opSetSize {
		*s &^= 1 << op
	}
}

// Has reports whether the set contains op.
func (s OpSet) Has(op OpCode) bool {
	return op < opSetSize && s&(1<<op) != 0
}

// Len returns the number of opcodes in the set.
func (s OpSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// All returns an iterator of the opcodes in s in ascending order.
func (s OpSet) All() iter.Seq[OpCode] {
	return func(yield func(OpCode) bool) {
		for w := uint64(s); w != 0; w &= w - 1 {
			if !yield(OpCode(bits.TrailingZeros64(w))) {
				return
			}
		}
	}
}

// String returns the comma-separated mnemonics of the set's opcodes.
func (s OpSet) String() string {
	sb := new(strings.Builder)
	for op := range s.All() {
		if sb.Len() > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(op.String())
	}
	return sb.String()
}

// MarshalText returns the same text as [OpSet.String].
func (s OpSet) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText replaces s with the set parsed by [ParseOpSet].
func (s *OpSet) UnmarshalText(text []byte) error {
	parsed, err := ParseOpSet(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseOpSet parses a comma-separated list of opcode mnemonics.
// The names "all", "primitives", and "combinators" stand for
// [AllOps], [PrimitiveOps], and [CombinatorOps] respectively.
// A name prefixed with "-" removes the opcode or group from the set
// built so far.
func ParseOpSet(text string) (OpSet, error) {
	var s OpSet
	for field := range strings.SplitSeq(text, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		name, remove := strings.CutPrefix(field, "-")
		var group OpSet
		switch strings.ToLower(name) {
		case "all":
			group = AllOps()
		case "primitives":
			group = PrimitiveOps()
		case "combinators":
			group = CombinatorOps()
		default:
			op, ok := ParseOpCode(name)
			if !ok || op == OpNop {
				return 0, fmt.Errorf("parse opcode set: unknown opcode %q", name)
			}
			group = NewOpSet(op)
		}
		if remove {
			s &^= group
		} else {
			s |= group
		}
	}
	return s, nil
}
