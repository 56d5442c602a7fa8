// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldvm

import (
	"fmt"
	"strings"
)

// FaultKind is an enumeration of conditions
// that [Machine.EvalChecked] reports.
type FaultKind uint8

// Defined [FaultKind] values.
const (
	// StackUnderflow is a pop from an empty operand stack.
	// The popped value is zero.
	StackUnderflow FaultKind = 1 + iota
	// StackOverflow is a push onto a full operand stack.
	// The pushed value replaces the top of the stack.
	StackOverflow
	// ConstantOverrun is a read past the end of the constant pool.
	// The read value is zero.
	ConstantOverrun
	// CountMismatch is a count-encoded instruction
	// whose child or constant count disagrees with its opcode
	// or whose reserved bits are set.
	// The opcode's declared counts are used.
	CountMismatch
	// NotEncodable is an immediate-encoded instruction
	// whose opcode cannot be expressed with two operand slots.
	// The instruction is skipped.
	NotEncodable
	// ParameterNotConstant is an immediate-encoded instruction
	// whose parameter slot is not flagged as a constant.
	// The slot's index is used anyway.
	ParameterNotConstant
	// FinalDepth is a program that leaves other than
	// exactly one value on the operand stack.
	FinalDepth
	// UnknownEncoding is a program with an unknown [fieldcode.Encoding].
	// Every instruction is treated as padding.
	UnknownEncoding
)

var faultKindNames = [...]string{
	StackUnderflow:       "stack underflow",
	StackOverflow:        "stack overflow",
	ConstantOverrun:      "constant pool overrun",
	CountMismatch:        "instruction counts mismatch",
	NotEncodable:         "opcode not encodable",
	ParameterNotConstant: "parameter slot not constant",
	FinalDepth:           "final stack depth",
	UnknownEncoding:      "unknown encoding",
}

// String returns a short description of the fault kind.
func (kind FaultKind) String() string {
	if int(kind) >= len(faultKindNames) || faultKindNames[kind] == "" {
		return fmt.Sprintf("FaultKind(%d)", uint8(kind))
	}
	return faultKindNames[kind]
}

// Fault is a recoverable condition encountered during evaluation.
type Fault struct {
	// PC is the index of the faulting instruction
	// or -1 if the fault applies to the whole program.
	PC   int
	Kind FaultKind
}

// String formats the fault like "[3] stack underflow".
func (f Fault) String() string {
	if f.PC < 0 {
		return f.Kind.String()
	}
	return fmt.Sprintf("[%d] %v", f.PC, f.Kind)
}

// FaultError is the error returned by [Machine.EvalChecked]
// when evaluation encountered one or more faults.
type FaultError struct {
	X, Y   float32
	Faults []Fault
}

// maxFaultsInMessage limits the number of faults that
// [*FaultError.Error] spells out.
const maxFaultsInMessage = 5

func (e *FaultError) Error() string {
	sb := new(strings.Builder)
	fmt.Fprintf(sb, "evaluate at (%g, %g): ", e.X, e.Y)
	for i, f := range e.Faults {
		if i >= maxFaultsInMessage {
			fmt.Fprintf(sb, " (and %d more)", len(e.Faults)-i)
			break
		}
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(f.String())
	}
	return sb.String()
}

// Has reports whether e contains a fault of the given kind.
func (e *FaultError) Has(kind FaultKind) bool {
	for _, f := range e.Faults {
		if f.Kind == kind {
			return true
		}
	}
	return false
}
