// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldcode

import "fmt"

// Instruction is a single [CountEncoding] instruction word.
type Instruction uint32

const (
	sizeOp = 8
	posOp  = 0

	sizeChildCount = 8
	posChildCount  = posOp + sizeOp

	sizeConstCount = 8
	posConstCount  = posChildCount + sizeChildCount

	posReserved = posConstCount + sizeConstCount
)

// NewInstruction returns a new [Instruction] with the given fields.
// The counts are stored as-is,
// even if they disagree with [OpCode.Arity] or [OpCode.NumConstants].
func NewInstruction(op OpCode, childCount, constCount uint8) Instruction {
	return Instruction(op)<<posOp |
		Instruction(childCount)<<posChildCount |
		Instruction(constCount)<<posConstCount
}

// CountInstruction returns a new [Instruction] for op
// with the counts declared by the opcode table.
func CountInstruction(op OpCode) Instruction {
	return NewInstruction(op, uint8(op.Arity()), uint8(op.NumConstants()))
}

// OpCode returns the instruction's type.
func (i Instruction) OpCode() OpCode {
	return OpCode(i >> posOp)
}

// ChildCount returns the number of operand stack values
// the instruction declares that it consumes.
// The count is advisory: evaluation uses [OpCode.Arity],
// and a disagreeing count is reported as a mismatch.
func (i Instruction) ChildCount() uint8 {
	return uint8(i >> posChildCount)
}

// ConstCount returns the number of constants
// the instruction declares that it consumes.
// Like [Instruction.ChildCount], it is advisory.
func (i Instruction) ConstCount() uint8 {
	return uint8(i >> posConstCount)
}

// Reserved returns the unused top bits of the instruction.
// They are zero in a well-formed program.
func (i Instruction) Reserved() uint8 {
	return uint8(i >> posReserved)
}

// IsConsistent reports whether the instruction's counts
// match the opcode table.
// Unknown opcodes are always consistent, since they are skipped.
func (i Instruction) IsConsistent() bool {
	op := i.OpCode()
	if !op.IsValid() || op == OpNop {
		return true
	}
	return int(i.ChildCount()) == op.Arity() && int(i.ConstCount()) == op.NumConstants()
}

// String decodes the instruction.
func (i Instruction) String() string {
	return fmt.Sprintf("%-14v %d %d", i.OpCode(), i.ChildCount(), i.ConstCount())
}

// ImmediateInstruction is a single [ImmediateEncoding] instruction word.
type ImmediateInstruction uint32

const (
	sizeArg = 12
	maxArg  = 1<<sizeArg - 1

	posArg1 = 0
	posArg0 = posArg1 + sizeArg
	posK1   = posArg0 + sizeArg
	posK0   = posK1 + 1

	sizeImmediateOp = 6
	maxImmediateOp  = 1<<sizeImmediateOp - 1
	posImmediateOp  = posK0 + 1
)

// Operand is one of the two operand slots of an [ImmediateInstruction].
type Operand struct {
	// Constant is true if the operand is read from the constant pool.
	// Otherwise, the operand is popped from the operand stack
	// and Index is ignored.
	Constant bool
	// Index is the constant pool index.
	Index uint16
}

// StackOperand is the [Operand] that pops its value from the operand stack.
var StackOperand = Operand{}

// ConstantOperand returns an [Operand] that reads the i'th constant.
// ConstantOperand panics if i cannot be encoded.
func ConstantOperand(i int) Operand {
	if i < 0 || i > maxArg {
		panic("constant index out of range")
	}
	return Operand{Constant: true, Index: uint16(i)}
}

// String formats the operand as "k[i]" or "stack".
func (arg Operand) String() string {
	if !arg.Constant {
		return "stack"
	}
	return fmt.Sprintf("k[%d]", arg.Index)
}

// NewImmediateInstruction returns a new [ImmediateInstruction]
// with the given arguments.
// NewImmediateInstruction panics if op does not fit in six bits
// or either operand index does not fit in twelve bits.
func NewImmediateInstruction(op OpCode, arg0, arg1 Operand) ImmediateInstruction {
	if op > maxImmediateOp {
		panic("NewImmediateInstruction with OpCode out of range")
	}
	if arg0.Index > maxArg || arg1.Index > maxArg {
		panic("NewImmediateInstruction argument out of range")
	}
	i := ImmediateInstruction(op)<<posImmediateOp |
		ImmediateInstruction(arg0.Index)<<posArg0 |
		ImmediateInstruction(arg1.Index)<<posArg1
	if arg0.Constant {
		i |= 1 << posK0
	}
	if arg1.Constant {
		i |= 1 << posK1
	}
	return i
}

// OpCode returns the instruction's type.
func (i ImmediateInstruction) OpCode() OpCode {
	return OpCode(i >> posImmediateOp)
}

// Arg returns the n'th (0 or 1) operand slot.
// Arg panics if n is out of range.
func (i ImmediateInstruction) Arg(n int) Operand {
	switch n {
	case 0:
		return Operand{
			Constant: i&(1<<posK0) != 0,
			Index:    uint16(i>>posArg0) & maxArg,
		}
	case 1:
		return Operand{
			Constant: i&(1<<posK1) != 0,
			Index:    uint16(i>>posArg1) & maxArg,
		}
	default:
		panic("ImmediateInstruction.Arg index out of range")
	}
}

// StackInputs returns the number of values
// the instruction pops from the operand stack.
func (i ImmediateInstruction) StackInputs() int {
	n := 0
	for slot := range i.OpCode().Arity() {
		if !i.Arg(slot).Constant {
			n++
		}
	}
	return n
}

// IsEncodable reports whether the instruction's opcode
// can be expressed in [ImmediateEncoding].
// Instructions that are not encodable are treated as padding.
func (i ImmediateInstruction) IsEncodable() bool {
	_, ok := i.OpCode().ParameterSlot()
	return ok
}

// String decodes the instruction.
func (i ImmediateInstruction) String() string {
	return fmt.Sprintf("%-14v %v %v", i.OpCode(), i.Arg(0), i.Arg(1))
}
