// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldcode

import (
	"errors"
	"fmt"
	"strings"
)

// Encoding identifies the bit-packing of a [Program]'s instruction words.
type Encoding uint8

// Defined encodings.
const (
	// CountEncoding is the self-describing encoding
	// whose words are [Instruction] values.
	CountEncoding Encoding = 1
	// ImmediateEncoding is the immediate-flag encoding
	// whose words are [ImmediateInstruction] values.
	ImmediateEncoding Encoding = 2
)

// Capacities of the uploaded program buffers.
const (
	// MaxInstructions is the capacity of the instruction buffer.
	MaxInstructions = 1024
	// MaxCountConstants is the capacity of the constant pool
	// in [CountEncoding].
	MaxCountConstants = 1024
	// MaxImmediateConstants is the capacity of the constant pool
	// in [ImmediateEncoding]: every 12-bit index is addressable.
	MaxImmediateConstants = maxArg + 1

	// DefaultInstructionCount is the instruction count
	// used by tools when none is configured.
	DefaultInstructionCount = 128
)

// IsValid reports whether e is one of the defined encodings.
func (e Encoding) IsValid() bool {
	return e == CountEncoding || e == ImmediateEncoding
}

// ConstantCapacity returns the maximum number of constants
// a program with the encoding may have.
func (e Encoding) ConstantCapacity() int {
	switch e {
	case CountEncoding:
		return MaxCountConstants
	case ImmediateEncoding:
		return MaxImmediateConstants
	default:
		return 0
	}
}

// String returns "count", "immediate", or "Encoding(n)".
func (e Encoding) String() string {
	switch e {
	case CountEncoding:
		return "count"
	case ImmediateEncoding:
		return "immediate"
	default:
		return fmt.Sprintf("Encoding(%d)", uint8(e))
	}
}

// MarshalText returns the encoding's name.
func (e Encoding) MarshalText() ([]byte, error) {
	if !e.IsValid() {
		return nil, fmt.Errorf("marshal encoding: unknown encoding %d", uint8(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText parses an encoding name.
// "a" and "b" are accepted as aliases for "count" and "immediate".
func (e *Encoding) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "count", "a":
		*e = CountEncoding
	case "immediate", "b":
		*e = ImmediateEncoding
	default:
		return fmt.Errorf("unmarshal encoding: unknown encoding %q", text)
	}
	return nil
}

// Program is an instruction stream paired with its constant pool.
// A Program must not be modified while it is being evaluated.
// Any number of goroutines may evaluate the same Program concurrently.
type Program struct {
	Encoding Encoding
	// Code is the fixed-length instruction stream.
	// Its length is the number of dispatch steps of every evaluation.
	// Words are [Instruction] or [ImmediateInstruction] values
	// depending on Encoding.
	Code      []uint32
	Constants []float32
}

// NewProgram returns a new program with n zeroed (padding) instructions.
// NewProgram panics if the encoding is unknown
// or n is not in the range [1, MaxInstructions].
func NewProgram(enc Encoding, n int) *Program {
	if !enc.IsValid() {
		panic("NewProgram with invalid Encoding")
	}
	if n < 1 || n > MaxInstructions {
		panic("NewProgram instruction count out of range")
	}
	return &Program{
		Encoding: enc,
		Code:     make([]uint32, n),
	}
}

// Len returns the number of instructions in the stream, including padding.
func (p *Program) Len() int {
	return len(p.Code)
}

// StackCapacity returns the operand stack size needed to evaluate p.
func (p *Program) StackCapacity() int {
	return 2 * len(p.Code)
}

// Instruction returns the word at pc as a [CountEncoding] instruction.
func (p *Program) Instruction(pc int) Instruction {
	return Instruction(p.Code[pc])
}

// ImmediateInstruction returns the word at pc
// as an [ImmediateEncoding] instruction.
func (p *Program) ImmediateInstruction(pc int) ImmediateInstruction {
	return ImmediateInstruction(p.Code[pc])
}

// OpCodeAt returns the opcode of the instruction at pc.
func (p *Program) OpCodeAt(pc int) OpCode {
	if p.Encoding == ImmediateEncoding {
		return p.ImmediateInstruction(pc).OpCode()
	}
	return p.Instruction(pc).OpCode()
}

// AddConstants appends values to the constant pool
// and returns the index of the first one.
func (p *Program) AddConstants(values ...float32) int {
	start := len(p.Constants)
	p.Constants = append(p.Constants, values...)
	return start
}

// Validate checks the structural limits of the program:
// a known encoding, an instruction count within capacity,
// a constant pool within capacity,
// instruction fields that agree with the opcode table,
// and constant operands that fall inside the pool.
// Validate does not check the operand stack discipline; see [Program.Check].
func (p *Program) Validate() error {
	if !p.Encoding.IsValid() {
		return fmt.Errorf("validate program: unknown encoding %d", uint8(p.Encoding))
	}
	if len(p.Code) == 0 || len(p.Code) > MaxInstructions {
		return fmt.Errorf("validate program: %d instructions (must be in [1, %d])", len(p.Code), MaxInstructions)
	}
	if n, capacity := len(p.Constants), p.Encoding.ConstantCapacity(); n > capacity {
		return fmt.Errorf("validate program: %d constants exceeds %v capacity %d", n, p.Encoding, capacity)
	}
	for pc := range p.Code {
		switch p.Encoding {
		case CountEncoding:
			i := p.Instruction(pc)
			if i.Reserved() != 0 {
				return fmt.Errorf("validate program: [%d] %v: reserved bits set", pc, i)
			}
			if !i.IsConsistent() {
				op := i.OpCode()
				return fmt.Errorf("validate program: [%d] %v: want %d children and %d constants",
					pc, i, op.Arity(), op.NumConstants())
			}
		case ImmediateEncoding:
			i := p.ImmediateInstruction(pc)
			op := i.OpCode()
			if !op.IsValid() || op == OpNop {
				continue
			}
			paramSlot, ok := op.ParameterSlot()
			if !ok {
				return fmt.Errorf("validate program: [%d] %v cannot be encoded with immediate operands", pc, op)
			}
			for slot := range 2 {
				arg := i.Arg(slot)
				switch {
				case slot == paramSlot:
					if !arg.Constant {
						return fmt.Errorf("validate program: [%d] %v: parameter slot %d is not a constant", pc, i, slot)
					}
					if end := int(arg.Index) + op.NumConstants(); end > len(p.Constants) {
						return fmt.Errorf("validate program: [%d] %v: parameters end at %d, past %d constants", pc, i, end, len(p.Constants))
					}
				case slot < op.Arity() && arg.Constant:
					if int(arg.Index) >= len(p.Constants) {
						return fmt.Errorf("validate program: [%d] %v: operand %d out of range", pc, i, slot)
					}
				}
			}
		}
	}
	return nil
}

// Analysis is the result of simulating a program's operand stack
// without evaluating it.
type Analysis struct {
	// MaxDepth is the highest operand stack height reached.
	MaxDepth int
	// FinalDepth is the operand stack height after the last instruction.
	FinalDepth int
	// ConstantsUsed is the number of constants consumed.
	// In [ImmediateEncoding], it is one past the highest index referenced.
	ConstantsUsed int
	// Underflows lists the instruction indices that
	// would read below the bottom of the stack.
	Underflows []int
	// Instructions is the number of non-padding instructions.
	Instructions int
}

// Analyze simulates the stack height bookkeeping of p.
func (p *Program) Analyze() *Analysis {
	a := new(Analysis)
	depth := 0
	for pc := range p.Code {
		op := p.OpCodeAt(pc)
		if !op.IsValid() || op == OpNop {
			continue
		}
		pops := op.Arity()
		if p.Encoding == ImmediateEncoding {
			i := p.ImmediateInstruction(pc)
			if !i.IsEncodable() {
				continue
			}
			pops = i.StackInputs()
			if slot, _ := op.ParameterSlot(); slot >= 0 {
				a.ConstantsUsed = max(a.ConstantsUsed, int(i.Arg(slot).Index)+op.NumConstants())
			}
			for slot := range op.Arity() {
				if arg := i.Arg(slot); arg.Constant {
					a.ConstantsUsed = max(a.ConstantsUsed, int(arg.Index)+1)
				}
			}
		} else {
			a.ConstantsUsed += op.NumConstants()
		}
		a.Instructions++
		if pops > depth {
			a.Underflows = append(a.Underflows, pc)
			depth = 0
		} else {
			depth -= pops
		}
		depth++
		a.MaxDepth = max(a.MaxDepth, depth)
	}
	a.FinalDepth = depth
	return a
}

// Check reports whether p is a well-formed program:
// it passes [Program.Validate],
// no instruction reads below the bottom of the operand stack,
// the constants it consumes are present in the pool,
// and it leaves exactly one value on the stack.
func (p *Program) Check() error {
	if err := p.Validate(); err != nil {
		return err
	}
	a := p.Analyze()
	var errs []error
	if len(a.Underflows) > 0 {
		errs = append(errs, fmt.Errorf("operand stack underflow at %v", a.Underflows))
	}
	if a.ConstantsUsed > len(p.Constants) {
		errs = append(errs, fmt.Errorf("program consumes %d constants but pool has %d", a.ConstantsUsed, len(p.Constants)))
	}
	if a.FinalDepth != 1 {
		errs = append(errs, fmt.Errorf("program leaves %d values on the operand stack (want 1)", a.FinalDepth))
	}
	if len(errs) > 0 {
		return fmt.Errorf("check program: %w", errors.Join(errs...))
	}
	return nil
}

// Clone returns a deep copy of p.
func (p *Program) Clone() *Program {
	return &Program{
		Encoding:  p.Encoding,
		Code:      append([]uint32(nil), p.Code...),
		Constants: append([]float32(nil), p.Constants...),
	}
}
