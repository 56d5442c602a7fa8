// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldcode

import (
	"fmt"
	"strings"
)

// OpCode is an enumeration of instruction types.
type OpCode uint8

// Defined [OpCode] values.
const (
	// Padding. Also the behavior of any unknown opcode.
	OpNop OpCode = 0 // nop

	// K[0] -> push K[0]
	OpConst OpCode = 1 // const
	// K[0..5] = x0.xy, x1.xy, size, sharp
	OpEllipse OpCode = 2 // ellipse
	// K[0..5] = center.xy, angle, size, ratio, points
	OpFlower OpCode = 3 // flower
	// K[0..4] = x0.xy, x1.xy, sharpness
	OpLinearGradient OpCode = 4 // lineargradient
	// K[0..4] = x0.xy, w, h, angle
	OpRadialGradient OpCode = 5 // radialgradient
	// K[0..2] = x0.xy, angle
	OpPolarTheta OpCode = 6 // polartheta

	// x -> |x|
	OpAbsolute OpCode = 8 // abs
	// x -> -x
	OpInvert OpCode = 9 // invert
	// a b -> a + b
	OpAdd OpCode = 10 // add
	// a b -> a - b
	OpSubtract OpCode = 11 // sub
	// a b -> a * b
	OpMultiply OpCode = 12 // mul
	// a b -> a / b
	OpDivide OpCode = 13 // div
	// a b -> a mod b
	OpModulus OpCode = 14 // mod
	// a b -> a ^ b
	OpExponentiate OpCode = 15 // pow
	// x -> sinc(x*K[0] + K[1])
	OpSinc OpCode = 16 // sinc
	// x -> sin(x*K[0] + K[1])
	OpSine OpCode = 17 // sine
	// x -> fold(x); K[0..3] = center.xy, n, b
	OpSpiral OpCode = 18 // spiral
	// a b -> squircle(p - x0 + (a, b)); K[0..3] = x0.xy, r, n
	OpSquircle OpCode = 19 // squircle

	maxOpCode = OpSquircle
)

type opInfo struct {
	name      string
	arity     uint8
	constants uint8
}

var opTable = [...]opInfo{
	OpNop:            {"nop", 0, 0},
	OpConst:          {"const", 0, 1},
	OpEllipse:        {"ellipse", 0, 6},
	OpFlower:         {"flower", 0, 6},
	OpLinearGradient: {"lineargradient", 0, 5},
	OpRadialGradient: {"radialgradient", 0, 5},
	OpPolarTheta:     {"polartheta", 0, 3},
	OpAbsolute:       {"abs", 1, 0},
	OpInvert:         {"invert", 1, 0},
	OpAdd:            {"add", 2, 0},
	OpSubtract:       {"sub", 2, 0},
	OpMultiply:       {"mul", 2, 0},
	OpDivide:         {"div", 2, 0},
	OpModulus:        {"mod", 2, 0},
	OpExponentiate:   {"pow", 2, 0},
	OpSinc:           {"sinc", 1, 2},
	OpSine:           {"sine", 1, 2},
	OpSpiral:         {"spiral", 1, 4},
	OpSquircle:       {"squircle", 2, 4},
}

// MaxConstantsPerInstruction is the largest value
// that [OpCode.NumConstants] returns.
const MaxConstantsPerInstruction = 6

// MaxArity is the largest value that [OpCode.Arity] returns.
const MaxArity = 2

func (op OpCode) info() opInfo {
	if op > maxOpCode {
		return opInfo{}
	}
	return opTable[op]
}

// IsValid reports whether the opcode is one of the known instructions.
// [OpNop] is valid.
func (op OpCode) IsValid() bool {
	return op.info().name != ""
}

// Arity returns the number of operand stack values
// that an instruction with the opcode consumes.
// Unknown opcodes consume nothing.
func (op OpCode) Arity() int {
	return int(op.info().arity)
}

// NumConstants returns the number of constant pool values
// that an instruction with the opcode consumes.
// Unknown opcodes consume nothing.
func (op OpCode) NumConstants() int {
	return int(op.info().constants)
}

// StackEffect returns the change in operand stack height
// after executing an instruction with the opcode
// when all of its operands come from the stack.
func (op OpCode) StackEffect() int {
	if !op.IsValid() || op == OpNop {
		return 0
	}
	return 1 - op.Arity()
}

// IsPrimitive reports whether the opcode pushes a value
// without consuming any stack operands.
// Primitives are the leaves of an expression tree.
func (op OpCode) IsPrimitive() bool {
	return op != OpNop && op.IsValid() && op.Arity() == 0
}

// IsCombinator reports whether the opcode consumes stack operands.
func (op OpCode) IsCombinator() bool {
	return op.IsValid() && op.Arity() > 0
}

// ParameterSlot returns which [ImmediateInstruction] operand slot
// holds the pool index of the opcode's first constant parameter
// in [ImmediateEncoding].
// Stack operands occupy the slots before it.
// slot is -1 if the opcode has no constant parameters.
// ok is false if the opcode's operands and parameters
// do not fit in the two operand slots.
func (op OpCode) ParameterSlot() (slot int, ok bool) {
	switch {
	case op.NumConstants() == 0:
		return -1, true
	case op.Arity() < 2:
		return op.Arity(), true
	default:
		return -1, false
	}
}

// String returns the opcode's lowercase mnemonic
// or "OpCode(n)" if the opcode is unknown.
func (op OpCode) String() string {
	if !op.IsValid() {
		return fmt.Sprintf("OpCode(%d)", uint8(op))
	}
	return op.info().name
}

// MarshalText returns the opcode's mnemonic.
// It returns an error for unknown opcodes.
func (op OpCode) MarshalText() ([]byte, error) {
	if !op.IsValid() {
		return nil, fmt.Errorf("marshal opcode: unknown opcode %d", uint8(op))
	}
	return []byte(op.info().name), nil
}

// UnmarshalText sets op to the opcode with the given mnemonic.
// Mnemonics are case-insensitive.
func (op *OpCode) UnmarshalText(text []byte) error {
	parsed, ok := ParseOpCode(string(text))
	if !ok {
		return fmt.Errorf("unmarshal opcode: unknown opcode %q", text)
	}
	*op = parsed
	return nil
}

// ParseOpCode returns the opcode with the given (case-insensitive) mnemonic.
func ParseOpCode(s string) (_ OpCode, ok bool) {
	s = strings.ToLower(s)
	for op, info := range opTable {
		if info.name != "" && info.name == s {
			return OpCode(op), true
		}
	}
	return 0, false
}

// OpCodes returns every valid opcode except [OpNop] in numeric order.
func OpCodes() []OpCode {
	ops := make([]OpCode, 0, len(opTable))
	for op := OpConst; op <= maxOpCode; op++ {
		if op.IsValid() {
			ops = append(ops, op)
		}
	}
	return ops
}
