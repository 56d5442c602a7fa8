// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldvm

import (
	"slices"

	"github.com/arcticsynth/arctic/internal/fieldcode"
)

// Machine holds the scratch state needed to evaluate a program.
// The zero value is not usable; use [New].
// A Machine must not be used from multiple goroutines at once,
// but any number of Machines may share one [fieldcode.Program].
type Machine struct {
	prog   *fieldcode.Program
	stack  stack
	cursor int

	checked bool
	faults  []Fault
}

// New returns a new Machine that evaluates prog.
// prog is not validated:
// malformed programs evaluate to degenerate (but finite) fields.
func New(prog *fieldcode.Program) *Machine {
	return &Machine{
		prog:  prog,
		stack: newStack(prog.StackCapacity()),
	}
}

// Program returns the program the machine evaluates.
func (m *Machine) Program() *fieldcode.Program {
	return m.prog
}

// Eval evaluates the program at the normalized coordinate (x, y).
// The result is the value at the bottom of the operand stack
// after the last instruction, or zero if the stack is empty.
// In a well-formed program, that is the only value on the stack.
// The result is always finite.
func (m *Machine) Eval(x, y float32) float32 {
	m.checked = false
	return m.run(x, y)
}

// EvalChecked evaluates the program like [Machine.Eval]
// and additionally returns a [*FaultError]
// listing every fault encountered along the way.
// The returned value is the same as Eval's even if err is not nil.
func (m *Machine) EvalChecked(x, y float32) (_ float32, err error) {
	m.checked = true
	m.faults = m.faults[:0]
	v := m.run(x, y)
	if len(m.faults) > 0 {
		err = &FaultError{
			X:      x,
			Y:      y,
			Faults: slices.Clone(m.faults),
		}
	}
	return v, err
}

// Eval evaluates prog at the normalized coordinate (x, y)
// using a temporary [Machine].
func Eval(prog *fieldcode.Program, x, y float32) float32 {
	return New(prog).Eval(x, y)
}

func (m *Machine) run(x, y float32) float32 {
	m.reset()
	p := vec2{float64(x), float64(y)}
	if !m.prog.Encoding.IsValid() {
		m.fault(-1, UnknownEncoding)
	}
	for pc := range m.prog.Code {
		m.step(pc, p)
	}
	if m.stack.height() != 1 {
		m.fault(-1, FinalDepth)
	}
	return m.stack.bottom()
}

func (m *Machine) reset() {
	m.stack.reset()
	m.cursor = 0
}

// step executes the instruction at pc.
func (m *Machine) step(pc int, p vec2) {
	switch m.prog.Encoding {
	case fieldcode.CountEncoding:
		m.stepCount(pc, p)
	case fieldcode.ImmediateEncoding:
		m.stepImmediate(pc, p)
	}
}

func (m *Machine) stepCount(pc int, p vec2) {
	i := m.prog.Instruction(pc)
	op := i.OpCode()
	if !op.IsValid() || op == fieldcode.OpNop {
		return
	}
	if m.checked && (!i.IsConsistent() || i.Reserved() != 0) {
		m.fault(pc, CountMismatch)
	}

	var in operands
	for slot := op.Arity() - 1; slot >= 0; slot-- {
		in[slot] = m.pop(pc)
	}
	var k params
	overrun := false
	for j := range op.NumConstants() {
		if m.cursor >= len(m.prog.Constants) {
			overrun = true
			continue
		}
		k[j] = m.prog.Constants[m.cursor]
		m.cursor++
	}
	if overrun {
		m.fault(pc, ConstantOverrun)
	}
	m.push(pc, apply(op, p, &in, &k))
}

func (m *Machine) stepImmediate(pc int, p vec2) {
	i := m.prog.ImmediateInstruction(pc)
	op := i.OpCode()
	if !op.IsValid() || op == fieldcode.OpNop {
		return
	}
	paramSlot, ok := op.ParameterSlot()
	if !ok {
		m.fault(pc, NotEncodable)
		return
	}

	var in operands
	for slot := op.Arity() - 1; slot >= 0; slot-- {
		if arg := i.Arg(slot); arg.Constant {
			in[slot] = m.constant(pc, int(arg.Index))
		} else {
			in[slot] = m.pop(pc)
		}
	}
	var k params
	if paramSlot >= 0 {
		arg := i.Arg(paramSlot)
		if !arg.Constant {
			m.fault(pc, ParameterNotConstant)
		}
		base := int(arg.Index)
		n := op.NumConstants()
		if base+n > len(m.prog.Constants) {
			m.fault(pc, ConstantOverrun)
		}
		for j := range n {
			if base+j < len(m.prog.Constants) {
				k[j] = m.prog.Constants[base+j]
			}
		}
	}
	m.push(pc, apply(op, p, &in, &k))
}

// constant returns the constant at index
// or zero if index is past the end of the pool.
func (m *Machine) constant(pc int, index int) float32 {
	if index >= len(m.prog.Constants) {
		m.fault(pc, ConstantOverrun)
		return 0
	}
	return m.prog.Constants[index]
}

func (m *Machine) pop(pc int) float32 {
	v, ok := m.stack.pop()
	if !ok {
		m.fault(pc, StackUnderflow)
	}
	return v
}

func (m *Machine) push(pc int, v float32) {
	if !m.stack.push(v) {
		m.fault(pc, StackOverflow)
	}
}

func (m *Machine) fault(pc int, kind FaultKind) {
	if m.checked {
		m.faults = append(m.faults, Fault{PC: pc, Kind: kind})
	}
}
