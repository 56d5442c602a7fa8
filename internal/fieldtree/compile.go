// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldtree

import (
	"fmt"

	"github.com/arcticsynth/arctic/internal/fieldcode"
)

// Compile flattens the tree rooted at n into a program
// of exactly count instructions, padding the remainder.
// If count is zero, [fieldcode.DefaultInstructionCount] is used.
//
// In [fieldcode.ImmediateEncoding], const children of combinators
// are read directly from the constant pool
// instead of being pushed onto the operand stack.
func Compile(n *Node, enc fieldcode.Encoding, count int) (*fieldcode.Program, error) {
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("compile: %v", err)
	}
	if !enc.IsValid() {
		return nil, fmt.Errorf("compile: unknown encoding %d", uint8(enc))
	}
	if count == 0 {
		count = fieldcode.DefaultInstructionCount
	}
	if count < 1 || count > fieldcode.MaxInstructions {
		return nil, fmt.Errorf("compile: instruction count %d out of range [1, %d]", count, fieldcode.MaxInstructions)
	}
	c := &compiler{prog: fieldcode.NewProgram(enc, count)}
	var err error
	if enc == fieldcode.ImmediateEncoding {
		err = c.emitImmediate(n)
	} else {
		err = c.emitCount(n)
	}
	if err != nil {
		return nil, fmt.Errorf("compile: %v", err)
	}
	return c.prog, nil
}

// CompileTree compiles each channel of t.
func CompileTree(t *Tree, enc fieldcode.Encoding, count int) ([3]*fieldcode.Program, error) {
	var progs [3]*fieldcode.Program
	for i, n := range t.Channels() {
		var err error
		progs[i], err = Compile(n, enc, count)
		if err != nil {
			return [3]*fieldcode.Program{}, fmt.Errorf("%s: %v", ChannelNames[i], err)
		}
	}
	return progs, nil
}

type compiler struct {
	prog *fieldcode.Program
	pc   int
}

func (c *compiler) emitCount(n *Node) error {
	for _, child := range n.Children {
		if err := c.emitCount(child); err != nil {
			return err
		}
	}
	if _, err := c.addConstants(n.Params); err != nil {
		return err
	}
	return c.emit(uint32(fieldcode.CountInstruction(n.Op)))
}

func (c *compiler) emitImmediate(n *Node) error {
	paramSlot, ok := n.Op.ParameterSlot()
	if !ok {
		return fmt.Errorf("%v cannot be encoded with immediate operands", n.Op)
	}
	var args [2]fieldcode.Operand
	for slot, child := range n.Children {
		if child.isConstLeaf() {
			k, err := c.addConstants(child.Params)
			if err != nil {
				return err
			}
			args[slot] = fieldcode.ConstantOperand(k)
			continue
		}
		if err := c.emitImmediate(child); err != nil {
			return err
		}
	}
	if paramSlot >= 0 {
		k, err := c.addConstants(n.Params)
		if err != nil {
			return err
		}
		args[paramSlot] = fieldcode.ConstantOperand(k)
	}
	return c.emit(uint32(fieldcode.NewImmediateInstruction(n.Op, args[0], args[1])))
}

func (c *compiler) emit(word uint32) error {
	if c.pc >= len(c.prog.Code) {
		return fmt.Errorf("program needs more than %d instructions", len(c.prog.Code))
	}
	c.prog.Code[c.pc] = word
	c.pc++
	return nil
}

// addConstants appends values to the pool
// and returns the index of the first one.
func (c *compiler) addConstants(values []float32) (int, error) {
	capacity := c.prog.Encoding.ConstantCapacity()
	if len(c.prog.Constants)+len(values) > capacity {
		return 0, fmt.Errorf("program needs more than %d constants", capacity)
	}
	return c.prog.AddConstants(values...), nil
}
