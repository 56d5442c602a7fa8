// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldcode

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// ListOptions is the set of parameters to [List].
type ListOptions struct {
	// Name is shown in the header line.
	Name string
	// PCBase is added to every instruction index shown.
	PCBase int
	// Full lists every padding instruction
	// and the whole constant pool.
	// Otherwise, runs of padding are collapsed into a single line.
	Full bool
}

// List writes a human-readable listing of the program to w.
// Each line shows the instruction index, the decoded instruction,
// and the constants it consumes.
func List(w io.Writer, p *Program, opts *ListOptions) error {
	if opts == nil {
		opts = new(ListOptions)
	}
	name := opts.Name
	if name == "" {
		name = "program"
	}
	a := p.Analyze()
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	_, err := fmt.Fprintf(w, "\n%s <%v> (%s, %s, %s)\n",
		name,
		p.Encoding,
		plural(len(p.Code), "instruction"),
		plural(len(p.Constants), "constant"),
		plural(p.StackCapacity(), "slot"),
	)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%d live, max depth %d, final depth %d\n", a.Instructions, a.MaxDepth, a.FinalDepth)
	if err != nil {
		return err
	}

	lineBuf := new(bytes.Buffer)
	cursor := 0
	for pc := 0; pc < len(p.Code); pc++ {
		lineBuf.Reset()
		op := p.OpCodeAt(pc)
		if op == OpNop && p.Code[pc] == 0 && !opts.Full {
			end := pc + 1
			for end < len(p.Code) && p.Code[end] == 0 {
				end++
			}
			if end-pc > 1 {
				fmt.Fprintf(lineBuf, "\t%d-%d\tnop (padding)\n", opts.PCBase+pc, opts.PCBase+end-1)
				if _, err := w.Write(lineBuf.Bytes()); err != nil {
					return err
				}
				pc = end - 1
				continue
			}
		}

		fmt.Fprintf(lineBuf, "\t%d\t", opts.PCBase+pc)
		var params []int
		switch p.Encoding {
		case CountEncoding:
			i := p.Instruction(pc)
			lineBuf.WriteString(i.String())
			if op.IsValid() {
				for range op.NumConstants() {
					params = append(params, cursor)
					cursor++
				}
			}
			if !i.IsConsistent() {
				lineBuf.WriteString("\t; counts disagree with opcode table")
			}
		case ImmediateEncoding:
			i := p.ImmediateInstruction(pc)
			lineBuf.WriteString(i.String())
			if slot, ok := op.ParameterSlot(); ok && slot >= 0 && op.IsValid() {
				base := int(i.Arg(slot).Index)
				for k := range op.NumConstants() {
					params = append(params, base+k)
				}
			}
			for slot := range op.Arity() {
				if arg := i.Arg(slot); arg.Constant {
					params = append(params, int(arg.Index))
				}
			}
		default:
			fmt.Fprintf(lineBuf, "%#08x", p.Code[pc])
		}
		if len(params) > 0 {
			lineBuf.WriteString("\t; ")
			for j, k := range params {
				if j > 0 {
					lineBuf.WriteString(" ")
				}
				if k < len(p.Constants) {
					lineBuf.WriteString(strconv.FormatFloat(float64(p.Constants[k]), 'g', -1, 32))
				} else {
					fmt.Fprintf(lineBuf, "k[%d]?", k)
				}
			}
		}
		lineBuf.WriteByte('\n')
		if _, err := w.Write(lineBuf.Bytes()); err != nil {
			return err
		}
	}

	if opts.Full {
		if _, err := fmt.Fprintf(w, "constants (%d) for %s\n", len(p.Constants), name); err != nil {
			return err
		}
		for i, k := range p.Constants {
			if _, err := fmt.Fprintf(w, "\t%d\t%s\n", i, strconv.FormatFloat(float64(k), 'g', -1, 32)); err != nil {
				return err
			}
		}
	}
	return nil
}
