// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

/*
Package fieldcode defines the bytecode that the field virtual machine executes.

A [Program] is a fixed-length stream of 32-bit instruction words
paired with a pool of float32 constants.
Instructions are the postorder flattening of an expression tree:
primitive opcodes (such as [OpEllipse]) push one value
and combinators (such as [OpAdd]) pop their operands and push one result.
Opcode zero and any unknown opcode is padding
and does not touch the operand stack or the constants.

# Encodings

Two bit-packings of the same machine exist, selected by [Encoding].

[CountEncoding] words are built with [NewInstruction].
The low byte is the opcode,
the next byte is the number of stack operands the instruction consumes,
and the byte after that is the number of constants it consumes.
Constants are read from the pool with a cursor
that only moves forward during one evaluation.

[ImmediateEncoding] words are built with [NewImmediateInstruction].
The top six bits are the opcode,
followed by two flag bits and two 12-bit operands.
Each operand either names a constant by index or is popped from the stack.
Opcodes that take constant parameters read them from a contiguous run of the pool
starting at the index in their parameter slot (see [OpCode.ParameterSlot]).
*/
package fieldcode
