// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

/*
Package fieldvm implements the field virtual machine,
which evaluates a [fieldcode.Program] at a single 2D coordinate.

Every evaluation scans the whole instruction stream exactly once,
so its cost depends only on the program's length, never on its contents.
Malformed programs never cause a panic or a non-finite result:
unknown opcodes are skipped,
reads below the bottom of the operand stack or past the end of the constant pool
produce zero,
and every instruction clamps its own result.
[Machine.EvalChecked] reports those conditions as faults.

[Machine] is the main entrypoint for this package.
*/
package fieldvm
