// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldvm

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/arcticsynth/arctic/internal/fieldcode"
	"github.com/google/go-cmp/cmp"
)

// asm is a count-encoded instruction with its constants.
type asm struct {
	op fieldcode.OpCode
	k  []float32
}

func countProgram(n int, code ...asm) *fieldcode.Program {
	p := fieldcode.NewProgram(fieldcode.CountEncoding, n)
	for pc, a := range code {
		p.Code[pc] = uint32(fieldcode.CountInstruction(a.op))
		p.AddConstants(a.k...)
	}
	return p
}

var sampleCoords = [][2]float32{
	{0, 0},
	{-1, -1},
	{1, 1},
	{0.25, -0.75},
	{-0.5, 0.125},
	{10, 10},
}

func TestPadding(t *testing.T) {
	tests := []struct {
		name string
		prog *fieldcode.Program
	}{
		{"CountZero", fieldcode.NewProgram(fieldcode.CountEncoding, 16)},
		{"ImmediateZero", fieldcode.NewProgram(fieldcode.ImmediateEncoding, 16)},
		{
			name: "CountUnknown",
			prog: &fieldcode.Program{
				Encoding: fieldcode.CountEncoding,
				Code: []uint32{
					uint32(fieldcode.NewInstruction(7, 2, 3)),
					uint32(fieldcode.NewInstruction(20, 0, 1)),
					uint32(fieldcode.NewInstruction(255, 255, 255)),
					0,
				},
				Constants: []float32{1, 2, 3},
			},
		},
		{
			name: "ImmediateUnknown",
			prog: &fieldcode.Program{
				Encoding: fieldcode.ImmediateEncoding,
				Code: []uint32{
					uint32(fieldcode.NewImmediateInstruction(7, fieldcode.ConstantOperand(0), fieldcode.StackOperand)),
					uint32(fieldcode.NewImmediateInstruction(63, fieldcode.ConstantOperand(1), fieldcode.ConstantOperand(2))),
				},
				Constants: []float32{1, 2, 3},
			},
		},
		{
			name: "UnknownEncoding",
			prog: &fieldcode.Program{
				Encoding:  fieldcode.Encoding(9),
				Code:      []uint32{uint32(fieldcode.CountInstruction(fieldcode.OpConst))},
				Constants: []float32{42},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := New(test.prog)
			for _, c := range sampleCoords {
				if got := m.Eval(c[0], c[1]); got != 0 {
					t.Errorf("Eval(%g, %g) = %g; want 0", c[0], c[1], got)
				}
			}
		})
	}
}

func TestConst(t *testing.T) {
	values := []float32{0, 1, -3.5, 0.1, 1e30, -math.MaxFloat32, math.SmallestNonzeroFloat32}
	for _, c := range values {
		countProg := countProgram(8, asm{fieldcode.OpConst, []float32{c}})
		immProg := fieldcode.NewProgram(fieldcode.ImmediateEncoding, 8)
		immProg.Code[0] = uint32(fieldcode.NewImmediateInstruction(
			fieldcode.OpConst,
			fieldcode.ConstantOperand(immProg.AddConstants(c)),
			fieldcode.StackOperand,
		))

		for _, prog := range []*fieldcode.Program{countProg, immProg} {
			m := New(prog)
			for _, xy := range sampleCoords {
				got, err := m.EvalChecked(xy[0], xy[1])
				if got != c || err != nil {
					t.Errorf("%v const(%g).EvalChecked(%g, %g) = %g, %v; want %g, <nil>",
						prog.Encoding, c, xy[0], xy[1], got, err, c)
				}
			}
		}
	}
}

func TestInvertIsInvolution(t *testing.T) {
	for _, c := range []float32{0, 1, -1, 0.5, -123.25, 1e-20, math.MaxFloat32} {
		plain := countProgram(4, asm{fieldcode.OpConst, []float32{c}})
		twice := countProgram(4,
			asm{fieldcode.OpConst, []float32{c}},
			asm{op: fieldcode.OpInvert},
			asm{op: fieldcode.OpInvert},
		)
		want := Eval(plain, 0.3, 0.7)
		if got := Eval(twice, 0.3, 0.7); got != want {
			t.Errorf("invert(invert(%g)) = %g; want %g", c, got, want)
		}
		once := countProgram(4,
			asm{fieldcode.OpConst, []float32{c}},
			asm{op: fieldcode.OpInvert},
		)
		if got := Eval(once, 0.3, 0.7); got != -c {
			t.Errorf("invert(%g) = %g; want %g", c, got, -c)
		}
	}
}

func TestCommutative(t *testing.T) {
	pairs := [][2]float32{
		{0, 0},
		{1, 2},
		{-0.5, 0.25},
		{1e20, -3},
		{math.MaxFloat32, math.MaxFloat32},
	}
	for _, op := range []fieldcode.OpCode{fieldcode.OpAdd, fieldcode.OpMultiply} {
		for _, pair := range pairs {
			a, b := pair[0], pair[1]
			ab := countProgram(4,
				asm{fieldcode.OpConst, []float32{a}},
				asm{fieldcode.OpConst, []float32{b}},
				asm{op: op},
			)
			ba := countProgram(4,
				asm{fieldcode.OpConst, []float32{b}},
				asm{fieldcode.OpConst, []float32{a}},
				asm{op: op},
			)
			if got1, got2 := Eval(ab, 0, 0), Eval(ba, 0, 0); got1 != got2 {
				t.Errorf("%v(%g, %g) = %g; %v(%g, %g) = %g", op, a, b, got1, op, b, a, got2)
			}
		}
	}
}

func TestBinaryOperandOrder(t *testing.T) {
	tests := []struct {
		op   fieldcode.OpCode
		want float32
	}{
		{fieldcode.OpSubtract, 0.75 - 0.25},
		{fieldcode.OpDivide, 1},
		{fieldcode.OpModulus, 0},
		{fieldcode.OpAdd, 1},
	}
	for _, test := range tests {
		prog := countProgram(4,
			asm{fieldcode.OpConst, []float32{0.75}},
			asm{fieldcode.OpConst, []float32{0.25}},
			asm{op: test.op},
		)
		if got := Eval(prog, 0, 0); got != test.want {
			t.Errorf("%v(0.75, 0.25) = %g; want %g", test.op, got, test.want)
		}
	}
}

func TestEllipse(t *testing.T) {
	prog := countProgram(4, asm{fieldcode.OpEllipse, []float32{0, 0, 0, 0, 1, 1}})
	tests := []struct {
		x, y float32
		want float32
	}{
		{0, 0, 1},
		{10, 10, -1},
		{0.5, 0, 0},
	}
	m := New(prog)
	for _, test := range tests {
		if got := m.Eval(test.x, test.y); got != test.want {
			t.Errorf("ellipse at (%g, %g) = %g; want %g", test.x, test.y, got, test.want)
		}
	}
}

func TestStackEffect(t *testing.T) {
	const prefill = 3
	zeros := make([]float32, fieldcode.MaxConstantsPerInstruction)
	for _, op := range fieldcode.OpCodes() {
		t.Run(op.String(), func(t *testing.T) {
			want := prefill + 1 - op.Arity()

			countProg := fieldcode.NewProgram(fieldcode.CountEncoding, 4)
			countProg.Code[0] = uint32(fieldcode.CountInstruction(op))
			countProg.Constants = zeros
			if got := heightAfterStep(countProg, prefill); got != want {
				t.Errorf("count-encoded height after %v = %d; want %d", op, got, want)
			}

			slot, ok := op.ParameterSlot()
			if !ok {
				return
			}
			args := [2]fieldcode.Operand{}
			if slot >= 0 {
				args[slot] = fieldcode.ConstantOperand(0)
			}
			immProg := fieldcode.NewProgram(fieldcode.ImmediateEncoding, 4)
			immProg.Code[0] = uint32(fieldcode.NewImmediateInstruction(op, args[0], args[1]))
			immProg.Constants = zeros
			if got := heightAfterStep(immProg, prefill); got != want {
				t.Errorf("immediate-encoded height after %v = %d; want %d", op, got, want)
			}
		})
	}
}

func TestImmediateConstantOperands(t *testing.T) {
	prog := fieldcode.NewProgram(fieldcode.ImmediateEncoding, 4)
	k := prog.AddConstants(0.75, 0.25)
	prog.Code[0] = uint32(fieldcode.NewImmediateInstruction(
		fieldcode.OpSubtract,
		fieldcode.ConstantOperand(k),
		fieldcode.ConstantOperand(k+1),
	))
	got, err := New(prog).EvalChecked(0, 0)
	if got != 0.5 || err != nil {
		t.Errorf("EvalChecked(0, 0) = %g, %v; want 0.5, <nil>", got, err)
	}
	if got := heightAfterStep(prog, 0); got != 1 {
		t.Errorf("height after sub k[0] k[1] = %d; want 1", got)
	}
}

func heightAfterStep(prog *fieldcode.Program, prefill int) int {
	m := New(prog)
	m.reset()
	for i := range prefill {
		m.stack.push(float32(i) + 0.5)
	}
	m.step(0, vec2{0.1, 0.2})
	return m.stack.height()
}

func TestDegenerateArithmetic(t *testing.T) {
	pairs := [][2]float32{
		{1, 0},
		{-1, 0},
		{0, 0},
		{0, -1},
		{-8, 1.0 / 3},
		{-0.5, 0.5},
		{math.MaxFloat32, -math.MaxFloat32},
		{math.MaxFloat32, 0.5},
		{float32(math.Inf(1)), 2},
		{float32(math.NaN()), 1},
	}
	ops := []fieldcode.OpCode{fieldcode.OpDivide, fieldcode.OpModulus, fieldcode.OpExponentiate}
	for _, op := range ops {
		for _, pair := range pairs {
			in := operands{pair[0], pair[1]}
			got := apply(op, vec2{}, &in, new(params))
			if isNonFinite(got) || got < -1 || got > 1 {
				t.Errorf("%v(%g, %g) = %g; want finite value in [-1, 1]", op, pair[0], pair[1], got)
			}
		}
	}
}

func TestApplyIsFinite(t *testing.T) {
	extremes := []float32{
		0,
		1,
		-1,
		math.MaxFloat32,
		-math.MaxFloat32,
		float32(math.Inf(1)),
		float32(math.Inf(-1)),
		float32(math.NaN()),
	}
	positions := []vec2{{0, 0}, {1, -1}, {math.Inf(1), 0}, {math.NaN(), 0.5}}
	for _, op := range fieldcode.OpCodes() {
		for _, x := range extremes {
			for _, p := range positions {
				var k params
				for i := range k {
					k[i] = extremes[(i+int(op))%len(extremes)]
				}
				in := operands{x, extremes[int(op)%len(extremes)]}
				if got := apply(op, p, &in, &k); isNonFinite(got) {
					t.Errorf("apply(%v, %v, %v, %v) = %g", op, p, in, k, got)
				}
				k = params{x, x, x, x, x, x}
				if got := apply(op, p, &in, &k); isNonFinite(got) {
					t.Errorf("apply(%v, %v, %v, %v) = %g", op, p, in, k, got)
				}
			}
		}
	}
}

func isNonFinite(x float32) bool {
	return math.IsNaN(float64(x)) || math.IsInf(float64(x), 0)
}

func TestEncodingsAgree(t *testing.T) {
	ellipseK := []float32{-0.25, 0, 0.25, 0, 0.75, 2}
	sineK := []float32{3, 0.5}
	countProg := countProgram(16,
		asm{fieldcode.OpEllipse, ellipseK},
		asm{fieldcode.OpSine, sineK},
		asm{fieldcode.OpConst, []float32{0.5}},
		asm{op: fieldcode.OpMultiply},
		asm{fieldcode.OpPolarTheta, []float32{0, 0, 0.3}},
		asm{op: fieldcode.OpAdd},
	)

	immProg := fieldcode.NewProgram(fieldcode.ImmediateEncoding, 16)
	ellipseBase := immProg.AddConstants(ellipseK...)
	sineBase := immProg.AddConstants(sineK...)
	half := immProg.AddConstants(0.5)
	thetaBase := immProg.AddConstants(0, 0, 0.3)
	stackArg := fieldcode.StackOperand
	immProg.Code[0] = uint32(fieldcode.NewImmediateInstruction(fieldcode.OpEllipse, fieldcode.ConstantOperand(ellipseBase), stackArg))
	immProg.Code[1] = uint32(fieldcode.NewImmediateInstruction(fieldcode.OpSine, stackArg, fieldcode.ConstantOperand(sineBase)))
	immProg.Code[2] = uint32(fieldcode.NewImmediateInstruction(fieldcode.OpMultiply, stackArg, fieldcode.ConstantOperand(half)))
	immProg.Code[3] = uint32(fieldcode.NewImmediateInstruction(fieldcode.OpPolarTheta, fieldcode.ConstantOperand(thetaBase), stackArg))
	immProg.Code[4] = uint32(fieldcode.NewImmediateInstruction(fieldcode.OpAdd, stackArg, stackArg))

	if err := countProg.Check(); err != nil {
		t.Error(err)
	}
	if err := immProg.Check(); err != nil {
		t.Error(err)
	}
	countMachine := New(countProg)
	immMachine := New(immProg)
	for y := float32(-1); y <= 1; y += 0.125 {
		for x := float32(-1); x <= 1; x += 0.125 {
			want, err := countMachine.EvalChecked(x, y)
			if err != nil {
				t.Fatal(err)
			}
			got, err := immMachine.EvalChecked(x, y)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("at (%g, %g): immediate = %g; count = %g", x, y, got, want)
			}
		}
	}
}

func TestFaults(t *testing.T) {
	stackArg := fieldcode.StackOperand
	tests := []struct {
		name   string
		prog   *fieldcode.Program
		want   []Fault
		result float32
	}{
		{
			name: "WellFormed",
			prog: countProgram(4,
				asm{fieldcode.OpConst, []float32{0.5}},
				asm{op: fieldcode.OpAbsolute},
			),
			result: 0.5,
		},
		{
			name:   "Empty",
			prog:   fieldcode.NewProgram(fieldcode.CountEncoding, 4),
			want:   []Fault{{PC: -1, Kind: FinalDepth}},
			result: 0,
		},
		{
			name: "Underflow",
			prog: countProgram(4,
				asm{op: fieldcode.OpAdd},
			),
			want: []Fault{
				{PC: 0, Kind: StackUnderflow},
				{PC: 0, Kind: StackUnderflow},
			},
			result: 0,
		},
		{
			name: "ConstantOverrun",
			prog: countProgram(4,
				asm{op: fieldcode.OpConst},
			),
			want:   []Fault{{PC: 0, Kind: ConstantOverrun}},
			result: 0,
		},
		{
			name: "ExtraValues",
			prog: countProgram(4,
				asm{fieldcode.OpConst, []float32{0.25}},
				asm{fieldcode.OpConst, []float32{0.75}},
			),
			want:   []Fault{{PC: -1, Kind: FinalDepth}},
			result: 0.25,
		},
		{
			name: "CountMismatch",
			prog: &fieldcode.Program{
				Encoding: fieldcode.CountEncoding,
				Code: []uint32{
					uint32(fieldcode.CountInstruction(fieldcode.OpConst)),
					uint32(fieldcode.NewInstruction(fieldcode.OpInvert, 2, 0)),
				},
				Constants: []float32{0.5},
			},
			want:   []Fault{{PC: 1, Kind: CountMismatch}},
			result: -0.5,
		},
		{
			name: "UnknownEncoding",
			prog: &fieldcode.Program{
				Encoding: fieldcode.Encoding(0),
				Code:     []uint32{0},
			},
			want: []Fault{
				{PC: -1, Kind: UnknownEncoding},
				{PC: -1, Kind: FinalDepth},
			},
			result: 0,
		},
		{
			name: "NotEncodable",
			prog: &fieldcode.Program{
				Encoding: fieldcode.ImmediateEncoding,
				Code: []uint32{
					uint32(fieldcode.NewImmediateInstruction(fieldcode.OpConst, fieldcode.ConstantOperand(0), stackArg)),
					uint32(fieldcode.NewImmediateInstruction(fieldcode.OpConst, fieldcode.ConstantOperand(0), stackArg)),
					uint32(fieldcode.NewImmediateInstruction(fieldcode.OpSquircle, stackArg, stackArg)),
				},
				Constants: []float32{0.5},
			},
			want: []Fault{
				{PC: 2, Kind: NotEncodable},
				{PC: -1, Kind: FinalDepth},
			},
			result: 0.5,
		},
		{
			name: "ParameterNotConstant",
			prog: &fieldcode.Program{
				Encoding: fieldcode.ImmediateEncoding,
				Code: []uint32{
					uint32(fieldcode.NewImmediateInstruction(fieldcode.OpConst, fieldcode.Operand{Index: 1}, stackArg)),
				},
				Constants: []float32{0.25, 0.5},
			},
			want:   []Fault{{PC: 0, Kind: ParameterNotConstant}},
			result: 0.5,
		},
		{
			name: "ImmediateOverrun",
			prog: &fieldcode.Program{
				Encoding: fieldcode.ImmediateEncoding,
				Code: []uint32{
					uint32(fieldcode.NewImmediateInstruction(fieldcode.OpSine, fieldcode.ConstantOperand(1), fieldcode.ConstantOperand(0))),
				},
				Constants: []float32{0},
			},
			want: []Fault{
				{PC: 0, Kind: ConstantOverrun},
				{PC: 0, Kind: ConstantOverrun},
			},
			result: 0,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := New(test.prog)
			got, err := m.EvalChecked(0.5, 0.5)
			if got != test.result {
				t.Errorf("EvalChecked(0.5, 0.5) = %g, _; want %g", got, test.result)
			}
			if unchecked := m.Eval(0.5, 0.5); unchecked != got {
				t.Errorf("Eval(0.5, 0.5) = %g; EvalChecked returned %g", unchecked, got)
			}
			var faults []Fault
			if err != nil {
				var faultErr *FaultError
				if !errors.As(err, &faultErr) {
					t.Fatalf("EvalChecked(0.5, 0.5) error = %v (%T); want *FaultError", err, err)
				}
				faults = faultErr.Faults
			}
			if diff := cmp.Diff(test.want, faults); diff != "" {
				t.Errorf("faults (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFaultErrorMessage(t *testing.T) {
	e := &FaultError{X: 0.5, Y: -1}
	for pc := range 7 {
		e.Faults = append(e.Faults, Fault{PC: pc, Kind: StackUnderflow})
	}
	e.Faults = append(e.Faults, Fault{PC: -1, Kind: FinalDepth})
	const want = "evaluate at (0.5, -1): [0] stack underflow; [1] stack underflow; [2] stack underflow; " +
		"[3] stack underflow; [4] stack underflow (and 3 more)"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}
	if !e.Has(FinalDepth) {
		t.Error("Has(FinalDepth) = false; want true")
	}
	if e.Has(StackOverflow) {
		t.Error("Has(StackOverflow) = true; want false")
	}
}

func TestStack(t *testing.T) {
	s := newStack(2)
	if v, ok := s.pop(); v != 0 || ok {
		t.Errorf("pop() on empty stack = %g, %t; want 0, false", v, ok)
	}
	for i, v := range []float32{1, 2} {
		if !s.push(v) {
			t.Errorf("push(%g) #%d = false; want true", v, i+1)
		}
	}
	if s.push(3) {
		t.Error("push(3) on full stack = true; want false")
	}
	if got := s.height(); got != 2 {
		t.Errorf("height() = %d; want 2", got)
	}
	if got := s.bottom(); got != 1 {
		t.Errorf("bottom() = %g; want 1", got)
	}
	want := []float32{3, 1}
	for _, w := range want {
		if v, ok := s.pop(); v != w || !ok {
			t.Errorf("pop() = %g, %t; want %g, true", v, ok, w)
		}
	}
	if got := s.bottom(); got != 0 {
		t.Errorf("bottom() on empty stack = %g; want 0", got)
	}
}

func TestSharedProgram(t *testing.T) {
	prog := countProgram(8,
		asm{fieldcode.OpRadialGradient, []float32{0, 0, 1, 0.5, 0.25}},
		asm{fieldcode.OpSinc, []float32{4, 0}},
	)
	want := make([]float32, len(sampleCoords))
	for i, c := range sampleCoords {
		want[i] = Eval(prog, c[0], c[1])
	}

	var wg sync.WaitGroup
	results := make([][]float32, 8)
	for g := range results {
		wg.Go(func() {
			m := New(prog)
			for _, c := range sampleCoords {
				results[g] = append(results[g], m.Eval(c[0], c[1]))
			}
		})
	}
	wg.Wait()
	for g, got := range results {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("goroutine %d (-want +got):\n%s", g, diff)
		}
	}
}

func BenchmarkEval(b *testing.B) {
	prog := fieldcode.NewProgram(fieldcode.CountEncoding, fieldcode.MaxInstructions)
	prog.Code[0] = uint32(fieldcode.CountInstruction(fieldcode.OpEllipse))
	prog.AddConstants(-0.25, 0, 0.25, 0, 0.75, 2)
	for pc := 1; pc+1 < len(prog.Code); pc += 2 {
		prog.Code[pc] = uint32(fieldcode.CountInstruction(fieldcode.OpSine))
		prog.Code[pc+1] = uint32(fieldcode.CountInstruction(fieldcode.OpAbsolute))
		prog.AddConstants(1.5, 0.25)
	}
	m := New(prog)
	b.ResetTimer()
	for b.Loop() {
		m.Eval(0.25, -0.5)
	}
}
