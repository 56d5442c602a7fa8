// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldcode

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestOpSet(t *testing.T) {
	var s OpSet
	if s.Len() != 0 || s.Has(OpAdd) {
		t.Fatalf("zero OpSet = %v; want empty", s)
	}
	s.Add(OpSquircle, OpAdd, OpConst, OpAdd)
	if got, want := s.Len(), 3; got != want {
		t.Errorf("s.Len() = %d; want %d", got, want)
	}
	want := []OpCode{OpConst, OpAdd, OpSquircle}
	if diff := cmp.Diff(want, slices.Collect(s.All())); diff != "" {
		t.Errorf("s.All() (-want +got):\n%s", diff)
	}
	if got, want := s.String(), "const,add,squircle"; got != want {
		t.Errorf("s.String() = %q; want %q", got, want)
	}
	s.Delete(OpAdd)
	s.Delete(OpCode(200))
	if s.Has(OpAdd) {
		t.Error("s.Has(OpAdd) = true after Delete")
	}
	if s.Has(OpCode(200)) {
		t.Error("s.Has(200) = true")
	}
}

func TestOpSetGroups(t *testing.T) {
	all := AllOps()
	if got, want := all.Len(), len(OpCodes()); got != want {
		t.Errorf("AllOps().Len() = %d; want %d", got, want)
	}
	if all.Has(OpNop) {
		t.Error("AllOps() contains nop")
	}
	prims, combs := PrimitiveOps(), CombinatorOps()
	if prims&combs != 0 {
		t.Errorf("primitives and combinators overlap: %v", prims&combs)
	}
	if prims|combs != all {
		t.Errorf("primitives | combinators = %v; want %v", prims|combs, all)
	}
}

func TestParseOpSet(t *testing.T) {
	tests := []struct {
		text string
		want OpSet
		err  bool
	}{
		{text: "", want: 0},
		{text: "add", want: NewOpSet(OpAdd)},
		{text: "Add, SUB ,mul", want: NewOpSet(OpAdd, OpSubtract, OpMultiply)},
		{text: "primitives", want: PrimitiveOps()},
		{text: "combinators,-pow,-div", want: func() OpSet {
			s := CombinatorOps()
			s.Delete(OpExponentiate)
			s.Delete(OpDivide)
			return s
		}()},
		{text: "all,-primitives", want: CombinatorOps()},
		{text: "nop", err: true},
		{text: "add,bogus", err: true},
	}
	for _, test := range tests {
		got, err := ParseOpSet(test.text)
		if err != nil {
			if !test.err {
				t.Errorf("ParseOpSet(%q): %v", test.text, err)
			}
			continue
		}
		if test.err {
			t.Errorf("ParseOpSet(%q) = %v, <nil>; want error", test.text, got)
			continue
		}
		if got != test.want {
			t.Errorf("ParseOpSet(%q) = %v; want %v", test.text, got, test.want)
		}
	}
}

func TestOpSetText(t *testing.T) {
	s := NewOpSet(OpEllipse, OpSine)
	text, err := s.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var got OpSet
	if err := got.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(slices.Collect(s.All()), slices.Collect(got.All()), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}
