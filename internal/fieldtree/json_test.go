// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldtree

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTree(t *testing.T) {
	const input = `{
		// Warm center over a cool ramp.
		"red": {
			"op": "ellipse",
			"params": [0, 0, 0, 0, 1, 1],
		},
		"green": {"op": "Const", "params": [0.5]},
		"blue": {
			"op": "invert",
			"children": [
				{"op": "lineargradient", "params": [-1, 0, 1, 0, 2]},
			],
		},
	}`
	got, err := ParseTree([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	want := &Tree{
		Red:   Ellipse(0, 0, 0, 0, 1, 1),
		Green: Const(0.5),
		Blue:  Invert(LinearGradient(-1, 0, 1, 0, 2)),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseTree(...) (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Syntax", `{"red": `},
		{"UnknownOp", `{"red": {"op": "bogus"}, "green": {"op": "const", "params": [1]}, "blue": {"op": "const", "params": [1]}}`},
		{"MissingChannel", `{"red": {"op": "const", "params": [1]}, "green": {"op": "const", "params": [1]}}`},
		{"WrongParams", `{"red": {"op": "const"}, "green": {"op": "const", "params": [1]}, "blue": {"op": "const", "params": [1]}}`},
		{"UnknownField", `{"red": {"op": "const", "params": [1], "color": 3}, "green": {"op": "const", "params": [1]}, "blue": {"op": "const", "params": [1]}}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if tree, err := ParseTree([]byte(test.input)); err == nil {
				t.Errorf("ParseTree(%q) = %v, <nil>; want error", test.input, tree)
			}
		})
	}
}

func TestParseNode(t *testing.T) {
	got, err := ParseNode([]byte(`{"op": "add", "children": [{"op": "const", "params": [1]}, {"op": "polartheta", "params": [0, 0, 0]}]}`))
	if err != nil {
		t.Fatal(err)
	}
	want := Add(Const(1), PolarTheta(0, 0, 0))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseNode(...) (-want +got):\n%s", diff)
	}

	if _, err := ParseNode([]byte(`{"op": "add"}`)); err == nil {
		t.Error("ParseNode of add without children did not return an error")
	}
}

func TestMarshalTreeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	for range 20 {
		want := Generate(rng, nil)
		data, err := MarshalTree(want)
		if err != nil {
			t.Fatal(err)
		}
		got, err := ParseTree(data)
		if err != nil {
			t.Fatalf("ParseTree(MarshalTree(...)): %v\n%s", err, data)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round trip (-want +got):\n%s", diff)
		}
	}
}

func TestMarshalNode(t *testing.T) {
	data, err := MarshalNode(Abs(Const(-0.5)))
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseNode(data)
	if err != nil {
		t.Fatalf("ParseNode(%s): %v", data, err)
	}
	if diff := cmp.Diff(Abs(Const(-0.5)), got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestParseDescription(t *testing.T) {
	t.Run("Tree", func(t *testing.T) {
		tree, node, err := ParseDescription([]byte(`{
			"red": {"op": "const", "params": [1]},
			"green": {"op": "const", "params": [0]},
			"blue": {"op": "const", "params": [-1]}, // trailing comma
		}`))
		if err != nil {
			t.Fatal(err)
		}
		if node != nil {
			t.Errorf("node = %v; want <nil>", node)
		}
		want := &Tree{Red: Const(1), Green: Const(0), Blue: Const(-1)}
		if diff := cmp.Diff(want, tree); diff != "" {
			t.Errorf("tree (-want +got):\n%s", diff)
		}
	})

	t.Run("Node", func(t *testing.T) {
		tree, node, err := ParseDescription([]byte(`{"op": "abs", "children": [{"op": "const", "params": [-1]}]}`))
		if err != nil {
			t.Fatal(err)
		}
		if tree != nil {
			t.Errorf("tree = %v; want <nil>", tree)
		}
		if diff := cmp.Diff(Abs(Const(-1)), node); diff != "" {
			t.Errorf("node (-want +got):\n%s", diff)
		}
	})

	t.Run("NotObject", func(t *testing.T) {
		if _, _, err := ParseDescription([]byte(`[1, 2]`)); err == nil {
			t.Error("ParseDescription of an array did not return an error")
		}
	})
}
