// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

// Package fieldtree provides expression trees over field opcodes
// and compiles them into [fieldcode.Program] values.
//
// A program is the postorder traversal of its expression tree:
// primitives (shapes and constants) are leaves
// and combinators (arithmetic and periodic functions) are interior nodes.
package fieldtree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/arcticsynth/arctic/internal/fieldcode"
)

// Node is a single operation in an expression tree.
type Node struct {
	Op fieldcode.OpCode `json:"op"`
	// Params are the operation's constants
	// in the order the opcode consumes them.
	Params []float32 `json:"params,omitempty"`
	// Children are the operation's stack operands,
	// deepest (first evaluated) first.
	Children []*Node `json:"children,omitempty"`
}

// NewNode returns a new node.
// The node is not validated.
func NewNode(op fieldcode.OpCode, params []float32, children ...*Node) *Node {
	return &Node{
		Op:       op,
		Params:   params,
		Children: children,
	}
}

// Const returns a node that evaluates to v everywhere.
func Const(v float32) *Node {
	return NewNode(fieldcode.OpConst, []float32{v})
}

// Ellipse returns a two-focus ellipse with foci (x0, y0) and (x1, y1).
func Ellipse(x0, y0, x1, y1, size, sharp float32) *Node {
	return NewNode(fieldcode.OpEllipse, []float32{x0, y0, x1, y1, size, sharp})
}

// Flower returns a flower with the given number of petals.
func Flower(cx, cy, angle, size, ratio, points float32) *Node {
	return NewNode(fieldcode.OpFlower, []float32{cx, cy, angle, size, ratio, points})
}

// LinearGradient returns a ramp across the line through (x0, y0) and (x1, y1).
func LinearGradient(x0, y0, x1, y1, sharpness float32) *Node {
	return NewNode(fieldcode.OpLinearGradient, []float32{x0, y0, x1, y1, sharpness})
}

// RadialGradient returns an elliptical falloff around (x0, y0).
func RadialGradient(x0, y0, w, h, angle float32) *Node {
	return NewNode(fieldcode.OpRadialGradient, []float32{x0, y0, w, h, angle})
}

// PolarTheta returns the normalized angle around (x0, y0).
func PolarTheta(x0, y0, angle float32) *Node {
	return NewNode(fieldcode.OpPolarTheta, []float32{x0, y0, angle})
}

func Abs(x *Node) *Node    { return NewNode(fieldcode.OpAbsolute, nil, x) }
func Invert(x *Node) *Node { return NewNode(fieldcode.OpInvert, nil, x) }
func Add(a, b *Node) *Node { return NewNode(fieldcode.OpAdd, nil, a, b) }
func Sub(a, b *Node) *Node { return NewNode(fieldcode.OpSubtract, nil, a, b) }
func Mul(a, b *Node) *Node { return NewNode(fieldcode.OpMultiply, nil, a, b) }
func Div(a, b *Node) *Node { return NewNode(fieldcode.OpDivide, nil, a, b) }
func Mod(a, b *Node) *Node { return NewNode(fieldcode.OpModulus, nil, a, b) }
func Pow(a, b *Node) *Node { return NewNode(fieldcode.OpExponentiate, nil, a, b) }

// Sinc returns sinc(x*freq + phase).
func Sinc(x *Node, freq, phase float32) *Node {
	return NewNode(fieldcode.OpSinc, []float32{freq, phase}, x)
}

// Sine returns sin(x*freq + phase).
func Sine(x *Node, freq, phase float32) *Node {
	return NewNode(fieldcode.OpSine, []float32{freq, phase}, x)
}

// Spiral folds x into a triangle wave.
func Spiral(x *Node, cx, cy, n, b float32) *Node {
	return NewNode(fieldcode.OpSpiral, []float32{cx, cy, n, b}, x)
}

// Squircle returns a superellipse offset by (a, b).
func Squircle(a, b *Node, x0, y0, r, n float32) *Node {
	return NewNode(fieldcode.OpSquircle, []float32{x0, y0, r, n}, a, b)
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// isConstLeaf reports whether n is a well-formed const node.
func (n *Node) isConstLeaf() bool {
	return n.Op == fieldcode.OpConst && len(n.Params) == 1 && n.IsLeaf()
}

// Size returns the number of nodes in the tree rooted at n.
func (n *Node) Size() int {
	size := 1
	for _, c := range n.Children {
		size += c.Size()
	}
	return size
}

// Depth returns the number of nodes on the longest path
// from n to a leaf.
func (n *Node) Depth() int {
	d := 0
	for _, c := range n.Children {
		d = max(d, c.Depth())
	}
	return d + 1
}

// Validate reports whether every node in the tree rooted at n
// has a known opcode and the parameter and child counts
// the opcode declares.
func (n *Node) Validate() error {
	return n.validate("root")
}

func (n *Node) validate(path string) error {
	if n == nil {
		return fmt.Errorf("%s: missing node", path)
	}
	if !n.Op.IsValid() || n.Op == fieldcode.OpNop {
		return fmt.Errorf("%s: invalid opcode %v", path, n.Op)
	}
	if got, want := len(n.Params), n.Op.NumConstants(); got != want {
		return fmt.Errorf("%s: %v has %d params (want %d)", path, n.Op, got, want)
	}
	if got, want := len(n.Children), n.Op.Arity(); got != want {
		return fmt.Errorf("%s: %v has %d children (want %d)", path, n.Op, got, want)
	}
	for i, c := range n.Children {
		if err := c.validate(path + "." + strconv.Itoa(i)); err != nil {
			return err
		}
	}
	return nil
}

// String returns an indented listing of the tree rooted at n.
func (n *Node) String() string {
	sb := new(strings.Builder)
	n.show(sb, 0)
	return strings.TrimSuffix(sb.String(), "\n")
}

func (n *Node) show(sb *strings.Builder, level int) {
	for range 2*level + 1 {
		sb.WriteByte(' ')
	}
	if n == nil {
		sb.WriteString("<nil>\n")
		return
	}
	sb.WriteString(n.Op.String())
	if len(n.Params) > 0 {
		sb.WriteByte('(')
		for i, k := range n.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.FormatFloat(float64(k), 'g', -1, 32))
		}
		sb.WriteByte(')')
	}
	if !n.IsLeaf() {
		sb.WriteByte('-')
	}
	sb.WriteByte('\n')
	for _, c := range n.Children {
		c.show(sb, level+1)
	}
}

// Tree is a three-channel image description.
// Each channel is evaluated independently.
type Tree struct {
	Red   *Node `json:"red"`
	Green *Node `json:"green"`
	Blue  *Node `json:"blue"`
}

// Channels returns the red, green, and blue roots in order.
func (t *Tree) Channels() [3]*Node {
	return [3]*Node{t.Red, t.Green, t.Blue}
}

// ChannelNames are the names of the [Tree.Channels] in order.
var ChannelNames = [3]string{"red", "green", "blue"}

// Validate validates each channel.
func (t *Tree) Validate() error {
	var errs []error
	for i, n := range t.Channels() {
		if err := n.validate(ChannelNames[i]); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("validate tree: %w", errors.Join(errs...))
	}
	return nil
}

// String returns an indented listing of each channel.
func (t *Tree) String() string {
	sb := new(strings.Builder)
	for i, n := range t.Channels() {
		sb.WriteString(ChannelNames[i])
		sb.WriteString(":\n")
		n.show(sb, 0)
	}
	return sb.String()
}
