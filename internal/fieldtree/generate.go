// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldtree

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/arcticsynth/arctic/internal/fieldcode"
)

// GenerateOptions is the set of parameters to [Generate].
type GenerateOptions struct {
	// Ops is the set of opcodes that may appear in the tree.
	// If empty, every opcode may appear.
	// [fieldcode.OpConst] is always allowed
	// so that every tree can terminate.
	Ops []fieldcode.OpCode
	// MaxDepth is the maximum number of nodes
	// on any path from the root to a leaf.
	// If zero, DefaultMaxDepth is used.
	MaxDepth int
	// LeafProbability is the probability that
	// a node above MaxDepth is a leaf.
	// If zero, 0.5 is used.
	// If negative, only nodes at MaxDepth are leaves.
	LeafProbability float64
	// Encoding is the encoding the tree will be compiled with.
	// For [fieldcode.ImmediateEncoding], opcodes that cannot be encoded
	// with immediate operands are excluded.
	Encoding fieldcode.Encoding
}

// DefaultMaxDepth is the default value of [GenerateOptions.MaxDepth].
const DefaultMaxDepth = 6

// Generate returns a random three-channel tree.
func Generate(rng *rand.Rand, opts *GenerateOptions) *Tree {
	g := newGenerator(rng, opts)
	return &Tree{
		Red:   g.node(1),
		Green: g.node(1),
		Blue:  g.node(1),
	}
}

// GenerateNode returns a random single-channel tree.
func GenerateNode(rng *rand.Rand, opts *GenerateOptions) *Node {
	return newGenerator(rng, opts).node(1)
}

type generator struct {
	rng         *rand.Rand
	leaves      []fieldcode.OpCode
	combinators []fieldcode.OpCode
	maxDepth    int
	leafProb    float64
}

func newGenerator(rng *rand.Rand, opts *GenerateOptions) *generator {
	if opts == nil {
		opts = new(GenerateOptions)
	}
	g := &generator{
		rng:      rng,
		maxDepth: opts.MaxDepth,
		leafProb: opts.LeafProbability,
	}
	if g.maxDepth <= 0 {
		g.maxDepth = DefaultMaxDepth
	}
	switch {
	case g.leafProb == 0:
		g.leafProb = 0.5
	case g.leafProb < 0:
		g.leafProb = 0
	}
	ops := opts.Ops
	if len(ops) == 0 {
		ops = fieldcode.OpCodes()
	}
	for _, op := range ops {
		switch {
		case op.IsPrimitive():
			if !slices.Contains(g.leaves, op) {
				g.leaves = append(g.leaves, op)
			}
		case op.IsCombinator():
			if _, ok := op.ParameterSlot(); !ok && opts.Encoding == fieldcode.ImmediateEncoding {
				continue
			}
			if !slices.Contains(g.combinators, op) {
				g.combinators = append(g.combinators, op)
			}
		}
	}
	if !slices.Contains(g.leaves, fieldcode.OpConst) {
		g.leaves = append(g.leaves, fieldcode.OpConst)
	}
	return g
}

func (g *generator) node(depth int) *Node {
	if depth >= g.maxDepth || len(g.combinators) == 0 || g.rng.Float64() < g.leafProb {
		op := g.leaves[g.rng.IntN(len(g.leaves))]
		return NewNode(op, g.params(op))
	}
	op := g.combinators[g.rng.IntN(len(g.combinators))]
	children := make([]*Node, op.Arity())
	for i := range children {
		children[i] = g.node(depth + 1)
	}
	return NewNode(op, g.params(op), children...)
}

// params returns random parameters for op.
func (g *generator) params(op fieldcode.OpCode) []float32 {
	switch op {
	case fieldcode.OpConst:
		return []float32{g.byteValue()}
	case fieldcode.OpEllipse:
		return []float32{g.coord(), g.coord(), g.coord(), g.coord(), g.between(0.5, 2.5), g.between(0.5, 4)}
	case fieldcode.OpFlower:
		return []float32{g.coord(), g.coord(), g.angle(), g.between(0.2, 1.2), g.between(0.2, 0.9), float32(2 + g.rng.IntN(8))}
	case fieldcode.OpLinearGradient:
		return []float32{g.coord(), g.coord(), g.coord(), g.coord(), g.between(0.5, 8)}
	case fieldcode.OpRadialGradient:
		return []float32{g.coord(), g.coord(), g.between(0.2, 1.5), g.between(0.2, 1.5), g.angle()}
	case fieldcode.OpPolarTheta:
		return []float32{g.coord(), g.coord(), g.angle()}
	case fieldcode.OpSinc:
		return []float32{g.between(1, 16), g.angle()}
	case fieldcode.OpSine:
		return []float32{g.between(0.5, 8), g.angle()}
	case fieldcode.OpSpiral:
		return []float32{g.coord(), g.coord(), g.between(1, 8), g.between(0, 1)}
	case fieldcode.OpSquircle:
		return []float32{g.coord(), g.coord(), g.between(0.2, 1), g.between(0.5, 4)}
	default:
		return nil
	}
}

// byteValue maps a random byte onto [-1, 1].
func (g *generator) byteValue() float32 {
	return float32(g.rng.UintN(256))/255*2 - 1
}

func (g *generator) coord() float32 {
	return g.between(-1, 1)
}

func (g *generator) angle() float32 {
	return g.between(0, 2*math.Pi)
}

func (g *generator) between(lo, hi float32) float32 {
	return lo + (hi-lo)*g.rng.Float32()
}
