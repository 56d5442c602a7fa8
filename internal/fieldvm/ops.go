// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldvm

import (
	"math"

	"github.com/arcticsynth/arctic/internal/fieldcode"
)

type vec2 struct {
	x, y float64
}

func (v vec2) sub(w vec2) vec2 {
	return vec2{v.x - w.x, v.y - w.y}
}

func (v vec2) add(w vec2) vec2 {
	return vec2{v.x + w.x, v.y + w.y}
}

func (v vec2) length() float64 {
	return math.Hypot(v.x, v.y)
}

// rotate rotates v counter-clockwise by angle radians.
func (v vec2) rotate(angle float64) vec2 {
	sin, cos := math.Sincos(angle)
	return vec2{
		x: v.x*cos - v.y*sin,
		y: v.x*sin + v.y*cos,
	}
}

// frame translates p to origin and rotates it into a shape's frame.
func frame(p, origin vec2, angle float64) vec2 {
	return p.sub(origin).rotate(-angle)
}

// params is the set of constants consumed by one instruction.
type params [fieldcode.MaxConstantsPerInstruction]float32

func (k *params) f(i int) float64 {
	return float64(k[i])
}

func (k *params) vec(i int) vec2 {
	return vec2{float64(k[i]), float64(k[i+1])}
}

// operands is the set of stack operands consumed by one instruction.
// operands[0] is the deepest (first pushed) value.
type operands [fieldcode.MaxArity]float32

// apply computes the result of a single instruction
// with the given stack operands and constants at position p.
// The result is always finite.
func apply(op fieldcode.OpCode, p vec2, in *operands, k *params) float32 {
	a, b := float64(in[0]), float64(in[1])
	switch op {
	case fieldcode.OpConst:
		return finite(k.f(0))
	case fieldcode.OpEllipse:
		return finite(ellipse(p, k.vec(0), k.vec(2), k.f(4), k.f(5)))
	case fieldcode.OpFlower:
		return finite(flower(p, k.vec(0), k.f(2), k.f(3), k.f(4), k.f(5)))
	case fieldcode.OpLinearGradient:
		return finite(linearGradient(p, k.vec(0), k.vec(2), k.f(4)))
	case fieldcode.OpRadialGradient:
		return finite(radialGradient(p, k.vec(0), k.f(2), k.f(3), k.f(4)))
	case fieldcode.OpPolarTheta:
		q := frame(p, k.vec(0), k.f(2))
		return finite(math.Atan2(q.y, q.x) / math.Pi)
	case fieldcode.OpAbsolute:
		return finite(math.Abs(a))
	case fieldcode.OpInvert:
		return finite(-a)
	case fieldcode.OpAdd:
		return finite(a + b)
	case fieldcode.OpSubtract:
		return finite(a - b)
	case fieldcode.OpMultiply:
		return finite(a * b)
	case fieldcode.OpDivide:
		return finite(clamp(a/b, -1, 1))
	case fieldcode.OpModulus:
		return finite(clamp(floatMod(a, b), -1, 1))
	case fieldcode.OpExponentiate:
		return finite(clamp(math.Pow(a, b), -1, 1))
	case fieldcode.OpSinc:
		return finite(sinc(a*k.f(0) + k.f(1)))
	case fieldcode.OpSine:
		return finite(math.Sin(a*k.f(0) + k.f(1)))
	case fieldcode.OpSpiral:
		return finite(spiral(a, k.f(2), k.f(3)))
	case fieldcode.OpSquircle:
		return finite(squircle(p, vec2{a, b}, k.vec(0), k.f(2), k.f(3)))
	default:
		return 0
	}
}

// ellipse returns a two-focus ellipse field that is positive inside.
func ellipse(p, x0, x1 vec2, size, sharp float64) float64 {
	d := p.sub(x0).length() + p.sub(x1).length()
	return clamp(size-d, -1, 1) * sharp
}

// flower returns a signed distance to a petal boundary
// that alternates between size*ratio (between petals)
// and size (at the tip of each petal).
// The six constants leave no room for a separate sharpness,
// so the distance is used at unit scale.
func flower(p, center vec2, angle, size, ratio, points float64) float64 {
	q := frame(p, center, angle)
	d := q.length()
	n := math.Floor(points)
	if !(n >= 1) {
		n = 1
	}
	sector := 2 * math.Pi / n
	local := math.Mod(math.Atan2(q.y, q.x)+math.Pi, sector) / sector
	// 0 in the middle of a sector, 1 at its edges.
	edge := math.Abs(2*local - 1)
	inner := size * ratio
	boundary := inner + (size-inner)*(1-edge)
	return clamp(boundary-d, -1, 1)
}

// linearGradient returns a smooth ramp across the line through x0 and x1,
// -1 on the right side, +1 on the left side.
func linearGradient(p, x0, x1 vec2, sharpness float64) float64 {
	dir := x1.sub(x0)
	l := dir.length()
	if l == 0 {
		return 0
	}
	v := p.sub(x0)
	dist := (dir.x*v.y - dir.y*v.x) / l
	return smoothstep(-1, 1, dist*sharpness)*2 - 1
}

func radialGradient(p, x0 vec2, w, h, angle float64) float64 {
	v := frame(p, x0, angle)
	v = vec2{v.x / w, v.y / h}
	return clamp(1-math.Sqrt2*v.length(), -1, 1)
}

func sinc(z float64) float64 {
	if z == 0 {
		return 1
	}
	return clamp(math.Sin(z)/z, -1, 1)
}

// spiral folds x into a triangle wave with n periods per unit and phase b.
// The spiral's center does not contribute to the result.
func spiral(x, n, b float64) float64 {
	t := x*n + b
	return 4*math.Abs(t-math.Floor(t)-0.5) - 1
}

// minSquircleExponent bounds the p-norm exponent away from zero,
// where the norm is undefined.
const minSquircleExponent = 1.0 / 64

// squircle returns a superellipse field of radius r
// with the p-norm exponent n, positive inside.
// offset shifts the sample position.
func squircle(p, offset, x0 vec2, r, n float64) float64 {
	q := p.sub(x0).add(offset)
	if !(n >= minSquircleExponent) {
		n = minSquircleExponent
	}
	d := math.Pow(math.Pow(math.Abs(q.x), n)+math.Pow(math.Abs(q.y), n), 1/n)
	return clamp(1-d/r, -1, 1)
}

// floatMod returns a modulo b with the sign of b,
// or zero if b is zero.
func floatMod(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a - b*math.Floor(a/b)
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// clamp limits x to [lo, hi]. NaN is returned unchanged.
func clamp(x, lo, hi float64) float64 {
	switch {
	case x < lo:
		return lo
	case x > hi:
		return hi
	default:
		return x
	}
}

// finite converts x to a float32,
// mapping NaN to zero and saturating values outside float32's range.
func finite(x float64) float32 {
	switch {
	case math.IsNaN(x):
		return 0
	case x > math.MaxFloat32:
		return math.MaxFloat32
	case x < -math.MaxFloat32:
		return -math.MaxFloat32
	default:
		return float32(x)
	}
}
