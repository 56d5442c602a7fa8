// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package raster

import (
	"image"
	"math"
)

// Field is a rectangular grid of scalar values.
type Field struct {
	// Pix holds the values in row-major order.
	// The value at (x, y) is at
	// Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)].
	Pix    []float32
	Stride int
	Rect   image.Rectangle
}

// NewField returns a new zero-valued Field with the given bounds.
func NewField(r image.Rectangle) *Field {
	r = r.Canon()
	return &Field{
		Pix:    make([]float32, r.Dx()*r.Dy()),
		Stride: r.Dx(),
		Rect:   r,
	}
}

// Bounds returns the field's domain.
func (f *Field) Bounds() image.Rectangle {
	return f.Rect
}

func (f *Field) offset(x, y int) int {
	return (y-f.Rect.Min.Y)*f.Stride + (x - f.Rect.Min.X)
}

// At returns the value at (x, y) or zero if (x, y) is out of bounds.
func (f *Field) At(x, y int) float32 {
	if !image.Pt(x, y).In(f.Rect) {
		return 0
	}
	return f.Pix[f.offset(x, y)]
}

// Set sets the value at (x, y).
// Set does nothing if (x, y) is out of bounds.
func (f *Field) Set(x, y int, v float32) {
	if !image.Pt(x, y).In(f.Rect) {
		return
	}
	f.Pix[f.offset(x, y)] = v
}

// row returns the values of row y.
func (f *Field) row(y int) []float32 {
	start := f.offset(f.Rect.Min.X, y)
	return f.Pix[start : start+f.Rect.Dx()]
}

// Stats is a summary of a [Field]'s values.
type Stats struct {
	Min  float32
	Max  float32
	Mean float32
}

// Stats returns the minimum, maximum, and mean of the field's values.
// An empty field has zero Stats.
func (f *Field) Stats() Stats {
	if f.Rect.Empty() {
		return Stats{}
	}
	s := Stats{Min: math.MaxFloat32, Max: -math.MaxFloat32}
	var sum float64
	for y := f.Rect.Min.Y; y < f.Rect.Max.Y; y++ {
		for _, v := range f.row(y) {
			s.Min = min(s.Min, v)
			s.Max = max(s.Max, v)
			sum += float64(v)
		}
	}
	s.Mean = float32(sum / float64(f.Rect.Dx()*f.Rect.Dy()))
	return s
}
