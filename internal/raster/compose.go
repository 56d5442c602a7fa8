// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package raster

import (
	"context"
	"fmt"
	"image"

	"github.com/arcticsynth/arctic/internal/fieldcode"
	"github.com/arcticsynth/arctic/internal/fieldtree"
)

// Gray returns a grayscale image of f,
// mapping -1 to black and 1 to white.
func Gray(f *Field) *image.Gray {
	img := image.NewGray(f.Rect)
	for y := f.Rect.Min.Y; y < f.Rect.Max.Y; y++ {
		src := f.row(y)
		dst := img.Pix[img.PixOffset(f.Rect.Min.X, y):]
		for i, v := range src {
			dst[i] = to8(Unit(v))
		}
	}
	return img
}

// Compose returns a color image whose channels are r, g, and b
// remapped through cs.
// The three fields must have the same bounds.
func Compose(r, g, b *Field, cs ColorSpace) (*image.RGBA, error) {
	if r.Rect != g.Rect || r.Rect != b.Rect {
		return nil, fmt.Errorf("compose: channel bounds differ (%v, %v, %v)", r.Rect, g.Rect, b.Rect)
	}
	img := image.NewRGBA(r.Rect)
	for y := r.Rect.Min.Y; y < r.Rect.Max.Y; y++ {
		rrow, grow, brow := r.row(y), g.row(y), b.row(y)
		for i := range rrow {
			c := cs.Color(Unit(rrow[i]), Unit(grow[i]), Unit(brow[i]))
			img.SetRGBA(r.Rect.Min.X+i, y, c)
		}
	}
	return img, nil
}

// TreeOptions is the set of parameters to [RenderTree].
type TreeOptions struct {
	Options
	// Encoding is the instruction encoding to compile to.
	// If zero, [fieldcode.CountEncoding] is used.
	Encoding fieldcode.Encoding
	// InstructionCount is the fixed program length.
	// If zero, [fieldcode.DefaultInstructionCount] is used.
	InstructionCount int
	ColorSpace       ColorSpace
}

// RenderTree compiles each channel of t and renders it over bounds,
// then composes the channels into a single image.
func RenderTree(ctx context.Context, t *fieldtree.Tree, grid Grid, bounds image.Rectangle, opts *TreeOptions) (*image.RGBA, error) {
	if opts == nil {
		opts = new(TreeOptions)
	}
	enc := opts.Encoding
	if enc == 0 {
		enc = fieldcode.CountEncoding
	}
	progs, err := fieldtree.CompileTree(t, enc, opts.InstructionCount)
	if err != nil {
		return nil, fmt.Errorf("render tree: %v", err)
	}
	var fields [3]*Field
	for i, prog := range progs {
		fields[i], err = Render(ctx, prog, grid, bounds, &opts.Options)
		if err != nil {
			return nil, fmt.Errorf("render tree: %s: %w", fieldtree.ChannelNames[i], err)
		}
	}
	return Compose(fields[0], fields[1], fields[2], opts.ColorSpace)
}
