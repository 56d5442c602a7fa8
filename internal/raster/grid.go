// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

// Package raster evaluates field programs over rectangular grids
// and composes the resulting fields into images.
package raster

import (
	"fmt"
	"image"
)

// Grid maps output surface cells into the normalized square evaluation domain.
//
// Cell (x, y) of the surface is cell (Offset.X+x, Offset.Y+y) of the domain.
// Both axes are normalized by Size.X,
// so the domain is square even when the surface is not.
type Grid struct {
	// Size is the total size of the domain in cells.
	Size image.Point
	// Offset is the position of the surface's (0, 0) cell in the domain.
	Offset image.Point
}

// SquareGrid returns a grid for a w×h surface
// centered inside a square domain whose side is the larger dimension.
func SquareGrid(w, h int) Grid {
	side := max(w, h)
	return Grid{
		Size:   image.Pt(side, side),
		Offset: image.Pt((side-w)/2, (side-h)/2),
	}
}

// Coord returns the normalized coordinate of the surface cell (x, y).
func (g Grid) Coord(x, y int) (float32, float32) {
	w := float32(g.Size.X)
	return float32(g.Offset.X+x)/w*2 - 1, float32(g.Offset.Y+y)/w*2 - 1
}

// Validate reports whether the grid has a positive domain size.
func (g Grid) Validate() error {
	if g.Size.X <= 0 || g.Size.Y <= 0 {
		return fmt.Errorf("grid size %v is not positive", g.Size)
	}
	return nil
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d%+d%+d", g.Size.X, g.Size.Y, g.Offset.X, g.Offset.Y)
}
