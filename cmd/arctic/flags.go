// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/arcticsynth/arctic/internal/fieldcode"
	"github.com/arcticsynth/arctic/internal/raster"
)

type encodingFlag fieldcode.Encoding

func (f *encodingFlag) Type() string  { return "encoding" }
func (f encodingFlag) String() string { return fieldcode.Encoding(f).String() }
func (f encodingFlag) Get() any       { return fieldcode.Encoding(f) }

func (f *encodingFlag) Set(s string) error {
	return (*fieldcode.Encoding)(f).UnmarshalText([]byte(s))
}

type colorSpaceFlag raster.ColorSpace

func (f *colorSpaceFlag) Type() string  { return "colorspace" }
func (f colorSpaceFlag) String() string { return raster.ColorSpace(f).String() }
func (f colorSpaceFlag) Get() any       { return raster.ColorSpace(f) }

func (f *colorSpaceFlag) Set(s string) error {
	return (*raster.ColorSpace)(f).UnmarshalText([]byte(s))
}

// opSetFlag is the implementation of [github.com/spf13/pflag.Value]
// for a set of opcodes.
// Each use of the flag adds to the set,
// but the first use replaces the default.
type opSetFlag struct {
	set     *fieldcode.OpSet
	changed bool
}

func (f *opSetFlag) Type() string { return "opcodes" }
func (f *opSetFlag) Get() any     { return *f.set }

func (f *opSetFlag) String() string {
	if f.set == nil {
		return ""
	}
	return f.set.String()
}

func (f *opSetFlag) Set(s string) error {
	parsed, err := fieldcode.ParseOpSet(s)
	if err != nil {
		return err
	}
	if !f.changed {
		*f.set = 0
		f.changed = true
	}
	*f.set |= parsed
	return nil
}

// sizeFlag is a [github.com/spf13/pflag.Value] for a "WxH" dimension.
type sizeFlag image.Point

func (f *sizeFlag) Type() string  { return "size" }
func (f sizeFlag) String() string { return fmt.Sprintf("%dx%d", f.X, f.Y) }
func (f sizeFlag) Get() any       { return image.Point(f) }

func (f *sizeFlag) Set(s string) error {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return fmt.Errorf("size %q is not in the form WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return fmt.Errorf("size %q: width: %v", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return fmt.Errorf("size %q: height: %v", s, err)
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("size %q is not positive", s)
	}
	*f = sizeFlag{X: w, Y: h}
	return nil
}

// pointFlag is a [github.com/spf13/pflag.Value] for an "X,Y" position.
type pointFlag image.Point

func (f *pointFlag) Type() string  { return "point" }
func (f pointFlag) String() string { return fmt.Sprintf("%d,%d", f.X, f.Y) }
func (f pointFlag) Get() any       { return image.Point(f) }

func (f *pointFlag) Set(s string) error {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return fmt.Errorf("point %q is not in the form X,Y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return fmt.Errorf("point %q: x: %v", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return fmt.Errorf("point %q: y: %v", s, err)
	}
	*f = pointFlag{X: x, Y: y}
	return nil
}
