// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"sync"
	"time"

	"github.com/arcticsynth/arctic/internal/fieldcode"
	"github.com/arcticsynth/arctic/internal/fieldtree"
	"github.com/arcticsynth/arctic/internal/raster"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"zombiezen.com/go/log"
)

type renderOptions struct {
	input            string
	piece            string
	channel          string
	output           io.WriteCloser
	size             image.Point
	offset           image.Point
	hasOffset        bool
	hasEncoding      bool
	hasCount         bool
	workers          int
	checked          bool
	encoding         fieldcode.Encoding
	instructionCount int
	colorSpace       raster.ColorSpace
}

func newRenderCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "render [options] [FILE]",
		Short:                 "render a description or program to a PNG image",
		DisableFlagsInUseLine: true,
		Args:                  cobra.MaximumNArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	opts := &renderOptions{
		size:             image.Pt(g.Width, g.Height),
		workers:          g.Workers,
		encoding:         g.Encoding,
		instructionCount: g.InstructionCount,
		colorSpace:       g.ColorSpace,
	}
	c.Flags().StringVar(&opts.piece, "piece", "", "render the gallery piece with the given `id` (or unique prefix)")
	c.Flags().StringVar(&opts.channel, "channel", "", "render only one `channel` of a three-channel description as grayscale")
	c.Flags().Var((*sizeFlag)(&opts.size), "size", "image `size` as WxH")
	c.Flags().Var((*pointFlag)(&opts.offset), "offset", "position of the image in the domain as X,Y (default centered)")
	c.Flags().IntVarP(&opts.workers, "workers", "j", opts.workers, "maximum `number` of rows to render concurrently (0 for one per CPU)")
	c.Flags().BoolVar(&opts.checked, "checked", false, "report evaluation faults in the debug log")
	c.Flags().VarP((*encodingFlag)(&opts.encoding), "encoding", "e", "instruction encoding (count or immediate)")
	c.Flags().IntVarP(&opts.instructionCount, "instructions", "n", opts.instructionCount, "fixed program `length`")
	c.Flags().Var((*colorSpaceFlag)(&opts.colorSpace), "color-space", "interpretation of the three channels (rgb or hsv)")
	outputPath := c.Flags().StringP("output", "o", "", "output `file`")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		switch {
		case len(args) == 0 && opts.piece == "":
			return errors.New("pass a FILE or --piece")
		case len(args) > 0 && opts.piece != "":
			return errors.New("cannot pass both a FILE and --piece")
		case len(args) > 0:
			opts.input = args[0]
		}
		opts.hasOffset = cmd.Flags().Changed("offset")
		opts.hasEncoding = cmd.Flags().Changed("encoding")
		opts.hasCount = cmd.Flags().Changed("instructions")

		switch {
		case *outputPath == "" && term.IsTerminal(int(os.Stdout.Fd())):
			return errors.New("refusing to send PNG to stdout (a tty). Pass --output=- to override.")
		case *outputPath == "" || *outputPath == "-":
			opts.output = nopWriteCloser{os.Stdout}
		default:
			var err error
			opts.output, err = os.Create(*outputPath)
			if err != nil {
				return err
			}
		}
		return runRender(cmd.Context(), g, opts)
	}
	return c
}

func runRender(ctx context.Context, g *globalConfig, opts *renderOptions) error {
	closeFunc := sync.OnceValue(opts.output.Close)
	defer closeFunc()

	grid := raster.SquareGrid(opts.size.X, opts.size.Y)
	if opts.hasOffset {
		grid.Offset = opts.offset
	}
	bounds := image.Rectangle{Max: opts.size}
	rasterOpts := raster.Options{
		Workers: opts.workers,
		Checked: opts.checked,
	}

	var tree *fieldtree.Tree
	var prog *fieldcode.Program
	if opts.piece != "" {
		piece, err := loadPiece(ctx, g, opts.piece)
		if err != nil {
			return err
		}
		tree = piece.Tree
		if !opts.hasEncoding {
			opts.encoding = piece.Encoding
		}
		if !opts.hasCount {
			opts.instructionCount = piece.InstructionCount
		}
	} else {
		data, err := readInput(opts.input)
		if err != nil {
			return err
		}
		if isProgram(data) {
			prog, err = parseProgram(opts.input, data)
			if err != nil {
				return err
			}
		} else {
			var node *fieldtree.Node
			tree, node, err = parseDescription(opts.input, data)
			if err != nil {
				return err
			}
			if node != nil {
				prog, err = fieldtree.Compile(node, opts.encoding, opts.instructionCount)
				if err != nil {
					return fmt.Errorf("%s: %v", opts.input, err)
				}
			}
		}
	}
	if tree != nil && opts.channel != "" {
		i, err := channelIndex(opts.channel)
		if err != nil {
			return err
		}
		prog, err = fieldtree.Compile(tree.Channels()[i], opts.encoding, opts.instructionCount)
		if err != nil {
			return fmt.Errorf("%s: %v", opts.channel, err)
		}
		tree = nil
	} else if tree == nil && opts.channel != "" {
		return errors.New("--channel requires a three-channel description")
	}

	start := time.Now()
	var img image.Image
	if tree != nil {
		var err error
		img, err = raster.RenderTree(ctx, tree, grid, bounds, &raster.TreeOptions{
			Options:          rasterOpts,
			Encoding:         opts.encoding,
			InstructionCount: opts.instructionCount,
			ColorSpace:       opts.colorSpace,
		})
		if err != nil {
			return err
		}
	} else {
		field, err := raster.Render(ctx, prog, grid, bounds, &rasterOpts)
		if err != nil {
			return err
		}
		stats := field.Stats()
		log.Debugf(ctx, "Field range [%g, %g], mean %g", stats.Min, stats.Max, stats.Mean)
		img = raster.Gray(field)
	}
	log.Debugf(ctx, "Rendered %v on grid %v in %v", bounds.Size(), grid, time.Since(start))

	cw := &countingWriter{w: opts.output}
	if err := png.Encode(cw, img); err != nil {
		return fmt.Errorf("encode png: %v", err)
	}
	if err := closeFunc(); err != nil {
		return err
	}
	log.Debugf(ctx, "Wrote %s of PNG", humanize.Bytes(uint64(cw.n)))
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
