// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/arcticsynth/arctic/internal/fieldcode"
	"github.com/arcticsynth/arctic/internal/fieldtree"
	"github.com/spf13/cobra"
	"zombiezen.com/go/log"
)

type compileOptions struct {
	inputFilename    string
	outputFilename   string
	channel          string
	encoding         fieldcode.Encoding
	instructionCount int
	list             int
	parseOnly        bool
	rawPC            bool
}

func newCompileCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "compile [options] FILE",
		Short:                 "compile a description to a program",
		DisableFlagsInUseLine: true,
		Args:                  cobra.ExactArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	opts := new(compileOptions)
	c.Flags().StringVarP(&opts.outputFilename, "output", "o", "arctic.out", "output to `filename`")
	c.Flags().StringVar(&opts.channel, "channel", "", "`channel` (red, green, or blue) to compile from a three-channel description")
	c.Flags().VarP((*encodingFlag)(&opts.encoding), "encoding", "e", "instruction encoding (count or immediate)")
	c.Flags().IntVarP(&opts.instructionCount, "instructions", "n", 0, "fixed program `length`")
	c.Flags().CountVarP(&opts.list, "list", "l", "produce a listing of the compiled program")
	c.Flags().BoolVarP(&opts.parseOnly, "parse-only", "p", false, "do not write the program")
	c.Flags().BoolVarP(&opts.rawPC, "raw-pc", "0", false, "show literal PC values")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		opts.inputFilename = args[0]
		if !cmd.Flags().Changed("encoding") {
			opts.encoding = g.Encoding
		}
		if !cmd.Flags().Changed("instructions") {
			opts.instructionCount = g.InstructionCount
		}
		return runCompile(cmd.Context(), opts)
	}
	return c
}

func runCompile(ctx context.Context, opts *compileOptions) error {
	data, err := readInput(opts.inputFilename)
	if err != nil {
		return err
	}
	tree, node, err := parseDescription(opts.inputFilename, data)
	if err != nil {
		return err
	}
	name := opts.inputFilename
	switch {
	case tree != nil && opts.channel == "":
		return fmt.Errorf("%s has three channels; pass --channel", opts.inputFilename)
	case tree != nil:
		i, err := channelIndex(opts.channel)
		if err != nil {
			return err
		}
		node = tree.Channels()[i]
		name += ":" + opts.channel
	case opts.channel != "":
		return fmt.Errorf("%s has a single channel; --channel not allowed", opts.inputFilename)
	}

	prog, err := fieldtree.Compile(node, opts.encoding, opts.instructionCount)
	if err != nil {
		return fmt.Errorf("%s: %v", name, err)
	}
	log.Debugf(ctx, "Compiled %s: %d nodes into %d instructions and %d constants",
		name, node.Size(), prog.Len(), len(prog.Constants))
	if opts.list > 0 {
		pcBase := 0
		if !opts.rawPC {
			pcBase = 1
		}
		listOpts := &fieldcode.ListOptions{
			Name:   name,
			PCBase: pcBase,
			Full:   opts.list > 1,
		}
		if err := fieldcode.List(os.Stdout, prog, listOpts); err != nil {
			return err
		}
	}

	if opts.parseOnly {
		return nil
	}
	output, err := prog.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.outputFilename, output, 0o666); err != nil {
		return err
	}
	return nil
}
