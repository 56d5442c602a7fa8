// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"

	"github.com/arcticsynth/arctic/internal/fieldcode"
	"github.com/arcticsynth/arctic/internal/fieldtree"
	"github.com/arcticsynth/arctic/internal/gallery"
	"github.com/spf13/cobra"
	"zombiezen.com/go/log"
)

type generateOptions struct {
	seed     int64
	hasSeed  bool
	ops      fieldcode.OpSet
	maxDepth int
	leafProb float64
	node     bool
	output   string
	save     bool
	name     string
}

func newGenerateCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "generate [options]",
		Short:                 "generate a random image description",
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	opts := &generateOptions{
		ops:      fieldcode.AllOps(),
		maxDepth: fieldtree.DefaultMaxDepth,
		leafProb: 0.5,
	}
	c.Flags().Int64Var(&opts.seed, "seed", 0, "random `seed` (default is chosen at random)")
	c.Flags().Var(&opSetFlag{set: &opts.ops}, "ops", "comma-separated `opcodes` that may appear (may be repeated)")
	c.Flags().IntVar(&opts.maxDepth, "max-depth", opts.maxDepth, "maximum tree `depth`")
	c.Flags().Float64Var(&opts.leafProb, "leaf-probability", opts.leafProb, "`probability` that an interior node is a leaf (0 grows full trees)")
	c.Flags().BoolVar(&opts.node, "node", false, "generate a single channel")
	c.Flags().StringVarP(&opts.output, "output", "o", "-", "write description to `path`")
	c.Flags().BoolVar(&opts.save, "save", false, "save the description to the gallery")
	c.Flags().StringVar(&opts.name, "name", "", "`name` of the saved piece")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		opts.hasSeed = cmd.Flags().Changed("seed")
		return runGenerate(cmd.Context(), g, opts)
	}
	return c
}

func runGenerate(ctx context.Context, g *globalConfig, opts *generateOptions) error {
	if opts.node && opts.save {
		return fmt.Errorf("--save cannot be used with --node")
	}
	if opts.maxDepth < 1 {
		return fmt.Errorf("--max-depth must be at least 1")
	}
	if !(opts.leafProb >= 0 && opts.leafProb <= 1) {
		return fmt.Errorf("--leaf-probability must be in [0, 1]")
	}
	seed := opts.seed
	if !opts.hasSeed {
		seed = rand.Int64()
	}
	log.Debugf(ctx, "Generating with seed %d", seed)
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	genOpts := &fieldtree.GenerateOptions{
		Ops:             slices.Collect(opts.ops.All()),
		MaxDepth:        opts.maxDepth,
		LeafProbability: opts.leafProb,
		Encoding:        g.Encoding,
	}
	if opts.leafProb == 0 {
		genOpts.LeafProbability = -1
	}

	var data []byte
	var tree *fieldtree.Tree
	var err error
	if opts.node {
		data, err = fieldtree.MarshalNode(fieldtree.GenerateNode(rng, genOpts))
	} else {
		tree = fieldtree.Generate(rng, genOpts)
		data, err = fieldtree.MarshalTree(tree)
	}
	if err != nil {
		return err
	}
	if opts.save {
		if _, err := fieldtree.CompileTree(tree, g.Encoding, g.InstructionCount); err != nil {
			return fmt.Errorf("seed %d: %v", seed, err)
		}
	}
	data = append(data, '\n')
	if opts.output == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
	} else if err := os.WriteFile(opts.output, data, 0o666); err != nil {
		return err
	}

	if !opts.save {
		return nil
	}
	return withGallery(ctx, g, func(gal *gallery.Gallery) error {
		piece := &gallery.Piece{
			Name:             opts.name,
			Seed:             seed,
			HasSeed:          true,
			Tree:             tree,
			Encoding:         g.Encoding,
			InstructionCount: g.InstructionCount,
		}
		if err := gal.Save(ctx, piece); err != nil {
			return err
		}
		log.Infof(ctx, "Saved piece %v", piece.ID)
		return nil
	})
}
