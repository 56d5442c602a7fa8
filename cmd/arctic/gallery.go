// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/arcticsynth/arctic/internal/fieldtree"
	"github.com/arcticsynth/arctic/internal/gallery"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"zombiezen.com/go/log"
)

func newGalleryCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "gallery COMMAND",
		Short:                 "manage saved pieces",
		DisableFlagsInUseLine: true,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.AddCommand(
		newGalleryAddCommand(g),
		newGalleryListCommand(g),
		newGalleryRemoveCommand(g),
		newGalleryShowCommand(g),
	)
	return c
}

// withGallery opens the configured gallery for the duration of f.
func withGallery(ctx context.Context, g *globalConfig, f func(gal *gallery.Gallery) error) error {
	if g.GalleryDB == "" {
		return fmt.Errorf("gallery database not set (use ARCTIC_GALLERY_DB or --gallery)")
	}
	gal, err := gallery.Open(g.GalleryDB)
	if err != nil {
		return err
	}
	defer func() {
		if err := gal.Close(); err != nil {
			log.Errorf(ctx, "%v", err)
		}
	}()
	return f(gal)
}

// loadPiece returns the piece whose ID starts with prefix.
func loadPiece(ctx context.Context, g *globalConfig, prefix string) (*gallery.Piece, error) {
	var piece *gallery.Piece
	err := withGallery(ctx, g, func(gal *gallery.Gallery) error {
		id, err := gal.Resolve(ctx, prefix)
		if err != nil {
			return err
		}
		piece, err = gal.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return piece, nil
}

type galleryAddOptions struct {
	file string
	name string
}

func newGalleryAddCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "add [options] FILE",
		Short:                 "save a three-channel description to the gallery",
		DisableFlagsInUseLine: true,
		Args:                  cobra.ExactArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	opts := new(galleryAddOptions)
	c.Flags().StringVar(&opts.name, "name", "", "`name` of the piece")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		opts.file = args[0]
		return runGalleryAdd(cmd.Context(), g, opts)
	}
	return c
}

func runGalleryAdd(ctx context.Context, g *globalConfig, opts *galleryAddOptions) error {
	data, err := readInput(opts.file)
	if err != nil {
		return err
	}
	tree, err := fieldtree.ParseTree(data)
	if err != nil {
		return fmt.Errorf("%s: %v", opts.file, err)
	}
	return withGallery(ctx, g, func(gal *gallery.Gallery) error {
		piece := &gallery.Piece{
			Name:             opts.name,
			Tree:             tree,
			Encoding:         g.Encoding,
			InstructionCount: g.InstructionCount,
		}
		if err := gal.Save(ctx, piece); err != nil {
			return err
		}
		fmt.Println(piece.ID)
		return nil
	})
}

type galleryListOptions struct {
	limit int
}

func newGalleryListCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "list [options]",
		Aliases:               []string{"ls"},
		Short:                 "list saved pieces, newest first",
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	opts := new(galleryListOptions)
	c.Flags().IntVarP(&opts.limit, "limit", "n", 0, "show at most `n` pieces (0 for all)")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return withGallery(cmd.Context(), g, func(gal *gallery.Gallery) error {
			pieces, err := gal.List(cmd.Context(), opts.limit)
			if err != nil {
				return err
			}
			return writePieceTable(os.Stdout, pieces, time.Now())
		})
	}
	return c
}

func writePieceTable(w io.Writer, pieces []*gallery.Piece, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSEED\tNODES\tNAME")
	for _, p := range pieces {
		seed := "-"
		if p.HasSeed {
			seed = fmt.Sprint(p.Seed)
		}
		nodes := 0
		for _, root := range p.Tree.Channels() {
			nodes += root.Size()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			p.ID.String()[:8], humanize.RelTime(p.CreatedAt, now, "ago", "from now"), seed, nodes, p.Name)
	}
	return tw.Flush()
}

func newGalleryShowCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "show ID",
		Short:                 "print a saved piece's description",
		DisableFlagsInUseLine: true,
		Args:                  cobra.ExactArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		piece, err := loadPiece(cmd.Context(), g, args[0])
		if err != nil {
			return err
		}
		return writePiece(os.Stdout, piece)
	}
	return c
}

// writePiece writes the piece as a JWCC description
// with its metadata in leading comments.
func writePiece(w io.Writer, p *gallery.Piece) error {
	data, err := fieldtree.MarshalTree(p.Tree)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "// id: %v\n", p.ID)
	if p.Name != "" {
		fmt.Fprintf(w, "// name: %s\n", p.Name)
	}
	fmt.Fprintf(w, "// created: %s\n", p.CreatedAt.Format(time.RFC3339))
	if p.HasSeed {
		fmt.Fprintf(w, "// seed: %d\n", p.Seed)
	}
	fmt.Fprintf(w, "// encoding: %v, %d instructions\n", p.Encoding, p.InstructionCount)
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func newGalleryRemoveCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "rm ID [...]",
		Short:                 "delete saved pieces",
		DisableFlagsInUseLine: true,
		Args:                  cobra.MinimumNArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withGallery(ctx, g, func(gal *gallery.Gallery) error {
			for _, arg := range args {
				id, err := gal.Resolve(ctx, arg)
				if err != nil {
					return err
				}
				if err := gal.Delete(ctx, id); err != nil {
					return err
				}
				log.Debugf(ctx, "Deleted %v", id)
			}
			return nil
		})
	}
	return c
}
