// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/arcticsynth/arctic/internal/fieldcode"
	"github.com/spf13/cobra"
	"zombiezen.com/go/log"
)

type listOptions struct {
	files []string
	full  bool
	rawPC bool
}

func newListCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "list [options] FILE [...]",
		Short:                 "show the instructions of compiled programs",
		DisableFlagsInUseLine: true,
		Args:                  cobra.MinimumNArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	opts := new(listOptions)
	c.Flags().BoolVarP(&opts.full, "full", "f", false, "show padding and the whole constant pool")
	c.Flags().BoolVarP(&opts.rawPC, "raw-pc", "0", false, "show literal PC values")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		opts.files = args
		return runList(cmd.Context(), os.Stdout, opts)
	}
	return c
}

func runList(ctx context.Context, w io.Writer, opts *listOptions) error {
	pcBase := 1
	if opts.rawPC {
		pcBase = 0
	}
	for i, path := range opts.files {
		data, err := readInput(path)
		if err != nil {
			return err
		}
		if !isProgram(data) {
			return fmt.Errorf("%s: not a compiled program", path)
		}
		prog, err := parseProgram(path, data)
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		err = fieldcode.List(w, prog, &fieldcode.ListOptions{
			Name:   path,
			PCBase: pcBase,
			Full:   opts.full,
		})
		if err != nil {
			return err
		}
		if err := prog.Validate(); err != nil {
			log.Warnf(ctx, "%s: %v", path, err)
		} else if err := prog.Check(); err != nil {
			log.Warnf(ctx, "%s: %v", path, err)
		}
	}
	return nil
}
