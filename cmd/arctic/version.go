// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/arcticsynth/arctic/internal/fieldcode"
	"github.com/spf13/cobra"
)

// arcticVersion is the version string filled in by the linker (e.g. "1.2.3").
var arcticVersion string

func newVersionCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "version",
		Short:                 "show version information",
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		return runVersion(os.Stdout)
	}
	return c
}

// mainVersion returns the version of the arctic binary
// or the empty string if it is unknown.
func mainVersion() string {
	if arcticVersion != "" {
		return arcticVersion
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return ""
}

func runVersion(w io.Writer) error {
	v := mainVersion()
	if v == "" {
		v = "(unknown)"
	}
	_, err := fmt.Fprintf(w, "arctic %s\nprogram format %d\n%s %s/%s\n",
		v, fieldcode.FormatVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return err
}
