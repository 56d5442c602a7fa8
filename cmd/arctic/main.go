// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

// arctic generates, compiles, and renders procedural field images.
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"
	"zombiezen.com/go/bass/sigterm"
	"zombiezen.com/go/log"
)

func main() {
	rootCommand := &cobra.Command{
		Use:           "arctic",
		Short:         "procedural field renderer",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	g := defaultGlobalConfig()
	if err := g.mergeEnvironment(); err != nil {
		initLogging(false)
		log.Errorf(context.Background(), "%v", err)
		os.Exit(1)
	}
	if err := g.mergeFiles(configFiles()); err != nil {
		initLogging(false)
		log.Errorf(context.Background(), "%v", err)
		os.Exit(1)
	}

	rootCommand.PersistentFlags().StringVar(&g.GalleryDB, "gallery", g.GalleryDB, "`path` to gallery database")
	rootCommand.PersistentFlags().BoolVar(&g.Debug, "debug", g.Debug, "show debugging output")

	rootCommand.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		initLogging(g.Debug)
		return g.validate()
	}

	rootCommand.AddCommand(
		newCompileCommand(g),
		newGalleryCommand(g),
		newGenerateCommand(g),
		newListCommand(g),
		newRenderCommand(g),
		newVersionCommand(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), sigterm.Signals()...)
	err := rootCommand.ExecuteContext(ctx)
	cancel()
	if err != nil {
		initLogging(g.Debug)
		log.Errorf(context.Background(), "%v", err)
		os.Exit(1)
	}
}

var initLogOnce sync.Once

func initLogging(showDebug bool) {
	initLogOnce.Do(func() {
		minLogLevel := log.Info
		if showDebug {
			minLogLevel = log.Debug
		}
		log.SetDefault(&log.LevelFilter{
			Min:    minLogLevel,
			Output: log.New(os.Stderr, "arctic: ", log.StdFlags, nil),
		})
	})
}
