// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

//go:build unix

package main

import (
	"slices"

	"go4.org/xdgdir"
)

func dataDir() string {
	return xdgdir.Data.Path()
}

// configDirs returns the directories to search for configuration
// in ascending order of precedence.
func configDirs() []string {
	dirs := slices.Clone(xdgdir.Config.SearchPaths())
	slices.Reverse(dirs)
	return dirs
}
