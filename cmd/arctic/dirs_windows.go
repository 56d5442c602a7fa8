// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package main

import "os"

func dataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return dir
}

func configDirs() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{dir}
}
