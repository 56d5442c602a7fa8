// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/arcticsynth/arctic/internal/fieldcode"
	"github.com/arcticsynth/arctic/internal/fieldtree"
)

// readInput reads the named file or standard input if path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// isProgram reports whether data starts with the compiled program signature.
func isProgram(data []byte) bool {
	return bytes.HasPrefix(data, []byte(fieldcode.Signature))
}

func parseProgram(path string, data []byte) (*fieldcode.Program, error) {
	prog := new(fieldcode.Program)
	if err := prog.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return prog, nil
}

func parseDescription(path string, data []byte) (*fieldtree.Tree, *fieldtree.Node, error) {
	tree, node, err := fieldtree.ParseDescription(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %v", path, err)
	}
	return tree, node, nil
}

// channelIndex returns the index of the named channel in [fieldtree.ChannelNames].
func channelIndex(name string) (int, error) {
	for i, cn := range fieldtree.ChannelNames {
		if cn == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown channel %q (must be one of red, green, or blue)", name)
}
