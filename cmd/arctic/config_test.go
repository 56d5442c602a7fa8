// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/arcticsynth/arctic/internal/fieldcode"
	"github.com/arcticsynth/arctic/internal/raster"
	"github.com/google/go-cmp/cmp"
)

func TestDefaultGlobalConfig(t *testing.T) {
	got := defaultGlobalConfig()
	if err := got.validate(); err != nil {
		t.Errorf("defaultGlobalConfig().validate() = %v; want <nil>", err)
	}
}

func TestGlobalConfigMergeEnvironment(t *testing.T) {
	t.Setenv("ARCTIC_GALLERY_DB", "/foo/gallery.db")
	g := defaultGlobalConfig()
	if err := g.mergeEnvironment(); err != nil {
		t.Fatal(err)
	}
	if got, want := g.GalleryDB, "/foo/gallery.db"; got != want {
		t.Errorf("g.GalleryDB = %q; want %q", got, want)
	}
}

func TestGlobalConfigMergeFiles(t *testing.T) {
	dir := t.TempDir()
	var paths [3]string
	paths[0] = filepath.Join(dir, "config1.jwcc")
	err := os.WriteFile(paths[0], []byte(`{
		// Comments and trailing commas are allowed.
		"debug": true,
		"galleryDB": "/foo",
		"encoding": "immediate",
		"width": 640,
		"someFutureField": {"nested": [1, 2, 3]},
	}`+"\n"), 0o666)
	if err != nil {
		t.Fatal(err)
	}
	paths[1] = filepath.Join(dir, "config2.jwcc")
	err = os.WriteFile(paths[1], []byte(`{"galleryDB": "/bar", "colorSpace": "HSV", "instructionCount": 256}`+"\n"), 0o666)
	if err != nil {
		t.Fatal(err)
	}
	paths[2] = filepath.Join(dir, "does-not-exist.jwcc")

	g := defaultGlobalConfig()
	if err := g.mergeFiles(slices.Values(paths[:])); err != nil {
		t.Error("mergeFiles:", err)
	}
	want := &globalConfig{
		Debug:            true,
		GalleryDB:        "/bar",
		InstructionCount: 256,
		Encoding:         fieldcode.ImmediateEncoding,
		Width:            640,
		Height:           1080,
		ColorSpace:       raster.HSV,
	}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestGlobalConfigMergeFilesErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Syntax", `{"debug": }`},
		{"NotObject", `[]`},
		{"BadEncoding", `{"encoding": "c"}`},
		{"WrongType", `{"width": "wide"}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.jwcc")
			if err := os.WriteFile(path, []byte(test.content), 0o666); err != nil {
				t.Fatal(err)
			}
			g := defaultGlobalConfig()
			if err := g.mergeFiles(slices.Values([]string{path})); err == nil {
				t.Errorf("mergeFiles(%q) did not return an error", test.content)
			}
		})
	}
}

func TestGlobalConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(g *globalConfig)
	}{
		{"ZeroInstructions", func(g *globalConfig) { g.InstructionCount = 0 }},
		{"TooManyInstructions", func(g *globalConfig) { g.InstructionCount = fieldcode.MaxInstructions + 1 }},
		{"NoEncoding", func(g *globalConfig) { g.Encoding = 0 }},
		{"NegativeWorkers", func(g *globalConfig) { g.Workers = -1 }},
		{"ZeroWidth", func(g *globalConfig) { g.Width = 0 }},
		{"BadColorSpace", func(g *globalConfig) { g.ColorSpace = 7 }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := defaultGlobalConfig()
			test.modify(g)
			if err := g.validate(); err == nil {
				t.Error("validate() = <nil>; want error")
			}
		})
	}
}

func TestConfigFiles(t *testing.T) {
	t.Setenv("ARCTIC_CONFIG", "/etc/extra.jwcc")
	var last string
	for path := range configFiles() {
		last = path
	}
	if last != "/etc/extra.jwcc" {
		t.Errorf("last config file = %q; want %q", last, "/etc/extra.jwcc")
	}
}
