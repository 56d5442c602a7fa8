// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/arcticsynth/arctic/internal/fieldcode"
	"github.com/arcticsynth/arctic/internal/raster"
	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/tailscale/hujson"
)

type globalConfig struct {
	Debug            bool               `json:"debug"`
	GalleryDB        string             `json:"galleryDB"`
	InstructionCount int                `json:"instructionCount"`
	Encoding         fieldcode.Encoding `json:"encoding"`
	Workers          int                `json:"workers"`
	Width            int                `json:"width"`
	Height           int                `json:"height"`
	ColorSpace       raster.ColorSpace  `json:"colorSpace"`
}

// defaultGlobalConfig returns the configuration used
// before any environment variables or files are consulted.
func defaultGlobalConfig() *globalConfig {
	return &globalConfig{
		InstructionCount: fieldcode.DefaultInstructionCount,
		Encoding:         fieldcode.CountEncoding,
		Width:            1920,
		Height:           1080,
		ColorSpace:       raster.RGB,
	}
}

func (g *globalConfig) mergeEnvironment() error {
	if dd := dataDir(); dd != "" {
		g.GalleryDB = filepath.Join(dd, "arctic", "gallery.db")
	}
	if path := os.Getenv("ARCTIC_GALLERY_DB"); path != "" {
		g.GalleryDB = path
	}
	return nil
}

// configFiles returns the paths of the configuration files to merge
// in ascending order of precedence.
func configFiles() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, dir := range configDirs() {
			if !yield(filepath.Join(dir, "arctic", "config.jwcc")) {
				return
			}
		}
		if path := os.Getenv("ARCTIC_CONFIG"); path != "" {
			yield(path)
		}
	}
}

func (g *globalConfig) mergeFiles(paths iter.Seq[string]) error {
	for path := range paths {
		huJSONData, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		jsonData, err := hujson.Standardize(huJSONData)
		if err != nil {
			return fmt.Errorf("read %s: %v", path, err)
		}
		if err := jsonv2.Unmarshal(jsonData, g, jsonv2.RejectUnknownMembers(false)); err != nil {
			return fmt.Errorf("read %s: %v", path, err)
		}
	}

	return nil
}

// UnmarshalJSONFrom unmarshals the configuration object from the JSON decoder,
// merging any fields in the JSON object with existing values.
func (g *globalConfig) UnmarshalJSONFrom(in *jsontext.Decoder) error {
	tok, err := in.ReadToken()
	if err != nil {
		return err
	}
	if got := tok.Kind(); got != '{' {
		return fmt.Errorf("config must be an object not a %v", got)
	}

	for {
		keyToken, err := in.ReadToken()
		if err != nil {
			return err
		}
		switch kind := keyToken.Kind(); kind {
		case '}':
			return nil
		case '"':
			// Keep going.
		default:
			return fmt.Errorf("unexpected non-string key (%v) in object", kind)
		}

		k := keyToken.String()
		var dst any
		switch k {
		case "debug":
			dst = &g.Debug
		case "galleryDB":
			dst = &g.GalleryDB
		case "instructionCount":
			dst = &g.InstructionCount
		case "encoding":
			dst = &g.Encoding
		case "workers":
			dst = &g.Workers
		case "width":
			dst = &g.Width
		case "height":
			dst = &g.Height
		case "colorSpace":
			dst = &g.ColorSpace
		default:
			if reject, _ := jsonv2.GetOption(in.Options(), jsonv2.RejectUnknownMembers); reject {
				return fmt.Errorf("unmarshal config: unknown field %q", k)
			}
			if err := in.SkipValue(); err != nil {
				return err
			}
			continue
		}
		if err := jsonv2.UnmarshalDecode(in, dst); err != nil {
			return fmt.Errorf("unmarshal config.%s: %w", k, err)
		}
	}
}

func (g *globalConfig) validate() error {
	if g.InstructionCount < 1 || g.InstructionCount > fieldcode.MaxInstructions {
		return fmt.Errorf("instruction count %d out of range [1, %d]", g.InstructionCount, fieldcode.MaxInstructions)
	}
	if !g.Encoding.IsValid() {
		return fmt.Errorf("unknown encoding %v", g.Encoding)
	}
	if g.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("image size %dx%d is not positive", g.Width, g.Height)
	}
	if g.ColorSpace != raster.RGB && g.ColorSpace != raster.HSV {
		return fmt.Errorf("unknown color space %v", g.ColorSpace)
	}
	return nil
}
