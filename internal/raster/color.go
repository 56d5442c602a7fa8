// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package raster

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// ColorSpace is a stateless remapping of three [0, 1] channel values
// to an RGB color.
type ColorSpace uint8

// Defined color spaces.
const (
	// RGB uses the channels as red, green, and blue directly.
	RGB ColorSpace = iota
	// HSV interprets the channels as hue, saturation, and value.
	HSV
)

// String returns the lowercase name of the color space.
func (cs ColorSpace) String() string {
	switch cs {
	case RGB:
		return "rgb"
	case HSV:
		return "hsv"
	default:
		return fmt.Sprintf("ColorSpace(%d)", uint8(cs))
	}
}

// MarshalText returns the name of the color space.
func (cs ColorSpace) MarshalText() ([]byte, error) {
	if cs > HSV {
		return nil, fmt.Errorf("marshal color space: unknown value %d", uint8(cs))
	}
	return []byte(cs.String()), nil
}

// UnmarshalText parses a color space name (case-insensitive).
func (cs *ColorSpace) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "rgb":
		*cs = RGB
	case "hsv":
		*cs = HSV
	default:
		return fmt.Errorf("unmarshal color space: unknown color space %q", text)
	}
	return nil
}

// Color converts three channel values in [0, 1] to a color.
// Values outside [0, 1] are clamped.
func (cs ColorSpace) Color(c0, c1, c2 float32) color.RGBA {
	c0, c1, c2 = unitClamp(c0), unitClamp(c1), unitClamp(c2)
	if cs == HSV {
		c0, c1, c2 = hsvToRGB(c0, c1, c2)
	}
	return color.RGBA{R: to8(c0), G: to8(c1), B: to8(c2), A: 0xff}
}

// hsvToRGB converts a hue, saturation, and value in [0, 1] to RGB.
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	h6 := float64(h) * 6
	sector := math.Floor(h6)
	frac := float32(h6 - sector)
	p := v * (1 - s)
	q := v * (1 - s*frac)
	t := v * (1 - s*(1-frac))
	switch int(sector) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

// Unit maps a field value in [-1, 1] to [0, 1].
func Unit(v float32) float32 {
	return unitClamp((v + 1) / 2)
}

func unitClamp(x float32) float32 {
	switch {
	case x > 1:
		return 1
	case x >= 0:
		return x
	default:
		// Also NaN.
		return 0
	}
}

func to8(x float32) uint8 {
	return uint8(x*255 + 0.5)
}
