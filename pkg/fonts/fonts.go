// Package fonts provides the font faces used for rendering.
//
// Raster output uses the Go Regular face shipped with golang.org/x/image,
// so rendering needs no font files at runtime. Parsing happens once on
// first use.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	regular     *truetype.Font
	regularErr  error
	regularOnce sync.Once
)

// Regular returns the parsed Go Regular font.
// The result is cached after first parse.
func Regular() (*truetype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = truetype.Parse(goregular.TTF)
	})
	return regular, regularErr
}

// Face returns a Go Regular face at the given size in points.
func Face(size float64) (font.Face, error) {
	f, err := Regular()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// FontFamily is the font stack for SVG text output.
const FontFamily = "Helvetica, Arial, sans-serif"
