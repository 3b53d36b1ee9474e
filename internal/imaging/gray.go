// Package imaging holds the raster operations used ahead of character
// recognition: thresholding, filtering, morphology and column detection.
// All operations work on *image.Gray and return new images.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"
)

// Decode reads any registered image format.
func Decode(b []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodePNG serializes g for engines that take encoded bytes.
func EncodePNG(g *image.Gray) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, g); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ToGray converts img to an 8-bit grayscale image anchored at (0,0).
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

// Upscale resizes g by an integer factor with Lanczos resampling.
func Upscale(g *image.Gray, factor int) *image.Gray {
	if factor <= 1 {
		return clone(g)
	}
	b := g.Bounds()
	return ToGray(transform.Resize(g, b.Dx()*factor, b.Dy()*factor, transform.Lanczos))
}

// CropColumns returns the vertical strip [x0, x1) of g.
func CropColumns(g *image.Gray, x0, x1 int) *image.Gray {
	b := g.Bounds()
	if x0 < 0 {
		x0 = 0
	}
	if x1 > b.Dx() {
		x1 = b.Dx()
	}
	if x1 < x0 {
		x1 = x0
	}
	dst := image.NewGray(image.Rect(0, 0, x1-x0, b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[y*g.Stride+x0 : y*g.Stride+x1]
		copy(dst.Pix[y*dst.Stride:], src)
	}
	return dst
}

func clone(g *image.Gray) *image.Gray {
	b := g.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return dst
}

// at reads g with coordinates clamped to the image (replicated border).
func at(g *image.Gray, x, y int) uint8 {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	if x < 0 {
		x = 0
	} else if x >= w {
		x = w - 1
	}
	if y < 0 {
		y = 0
	} else if y >= h {
		y = h - 1
	}
	return g.Pix[y*g.Stride+x]
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
