package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"
)

// Median3 applies a 3x3 median filter with replicated borders.
func Median3(g *image.Gray) *image.Gray {
	return ToGray(effect.Median(g, 1))
}

// Sharpen convolves g with the 3x3 Laplacian sharpening kernel
// (centre 5, edge neighbours -1).
func Sharpen(g *image.Gray) *image.Gray {
	return ToGray(effect.Sharpen(g))
}

const (
	nlPatchRadius  = 1
	nlSearchRadius = 3
)

// DenoiseNLMeans is a non-local means filter with filter strength h.
// Each pixel becomes the weighted mean of pixels in a 7x7 search window,
// weighted by the similarity of their 3x3 patches. h <= 0 returns a copy.
func DenoiseNLMeans(g *image.Gray, h float64) *image.Gray {
	if h <= 0 {
		return clone(g)
	}
	w, ht := g.Rect.Dx(), g.Rect.Dy()
	n := w * ht
	wsum := make([]float64, n)
	vsum := make([]float64, n)
	diff := make([]float64, n)
	integ := make([]float64, (w+1)*(ht+1))
	patchArea := float64((2*nlPatchRadius + 1) * (2*nlPatchRadius + 1))
	h2 := h * h

	for oy := -nlSearchRadius; oy <= nlSearchRadius; oy++ {
		for ox := -nlSearchRadius; ox <= nlSearchRadius; ox++ {
			for y := 0; y < ht; y++ {
				for x := 0; x < w; x++ {
					d := float64(g.Pix[y*g.Stride+x]) - float64(at(g, x+ox, y+oy))
					diff[y*w+x] = d * d
				}
			}
			integral(diff, w, ht, integ)
			for y := 0; y < ht; y++ {
				for x := 0; x < w; x++ {
					dist := boxSum(integ, w, ht, x, y, nlPatchRadius) / patchArea
					wt := math.Exp(-dist / h2)
					wsum[y*w+x] += wt
					vsum[y*w+x] += wt * float64(at(g, x+ox, y+oy))
				}
			}
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, ht))
	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			dst.Pix[y*dst.Stride+x] = clampByte(vsum[i] / wsum[i])
		}
	}
	return dst
}

// integral fills out ((w+1)*(h+1)) with the summed-area table of src.
func integral(src []float64, w, h int, out []float64) {
	stride := w + 1
	for x := 0; x <= w; x++ {
		out[x] = 0
	}
	for y := 1; y <= h; y++ {
		out[y*stride] = 0
		var row float64
		for x := 1; x <= w; x++ {
			row += src[(y-1)*w+x-1]
			out[y*stride+x] = out[(y-1)*stride+x] + row
		}
	}
}

// boxSum sums the (2r+1)^2 window at (x,y) clipped to the image, scaled to
// the full window area so border pixels are not favoured.
func boxSum(integ []float64, w, h, x, y, r int) float64 {
	stride := w + 1
	x0, y0 := max(x-r, 0), max(y-r, 0)
	x1, y1 := min(x+r+1, w), min(y+r+1, h)
	s := integ[y1*stride+x1] - integ[y0*stride+x1] - integ[y1*stride+x0] + integ[y0*stride+x0]
	area := float64((x1 - x0) * (y1 - y0))
	full := float64((2*r + 1) * (2*r + 1))
	return s * full / area
}
