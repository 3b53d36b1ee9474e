package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
)

// OtsuThreshold picks the global threshold maximizing between-class variance.
// Pixels strictly above the returned value belong to the bright class.
// A uniform image yields 0.
func OtsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	w, h := g.Rect.Dx(), g.Rect.Dy()
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for _, v := range row {
			hist[v]++
		}
	}
	total := w * h
	if total == 0 {
		return 0
	}

	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i * c)
	}

	var (
		best   float64
		thresh int
		wB     int
		sumB   float64
	)
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sumAll - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			thresh = t
		}
	}
	return uint8(thresh)
}

// Binarize maps pixels above t to 255 and the rest to 0. With inverse set the
// mapping is flipped, so dark ink becomes 255 foreground.
func Binarize(g *image.Gray, t uint8, inverse bool) *image.Gray {
	hi, lo := uint8(255), uint8(0)
	if inverse {
		hi, lo = 0, 255
	}
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+w]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x, v := range src {
			if v > t {
				out[x] = hi
			} else {
				out[x] = lo
			}
		}
	}
	return dst
}

// Otsu thresholds g at its Otsu level.
func Otsu(g *image.Gray, inverse bool) *image.Gray {
	return Binarize(g, OtsuThreshold(g), inverse)
}

// AdaptiveGaussian thresholds each pixel against the Gaussian-weighted mean
// of its block x block neighbourhood minus c. block must be odd and >= 3.
func AdaptiveGaussian(g *image.Gray, block int, c float64) *image.Gray {
	if block < 3 {
		block = 3
	}
	if block%2 == 0 {
		block++
	}
	mean := gaussianBlur(g, block)
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if float64(g.Pix[y*g.Stride+x]) > float64(mean.Pix[y*mean.Stride+x])-c {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

// gaussianKernel returns the size x 1 kernel with the sigma derived from the
// window size when no explicit sigma is given.
func gaussianKernel(size int) *convolution.Kernel {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	k := convolution.NewKernel(size, 1)
	r := size / 2
	var sum float64
	for i := range k.Matrix {
		d := float64(i - r)
		k.Matrix[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += k.Matrix[i]
	}
	for i := range k.Matrix {
		k.Matrix[i] /= sum
	}
	return k
}

// gaussianBlur runs a separable blur with replicated borders.
func gaussianBlur(g *image.Gray, size int) *image.Gray {
	k := gaussianKernel(size)
	opts := &convolution.Options{}
	rows := convolution.Convolve(g, k, opts)
	return ToGray(convolution.Convolve(rows, k.Transposed(), opts))
}
