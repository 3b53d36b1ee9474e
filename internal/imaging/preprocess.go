package imaging

import "image"

// PrepareCaptcha readies a CAPTCHA image for single-line recognition:
// grayscale, 2x Lanczos upscale, Otsu binarization, 3x3 median and sharpen.
func PrepareCaptcha(img image.Image) *image.Gray {
	g := Upscale(ToGray(img), 2)
	g = Otsu(g, false)
	g = Median3(g)
	return Sharpen(g)
}

// PageOptions tune PreparePage.
type PageOptions struct {
	DenoiseStrength int
	BlockSize       int
}

// adaptiveC is the constant subtracted from the local Gaussian mean.
const adaptiveC = 2

// PreparePage readies one page column for block-text recognition: optional
// non-local means denoise, adaptive Gaussian binarization and an ink closing
// that rejoins diacritic strokes broken by thresholding.
func PreparePage(img image.Image, opts PageOptions) *image.Gray {
	g := ToGray(img)
	if opts.DenoiseStrength > 0 {
		g = DenoiseNLMeans(g, float64(opts.DenoiseStrength))
	}
	g = AdaptiveGaussian(g, opts.BlockSize, adaptiveC)
	return CloseInk(g)
}
