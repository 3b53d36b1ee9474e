package imaging

import "image"

// CloseInk performs a morphological closing of the dark (ink) pixels of a
// binary image with a 2x2 structuring element: ink is dilated, then eroded.
// Gaps of one pixel inside strokes are bridged; the image does not shift.
func CloseInk(g *image.Gray) *image.Gray {
	// Dark dilation is a min filter; dark erosion is a max filter.
	grown := window2(g, -1, minOp)
	return window2(grown, 0, maxOp)
}

func minOp(a, b uint8) uint8 { return min(a, b) }
func maxOp(a, b uint8) uint8 { return max(a, b) }

// window2 folds op over the 2x2 window starting at (x+off, y+off). The
// anchor moves between the two passes so that closing does not shift ink.
func window2(g *image.Gray, off int, op func(a, b uint8) uint8) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := at(g, x+off, y+off)
			v = op(v, at(g, x+off+1, y+off))
			v = op(v, at(g, x+off, y+off+1))
			v = op(v, at(g, x+off+1, y+off+1))
			dst.Pix[y*dst.Stride+x] = v
		}
	}
	return dst
}
