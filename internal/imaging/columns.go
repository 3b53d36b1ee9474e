package imaging

import "image"

// Column is a half-open horizontal span [Start, End) of a page image.
type Column struct {
	Start int
	End   int
}

// Width of the span in pixels.
func (c Column) Width() int { return c.End - c.Start }

const (
	gutterBandLo      = 0.3
	gutterBandHi      = 0.7
	gutterDensityFrac = 0.1
)

// DetectColumns finds a single vertical gutter near the middle of a page.
//
// The page is Otsu-binarized with ink as foreground and projected onto the
// x axis. Inside the band between 30% and 70% of the width, the widest run
// of x positions whose ink count stays below 10% of the mean projection is
// the gutter candidate. A candidate at least minGap pixels wide splits the
// page at its midpoint; otherwise the whole width is one column.
func DetectColumns(img image.Image, minGap int) []Column {
	g := ToGray(img)
	w, h := g.Rect.Dx(), g.Rect.Dy()
	full := []Column{{Start: 0, End: w}}
	if w == 0 || h == 0 {
		return full
	}

	ink := Otsu(g, true)
	profile := make([]int, w)
	var total int
	for y := 0; y < h; y++ {
		row := ink.Pix[y*ink.Stride : y*ink.Stride+w]
		for x, v := range row {
			if v != 0 {
				profile[x]++
				total++
			}
		}
	}
	if total == 0 {
		return full
	}
	mean := float64(total) / float64(w)
	limit := gutterDensityFrac * mean

	lo, hi := int(float64(w)*gutterBandLo), int(float64(w)*gutterBandHi)
	bestStart, bestLen := -1, 0
	runStart := -1
	for x := lo; x <= hi; x++ {
		sparse := x < hi && float64(profile[x]) < limit
		if sparse {
			if runStart < 0 {
				runStart = x
			}
			continue
		}
		if runStart >= 0 {
			if n := x - runStart; n > bestLen {
				bestStart, bestLen = runStart, n
			}
			runStart = -1
		}
	}
	if bestStart < 0 || bestLen < minGap {
		return full
	}
	mid := bestStart + bestLen/2
	return []Column{{Start: 0, End: mid}, {Start: mid, End: w}}
}
