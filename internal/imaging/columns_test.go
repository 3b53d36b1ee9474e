package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// page returns a white w x h image with black vertical blocks [x0,x1).
func page(w, h int, blocks ...[2]int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = 255
	}
	for _, b := range blocks {
		for y := 0; y < h; y++ {
			for x := b[0]; x < b[1]; x++ {
				g.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return g
}

func TestDetectColumnsBlankPage(t *testing.T) {
	cols := DetectColumns(page(200, 300), 4)
	assert.Equal(t, []Column{{0, 200}}, cols)
}

func TestDetectColumnsTwoBlocks(t *testing.T) {
	cols := DetectColumns(page(200, 300, [2]int{10, 90}, [2]int{110, 190}), 4)
	require.Len(t, cols, 2)
	assert.Equal(t, 0, cols[0].Start)
	assert.Equal(t, 200, cols[1].End)
	assert.Equal(t, cols[0].End, cols[1].Start)
	assert.GreaterOrEqual(t, cols[0].End, 95)
	assert.LessOrEqual(t, cols[0].End, 105)
}

func TestDetectColumnsNarrowGap(t *testing.T) {
	cols := DetectColumns(page(200, 300, [2]int{10, 99}, [2]int{101, 190}), 4)
	assert.Len(t, cols, 1)
}

func TestDetectColumnsGapOutsideBand(t *testing.T) {
	cols := DetectColumns(page(200, 300, [2]int{30, 200}), 4)
	assert.Equal(t, []Column{{0, 200}}, cols)
}

func TestDetectColumnsRespectsMinGap(t *testing.T) {
	img := page(200, 300, [2]int{10, 95}, [2]int{105, 190})
	assert.Len(t, DetectColumns(img, 10), 2)
	assert.Len(t, DetectColumns(img, 11), 1)
}
