package captcha

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/gazette-ocr/constants"
	"github.com/joseph-ayodele/gazette-ocr/internal/common"
	"github.com/joseph-ayodele/gazette-ocr/internal/ocr"
)

type fakeSource struct {
	img  []byte
	err  error
	urls []string
}

func (f *fakeSource) URL(path string) string { return "http://site/" + path }

func (f *fakeSource) GetBytes(_ context.Context, u string) ([]byte, error) {
	f.urls = append(f.urls, u)
	return f.img, f.err
}

type scriptedEngine struct {
	answers []string
	calls   int
	opts    ocr.RecognizeOptions
}

func (e *scriptedEngine) Recognize(_ context.Context, _ []byte, opts ocr.RecognizeOptions) (string, error) {
	e.opts = opts
	a := e.answers[min(e.calls, len(e.answers)-1)]
	e.calls++
	return a, nil
}

func captchaPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 40; x++ {
			c := color.RGBA{R: 240, G: 240, B: 240, A: 255}
			if x%8 < 3 && y > 3 && y < 12 {
				c = color.RGBA{R: 20, G: 20, B: 80, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestClean(t *testing.T) {
	assert.Equal(t, "AB12", Clean(" A-B 1.2Z9\n"))
	assert.Equal(t, "x7", Clean("x7"))
	assert.Equal(t, "", Clean(" -- "))
}

func TestSolveRetriesUntilNonEmpty(t *testing.T) {
	src := &fakeSource{img: captchaPNG(t)}
	eng := &scriptedEngine{answers: []string{"", "  ", "a b-c d e"}}
	s := NewSolver(src, eng, 5, nil, nil)
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }

	got, err := s.Solve(context.Background(), constants.CaptchaLogin)
	require.NoError(t, err)
	assert.Equal(t, "abcd", got)
	assert.Equal(t, 3, eng.calls)
	assert.Equal(t, "http://site/captcha/captcha.php?1700000000123", src.urls[0])
	assert.Equal(t, ocr.PSMSingleLine, eng.opts.PSM)
	assert.Equal(t, whitelist, eng.opts.Whitelist)
}

func TestSolveSearchEndpoint(t *testing.T) {
	src := &fakeSource{img: captchaPNG(t)}
	s := NewSolver(src, &scriptedEngine{answers: []string{"Q7W2"}}, 5, nil, nil)

	_, err := s.Solve(context.Background(), constants.CaptchaSearch)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(src.urls[0], "http://site/assets/captcha/captcha.php?"))
}

func TestSolveExhaustsAttempts(t *testing.T) {
	src := &fakeSource{err: errors.New("connection reset")}
	eng := &scriptedEngine{answers: []string{"ABCD"}}
	s := NewSolver(src, eng, 3, nil, nil)

	_, err := s.Solve(context.Background(), constants.CaptchaSearch)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCaptchaFailed)
	assert.Len(t, src.urls, 3)
	assert.Equal(t, 0, eng.calls)
}
