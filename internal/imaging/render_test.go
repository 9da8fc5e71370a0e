package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func TestPerturb_BoundedAndAlphaUntouched(t *testing.T) {
	base := solid(100, 100, color.NRGBA{R: 100, G: 150, B: 200, A: 77})
	px := Render(base)
	touched := Perturb(px, seeded(), DefaultNoise)

	assert.Equal(t, base.Bounds(), px.Bounds())
	assert.Greater(t, touched, 300)
	assert.Less(t, touched, 700)

	changed := 0
	for i := 0; i < len(px.Pix); i += 4 {
		dr := int(px.Pix[i]) - 100
		dg := int(px.Pix[i+1]) - 150
		db := int(px.Pix[i+2]) - 200
		assert.Equal(t, uint8(77), px.Pix[i+3])
		if dr == 0 && dg == 0 && db == 0 {
			continue
		}
		changed++
		assert.Equal(t, dr, dg)
		assert.Equal(t, dr, db)
		assert.LessOrEqual(t, dr, 2)
		assert.GreaterOrEqual(t, dr, -2)
	}
	assert.Equal(t, touched, changed, "every selected pixel gets a nonzero offset")
}

func TestPerturb_Clamps(t *testing.T) {
	px := Render(solid(60, 60, color.NRGBA{R: 255, G: 0, B: 255, A: 255}))
	Perturb(px, seeded(), Noise{Rate: 1, Magnitude: 2})
	for i := 0; i < len(px.Pix); i += 4 {
		assert.GreaterOrEqual(t, px.Pix[i], uint8(253))
		assert.LessOrEqual(t, px.Pix[i+1], uint8(2))
		assert.Equal(t, uint8(255), px.Pix[i+3])
	}
}

func TestPerturb_Disabled(t *testing.T) {
	px := Render(solid(10, 10, color.NRGBA{R: 1, G: 2, B: 3, A: 255}))
	before := append([]byte{}, px.Pix...)
	assert.Zero(t, Perturb(px, seeded(), Noise{}))
	assert.Equal(t, before, px.Pix)
}

func TestRender_SubImageOrigin(t *testing.T) {
	base := solid(10, 10, color.NRGBA{A: 255})
	base.SetNRGBA(5, 5, color.NRGBA{R: 9, A: 255})
	sub := base.SubImage(image.Rect(5, 5, 8, 8))
	px := Render(sub)
	assert.Equal(t, image.Rect(0, 0, 3, 3), px.Bounds())
	assert.Equal(t, uint8(9), px.NRGBAAt(0, 0).R)
}

func TestOrient(t *testing.T) {
	px := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	px.SetNRGBA(0, 0, color.NRGBA{R: 1, A: 255})
	px.SetNRGBA(1, 0, color.NRGBA{R: 2, A: 255})

	assert.Same(t, px, Orient(px, 1))

	cw := Orient(px, 6)
	assert.Equal(t, image.Rect(0, 0, 1, 2), cw.Bounds())
	assert.Equal(t, uint8(1), cw.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(2), cw.NRGBAAt(0, 1).R)

	ccw := Orient(px, 8)
	assert.Equal(t, uint8(2), ccw.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(1), ccw.NRGBAAt(0, 1).R)

	flip := Orient(px, 2)
	assert.Equal(t, uint8(2), flip.NRGBAAt(0, 0).R)
}

func TestOutputType(t *testing.T) {
	assert.Equal(t, MIMEJPEG, OutputType("image/jpeg"))
	assert.Equal(t, MIMEJPEG, OutputType("image/heic"))
	assert.Equal(t, MIMEWEBP, OutputType("image/webp"))
	assert.Equal(t, MIMEPNG, OutputType("image/png"))
	assert.Equal(t, MIMEPNG, OutputType("image/gif"))
	assert.Equal(t, MIMEPNG, OutputType(""))
}

func TestExport_StripsMetadata(t *testing.T) {
	data, err := SampleJPEG(DefaultSample)
	require.NoError(t, err)
	img, format, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)

	out, mime, err := Export(Render(img), MIMEJPEG, DefaultQuality)
	require.NoError(t, err)
	assert.Equal(t, MIMEJPEG, mime)

	md, err := ReadMetadata(out, false)
	require.NoError(t, err)
	assert.Empty(t, md.Tags)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, DefaultSample.Width, cfg.Width)
	assert.Equal(t, DefaultSample.Height, cfg.Height)
}

func TestExport_GIFBecomesPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, solid(8, 8, color.NRGBA{G: 200, A: 255}), nil))
	img, format, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "gif", format)

	out, mime, err := Export(Render(img), "image/gif", DefaultQuality)
	require.NoError(t, err)
	assert.Equal(t, MIMEPNG, mime)
	assert.True(t, bytes.HasPrefix(out, pngSig))
}

func TestExport_WebPRoundTrip(t *testing.T) {
	out, mime, err := Export(solid(16, 16, color.NRGBA{B: 180, A: 255}), MIMEWEBP, DefaultQuality)
	require.NoError(t, err)
	assert.Equal(t, MIMEWEBP, mime)
	img, _, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
}

func TestDecode_Garbage(t *testing.T) {
	_, _, err := Decode([]byte("not an image"))
	assert.Error(t, err)
}
