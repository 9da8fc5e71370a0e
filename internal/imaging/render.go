package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"math/rand/v2"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEWEBP = "image/webp"

	// DefaultQuality is the lossy export quality (0..100).
	DefaultQuality = 95
)

// Noise configures the perturbation pass.
type Noise struct {
	Rate      float64 // per-pixel selection probability
	Magnitude int     // max absolute channel offset
}

// DefaultNoise touches about 5% of pixels by at most 2 intensity units.
var DefaultNoise = Noise{Rate: 0.05, Magnitude: 2}

// Decode decodes pixels with whichever registered codec matches.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Render draws img onto a fresh NRGBA surface. The surface holds pixels only.
func Render(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Orient applies an EXIF orientation (2..8) to px, returning a new surface.
// Orientation 1 returns px unchanged.
func Orient(px *image.NRGBA, o int) *image.NRGBA {
	if o < 2 || o > 8 {
		return px
	}
	w, h := px.Rect.Dx(), px.Rect.Dy()
	dw, dh := w, h
	if o >= 5 {
		dw, dh = h, w
	}
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch o {
			case 2:
				dx, dy = w-1-x, y
			case 3:
				dx, dy = w-1-x, h-1-y
			case 4:
				dx, dy = x, h-1-y
			case 5:
				dx, dy = y, x
			case 6:
				dx, dy = h-1-y, x
			case 7:
				dx, dy = h-1-y, w-1-x
			case 8:
				dx, dy = y, w-1-x
			}
			si := px.PixOffset(x, y)
			di := dst.PixOffset(dx, dy)
			copy(dst.Pix[di:di+4], px.Pix[si:si+4])
		}
	}
	return dst
}

// Perturb adds bounded per-pixel noise in place and returns the number of
// pixels touched. Each pixel is selected independently; a selected pixel has
// one nonzero offset added to R, G and B, clamped to [0,255]. Alpha is never
// modified.
func Perturb(px *image.NRGBA, rng *rand.Rand, n Noise) int {
	if n.Magnitude <= 0 || n.Rate <= 0 {
		return 0
	}
	w, h := px.Rect.Dx(), px.Rect.Dy()
	touched := 0
	for y := 0; y < h; y++ {
		row := px.Pix[y*px.Stride : y*px.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			if rng.Float64() >= n.Rate {
				continue
			}
			off := rng.IntN(2*n.Magnitude) - n.Magnitude
			if off >= 0 {
				off++
			}
			row[i] = clamp(int(row[i]) + off)
			row[i+1] = clamp(int(row[i+1]) + off)
			row[i+2] = clamp(int(row[i+2]) + off)
			touched++
		}
	}
	return touched
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// OutputType picks the export format for a source media type: JPEG and WEBP
// are kept, everything else becomes PNG.
func OutputType(mime string) string {
	switch mime {
	case MIMEJPEG, "image/jpg", "image/pjpeg", "image/heic", "image/heif":
		return MIMEJPEG
	case MIMEWEBP:
		return MIMEWEBP
	}
	return MIMEPNG
}

// Export encodes px as mime (after OutputType normalisation).
func Export(px image.Image, mime string, quality int) ([]byte, string, error) {
	out := OutputType(mime)
	var buf bytes.Buffer
	var err error
	switch out {
	case MIMEJPEG:
		err = jpeg.Encode(&buf, px, &jpeg.Options{Quality: quality})
	case MIMEWEBP:
		err = webp.Encode(&buf, px, &webp.Options{Quality: float32(quality)})
	default:
		err = png.Encode(&buf, px)
	}
	if err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", out, err)
	}
	return buf.Bytes(), out, nil
}
