package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"github.com/jdeng/goheif"
)

// ConversionWarning reports a failed HEIC transcode. Processing continues on
// the original buffer.
type ConversionWarning struct {
	Err error
}

func (w *ConversionWarning) Error() string { return "heic conversion failed: " + w.Err.Error() }
func (w *ConversionWarning) Unwrap() error { return w.Err }

// Transcoded carries either a converted buffer or the original buffer tagged
// with a warning. Downstream code consumes both the same way.
type Transcoded struct {
	Data    []byte
	MIME    string
	Warning error
}

// Converted reports whether Data holds the transcoded image.
func (t Transcoded) Converted() bool { return t.Warning == nil }

// Transcoder converts camera-native images to a standard raster format.
type Transcoder interface {
	Transcode(data []byte, quality int) Transcoded
}

// IsHEIC reports whether the file name indicates a HEIC image.
func IsHEIC(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".heic")
}

// HEIFTranscoder decodes HEIC with goheif and re-encodes the pixels as JPEG.
type HEIFTranscoder struct{}

func (HEIFTranscoder) Transcode(data []byte, quality int) Transcoded {
	img, err := decodeHEIF(data)
	if err != nil {
		return Transcoded{Data: data, MIME: "image/heic", Warning: &ConversionWarning{Err: err}}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return Transcoded{Data: data, MIME: "image/heic", Warning: &ConversionWarning{Err: err}}
	}
	out := buf.Bytes()
	if block, err := heifExif(data); err == nil && len(block) > 0 {
		out = withExifSegment(out, block)
	}
	return Transcoded{Data: out, MIME: "image/jpeg"}
}

// withExifSegment inserts an APP1 Exif segment right after SOI so that the
// transcoded JPEG still carries the container's camera metadata.
func withExifSegment(jpg, block []byte) []byte {
	n := 2 + len(exifHeader) + len(block)
	if n > 0xFFFF || !bytes.HasPrefix(jpg, jpegSOI) {
		return jpg
	}
	out := make([]byte, 0, len(jpg)+n+2)
	out = append(out, jpegSOI...)
	out = append(out, 0xFF, 0xE1, byte(n>>8), byte(n))
	out = append(out, exifHeader...)
	out = append(out, block...)
	return append(out, jpg[2:]...)
}

func decodeHEIF(data []byte) (img image.Image, err error) {
	// the HEVC decoder panics on some truncated inputs
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("heif decoder: %v", r)
		}
	}()
	return goheif.Decode(bytes.NewReader(data))
}

// heifExif returns the TIFF-headed EXIF block stored in a HEIF container.
func heifExif(data []byte) (block []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			block, err = nil, fmt.Errorf("heif exif: %v", r)
		}
	}()
	raw, err := goheif.ExtractExif(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return tiffStart(raw), nil
}
