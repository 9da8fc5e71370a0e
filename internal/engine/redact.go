package engine

import (
	"errors"
	"strings"

	"github.com/unformat/shredder/internal/imaging"
	"github.com/unformat/shredder/internal/pdfmeta"
	"github.com/unformat/shredder/internal/redact"
	"github.com/unformat/shredder/internal/types"
)

// Redact produces a cleaned copy of f. It does not consult inspection
// results: every category is cleaned unconditionally.
func (e *Engine) Redact(f File, cat types.Category, narrate types.Narrator) (Artifact, error) {
	if cat == types.CatUnsupported {
		return Artifact{}, ErrUnsupportedFileType
	}
	narrate.Say("[ACTION] INITIATING_SHRED_SEQUENCE...")

	var (
		data []byte
		mime string
		err  error
	)
	switch cat {
	case types.CatImage:
		data, mime, err = e.redactImage(f, narrate)
	case types.CatDocument:
		data, err = e.redactDocument(f, narrate)
		mime = "application/pdf"
	case types.CatText:
		data, err = redactText(f, narrate)
		mime = "text/plain"
	default:
		return Artifact{}, ErrUnsupportedFileType
	}
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Name: CleanName(f.Name), MIME: mime, Data: data}, nil
}

func (e *Engine) redactImage(f File, narrate types.Narrator) ([]byte, string, error) {
	data, mime, orient := f.Data, f.MIME, true
	if imaging.IsHEIC(f.Name) {
		narrate.Say("[PROCESS] CONVERTING_HEIC_TO_JPEG...")
		t := e.transcoder.Transcode(f.Data, e.quality)
		if t.Warning != nil {
			narrate.Sayf("[WARN] HEIC_CONVERSION_FAILED. USING_ORIGINAL_BUFFER: %v", t.Warning)
		} else {
			orient = false
		}
		data, mime = t.Data, t.MIME
	}

	img, format, err := imaging.Decode(data)
	if err != nil {
		return nil, "", &DecodeError{Category: types.CatImage, Err: err}
	}
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/" + format
	}
	px := imaging.Render(img)
	if orient {
		px = imaging.Orient(px, imaging.OrientationOf(data))
	}

	narrate.Say("[ACTION] INJECTING_VISUAL_NOISE (AI-PROOFING)...")
	imaging.Perturb(px, e.rng(), e.noise)

	narrate.Say("[ACTION] STRIPPING_METADATA_SEGMENTS...")
	out, outMIME, err := imaging.Export(px, mime, e.quality)
	if err != nil {
		return nil, "", &EncodeError{Category: types.CatImage, Err: err}
	}
	return out, outMIME, nil
}

func (e *Engine) redactDocument(f File, narrate types.Narrator) ([]byte, error) {
	if _, err := pdfmeta.Read(f.Data); err != nil {
		return nil, &DecodeError{Category: types.CatDocument, Err: err}
	}
	narrate.Say("[ACTION] REWRITING_INFO_DICTIONARY...")
	res, err := pdfmeta.Scrub(f.Data, e.now())
	if err != nil {
		if errors.Is(err, pdfmeta.ErrWrite) || errors.Is(err, pdfmeta.ErrVerify) {
			return nil, &EncodeError{Category: types.CatDocument, Err: err}
		}
		return nil, &DecodeError{Category: types.CatDocument, Err: err}
	}
	return res.Data, nil
}

func redactText(f File, narrate types.Narrator) ([]byte, error) {
	out, err := redact.Redact(f.Data, narrate)
	if err != nil {
		return nil, &DecodeError{Category: types.CatText, Err: err}
	}
	return out, nil
}
