package engine

import (
	"github.com/unformat/shredder/internal/imaging"
	"github.com/unformat/shredder/internal/pdfmeta"
	"github.com/unformat/shredder/internal/redact"
	"github.com/unformat/shredder/internal/types"
)

// Inspect enumerates the metadata or sensitive patterns in f. The result is
// never empty: when nothing is found it holds a single STATUS finding. It is
// sorted by descending risk, ties kept in discovery order.
func (e *Engine) Inspect(f File, cat types.Category, narrate types.Narrator) ([]types.Finding, error) {
	if cat == types.CatUnsupported {
		return nil, ErrUnsupportedFileType
	}
	narrate.Sayf("[PROCESS] INSPECTING_%s_STREAM...", streamName(cat))

	var (
		fs  []types.Finding
		err error
	)
	switch cat {
	case types.CatImage:
		fs, err = e.inspectImage(f, narrate)
	case types.CatDocument:
		fs, err = inspectDocument(f)
	case types.CatText:
		fs, err = inspectText(f, narrate)
	default:
		return nil, ErrUnsupportedFileType
	}
	if err != nil {
		return nil, err
	}
	if len(fs) == 0 {
		fs = append(fs, types.StatusFinding(noMetadata))
	}
	types.SortFindings(fs)
	return fs, nil
}

const noMetadata = "NO_METADATA_FOUND"

func (e *Engine) inspectImage(f File, narrate types.Narrator) ([]types.Finding, error) {
	data, raw := f.Data, false
	if imaging.IsHEIC(f.Name) {
		narrate.Say("[PROCESS] CONVERTING_HEIC_FOR_INSPECTION...")
		t := e.transcoder.Transcode(f.Data, e.quality)
		if t.Warning != nil {
			narrate.Say("[WARN] HEIC_CONVERSION_FAILED. ATTEMPTING_RAW_READ...")
			raw = true
		}
		data = t.Data
	}
	md, err := imaging.ReadMetadata(data, raw)
	if err != nil {
		return nil, &DecodeError{Category: types.CatImage, Err: err}
	}
	for _, w := range md.Warnings {
		narrate.Sayf("[WARN] METADATA_BLOCK_SKIPPED: %v", w)
	}
	return imaging.Findings(md.Tags), nil
}

var documentMediumKeys = map[string]bool{"Author": true, "Creator": true, "Producer": true}

func inspectDocument(f File) ([]types.Finding, error) {
	info, err := pdfmeta.Read(f.Data)
	if err != nil {
		return nil, &DecodeError{Category: types.CatDocument, Err: err}
	}
	fields := info.Fields()
	out := make([]types.Finding, 0, len(fields))
	for _, fd := range fields {
		r := types.RiskLow
		if documentMediumKeys[fd.Key] {
			r = types.RiskMedium
		}
		out = append(out, types.Finding{Key: fd.Key, Value: fd.Value, Risk: r})
	}
	return out, nil
}

func inspectText(f File, narrate types.Narrator) ([]types.Finding, error) {
	text, err := redact.Decode(f.Data)
	if err != nil {
		return nil, &DecodeError{Category: types.CatText, Err: err}
	}
	return redact.Scan(text, narrate), nil
}
