package pdfmeta

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var (
	// ErrEncrypted is returned for documents with an /Encrypt dictionary.
	ErrEncrypted = errors.New("pdf: encrypted documents are not supported")
	// ErrWrite wraps a failure to serialize the scrubbed document.
	ErrWrite = errors.New("pdf: cannot write scrubbed document")
	// ErrVerify wraps a failure to re-read the scrubbed output.
	ErrVerify = errors.New("pdf: scrubbed output failed verification")
)

func init() {
	// Keep pdfcpu from creating its configuration directory on first use.
	api.DisableConfigDir()
}

// Result is the outcome of Scrub.
type Result struct {
	Data []byte
	// InfoObject is the object number of the rewritten info dictionary.
	InfoObject int
	// HadInfo reports whether the source carried an info dictionary.
	HadInfo bool
}

var textKeys = []string{"Title", "Author", "Subject", "Keywords", "Creator", "Producer"}

// stampedKeys are the entries the writer fills in with its own producer
// string and clock.
var stampedKeys = []string{"Producer", "CreationDate", "ModDate"}

func writeConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

func scrubbedInfo(now time.Time) types.Dict {
	d := types.NewDict()
	for _, k := range textKeys {
		d[k] = types.StringLiteral("")
	}
	date := types.StringLiteral(FormatDate(now))
	d["CreationDate"] = date
	d["ModDate"] = date
	return d
}

// Scrub rewrites the whole document with an info dictionary whose text
// fields are empty and whose dates are now. Earlier revisions, superseded
// objects and object streams are not carried over, so no prior copy of the
// dictionary survives. Encrypted documents are refused.
func Scrub(data []byte, now time.Time) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, fmt.Errorf("pdf: malformed document: %v", r)
			if bytes.Contains(data, []byte("/Encrypt")) {
				err = ErrEncrypted
			}
		}
	}()

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), writeConfig())
	if err != nil {
		if bytes.Contains(data, []byte("/Encrypt")) {
			return Result{}, ErrEncrypted
		}
		return Result{}, fmt.Errorf("pdf: %w", err)
	}
	if ctx.Encrypt != nil {
		return Result{}, ErrEncrypted
	}

	fresh := scrubbedInfo(now)
	if ctx.Info != nil {
		if d, err := ctx.DereferenceDict(*ctx.Info); err == nil && d != nil {
			clear(d)
			maps.Copy(d, fresh)
			res.HadInfo = true
		}
	}
	if !res.HadInfo {
		ir, err := ctx.IndRefForNewObject(fresh)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrWrite, err)
		}
		ctx.Info = ir
	}
	res.InfoObject = ctx.Info.ObjectNumber.Value()

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	out := buf.Bytes()

	want := map[string]string{"Producer": "", "CreationDate": FormatDate(now), "ModDate": FormatDate(now)}
	if err := restamp(out, *ctx.Info, want); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	got, err := Read(out)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrVerify, err)
	}
	if got.Author == nil || *got.Author != "" || got.Producer == nil || *got.Producer != "" ||
		got.ModDate == nil || !got.ModDate.Equal(now.UTC().Truncate(time.Second)) {
		return Result{}, fmt.Errorf("%w: info dictionary not rewritten", ErrVerify)
	}
	res.Data = out
	return res, nil
}

const stringToken = `(\((?:\\.|[^\\)])*\)|<[0-9A-Fa-f\s]*>)`

// restamp overwrites the stamped entries of the written info object with
// the wanted values, padding with whitespace so no offset moves.
func restamp(out []byte, ref types.IndirectRef, want map[string]string) error {
	hdr := regexp.MustCompile(fmt.Sprintf(`(?:^|\s)%d\s+%d\s+obj\b`,
		ref.ObjectNumber.Value(), ref.GenerationNumber.Value()))
	loc := hdr.FindIndex(out)
	if loc == nil {
		return errors.New("info object not found in output")
	}
	end := bytes.Index(out[loc[1]:], []byte("endobj"))
	if end < 0 {
		return errors.New("info object is not terminated")
	}
	obj := out[loc[1] : loc[1]+end]

	for _, key := range stampedKeys {
		m := regexp.MustCompile(`/` + key + `\s*` + stringToken).FindSubmatchIndex(obj)
		if m == nil {
			continue
		}
		slot := obj[m[2]:m[3]]
		lit := "(" + want[key] + ")"
		if len(lit) > len(slot) {
			return fmt.Errorf("/%s value does not fit", key)
		}
		n := copy(slot, lit)
		for i := n; i < len(slot); i++ {
			slot[i] = ' '
		}
	}
	return nil
}
