package pdfmeta

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/ledongthuc/pdf"
)

// Info is the document information dictionary plus the page count. Nil
// fields were absent from the document.
type Info struct {
	Title        *string
	Author       *string
	Subject      *string
	Creator      *string
	Producer     *string
	Keywords     *string
	CreationDate *time.Time
	ModDate      *time.Time
	PageCount    int
}

// Field is one present info entry rendered for display.
type Field struct {
	Key   string
	Value string
}

const isoLayout = "2006-01-02T15:04:05.000Z"

// Fields lists present entries in dictionary order, dates as ISO-8601 UTC.
// PageCount is always present.
func (in Info) Fields() []Field {
	var out []Field
	str := func(key string, v *string) {
		if v != nil {
			out = append(out, Field{Key: key, Value: *v})
		}
	}
	date := func(key string, v *time.Time) {
		if v != nil {
			out = append(out, Field{Key: key, Value: v.UTC().Format(isoLayout)})
		}
	}
	str("Title", in.Title)
	str("Author", in.Author)
	str("Subject", in.Subject)
	str("Creator", in.Creator)
	str("Producer", in.Producer)
	str("Keywords", in.Keywords)
	date("CreationDate", in.CreationDate)
	date("ModificationDate", in.ModDate)
	out = append(out, Field{Key: "PageCount", Value: strconv.Itoa(in.PageCount)})
	return out
}

// Read parses the info dictionary and page count. Malformed input, including
// input that makes the parser panic, is reported as an error.
func Read(data []byte) (info Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = Info{}, fmt.Errorf("pdf: malformed document: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Info{}, fmt.Errorf("pdf: %w", err)
	}
	d := r.Trailer().Key("Info")
	info = Info{
		Title:        textField(d, "Title"),
		Author:       textField(d, "Author"),
		Subject:      textField(d, "Subject"),
		Creator:      textField(d, "Creator"),
		Producer:     textField(d, "Producer"),
		Keywords:     textField(d, "Keywords"),
		CreationDate: dateField(d, "CreationDate"),
		ModDate:      dateField(d, "ModDate"),
		PageCount:    r.NumPage(),
	}
	return info, nil
}

func textField(d pdf.Value, key string) *string {
	v := d.Key(key)
	if v.Kind() != pdf.String {
		return nil
	}
	s := v.Text()
	return &s
}

func dateField(d pdf.Value, key string) *time.Time {
	v := d.Key(key)
	if v.Kind() != pdf.String {
		return nil
	}
	t, err := ParseDate(v.Text())
	if err != nil {
		return nil
	}
	return &t
}
