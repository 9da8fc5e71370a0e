package pdfmeta

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// SampleInfo populates the info dictionary of a generated sample document.
type SampleInfo struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
	Created  time.Time
	Modified time.Time
	// XRefStream writes a cross-reference stream instead of a classic table.
	XRefStream bool
	// ObjectStream stores the info dictionary in a compressed object stream,
	// the way pdf-lib and most modern writers do. Implies XRefStream.
	ObjectStream bool
}

type xrefEntry struct {
	typ byte
	f2  uint32
	f3  uint16
}

// writeObjStm writes object num as a Flate-compressed object stream holding
// the single object inner with body obj.
func writeObjStm(b *bytes.Buffer, num, inner int, obj string) {
	hdr := fmt.Sprintf("%d 0\n", inner)
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	_, _ = zw.Write([]byte(hdr + obj))
	_ = zw.Close()
	fmt.Fprintf(b, "%d 0 obj\n<< /Type /ObjStm /N 1 /First %d /Filter /FlateDecode /Length %d >>\nstream\n",
		num, len(hdr), z.Len())
	b.Write(z.Bytes())
	b.WriteString("\nendstream\nendobj\n")
}

// DefaultSample mirrors a typical leaked internal report.
var DefaultSample = SampleInfo{
	Title:    "Q3 Confidential Strategy",
	Author:   "John Doe (CEO)",
	Subject:  "Internal Only",
	Keywords: "confidential, merger, layoffs",
	Creator:  "Microsoft Word",
	Producer: "Acrobat Distiller 10.0",
	Created:  time.Date(2023, 10, 1, 9, 30, 0, 0, time.UTC),
	Modified: time.Date(2023, 10, 2, 17, 45, 0, 0, time.UTC),
}

func pdfString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return "(" + r.Replace(s) + ")"
}

// Sample builds a one-page PDF carrying info.
func Sample(info SampleInfo) []byte {
	content := "BT /F1 24 Tf 72 720 Td (Confidential sample) Tj ET"
	var infoDict strings.Builder
	infoDict.WriteString("<<")
	add := func(key, v string) {
		if v != "" {
			fmt.Fprintf(&infoDict, " /%s %s", key, pdfString(v))
		}
	}
	add("Title", info.Title)
	add("Author", info.Author)
	add("Subject", info.Subject)
	add("Keywords", info.Keywords)
	add("Creator", info.Creator)
	add("Producer", info.Producer)
	if !info.Created.IsZero() {
		add("CreationDate", FormatDate(info.Created))
	}
	if !info.Modified.IsZero() {
		add("ModDate", FormatDate(info.Modified))
	}
	infoDict.WriteString(" >>")

	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		infoDict.String(),
	}

	const infoNum = 6
	streamed := info.XRefStream || info.ObjectStream

	var b bytes.Buffer
	b.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")
	entries := []xrefEntry{{typ: 0, f2: 0, f3: 0xFFFF}}
	for i, o := range objs {
		num := i + 1
		if info.ObjectStream && num == infoNum {
			entries = append(entries, xrefEntry{typ: 2, f2: uint32(len(objs) + 1)})
			continue
		}
		entries = append(entries, xrefEntry{typ: 1, f2: uint32(b.Len())})
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", num, o)
	}
	if info.ObjectStream {
		entries = append(entries, xrefEntry{typ: 1, f2: uint32(b.Len())})
		writeObjStm(&b, len(objs)+1, infoNum, objs[infoNum-1])
	}
	id := "[<5348524544444552> <5348524544444552>]"

	if streamed {
		self := len(entries)
		entries = append(entries, xrefEntry{typ: 1, f2: uint32(b.Len())})
		var body []byte
		for _, e := range entries {
			body = append(body, e.typ)
			body = binary.BigEndian.AppendUint32(body, e.f2)
			body = binary.BigEndian.AppendUint16(body, e.f3)
		}
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 4 2] /Root 1 0 R /Info %d 0 R /ID %s /Length %d >>\nstream\n",
			self, len(entries), infoNum, id, len(body))
		b.Write(body)
		b.WriteString("\nendstream\nendobj\n")
		fmt.Fprintf(&b, "startxref\n%d\n%%%%EOF\n", entries[self].f2)
		return b.Bytes()
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(entries))
	for _, e := range entries[1:] {
		fmt.Fprintf(&b, "%010d 00000 n \n", e.f2)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R /Info %d 0 R /ID %s >>\nstartxref\n%d\n%%%%EOF\n", len(entries), infoNum, id, xref)
	return b.Bytes()
}
