package imaging

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"time"
)

// SampleInfo describes the metadata written into a generated sample photo.
type SampleInfo struct {
	Width, Height int
	Make          string
	Model         string
	Software      string
	Taken         time.Time
	Lat, Long     float64
	NoGPS         bool

	// IPTC
	Byline   string
	City     string
	Keywords []string

	// XMP
	CreatorTool string
}

// DefaultSample is a phone photo with a location fix.
var DefaultSample = SampleInfo{
	Width: 64, Height: 48,
	Make: "Apple", Model: "iPhone 15 Pro", Software: "17.4.1",
	Taken: time.Date(2024, 3, 9, 14, 22, 5, 0, time.UTC),
	Lat:   37.7749, Long: -122.4194,
	Byline: "John Doe", City: "San Francisco", Keywords: []string{"offsite", "draft"},
	CreatorTool: "Adobe Lightroom 7.2",
}

// SampleJPEG builds a JPEG carrying EXIF (with GPS), IPTC and XMP segments.
func SampleJPEG(info SampleInfo) ([]byte, error) {
	if info.Width <= 0 || info.Height <= 0 {
		info.Width, info.Height = 64, 48
	}
	img := image.NewNRGBA(image.Rect(0, 0, info.Width, info.Height))
	for y := 0; y < info.Height; y++ {
		for x := 0; x < info.Width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / info.Width),
				G: uint8(y * 255 / info.Height),
				B: 128, A: 255,
			})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	jpg := buf.Bytes()

	var segs []byte
	segs = appendSegment(segs, 0xE1, append(append([]byte{}, exifHeader...), sampleTIFF(info)...))
	if iim := sampleIIM(info); len(iim) > 0 {
		segs = appendSegment(segs, 0xED, sampleIRB(iim))
	}
	if info.CreatorTool != "" {
		segs = appendSegment(segs, 0xE1, append(append([]byte{}, xmpHeader...), sampleXMP(info)...))
	}
	out := append([]byte{}, jpegSOI...)
	out = append(out, segs...)
	return append(out, jpg[2:]...), nil
}

func appendSegment(dst []byte, marker byte, payload []byte) []byte {
	n := len(payload) + 2
	dst = append(dst, 0xFF, marker, byte(n>>8), byte(n))
	return append(dst, payload...)
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte // raw value bytes, little endian
}

const (
	tiffASCII    = 2
	tiffLong     = 4
	tiffRational = 5
)

func asciiEntry(tag uint16, s string) ifdEntry {
	b := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: tiffASCII, count: uint32(len(b)), data: b}
}

func longEntry(tag uint16, v uint32) ifdEntry {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return ifdEntry{tag: tag, typ: tiffLong, count: 1, data: b}
}

func dmsEntry(tag uint16, deg float64) ifdEntry {
	deg = math.Abs(deg)
	d := math.Floor(deg)
	m := math.Floor((deg - d) * 60)
	s := ((deg-d)*60 - m) * 60
	b := make([]byte, 24)
	vals := [][2]uint32{{uint32(d), 1}, {uint32(m), 1}, {uint32(math.Round(s * 10000)), 10000}}
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[i*8:], v[0])
		binary.LittleEndian.PutUint32(b[i*8+4:], v[1])
	}
	return ifdEntry{tag: tag, typ: tiffRational, count: 3, data: b}
}

func ifdSize(n int) int { return 2 + 12*n + 4 }

// sampleTIFF lays out header, IFD0, Exif IFD, GPS IFD, then the value area.
func sampleTIFF(info SampleInfo) []byte {
	stamp := info.Taken.Format("2006:01:02 15:04:05")
	ifd0 := []ifdEntry{}
	if info.Make != "" {
		ifd0 = append(ifd0, asciiEntry(0x010F, info.Make))
	}
	if info.Model != "" {
		ifd0 = append(ifd0, asciiEntry(0x0110, info.Model))
	}
	if info.Software != "" {
		ifd0 = append(ifd0, asciiEntry(0x0131, info.Software))
	}
	ifd0 = append(ifd0, asciiEntry(0x0132, stamp))
	exifIFD := []ifdEntry{asciiEntry(0x9003, stamp), asciiEntry(0x9004, stamp)}
	var gps []ifdEntry
	if !info.NoGPS {
		latRef, longRef := "N", "E"
		if info.Lat < 0 {
			latRef = "S"
		}
		if info.Long < 0 {
			longRef = "W"
		}
		gps = []ifdEntry{
			asciiEntry(0x0001, latRef), dmsEntry(0x0002, info.Lat),
			asciiEntry(0x0003, longRef), dmsEntry(0x0004, info.Long),
		}
	}

	ifd0Count := len(ifd0) + 1
	if gps != nil {
		ifd0Count++
	}
	ifd0Off := 8
	exifOff := ifd0Off + ifdSize(ifd0Count)
	gpsOff := exifOff + ifdSize(len(exifIFD))
	dataOff := gpsOff
	if gps != nil {
		dataOff += ifdSize(len(gps))
	}
	ifd0 = append(ifd0, longEntry(0x8769, uint32(exifOff)))
	if gps != nil {
		ifd0 = append(ifd0, longEntry(0x8825, uint32(gpsOff)))
	}

	out := make([]byte, dataOff)
	copy(out, tiffLE)
	binary.LittleEndian.PutUint32(out[4:], uint32(ifd0Off))
	writeIFD := func(at int, entries []ifdEntry) {
		binary.LittleEndian.PutUint16(out[at:], uint16(len(entries)))
		for i, e := range entries {
			p := at + 2 + 12*i
			binary.LittleEndian.PutUint16(out[p:], e.tag)
			binary.LittleEndian.PutUint16(out[p+2:], e.typ)
			binary.LittleEndian.PutUint32(out[p+4:], e.count)
			if len(e.data) <= 4 {
				copy(out[p+8:p+12], e.data)
				continue
			}
			binary.LittleEndian.PutUint32(out[p+8:], uint32(len(out)))
			out = append(out, e.data...)
			if len(out)%2 == 1 {
				out = append(out, 0)
			}
		}
	}
	writeIFD(ifd0Off, ifd0)
	writeIFD(exifOff, exifIFD)
	if gps != nil {
		writeIFD(gpsOff, gps)
	}
	return out
}

func sampleIIM(info SampleInfo) []byte {
	var b []byte
	add := func(dataset byte, v string) {
		if v == "" {
			return
		}
		b = append(b, 0x1C, 2, dataset, byte(len(v)>>8), byte(len(v)))
		b = append(b, v...)
	}
	add(80, info.Byline)
	add(90, info.City)
	for _, k := range info.Keywords {
		add(25, k)
	}
	return b
}

func sampleIRB(iim []byte) []byte {
	b := append([]byte{}, psHeader...)
	b = append(b, "8BIM"...)
	b = append(b, byte(iptcResource>>8), byte(iptcResource&0xFF), 0, 0)
	size := make([]byte, 4)
	binary.BigEndian.PutUint32(size, uint32(len(iim)))
	b = append(b, size...)
	b = append(b, iim...)
	if len(iim)%2 == 1 {
		b = append(b, 0)
	}
	return b
}

func sampleXMP(info SampleInfo) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>`)
	b.WriteString(`<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">`)
	b.WriteString(`<rdf:Description rdf:about="" xmlns:xmp="http://ns.adobe.com/xap/1.0/" xmlns:dc="http://purl.org/dc/elements/1.1/"`)
	b.WriteString(` xmp:CreatorTool="`)
	_ = xmlEscape(&b, info.CreatorTool)
	b.WriteString(`">`)
	if info.Byline != "" {
		b.WriteString(`<dc:creator><rdf:Seq><rdf:li>`)
		_ = xmlEscape(&b, info.Byline)
		b.WriteString(`</rdf:li></rdf:Seq></dc:creator>`)
	}
	b.WriteString(`</rdf:Description></rdf:RDF></x:xmpmeta><?xpacket end="w"?>`)
	return b.Bytes()
}
