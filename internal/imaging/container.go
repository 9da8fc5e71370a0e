package imaging

import (
	"bytes"
	"encoding/binary"
)

// blocks holds the raw metadata payloads found in an image container.
type blocks struct {
	exif []byte // TIFF-headed EXIF
	irb  []byte // Photoshop image resource blocks (IPTC lives here)
	xmp  []byte // XMP packet
}

var (
	jpegSOI     = []byte{0xFF, 0xD8}
	pngSig      = []byte("\x89PNG\r\n\x1a\n")
	exifHeader  = []byte("Exif\x00\x00")
	psHeader    = []byte("Photoshop 3.0\x00")
	xmpHeader   = []byte("http://ns.adobe.com/xap/1.0/\x00")
	tiffLE      = []byte("II*\x00")
	tiffBE      = []byte("MM\x00*")
	xmpOpen     = []byte("<x:xmpmeta")
	xmpClose    = []byte("</x:xmpmeta>")
	rdfOpen     = []byte("<rdf:RDF")
	rdfClose    = []byte("</rdf:RDF>")
	pngXMPKey   = []byte("XML:com.adobe.xmp")
	webpRIFF    = []byte("RIFF")
	webpFormTag = []byte("WEBP")
)

func locate(data []byte) blocks {
	var b blocks
	switch {
	case bytes.HasPrefix(data, jpegSOI):
		b = jpegBlocks(data)
	case bytes.HasPrefix(data, pngSig):
		b = pngBlocks(data)
	case len(data) >= 12 && bytes.Equal(data[:4], webpRIFF) && bytes.Equal(data[8:12], webpFormTag):
		b = webpBlocks(data)
	case bytes.HasPrefix(data, tiffLE) || bytes.HasPrefix(data, tiffBE):
		b.exif = data
	}
	if b.xmp == nil {
		b.xmp = findXMPPacket(data)
	}
	return b
}

func jpegBlocks(data []byte) blocks {
	var b blocks
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			break
		}
		m := data[i+1]
		if m == 0xFF {
			i++
			continue
		}
		if m == 0x01 || (m >= 0xD0 && m <= 0xD8) {
			i += 2
			continue
		}
		if m == 0xD9 || m == 0xDA {
			break
		}
		n := int(binary.BigEndian.Uint16(data[i+2:]))
		if n < 2 || i+2+n > len(data) {
			break
		}
		payload := data[i+4 : i+2+n]
		switch {
		case m == 0xE1 && b.exif == nil && bytes.HasPrefix(payload, exifHeader):
			b.exif = payload[len(exifHeader):]
		case m == 0xE1 && b.xmp == nil && bytes.HasPrefix(payload, xmpHeader):
			b.xmp = payload[len(xmpHeader):]
		case m == 0xED && bytes.HasPrefix(payload, psHeader):
			b.irb = append(b.irb, payload[len(psHeader):]...)
		}
		i += 2 + n
	}
	return b
}

func pngBlocks(data []byte) blocks {
	var b blocks
	i := len(pngSig)
	for i+8 <= len(data) {
		n := int(binary.BigEndian.Uint32(data[i:]))
		typ := string(data[i+4 : i+8])
		start := i + 8
		if n < 0 || start+n > len(data) {
			break
		}
		payload := data[start : start+n]
		switch typ {
		case "eXIf":
			b.exif = tiffStart(payload)
		case "iTXt":
			if x := pngITXtXMP(payload); x != nil {
				b.xmp = x
			}
		case "IEND":
			return b
		}
		i = start + n + 4 // skip CRC
	}
	return b
}

// pngITXtXMP returns the XMP text of an uncompressed iTXt chunk.
func pngITXtXMP(p []byte) []byte {
	if !bytes.HasPrefix(p, pngXMPKey) || len(p) < len(pngXMPKey)+3 {
		return nil
	}
	rest := p[len(pngXMPKey)+1:]
	if rest[0] != 0 { // compressed
		return nil
	}
	rest = rest[2:]
	for k := 0; k < 2; k++ { // language tag, translated keyword
		j := bytes.IndexByte(rest, 0)
		if j < 0 {
			return nil
		}
		rest = rest[j+1:]
	}
	return rest
}

func webpBlocks(data []byte) blocks {
	var b blocks
	i := 12
	for i+8 <= len(data) {
		fourcc := string(data[i : i+4])
		n := int(binary.LittleEndian.Uint32(data[i+4:]))
		start := i + 8
		if n < 0 || start+n > len(data) {
			break
		}
		payload := data[start : start+n]
		switch fourcc {
		case "EXIF":
			b.exif = tiffStart(bytes.TrimPrefix(payload, exifHeader))
		case "XMP ":
			b.xmp = payload
		}
		i = start + n + n%2
	}
	return b
}

// tiffStart trims anything in front of a TIFF header near the start of p.
func tiffStart(p []byte) []byte {
	limit := len(p)
	if limit > 16 {
		limit = 16
	}
	for i := 0; i+4 <= limit; i++ {
		if bytes.Equal(p[i:i+4], tiffLE) || bytes.Equal(p[i:i+4], tiffBE) {
			return p[i:]
		}
	}
	return p
}

func findXMPPacket(data []byte) []byte {
	for _, pair := range [][2][]byte{{xmpOpen, xmpClose}, {rdfOpen, rdfClose}} {
		start := bytes.Index(data, pair[0])
		if start < 0 {
			continue
		}
		end := bytes.Index(data[start:], pair[1])
		if end < 0 {
			continue
		}
		return data[start : start+end+len(pair[1])]
	}
	return nil
}
