package imaging

// Metadata is everything decoded from an image's embedded blocks.
type Metadata struct {
	// Tags in source order: EXIF first, then IPTC, then XMP.
	Tags []Tag
	// Warnings are IPTC/XMP problems that did not stop decoding.
	Warnings []error
	// Orientation is the EXIF orientation, 1 when absent.
	Orientation int
}

// ReadMetadata decodes the embedded metadata of an image buffer. A buffer
// without metadata blocks yields an empty result; only a critical EXIF
// failure is an error.
func ReadMetadata(data []byte, heic bool) (Metadata, error) {
	md := Metadata{Orientation: 1}
	var b blocks
	if heic {
		block, err := heifExif(data)
		if err != nil {
			md.Warnings = append(md.Warnings, err)
		}
		b.exif = block
		b.xmp = findXMPPacket(data)
	} else {
		b = locate(data)
	}

	if len(b.exif) > 0 {
		x, err := decodeExif(b.exif)
		if err != nil {
			return Metadata{}, exifError(err)
		}
		md.Tags = append(md.Tags, exifTags(x)...)
		md.Orientation = orientation(x)
	}
	if len(b.irb) > 0 {
		iim, err := iptcFromIRB(b.irb)
		if err != nil {
			md.Warnings = append(md.Warnings, err)
		}
		if len(iim) > 0 {
			tags, err := iptcTags(iim)
			if err != nil {
				md.Warnings = append(md.Warnings, err)
			}
			md.Tags = append(md.Tags, tags...)
		}
	}
	if len(b.xmp) > 0 {
		tags, err := xmpTags(b.xmp)
		if err != nil {
			md.Warnings = append(md.Warnings, err)
		}
		md.Tags = append(md.Tags, tags...)
	}
	return md, nil
}

// OrientationOf returns the EXIF orientation of an image buffer, 1 when it
// has none or the block does not decode.
func OrientationOf(data []byte) int {
	b := locate(data)
	if len(b.exif) == 0 {
		return 1
	}
	x, err := decodeExif(b.exif)
	if err != nil {
		return 1
	}
	return orientation(x)
}
