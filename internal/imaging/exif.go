package imaging

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

var exifAliases = map[exif.FieldName]string{
	exif.DateTime:          "ModifyDate",
	exif.DateTimeDigitized: "CreateDate",
}

var exifDates = map[exif.FieldName]bool{
	exif.DateTime:          true,
	exif.DateTimeOriginal:  true,
	exif.DateTimeDigitized: true,
}

type exifField struct {
	name exif.FieldName
	tag  *tiff.Tag
}

type exifCollector struct{ fields []exifField }

func (c *exifCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	c.fields = append(c.fields, exifField{name: name, tag: tag})
	return nil
}

// decodeExif parses a TIFF-headed EXIF block. Non-critical errors (a broken
// sub-IFD, say) keep whatever was decoded.
func decodeExif(block []byte) (*exif.Exif, error) {
	x, err := exif.Decode(bytes.NewReader(block))
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return nil, err
	}
	return x, nil
}

func exifTags(x *exif.Exif) []Tag {
	var c exifCollector
	_ = x.Walk(&c)
	sort.SliceStable(c.fields, func(i, j int) bool {
		if c.fields[i].tag.Id != c.fields[j].tag.Id {
			return c.fields[i].tag.Id < c.fields[j].tag.Id
		}
		return c.fields[i].name < c.fields[j].name
	})

	lat, long, gpsErr := x.LatLong()
	tags := make([]Tag, 0, len(c.fields))
	for _, f := range c.fields {
		key := string(f.name)
		if alias, ok := exifAliases[f.name]; ok {
			key = alias
		}
		switch {
		case f.name == exif.GPSLatitude && gpsErr == nil:
			tags = append(tags, Tag{Key: key, Value: formatDegrees(lat)})
		case f.name == exif.GPSLongitude && gpsErr == nil:
			tags = append(tags, Tag{Key: key, Value: formatDegrees(long)})
		case exifDates[f.name]:
			tags = append(tags, renderDate(key, f.tag))
		default:
			tags = append(tags, renderTiff(key, f.tag))
		}
	}
	return tags
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func renderDate(key string, tag *tiff.Tag) Tag {
	s, err := tag.StringVal()
	if err != nil {
		return renderTiff(key, tag)
	}
	s = strings.TrimRight(s, "\x00 ")
	t, err := time.Parse("2006:01:02 15:04:05", s)
	if err != nil {
		return Tag{Key: key, Value: s}
	}
	return Tag{Key: key, Value: t.UTC().Format(isoLayout)}
}

func renderTiff(key string, tag *tiff.Tag) Tag {
	n := int(tag.Count)
	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return Tag{Key: key, Value: tag.String()}
		}
		return Tag{Key: key, Value: strings.TrimRight(s, "\x00 ")}
	case tiff.IntVal:
		vals := make([]int64, 0, n)
		for i := 0; i < n; i++ {
			v, err := tag.Int64(i)
			if err != nil {
				break
			}
			vals = append(vals, v)
		}
		if len(vals) == 1 {
			return Tag{Key: key, Value: strconv.FormatInt(vals[0], 10)}
		}
		return structured(key, vals)
	case tiff.RatVal:
		vals := make([]float64, 0, n)
		for i := 0; i < n; i++ {
			num, den, err := tag.Rat2(i)
			if err != nil {
				break
			}
			if den == 0 {
				vals = append(vals, 0)
				continue
			}
			vals = append(vals, float64(num)/float64(den))
		}
		if len(vals) == 1 {
			return Tag{Key: key, Value: strconv.FormatFloat(vals[0], 'f', -1, 64)}
		}
		return structured(key, vals)
	case tiff.FloatVal:
		vals := make([]float64, 0, n)
		for i := 0; i < n; i++ {
			v, err := tag.Float(i)
			if err != nil {
				break
			}
			vals = append(vals, v)
		}
		if len(vals) == 1 {
			return Tag{Key: key, Value: strconv.FormatFloat(vals[0], 'f', -1, 64)}
		}
		return structured(key, vals)
	}
	return renderBytes(key, tag.Val)
}

// renderBytes shows undefined-type payloads as text when they are printable
// and as a byte list otherwise.
func renderBytes(key string, raw []byte) Tag {
	trimmed := bytes.TrimRight(raw, "\x00 ")
	if len(trimmed) > 0 && utf8.Valid(trimmed) && printable(trimmed) {
		return Tag{Key: key, Value: string(trimmed)}
	}
	ints := make([]int, len(raw))
	for i, b := range raw {
		ints[i] = int(b)
	}
	return structured(key, ints)
}

func printable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 && c != '\t' && c != '\n' && c != '\r' {
			return false
		}
	}
	return true
}

// orientation returns the EXIF orientation (1..8), or 1 when absent.
func orientation(x *exif.Exif) int {
	if x == nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

func exifError(err error) error {
	return fmt.Errorf("exif: %w", err)
}
