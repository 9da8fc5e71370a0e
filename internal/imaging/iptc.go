package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const iptcResource = 0x0404

var iptcNames = map[byte]string{
	5:   "ObjectName",
	10:  "Urgency",
	15:  "Category",
	20:  "SupplementalCategories",
	25:  "Keywords",
	40:  "SpecialInstructions",
	55:  "DateCreated",
	60:  "TimeCreated",
	62:  "DigitalCreationDate",
	63:  "DigitalCreationTime",
	65:  "OriginatingProgram",
	70:  "ProgramVersion",
	80:  "Byline",
	85:  "BylineTitle",
	90:  "City",
	92:  "Sublocation",
	95:  "ProvinceState",
	100: "CountryCode",
	101: "CountryName",
	103: "OriginalTransmissionReference",
	105: "Headline",
	110: "Credit",
	115: "Source",
	116: "CopyrightNotice",
	118: "Contact",
	120: "Caption",
	122: "Writer",
}

var errTruncatedIRB = errors.New("iptc: truncated image resource block")

// iptcFromIRB finds the IPTC-NAA resource in Photoshop image resource blocks.
func iptcFromIRB(irb []byte) ([]byte, error) {
	sig := []byte("8BIM")
	i := 0
	for i+12 <= len(irb) {
		if !bytes.Equal(irb[i:i+4], sig) {
			return nil, errTruncatedIRB
		}
		id := binary.BigEndian.Uint16(irb[i+4:])
		nameLen := int(irb[i+6])
		j := i + 7 + nameLen
		if (nameLen+1)%2 != 0 {
			j++
		}
		if j+4 > len(irb) {
			return nil, errTruncatedIRB
		}
		size := int(binary.BigEndian.Uint32(irb[j:]))
		start := j + 4
		if size < 0 || start+size > len(irb) {
			return nil, errTruncatedIRB
		}
		if id == iptcResource {
			return irb[start : start+size], nil
		}
		i = start + size + size%2
	}
	return nil, nil
}

// iptcTags decodes record 2 (application) datasets. Repeated datasets such as
// Keywords collapse into a list.
func iptcTags(iim []byte) ([]Tag, error) {
	var order []string
	values := map[string][]string{}
	i := 0
	for i+5 <= len(iim) {
		if iim[i] != 0x1C {
			return nil, fmt.Errorf("iptc: bad tag marker at %d", i)
		}
		record, dataset := iim[i+1], iim[i+2]
		size := int(binary.BigEndian.Uint16(iim[i+3:]))
		start := i + 5
		if size&0x8000 != 0 {
			// extended dataset: the low bits give the length of the length field
			n := size & 0x7FFF
			if n > 4 || start+n > len(iim) {
				return nil, errors.New("iptc: bad extended dataset")
			}
			size = 0
			for _, b := range iim[start : start+n] {
				size = size<<8 | int(b)
			}
			start += n
		}
		if start+size > len(iim) {
			return nil, errors.New("iptc: truncated dataset")
		}
		if record == 2 && dataset != 0 {
			name, ok := iptcNames[dataset]
			if !ok {
				name = fmt.Sprintf("IPTC2_%d", dataset)
			}
			if _, seen := values[name]; !seen {
				order = append(order, name)
			}
			v := strings.ToValidUTF8(strings.TrimRight(string(iim[start:start+size]), "\x00 "), "�")
			values[name] = append(values[name], v)
		}
		i = start + size
	}
	tags := make([]Tag, 0, len(order))
	for _, name := range order {
		vs := values[name]
		if len(vs) == 1 {
			tags = append(tags, Tag{Key: name, Value: vs[0]})
			continue
		}
		tags = append(tags, structured(name, vs))
	}
	return tags, nil
}
