package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/png"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unformat/shredder/internal/types"
)

func tagMap(tags []Tag) map[string]Tag {
	m := map[string]Tag{}
	for _, t := range tags {
		if _, ok := m[t.Key]; !ok {
			m[t.Key] = t
		}
	}
	return m
}

func TestRiskFor(t *testing.T) {
	cases := map[string]types.Risk{
		"GPSLatitude":      types.RiskHigh,
		"GPSLatitudeRef":   types.RiskHigh,
		"GPSLongitude":     types.RiskHigh,
		"RegionInfo":       types.RiskHigh,
		"FaceCount":        types.RiskHigh,
		"Make":             types.RiskMedium,
		"Model":            types.RiskMedium,
		"LensModel":        types.RiskMedium,
		"BodySerialNumber": types.RiskMedium,
		"Software":         types.RiskLow,
		"DateTimeOriginal": types.RiskLow,
		"CreateDate":       types.RiskLow,
		"ModifyDate":       types.RiskLow,
		"ExposureTime":     types.RiskNone,
		"City":             types.RiskNone,
	}
	for key, want := range cases {
		assert.Equal(t, want, RiskFor(key), key)
	}
}

func TestFindings_DedupAndLongValues(t *testing.T) {
	long := strings.Repeat("x", 120)
	tags := []Tag{
		{Key: "Make", Value: "Canon"},
		{Key: "Make", Value: "Nikon"},
		{Key: "UserComment", Value: long},
		{Key: "Model", Value: long},
		{Key: "RegionInfo", Value: `{"Regions":[{"Name":"Jane","Area":{"x":0.5,"y":0.5}}]}`, Structured: true},
		{Key: "ExposureTime", Value: "0.004"},
	}
	got := Findings(tags)
	require.Len(t, got, 4)
	assert.Equal(t, types.Finding{Key: "Make", Value: "Canon", Risk: types.RiskMedium}, got[0])
	assert.Equal(t, "Model", got[1].Key, "risky keys are kept regardless of length")
	assert.Equal(t, "RegionInfo", got[2].Key)
	assert.Equal(t, types.RiskHigh, got[2].Risk)
	assert.True(t, strings.HasSuffix(got[2].Value, "..."))
	assert.Len(t, []rune(got[2].Value), 53)
	assert.Equal(t, "ExposureTime", got[3].Key)
}

func TestTagDisplay(t *testing.T) {
	short := Tag{Key: "Keywords", Value: `["a","b"]`, Structured: true}
	assert.Equal(t, `["a","b"]`, short.Display(), "short values are shown whole")

	long := Tag{Key: "History", Value: strings.Repeat("x", 80), Structured: true}
	assert.Equal(t, strings.Repeat("x", 50)+"...", long.Display())

	plain := Tag{Key: "Artist", Value: strings.Repeat("y", 80)}
	assert.Equal(t, plain.Value, plain.Display())
}

func TestReadMetadata_SampleJPEG(t *testing.T) {
	data, err := SampleJPEG(DefaultSample)
	require.NoError(t, err)

	md, err := ReadMetadata(data, false)
	require.NoError(t, err)
	assert.Empty(t, md.Warnings)
	assert.Equal(t, 1, md.Orientation)

	m := tagMap(md.Tags)
	assert.Equal(t, "Apple", m["Make"].Value)
	assert.Equal(t, "iPhone 15 Pro", m["Model"].Value)
	assert.Equal(t, "17.4.1", m["Software"].Value)
	assert.Equal(t, "2024-03-09T14:22:05.000Z", m["ModifyDate"].Value)
	assert.Equal(t, "2024-03-09T14:22:05.000Z", m["DateTimeOriginal"].Value)
	assert.Equal(t, "2024-03-09T14:22:05.000Z", m["CreateDate"].Value)
	assert.NotContains(t, m, "DateTime")

	lat, err := strconv.ParseFloat(m["GPSLatitude"].Value, 64)
	require.NoError(t, err)
	assert.InDelta(t, 37.7749, lat, 1e-4)
	long, err := strconv.ParseFloat(m["GPSLongitude"].Value, 64)
	require.NoError(t, err)
	assert.InDelta(t, -122.4194, long, 1e-4)

	assert.Equal(t, "John Doe", m["Byline"].Value)
	assert.Equal(t, "San Francisco", m["City"].Value)
	assert.True(t, m["Keywords"].Structured)
	assert.Equal(t, `["offsite","draft"]`, m["Keywords"].Value)

	assert.Equal(t, "Adobe Lightroom 7.2", m["CreatorTool"].Value)
	assert.Equal(t, `["John Doe"]`, m["creator"].Value)
}

func TestReadMetadata_TagOrderIsStable(t *testing.T) {
	data, err := SampleJPEG(DefaultSample)
	require.NoError(t, err)
	first, err := ReadMetadata(data, false)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ReadMetadata(data, false)
		require.NoError(t, err)
		assert.Equal(t, first.Tags, again.Tags)
	}
}

func TestReadMetadata_NoBlocks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))))
	md, err := ReadMetadata(buf.Bytes(), false)
	require.NoError(t, err)
	assert.Empty(t, md.Tags)
}

func TestReadMetadata_CriticalExifFailure(t *testing.T) {
	bad := append([]byte{}, tiffLE...)
	bad = append(bad, 0xFF, 0xFF, 0x00, 0x00)
	data := append([]byte{}, jpegSOI...)
	data = appendSegment(data, 0xE1, append(append([]byte{}, exifHeader...), bad...))
	data = append(data, 0xFF, 0xD9)

	_, err := ReadMetadata(data, false)
	require.Error(t, err)
}

func pngChunk(typ string, payload []byte) []byte {
	b := make([]byte, 8, 12+len(payload))
	binary.BigEndian.PutUint32(b, uint32(len(payload)))
	copy(b[4:], typ)
	b = append(b, payload...)
	crc := crc32.ChecksumIEEE(b[4:])
	return binary.BigEndian.AppendUint32(b, crc)
}

func TestReadMetadata_PNGChunks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	raw := buf.Bytes()
	iend := bytes.LastIndex(raw, []byte("IEND")) - 4

	info := DefaultSample
	info.NoGPS = true
	itxt := append([]byte("XML:com.adobe.xmp"), 0, 0, 0, 0, 0)
	itxt = append(itxt, sampleXMP(info)...)

	var out []byte
	out = append(out, raw[:iend]...)
	out = append(out, pngChunk("eXIf", sampleTIFF(info))...)
	out = append(out, pngChunk("iTXt", itxt)...)
	out = append(out, raw[iend:]...)

	md, err := ReadMetadata(out, false)
	require.NoError(t, err)
	m := tagMap(md.Tags)
	assert.Equal(t, "Apple", m["Make"].Value)
	assert.Equal(t, "Adobe Lightroom 7.2", m["CreatorTool"].Value)
	assert.NotContains(t, m, "GPSLatitude")
}

func TestIPTC_RepeatedAndUnknownDatasets(t *testing.T) {
	iim := []byte{}
	add := func(ds byte, v string) {
		iim = append(iim, 0x1C, 2, ds, 0, byte(len(v)))
		iim = append(iim, v...)
	}
	iim = append(iim, 0x1C, 2, 0, 0, 2, 0, 4) // record version, skipped
	add(116, "(c) Example Corp")
	add(25, "a")
	add(25, "b")
	add(200, "custom")

	tags, err := iptcTags(iim)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, Tag{Key: "CopyrightNotice", Value: "(c) Example Corp"}, tags[0])
	assert.Equal(t, Tag{Key: "Keywords", Value: `["a","b"]`, Structured: true}, tags[1])
	assert.Equal(t, "IPTC2_200", tags[2].Key)

	_, err = iptcTags([]byte{0x1C, 2, 25, 0, 10, 'x'})
	assert.Error(t, err)
}

func TestXMP_NestedStructures(t *testing.T) {
	packet := `<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
<rdf:Description rdf:about="" xmlns:mwg-rs="http://www.metadataworkinggroup.com/schemas/regions/"
  xmlns:stArea="http://ns.adobe.com/xmp/sType/Area#" xmlns:xmp="http://ns.adobe.com/xap/1.0/">
  <xmp:Rating>5</xmp:Rating>
  <mwg-rs:RegionInfo rdf:parseType="Resource">
    <mwg-rs:RegionList><rdf:Bag><rdf:li rdf:parseType="Resource">
      <mwg-rs:Name>Jane Roe</mwg-rs:Name>
      <mwg-rs:Area stArea:x="0.5" stArea:y="0.4"/>
    </rdf:li></rdf:Bag></mwg-rs:RegionList>
  </mwg-rs:RegionInfo>
</rdf:Description></rdf:RDF></x:xmpmeta>`

	tags, err := xmpTags([]byte(packet))
	require.NoError(t, err)
	m := tagMap(tags)
	assert.Equal(t, "5", m["Rating"].Value)
	region := m["RegionInfo"]
	assert.True(t, region.Structured)
	assert.Equal(t, `{"RegionList":[{"Area":{"x":"0.5","y":"0.4"},"Name":"Jane Roe"}]}`, region.Value)

	fs := Findings(tags)
	require.Len(t, fs, 2)
	assert.Equal(t, types.RiskHigh, fs[1].Risk)
	assert.Equal(t, types.Truncate(region.Value, 50), fs[1].Value)
}

func TestXMP_MalformedKeepsPrefix(t *testing.T) {
	packet := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"><rdf:Description xmlns:tiff="http://ns.adobe.com/tiff/1.0/" tiff:Make="Canon"><tiff:Model>EOS</tiff:Model></rdf:Description><rdf:Description tiff:Software="unterminated`
	tags, err := xmpTags([]byte(packet))
	assert.Error(t, err)
	m := tagMap(tags)
	assert.Equal(t, "Canon", m["Make"].Value)
	assert.Equal(t, "EOS", m["Model"].Value)
}

func TestHEIF_TranscodeFailureIsWarning(t *testing.T) {
	assert.True(t, IsHEIC("IMG_0001.HEIC"))
	assert.True(t, IsHEIC("photo.heic"))
	assert.False(t, IsHEIC("photo.heif.jpg"))

	junk := []byte("definitely not an heif container")
	res := HEIFTranscoder{}.Transcode(junk, DefaultQuality)
	assert.False(t, res.Converted())
	assert.Equal(t, junk, res.Data)
	assert.Equal(t, "image/heic", res.MIME)
	var warn *ConversionWarning
	require.True(t, errors.As(res.Warning, &warn))
	assert.Contains(t, warn.Error(), "heic conversion failed")
}

func TestWithExifSegment(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 1, 1))))
	assert.Equal(t, buf.Bytes(), withExifSegment(buf.Bytes(), []byte("II*\x00")), "non-JPEG input is left alone")

	info := DefaultSample
	plain := []byte{0xFF, 0xD8, 0xFF, 0xD9}
	out := withExifSegment(plain, sampleTIFF(info))
	b := locate(out)
	require.NotNil(t, b.exif)
	assert.True(t, bytes.HasPrefix(b.exif, tiffLE))
}
