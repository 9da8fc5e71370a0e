package core

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectAndRedact_Text(t *testing.T) {
	f := File{Name: "app.log", MIME: "text/plain", Data: []byte("host 192.168.0.1\n")}
	var lines []string
	findings, err := Inspect(f, func(m string) { lines = append(lines, m) })
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, RiskHigh, findings[0].Risk)
	assert.NotEmpty(t, lines)

	out, err := Redact(f, nil)
	require.NoError(t, err)
	assert.Equal(t, "CLEAN_app.log", out.Name)
	assert.Equal(t, "host xxx.xxx.xxx.xxx\n", string(out.Data))
}

func TestUnsupported(t *testing.T) {
	f := File{Name: "a.zip", MIME: "application/zip", Data: []byte("PK")}
	assert.Equal(t, Unsupported, Classify(f.MIME, f.Name))
	_, err := Inspect(f, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFileType))
	_, err = Redact(f, nil)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestDecodeErrorIsExported(t *testing.T) {
	f := File{Name: "x.pdf", MIME: "application/pdf", Data: []byte("not a pdf")}
	_, err := Inspect(f, nil)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, Document, de.Category)
}

func TestSniffAndClassify(t *testing.T) {
	assert.Equal(t, "application/pdf", Sniff([]byte("%PDF-1.7\n"), "x"))
	assert.Equal(t, Image, Classify("", "IMG_0001.HEIC"))
	assert.Equal(t, "CLEAN_a.b", CleanName("a.b"))
}

func TestMarshalFindingsRoundTrip(t *testing.T) {
	in := []Finding{{Key: "Author", Value: "Jane", Risk: RiskMedium}}
	var buf bytes.Buffer
	require.NoError(t, MarshalFindings(&buf, in))
	assert.Contains(t, buf.String(), `"risk": "medium"`)
	out, err := UnmarshalFindings(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
