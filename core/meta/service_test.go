package meta

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pradyroy/imagefox/core"
	"github.com/pradyroy/imagefox/core/exif"
	"github.com/pradyroy/imagefox/core/jpg"
)

// testDoc builds a document with camera, exposure and one unregistered tag.
func testDoc(t *testing.T) *exif.Document {
	t.Helper()
	doc := exif.NewDocument()
	root := doc.EnsureDir(exif.DirZeroth)
	require.NoError(t, root.Set(0x010F, exif.ASCII("Acme")))
	require.NoError(t, root.Set(0x0110, exif.ASCII("FX-1")))
	require.NoError(t, root.Set(0x9999, exif.Undefined([]byte("custom"))))
	ex := doc.EnsureDir(exif.DirExif)
	require.NoError(t, ex.Set(0x829D, exif.Rationals(exif.Rational{Num: 28, Den: 10})))
	return doc
}

// testJPEG embeds the document into a real JPEG file.
func testJPEG(t *testing.T, doc *exif.Document) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 0x40, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	blob, err := exif.Encode(doc)
	require.NoError(t, err)
	data, err := jpg.Splice(buf.Bytes(), blob)
	require.NoError(t, err)
	return data
}

func fieldValue(fields []core.MetaField, name string) (string, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func TestViewOrderAndRendering(t *testing.T) {
	fields := View(testDoc(t))
	require.Len(t, fields, 4)

	// 0th entries ascending, then Exif: Make, Model, unknown, FNumber.
	assert.Equal(t, "Make", fields[0].Name)
	assert.Equal(t, "Acme", fields[0].Value)
	assert.Equal(t, "Model", fields[1].Name)
	assert.Equal(t, "0x9999", fields[2].Name, "unregistered tags render by numeric id")
	assert.Equal(t, "FNumber", fields[3].Name)
	assert.Equal(t, "28/10", fields[3].Value)
	assert.Equal(t, "Exif", fields[3].Directory)
}

func TestRemoveIsTotal(t *testing.T) {
	got := Remove(testDoc(t))
	assert.True(t, got.Empty())
	assert.Empty(t, View(got))
}

func TestEditThenView(t *testing.T) {
	doc := testDoc(t)
	_, err := Edit(doc, "Model", "Acme X1")
	require.NoError(t, err)

	fields := View(doc)
	v, ok := fieldValue(fields, "Model")
	require.True(t, ok)
	assert.Equal(t, "Acme X1", v)

	// Every other field is untouched.
	v, _ = fieldValue(fields, "Make")
	assert.Equal(t, "Acme", v)
	v, _ = fieldValue(fields, "FNumber")
	assert.Equal(t, "28/10", v)
}

func TestEditUnknownField(t *testing.T) {
	_, err := Edit(testDoc(t), "NotARealField", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownField)
}

func TestEditTypeHandling(t *testing.T) {
	// DateTime is ASCII-typed: any text is accepted.
	doc := testDoc(t)
	_, err := Edit(doc, "DateTime", "not-a-rational")
	require.NoError(t, err)

	// FNumber is rational-typed: garbage is rejected.
	_, err = Edit(doc, "FNumber", "abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValueParse)
}

// Editing a GPS field on a document with no GPS directory creates the
// directory and its parent link on demand.
func TestEditCreatesMissingDirectory(t *testing.T) {
	doc := exif.NewDocument()
	_, err := Edit(doc, "GPSLatitude", "51/1,30/1,0/1")
	require.NoError(t, err)

	gps := doc.GPS()
	require.NotNil(t, gps)
	v, ok := gps.Get(0x0002)
	require.True(t, ok)
	assert.Len(t, v.Rats, 3)

	// The tree still encodes and round-trips.
	blob, err := exif.Encode(doc)
	require.NoError(t, err)
	doc2, err := exif.Decode(blob)
	require.NoError(t, err)
	require.NotNil(t, doc2.GPS())
}

func TestViewMetadataFile(t *testing.T) {
	data := testJPEG(t, testDoc(t))
	fields, err := ViewMetadata(data)
	require.NoError(t, err)
	v, ok := fieldValue(fields, "Model")
	require.True(t, ok)
	assert.Equal(t, "FX-1", v)
}

func TestViewMetadataNoEXIF(t *testing.T) {
	data := testJPEG(t, exif.NewDocument()) // nil blob: no APP1 inserted
	fields, err := ViewMetadata(data)
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestRemoveMetadataFile(t *testing.T) {
	data := testJPEG(t, testDoc(t))
	stripped, err := RemoveMetadata(data)
	require.NoError(t, err)

	fields, err := ViewMetadata(stripped)
	require.NoError(t, err)
	assert.Empty(t, fields, "view after remove must be the empty sequence")

	// Pixel data still decodes.
	_, err = jpeg.Decode(bytes.NewReader(stripped))
	require.NoError(t, err)
}

func TestEditMetadataFile(t *testing.T) {
	data := testJPEG(t, testDoc(t))
	edited, err := EditMetadata(data, "Model", "Acme X1")
	require.NoError(t, err)

	fields, err := ViewMetadata(edited)
	require.NoError(t, err)
	v, ok := fieldValue(fields, "Model")
	require.True(t, ok)
	assert.Equal(t, "Acme X1", v)
}

// An unregistered tag must survive an edit of an unrelated field: decode,
// edit, re-encode, decode again, raw bytes unchanged.
func TestOpaqueTagSurvivesEdit(t *testing.T) {
	data := testJPEG(t, testDoc(t))
	edited, err := EditMetadata(data, "Model", "Acme X1")
	require.NoError(t, err)

	blob, _, err := jpg.ExtractBlob(edited)
	require.NoError(t, err)
	doc, err := exif.Decode(blob)
	require.NoError(t, err)

	v, ok := doc.Zeroth().Get(0x9999)
	require.True(t, ok)
	assert.Equal(t, []byte("custom"), v.Bytes)
}

// Editing a file that has no metadata at all grows a fresh EXIF block.
func TestEditMetadataIntoBareFile(t *testing.T) {
	data := testJPEG(t, exif.NewDocument())
	edited, err := EditMetadata(data, "Model", "Acme X1")
	require.NoError(t, err)

	fields, err := ViewMetadata(edited)
	require.NoError(t, err)
	v, ok := fieldValue(fields, "Model")
	require.True(t, ok)
	assert.Equal(t, "Acme X1", v)
}

func TestCompressPreservesMetadata(t *testing.T) {
	data := testJPEG(t, testDoc(t))
	out, err := Compress(data, 50, 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	fields, err := ViewMetadata(out)
	require.NoError(t, err)
	_, ok := fieldValue(fields, "Model")
	assert.True(t, ok, "compression must not drop metadata")
}

func TestConvertCarriesMetadata(t *testing.T) {
	data := testJPEG(t, testDoc(t))
	out, err := Convert(data, core.FmtPNG)
	require.NoError(t, err)
	assert.Equal(t, core.FmtPNG, core.Detect(out))

	fields, err := ViewMetadata(out)
	require.NoError(t, err)
	v, ok := fieldValue(fields, "Model")
	require.True(t, ok)
	assert.Equal(t, "FX-1", v)
}
