package exif

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pradyroy/imagefox/core"
)

func TestIFDSetTypeChecked(t *testing.T) {
	ifd := NewIFD(DirZeroth)

	// Model is registered as ASCII: a Short is rejected.
	err := ifd.Set(0x0110, Short(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTypeMismatch)

	require.NoError(t, ifd.Set(0x0110, ASCII("X1")))

	// Unregistered ids accept any variant as opaque passthrough.
	require.NoError(t, ifd.Set(0x9999, Undefined([]byte{1, 2})))
	require.NoError(t, ifd.Set(0x9998, Short(7)))
}

func TestIFDGetSetRemove(t *testing.T) {
	ifd := NewIFD(DirZeroth)
	_, ok := ifd.Get(0x0110)
	assert.False(t, ok)

	require.NoError(t, ifd.Set(0x0110, ASCII("one")))
	require.NoError(t, ifd.Set(0x0110, ASCII("two"))) // overwrite
	v, ok := ifd.Get(0x0110)
	require.True(t, ok)
	assert.Equal(t, "two", v.Text)

	ifd.Remove(0x0110)
	ifd.Remove(0x0110) // no-op when absent
	_, ok = ifd.Get(0x0110)
	assert.False(t, ok)
}

func TestIFDTagsAscending(t *testing.T) {
	ifd := NewIFD(DirZeroth)
	require.NoError(t, ifd.Set(0x0131, ASCII("sw")))
	require.NoError(t, ifd.Set(0x010F, ASCII("make")))
	require.NoError(t, ifd.Set(0x0110, ASCII("model")))
	assert.Equal(t, []uint16{0x010F, 0x0110, 0x0131}, ifd.Tags())
}

func TestEnsureDirCreatesParentLinks(t *testing.T) {
	doc := NewDocument()
	assert.True(t, doc.Empty())

	// Asking for Interop on a bare document wires 0th -> Exif -> Interop.
	iop := doc.EnsureDir(DirInterop)
	require.NotNil(t, iop)
	require.NotNil(t, doc.Zeroth())
	require.NotNil(t, doc.Exif())
	assert.Same(t, iop, doc.Exif().Child(0xA005))

	// A second call returns the same directory.
	assert.Same(t, iop, doc.EnsureDir(DirInterop))
}

func TestEnsureDirGPSPrefersExistingNest(t *testing.T) {
	doc := NewDocument()
	doc.EnsureDir(DirExif)

	gps := doc.EnsureDir(DirGPS)
	require.NotNil(t, gps)
	// Link goes into the 0th IFD when no nested GPS exists.
	assert.Same(t, gps, doc.Zeroth().Child(0x8825))
	assert.Same(t, gps, doc.EnsureDir(DirGPS))
}

func TestResolve(t *testing.T) {
	td, err := Resolve("Model")
	require.NoError(t, err)
	assert.Equal(t, DirZeroth, td.Dir)
	assert.Equal(t, uint16(0x0110), td.ID)
	assert.Equal(t, TypeASCII, td.Type)

	_, err = Resolve("NotARealField")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownField)

	// Lookup is exact and case-sensitive.
	_, err = Resolve("model")
	assert.ErrorIs(t, err, core.ErrUnknownField)
}

func TestDescribe(t *testing.T) {
	td, ok := Describe(DirGPS, 0x0002)
	require.True(t, ok)
	assert.Equal(t, "GPSLatitude", td.Name)
	assert.Equal(t, TypeRational, td.Type)

	_, ok = Describe(DirZeroth, 0x9999)
	assert.False(t, ok)
}
