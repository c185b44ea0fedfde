// Package exif implements the EXIF tag model: a registry of known tags, an
// in-memory IFD tree, and a codec that decodes and re-encodes the binary
// TIFF-style blob embedded in JPEG-family files.
package exif

import (
	"fmt"

	"github.com/pradyroy/imagefox/core"
)

// Directory identifies which IFD a tag belongs to.
type Directory uint8

const (
	DirZeroth Directory = iota
	DirExif
	DirGPS
	DirInterop
	DirThumbnail
)

var dirNames = [...]string{"0th", "Exif", "GPS", "Interop", "Thumbnail"}

func (d Directory) String() string {
	if int(d) < len(dirNames) {
		return dirNames[d]
	}
	return "Unknown"
}

// ValueType is the wire type code of a directory entry, as defined by TIFF 6.0.
type ValueType uint16

const (
	TypeByte      ValueType = 1
	TypeASCII     ValueType = 2
	TypeShort     ValueType = 3
	TypeLong      ValueType = 4
	TypeRational  ValueType = 5
	TypeUndefined ValueType = 7
	TypeSRational ValueType = 10
)

// typeSizes maps each known type code to the byte size of one element.
var typeSizes = map[ValueType]uint32{
	TypeByte:      1,
	TypeASCII:     1,
	TypeShort:     2,
	TypeLong:      4,
	TypeRational:  8,
	TypeUndefined: 1,
	TypeSRational: 8,
}

// Sub-IFD pointer tags. These never appear as entries in the model; the codec
// consumes them into child links on decode and synthesizes them on encode.
const (
	tagExifIFD    = 0x8769
	tagGPSIFD     = 0x8825
	tagInteropIFD = 0xA005

	// Thumbnail image location inside IFD1, consumed into Document.thumbImage.
	tagThumbOffset = 0x0201
	tagThumbLength = 0x0202
)

// TagDescriptor describes one known tag: its human-readable name, the
// directory it lives in, its numeric id, and its declared value type.
type TagDescriptor struct {
	Name string
	Dir  Directory
	ID   uint16
	Type ValueType
}

var registry = []TagDescriptor{
	// 0th IFD (primary image)
	{"ImageWidth", DirZeroth, 0x0100, TypeLong},
	{"ImageLength", DirZeroth, 0x0101, TypeLong},
	{"ImageDescription", DirZeroth, 0x010E, TypeASCII},
	{"Make", DirZeroth, 0x010F, TypeASCII},
	{"Model", DirZeroth, 0x0110, TypeASCII},
	{"Orientation", DirZeroth, 0x0112, TypeShort},
	{"XResolution", DirZeroth, 0x011A, TypeRational},
	{"YResolution", DirZeroth, 0x011B, TypeRational},
	{"ResolutionUnit", DirZeroth, 0x0128, TypeShort},
	{"Software", DirZeroth, 0x0131, TypeASCII},
	{"DateTime", DirZeroth, 0x0132, TypeASCII},
	{"Artist", DirZeroth, 0x013B, TypeASCII},
	{"YCbCrPositioning", DirZeroth, 0x0213, TypeShort},
	{"Copyright", DirZeroth, 0x8298, TypeASCII},

	// Exif IFD
	{"ExposureTime", DirExif, 0x829A, TypeRational},
	{"FNumber", DirExif, 0x829D, TypeRational},
	{"ExposureProgram", DirExif, 0x8822, TypeShort},
	{"ISOSpeedRatings", DirExif, 0x8827, TypeShort},
	{"ExifVersion", DirExif, 0x9000, TypeUndefined},
	{"DateTimeOriginal", DirExif, 0x9003, TypeASCII},
	{"DateTimeDigitized", DirExif, 0x9004, TypeASCII},
	{"ShutterSpeedValue", DirExif, 0x9201, TypeSRational},
	{"ApertureValue", DirExif, 0x9202, TypeRational},
	{"BrightnessValue", DirExif, 0x9203, TypeSRational},
	{"ExposureBiasValue", DirExif, 0x9204, TypeSRational},
	{"MaxApertureValue", DirExif, 0x9205, TypeRational},
	{"SubjectDistance", DirExif, 0x9206, TypeRational},
	{"MeteringMode", DirExif, 0x9207, TypeShort},
	{"LightSource", DirExif, 0x9208, TypeShort},
	{"Flash", DirExif, 0x9209, TypeShort},
	{"FocalLength", DirExif, 0x920A, TypeRational},
	{"UserComment", DirExif, 0x9286, TypeUndefined},
	{"SubSecTime", DirExif, 0x9290, TypeASCII},
	{"FlashpixVersion", DirExif, 0xA000, TypeUndefined},
	{"ColorSpace", DirExif, 0xA001, TypeShort},
	{"PixelXDimension", DirExif, 0xA002, TypeLong},
	{"PixelYDimension", DirExif, 0xA003, TypeLong},
	{"WhiteBalance", DirExif, 0xA403, TypeShort},
	{"DigitalZoomRatio", DirExif, 0xA404, TypeRational},
	{"FocalLengthIn35mmFilm", DirExif, 0xA405, TypeShort},
	{"ImageUniqueID", DirExif, 0xA420, TypeASCII},
	{"LensMake", DirExif, 0xA433, TypeASCII},
	{"LensModel", DirExif, 0xA434, TypeASCII},

	// GPS IFD
	{"GPSVersionID", DirGPS, 0x0000, TypeByte},
	{"GPSLatitudeRef", DirGPS, 0x0001, TypeASCII},
	{"GPSLatitude", DirGPS, 0x0002, TypeRational},
	{"GPSLongitudeRef", DirGPS, 0x0003, TypeASCII},
	{"GPSLongitude", DirGPS, 0x0004, TypeRational},
	{"GPSAltitudeRef", DirGPS, 0x0005, TypeByte},
	{"GPSAltitude", DirGPS, 0x0006, TypeRational},
	{"GPSTimeStamp", DirGPS, 0x0007, TypeRational},
	{"GPSMapDatum", DirGPS, 0x0012, TypeASCII},
	{"GPSDateStamp", DirGPS, 0x001D, TypeASCII},

	// Interoperability IFD
	{"InteroperabilityIndex", DirInterop, 0x0001, TypeASCII},

	// Thumbnail (IFD1)
	{"ThumbCompression", DirThumbnail, 0x0103, TypeShort},
	{"ThumbXResolution", DirThumbnail, 0x011A, TypeRational},
	{"ThumbYResolution", DirThumbnail, 0x011B, TypeRational},
	{"ThumbResolutionUnit", DirThumbnail, 0x0128, TypeShort},
}

type dirTag struct {
	dir Directory
	id  uint16
}

var (
	byName = map[string]TagDescriptor{}
	byID   = map[dirTag]TagDescriptor{}
)

func init() {
	for _, td := range registry {
		if _, dup := byName[td.Name]; dup {
			panic(fmt.Sprintf("exif: duplicate tag name %q", td.Name))
		}
		key := dirTag{td.Dir, td.ID}
		if _, dup := byID[key]; dup {
			panic(fmt.Sprintf("exif: duplicate tag id %s/0x%04X", td.Dir, td.ID))
		}
		byName[td.Name] = td
		byID[key] = td
	}
}

// Resolve looks up a tag descriptor by its exact, case-sensitive field name.
func Resolve(name string) (TagDescriptor, error) {
	td, ok := byName[name]
	if !ok {
		return TagDescriptor{}, fmt.Errorf("%w: %q", core.ErrUnknownField, name)
	}
	return td, nil
}

// Describe is the reverse lookup, used to render tags encountered during
// decode. Unregistered tags report ok=false and are displayed by numeric id.
func Describe(dir Directory, id uint16) (TagDescriptor, bool) {
	td, ok := byID[dirTag{dir, id}]
	return td, ok
}
