// Package jpg implements the image codec collaborator: container-level
// extraction and splicing of the raw EXIF blob for JPEG and PNG files, plus
// the pixel decode/encode path used by compress and convert.
package jpg

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pradyroy/imagefox/core"
)

// exifPrefix introduces the EXIF payload of a JPEG APP1 segment.
var exifPrefix = []byte("Exif\x00\x00")

// segment is one JPEG marker segment. Scan data after SOS is kept as a single
// pseudo-segment with marker 0x00 so a rewrite reproduces the file exactly.
type segment struct {
	marker byte
	data   []byte
}

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerAPP1 = 0xE1
	markerSOS  = 0xDA
	markerScan = 0x00
)

// parseSegments splits a JPEG byte stream into its marker segments.
func parseSegments(data []byte) ([]segment, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, fmt.Errorf("%w: missing SOI marker", core.ErrUnsupportedFormat)
	}
	segs := []segment{{marker: markerSOI}}

	i := 2
	for i < len(data) {
		if data[i] != 0xFF {
			segs = append(segs, segment{marker: markerScan, data: data[i:]})
			break
		}
		i++
		if i >= len(data) {
			return nil, fmt.Errorf("%w: truncated marker", core.ErrCorruptImage)
		}
		marker := data[i]
		i++

		if marker == markerSOI || marker == markerEOI {
			segs = append(segs, segment{marker: marker})
			if marker == markerEOI {
				break
			}
			continue
		}

		if i+2 > len(data) {
			return nil, fmt.Errorf("%w: truncated segment length", core.ErrCorruptImage)
		}
		segLen := int(binary.BigEndian.Uint16(data[i:i+2])) - 2
		i += 2
		if segLen < 0 || i+segLen > len(data) {
			return nil, fmt.Errorf("%w: segment overruns file", core.ErrCorruptImage)
		}
		segs = append(segs, segment{marker: marker, data: append([]byte(nil), data[i:i+segLen]...)})
		i += segLen

		if marker == markerSOS {
			// Entropy-coded scan follows; copy it through untouched.
			segs = append(segs, segment{marker: markerScan, data: data[i:]})
			break
		}
	}
	return segs, nil
}

// writeSegments reassembles a segment list into JPEG bytes.
func writeSegments(segs []segment) []byte {
	var buf bytes.Buffer
	for _, seg := range segs {
		switch seg.marker {
		case markerSOI, markerEOI:
			buf.Write([]byte{0xFF, seg.marker})
		case markerScan:
			buf.Write(seg.data)
		default:
			buf.WriteByte(0xFF)
			buf.WriteByte(seg.marker)
			length := uint16(len(seg.data) + 2)
			buf.WriteByte(byte(length >> 8))
			buf.WriteByte(byte(length))
			buf.Write(seg.data)
		}
	}
	return buf.Bytes()
}

func isEXIFSegment(seg segment) bool {
	return seg.marker == markerAPP1 && bytes.HasPrefix(seg.data, exifPrefix)
}

// extractJPEG returns the raw TIFF blob from the APP1 EXIF segment, or nil
// when the file carries none.
func extractJPEG(data []byte) ([]byte, error) {
	segs, err := parseSegments(data)
	if err != nil {
		return nil, err
	}
	for _, seg := range segs {
		if isEXIFSegment(seg) {
			return seg.data[len(exifPrefix):], nil
		}
	}
	return nil, nil
}

// spliceJPEG rewrites the file with the given TIFF blob as its APP1 EXIF
// segment: replaced in place when one exists, inserted right after SOI when
// not, dropped entirely when blob is nil. Every other segment and the scan
// data are carried through byte for byte.
func spliceJPEG(data []byte, blob []byte) ([]byte, error) {
	segs, err := parseSegments(data)
	if err != nil {
		return nil, err
	}

	var out []segment
	replaced := false
	for _, seg := range segs {
		if isEXIFSegment(seg) {
			if blob == nil {
				continue // strip
			}
			seg.data = append(append([]byte(nil), exifPrefix...), blob...)
			replaced = true
		}
		out = append(out, seg)
	}
	if blob != nil && !replaced {
		app1 := segment{marker: markerAPP1, data: append(append([]byte(nil), exifPrefix...), blob...)}
		out = append([]segment{out[0], app1}, out[1:]...)
	}
	return writeSegments(out), nil
}
