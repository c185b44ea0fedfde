package exif

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/pradyroy/imagefox/core"
)

const (
	tiffMagic    = 42
	ifdEntrySize = 12
)

// Decode parses a raw metadata blob (TIFF header first, no "Exif\x00\x00"
// prefix) into a Document. A malformed 0th IFD is fatal; corruption inside an
// optional sub-directory degrades gracefully: that directory is treated as
// absent and the failure is recorded as a warning on the document.
func Decode(blob []byte) (*Document, error) {
	if len(blob) < 8 {
		return nil, fmt.Errorf("%w: blob shorter than TIFF header", core.ErrCorruptMetadata)
	}

	var order binary.ByteOrder
	switch {
	case blob[0] == 'I' && blob[1] == 'I':
		order = binary.LittleEndian
	case blob[0] == 'M' && blob[1] == 'M':
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad byte order marker %02X%02X", core.ErrCorruptMetadata, blob[0], blob[1])
	}
	if order.Uint16(blob[2:4]) != tiffMagic {
		return nil, fmt.Errorf("%w: bad TIFF magic", core.ErrCorruptMetadata)
	}

	dec := &decoder{data: blob, order: order, visited: map[uint32]bool{}}
	doc := &Document{byteOrder: order}

	rootOffset := order.Uint32(blob[4:8])
	root, next, err := dec.parseIFD(rootOffset, DirZeroth)
	if err != nil {
		return nil, err
	}
	doc.root = root

	if next != 0 {
		thumb, _, err := dec.parseIFD(next, DirThumbnail)
		if err != nil {
			dec.warn(err)
		} else {
			dec.extractThumbImage(doc, thumb)
			doc.thumb = thumb
		}
	}

	doc.warnings = dec.warnings.ErrorOrNil()
	return doc, nil
}

type decoder struct {
	data     []byte
	order    binary.ByteOrder
	visited  map[uint32]bool
	warnings *multierror.Error
}

func (d *decoder) warn(err error) {
	d.warnings = multierror.Append(d.warnings, err)
}

// pointerDirs maps sub-IFD pointer tags to the directory namespace of the
// directory they own.
var pointerDirs = map[uint16]Directory{
	tagExifIFD:    DirExif,
	tagGPSIFD:     DirGPS,
	tagInteropIFD: DirInterop,
}

// parseIFD reads one directory table at offset, returning the directory and
// the next-IFD offset that follows its entry table.
func (d *decoder) parseIFD(offset uint32, dir Directory) (*IFD, uint32, error) {
	if d.visited[offset] {
		return nil, 0, fmt.Errorf("%w: cyclic directory pointer to 0x%X", core.ErrCorruptMetadata, offset)
	}
	d.visited[offset] = true

	end := uint64(len(d.data))
	if uint64(offset)+2 > end {
		return nil, 0, fmt.Errorf("%w: %s IFD offset 0x%X out of bounds", core.ErrCorruptMetadata, dir, offset)
	}
	n := uint64(d.order.Uint16(d.data[offset : offset+2]))
	tableEnd := uint64(offset) + 2 + n*ifdEntrySize
	if tableEnd+4 > end {
		return nil, 0, fmt.Errorf("%w: %s IFD truncated (%d entries)", core.ErrCorruptMetadata, dir, n)
	}

	ifd := NewIFD(dir)
	for i := uint64(0); i < n; i++ {
		entry := d.data[uint64(offset)+2+i*ifdEntrySize:][:ifdEntrySize]
		id := d.order.Uint16(entry[0:2])
		typeCode := ValueType(d.order.Uint16(entry[2:4]))
		count := d.order.Uint32(entry[4:8])
		field := entry[8:12]

		if childDir, isPointer := pointerDirs[id]; isPointer {
			childOffset := d.order.Uint32(field)
			child, _, err := d.parseIFD(childOffset, childDir)
			if err != nil {
				// A damaged GPS or Interop block should not block the rest.
				d.warn(err)
				continue
			}
			ifd.setChild(id, child)
			continue
		}

		v, err := d.decodeValue(typeCode, count, field)
		if err != nil {
			return nil, 0, fmt.Errorf("tag 0x%04X in %s IFD: %w", id, dir, err)
		}
		ifd.entries[id] = v
	}

	next := d.order.Uint32(d.data[tableEnd : tableEnd+4])
	return ifd, next, nil
}

// decodeValue materializes one entry's value, dereferencing the offset
// indirection when the total byte length exceeds the 4-byte field.
func (d *decoder) decodeValue(t ValueType, count uint32, field []byte) (TagValue, error) {
	size, known := typeSizes[t]
	if !known {
		// Unrecognized type code: carry the entry through untouched.
		raw := make([]byte, 4)
		copy(raw, field)
		return TagValue{Type: t, Bytes: raw, rawField: true, rawCount: count}, nil
	}

	total := uint64(size) * uint64(count)
	var payload []byte
	if total <= 4 {
		payload = field[:total]
	} else {
		off := d.order.Uint32(field)
		if uint64(off)+total > uint64(len(d.data)) {
			return TagValue{}, fmt.Errorf("%w: value offset 0x%X (+%d) out of bounds", core.ErrCorruptMetadata, off, total)
		}
		payload = d.data[off : uint64(off)+total]
	}

	switch t {
	case TypeASCII:
		return ASCII(strings.TrimRight(string(payload), "\x00")), nil
	case TypeByte:
		return Byte(append([]byte(nil), payload...)...), nil
	case TypeUndefined:
		return Undefined(append([]byte(nil), payload...)), nil
	case TypeShort:
		vals := make([]uint16, count)
		for i := range vals {
			vals[i] = d.order.Uint16(payload[i*2:])
		}
		return Short(vals...), nil
	case TypeLong:
		vals := make([]uint32, count)
		for i := range vals {
			vals[i] = d.order.Uint32(payload[i*4:])
		}
		return Long(vals...), nil
	case TypeRational:
		vals := make([]Rational, count)
		for i := range vals {
			vals[i] = Rational{
				Num: d.order.Uint32(payload[i*8:]),
				Den: d.order.Uint32(payload[i*8+4:]),
			}
		}
		return Rationals(vals...), nil
	case TypeSRational:
		vals := make([]SRational, count)
		for i := range vals {
			vals[i] = SRational{
				Num: int32(d.order.Uint32(payload[i*8:])),
				Den: int32(d.order.Uint32(payload[i*8+4:])),
			}
		}
		return SRationals(vals...), nil
	}
	return TagValue{}, fmt.Errorf("%w: unreachable type %d", core.ErrCorruptMetadata, t)
}

// extractThumbImage pulls the embedded thumbnail JPEG out of the blob. The
// offset/length pair is consumed here and re-synthesized on encode, so the
// model never carries stale offsets.
func (d *decoder) extractThumbImage(doc *Document, thumb *IFD) {
	offVal, okOff := thumb.Get(tagThumbOffset)
	lenVal, okLen := thumb.Get(tagThumbLength)
	thumb.Remove(tagThumbOffset)
	thumb.Remove(tagThumbLength)
	if !okOff || !okLen {
		return
	}
	off, ok1 := scalarUint(offVal)
	length, ok2 := scalarUint(lenVal)
	if !ok1 || !ok2 {
		return
	}
	if uint64(off)+uint64(length) > uint64(len(d.data)) {
		d.warn(fmt.Errorf("%w: thumbnail image spans past end of blob", core.ErrCorruptMetadata))
		return
	}
	doc.thumbImage = append([]byte(nil), d.data[off:uint64(off)+uint64(length)]...)
}

func scalarUint(v TagValue) (uint32, bool) {
	switch v.Type {
	case TypeLong:
		if len(v.Longs) == 1 {
			return v.Longs[0], true
		}
	case TypeShort:
		if len(v.Shorts) == 1 {
			return uint32(v.Shorts[0]), true
		}
	}
	return 0, false
}
