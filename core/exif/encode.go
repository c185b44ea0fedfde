package exif

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pradyroy/imagefox/core"
)

// Encode serializes the document into a fresh, self-consistent TIFF blob.
// Original offsets are never preserved: every directory table, overflow value
// and thumbnail image is laid out from scratch. Directories are emitted depth
// first from the 0th IFD, children in ascending pointer tag order, thumbnail
// IFD last, and entries within a directory in ascending tag id, so equal
// documents produce identical bytes.
//
// An empty document encodes to a nil blob: total removal has no valid TIFF
// representation and callers drop the metadata segment instead. A document
// holding only a thumbnail IFD gains an empty 0th IFD on the wire, since the
// thumbnail is only reachable through the 0th IFD's next link.
func Encode(doc *Document) ([]byte, error) {
	if doc.Empty() {
		return nil, nil
	}
	order := doc.byteOrder
	if order == nil {
		order = binary.LittleEndian
	}

	enc := &encoder{order: order}
	if err := enc.layout(doc); err != nil {
		return nil, err
	}
	return enc.emit(doc)
}

// unit is one directory scheduled for emission, with the offsets assigned
// during layout.
type unit struct {
	ifd *IFD

	tableOffset uint32
	dataOffset  uint32
	entryCount  int
}

type encoder struct {
	order       binary.ByteOrder
	units       []*unit
	thumbOffset uint32 // where the thumbnail image lands
	totalSize   uint32
}

const tiffHeaderSize = 8

func (e *encoder) layout(doc *Document) error {
	root := doc.root
	if root == nil {
		// A thumbnail cannot stand alone: TIFF needs a 0th IFD to link from.
		root = NewIFD(DirZeroth)
	}

	// Schedule directories by the same child-link traversal emitIFD uses for
	// pointer entries, so every emitted pointer has a table to land on.
	e.schedule(root)
	if doc.thumb != nil {
		e.schedule(doc.thumb)
	}

	pos := uint64(tiffHeaderSize)
	for _, u := range e.units {
		u.entryCount = u.ifd.Len() + len(u.ifd.children)
		if u.ifd == doc.thumb && len(doc.thumbImage) > 0 {
			u.entryCount += 2 // offset + length entries
		}

		u.tableOffset = uint32(pos)
		tableSize := uint64(2 + u.entryCount*ifdEntrySize + 4)
		pos += tableSize
		u.dataOffset = uint32(pos)

		for _, id := range u.ifd.Tags() {
			v, _ := u.ifd.Get(id)
			n, err := payloadSize(v)
			if err != nil {
				return err
			}
			if n > 4 {
				pos += uint64(n)
				if pos%2 != 0 {
					pos++ // word-align the next value
				}
			}
		}
		if pos > math.MaxUint32 {
			return fmt.Errorf("%w: blob exceeds 4 GiB offset space", core.ErrEncodingOverflow)
		}
	}

	if len(doc.thumbImage) > 0 && doc.thumb != nil {
		e.thumbOffset = uint32(pos)
		pos += uint64(len(doc.thumbImage))
	}
	if pos > math.MaxUint32 {
		return fmt.Errorf("%w: blob exceeds 4 GiB offset space", core.ErrEncodingOverflow)
	}
	e.totalSize = uint32(pos)
	return nil
}

// schedule adds the directory and, depth first in ascending pointer tag
// order, every directory reachable through its child links.
func (e *encoder) schedule(ifd *IFD) {
	e.units = append(e.units, &unit{ifd: ifd})
	for _, ptag := range ifd.childTags() {
		e.schedule(ifd.Child(ptag))
	}
}

func (e *encoder) emit(doc *Document) ([]byte, error) {
	out := make([]byte, e.totalSize)
	if e.order == binary.LittleEndian {
		copy(out, "II")
	} else {
		copy(out, "MM")
	}
	e.order.PutUint16(out[2:4], tiffMagic)
	e.order.PutUint32(out[4:8], e.units[0].tableOffset)

	childOffsets := map[*IFD]uint32{}
	for _, u := range e.units {
		childOffsets[u.ifd] = u.tableOffset
	}

	for i, u := range e.units {
		var next uint32
		if i == 0 && doc.thumb != nil {
			for _, t := range e.units {
				if t.ifd == doc.thumb {
					next = t.tableOffset
				}
			}
		}
		if err := e.emitIFD(out, doc, u, childOffsets, next); err != nil {
			return nil, err
		}
	}

	if e.thumbOffset != 0 {
		copy(out[e.thumbOffset:], doc.thumbImage)
	}
	return out, nil
}

// emitIFD writes one directory table and its overflow values. Pointer entries
// for child directories and the thumbnail offset/length pair are merged into
// the entry list in ascending tag order.
func (e *encoder) emitIFD(out []byte, doc *Document, u *unit, childOffsets map[*IFD]uint32, next uint32) error {
	type wireEntry struct {
		id      uint16
		t       ValueType
		count   uint32
		payload []byte // nil for synthesized pointer entries
		inline  uint32 // used when payload is nil
	}

	var entries []wireEntry
	for _, id := range u.ifd.Tags() {
		v, _ := u.ifd.Get(id)
		payload, err := e.payload(v)
		if err != nil {
			return err
		}
		entries = append(entries, wireEntry{id: id, t: v.Type, count: v.Count(), payload: payload})
	}
	for _, ptag := range u.ifd.childTags() {
		child := u.ifd.Child(ptag)
		entries = append(entries, wireEntry{id: ptag, t: TypeLong, count: 1, inline: childOffsets[child]})
	}
	if u.ifd == doc.thumb && len(doc.thumbImage) > 0 {
		entries = append(entries,
			wireEntry{id: tagThumbOffset, t: TypeLong, count: 1, inline: e.thumbOffset},
			wireEntry{id: tagThumbLength, t: TypeLong, count: 1, inline: uint32(len(doc.thumbImage))})
	}
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].id > entries[j].id; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}

	pos := u.tableOffset
	e.order.PutUint16(out[pos:], uint16(len(entries)))
	pos += 2
	dataPos := u.dataOffset

	for _, ent := range entries {
		e.order.PutUint16(out[pos:], ent.id)
		e.order.PutUint16(out[pos+2:], uint16(ent.t))
		e.order.PutUint32(out[pos+4:], ent.count)
		field := out[pos+8 : pos+12]
		switch {
		case ent.payload == nil:
			e.order.PutUint32(field, ent.inline)
		case len(ent.payload) <= 4:
			copy(field, ent.payload)
		default:
			e.order.PutUint32(field, dataPos)
			copy(out[dataPos:], ent.payload)
			dataPos += uint32(len(ent.payload))
			if dataPos%2 != 0 {
				dataPos++
			}
		}
		pos += ifdEntrySize
	}
	e.order.PutUint32(out[pos:], next)
	return nil
}

// payloadSize returns the encoded byte length of a value.
func payloadSize(v TagValue) (uint32, error) {
	if v.rawField {
		return 4, nil
	}
	size := typeSizes[v.Type]
	total := uint64(size) * uint64(v.Count())
	if total > math.MaxUint32 {
		return 0, fmt.Errorf("%w: value of %d bytes cannot be represented", core.ErrEncodingOverflow, total)
	}
	return uint32(total), nil
}

// payload serializes the value's element sequence in the encoder's byte
// order. Raw passthrough values keep their original 4-byte field verbatim.
func (e *encoder) payload(v TagValue) ([]byte, error) {
	n, err := payloadSize(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, n)
	var scratch [4]byte
	put16 := func(s uint16) {
		e.order.PutUint16(scratch[:2], s)
		out = append(out, scratch[:2]...)
	}
	put32 := func(l uint32) {
		e.order.PutUint32(scratch[:4], l)
		out = append(out, scratch[:4]...)
	}
	switch v.Type {
	case TypeASCII:
		out = append(out, v.Text...)
		out = append(out, 0)
	case TypeByte, TypeUndefined:
		out = append(out, v.Bytes...)
	case TypeShort:
		for _, s := range v.Shorts {
			put16(s)
		}
	case TypeLong:
		for _, l := range v.Longs {
			put32(l)
		}
	case TypeRational:
		for _, r := range v.Rats {
			put32(r.Num)
			put32(r.Den)
		}
	case TypeSRational:
		for _, r := range v.SRats {
			put32(uint32(r.Num))
			put32(uint32(r.Den))
		}
	default:
		out = append(out, v.Bytes...) // raw 4-byte field
	}
	return out, nil
}
