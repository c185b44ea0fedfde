package exif

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/pradyroy/imagefox/core"
)

// IFD is one Image File Directory: a mapping from tag id to value plus
// ownership links to child directories reached through sub-IFD pointer tags.
// Pointer tags themselves (0x8769, 0x8825, 0xA005) never appear as entries;
// the codec synthesizes them from the child links.
type IFD struct {
	dir      Directory
	entries  map[uint16]TagValue
	children map[uint16]*IFD
}

// NewIFD returns an empty directory belonging to the given namespace.
func NewIFD(dir Directory) *IFD {
	return &IFD{
		dir:      dir,
		entries:  make(map[uint16]TagValue),
		children: make(map[uint16]*IFD),
	}
}

// Dir reports which directory namespace this IFD belongs to.
func (f *IFD) Dir() Directory { return f.dir }

// Get returns the value stored under id, if any.
func (f *IFD) Get(id uint16) (TagValue, bool) {
	v, ok := f.entries[id]
	return v, ok
}

// Set inserts or overwrites the value under id. For registered tags the
// value's variant must match the declared type; unregistered ids accept any
// variant as opaque passthrough.
func (f *IFD) Set(id uint16, v TagValue) error {
	if td, known := Describe(f.dir, id); known && td.Type != v.Type {
		return fmt.Errorf("%w: tag %s expects %d, got %d", core.ErrTypeMismatch, td.Name, td.Type, v.Type)
	}
	f.entries[id] = v
	return nil
}

// Remove deletes the entry under id; a no-op when absent.
func (f *IFD) Remove(id uint16) { delete(f.entries, id) }

// Len returns the number of entries, excluding child links.
func (f *IFD) Len() int { return len(f.entries) }

// Tags returns the entry ids in ascending order.
func (f *IFD) Tags() []uint16 {
	ids := make([]uint16, 0, len(f.entries))
	for id := range f.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Child dereferences the ownership link held by the given pointer tag,
// returning nil when the link is not set.
func (f *IFD) Child(pointerTag uint16) *IFD {
	return f.children[pointerTag]
}

func (f *IFD) setChild(pointerTag uint16, child *IFD) {
	f.children[pointerTag] = child
}

// childTags returns the pointer tags with a live child link, ascending.
func (f *IFD) childTags() []uint16 {
	ids := make([]uint16, 0, len(f.children))
	for id := range f.children {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Document is the root aggregate for one image's metadata: the 0th IFD tree
// (with Exif, GPS and Interop as children), the thumbnail IFD reached through
// the 0th IFD's next-IFD link, and the raw thumbnail image bytes when present.
// Absent directories are nil and are omitted from encoding entirely.
type Document struct {
	byteOrder  binary.ByteOrder
	root       *IFD // 0th
	thumb      *IFD // IFD1
	thumbImage []byte
	warnings   error
}

// NewDocument returns an empty document encoded little-endian.
func NewDocument() *Document {
	return &Document{byteOrder: binary.LittleEndian}
}

// ByteOrder reports the byte order the document was decoded with, and that a
// subsequent encode will use.
func (d *Document) ByteOrder() binary.ByteOrder { return d.byteOrder }

// Zeroth returns the 0th IFD, or nil when absent.
func (d *Document) Zeroth() *IFD { return d.root }

// Exif returns the Exif IFD, or nil when absent.
func (d *Document) Exif() *IFD {
	if d.root == nil {
		return nil
	}
	return d.root.Child(tagExifIFD)
}

// GPS returns the GPS IFD, or nil when absent. The pointer normally lives in
// the 0th IFD but some writers place it inside the Exif IFD; both are honored.
func (d *Document) GPS() *IFD {
	if d.root == nil {
		return nil
	}
	if gps := d.root.Child(tagGPSIFD); gps != nil {
		return gps
	}
	if ex := d.root.Child(tagExifIFD); ex != nil {
		return ex.Child(tagGPSIFD)
	}
	return nil
}

// Interop returns the Interoperability IFD, or nil when absent.
func (d *Document) Interop() *IFD {
	ex := d.Exif()
	if ex == nil {
		return nil
	}
	return ex.Child(tagInteropIFD)
}

// Thumbnail returns the thumbnail IFD (IFD1), or nil when absent.
func (d *Document) Thumbnail() *IFD { return d.thumb }

// ThumbnailImage returns the embedded thumbnail image bytes, if any.
func (d *Document) ThumbnailImage() []byte { return d.thumbImage }

// Warnings returns the non-fatal corruption reports accumulated during
// decode, or nil. Each degraded sub-directory contributes one entry.
func (d *Document) Warnings() error { return d.warnings }

// Empty reports whether the document holds no directories at all.
func (d *Document) Empty() bool { return d.root == nil && d.thumb == nil }

// Dir returns the IFD for the given directory namespace, or nil when absent.
func (d *Document) Dir(dir Directory) *IFD {
	switch dir {
	case DirZeroth:
		return d.Zeroth()
	case DirExif:
		return d.Exif()
	case DirGPS:
		return d.GPS()
	case DirInterop:
		return d.Interop()
	case DirThumbnail:
		return d.Thumbnail()
	}
	return nil
}

// EnsureDir returns the IFD for the given directory, creating it and any
// required parent ownership links on demand: asking for the Interop IFD on a
// bare document creates the 0th IFD, the Exif IFD and the 0xA005 link.
func (d *Document) EnsureDir(dir Directory) *IFD {
	if d.root == nil && dir != DirThumbnail {
		d.root = NewIFD(DirZeroth)
	}
	switch dir {
	case DirZeroth:
		return d.root
	case DirExif:
		return ensureChild(d.root, tagExifIFD, DirExif)
	case DirGPS:
		if gps := d.GPS(); gps != nil {
			return gps
		}
		return ensureChild(d.root, tagGPSIFD, DirGPS)
	case DirInterop:
		ex := ensureChild(d.root, tagExifIFD, DirExif)
		return ensureChild(ex, tagInteropIFD, DirInterop)
	case DirThumbnail:
		if d.thumb == nil {
			d.thumb = NewIFD(DirThumbnail)
		}
		return d.thumb
	}
	return nil
}

func ensureChild(parent *IFD, pointerTag uint16, dir Directory) *IFD {
	if child := parent.Child(pointerTag); child != nil {
		return child
	}
	child := NewIFD(dir)
	parent.setChild(pointerTag, child)
	return child
}
