// Package meta implements the metadata operations: view, remove, and edit
// over a decoded document, plus the file-level entry points that run the
// whole extract-decode-mutate-encode-splice pipeline.
package meta

import (
	"fmt"

	"github.com/pradyroy/imagefox/core"
	"github.com/pradyroy/imagefox/core/exif"
	"github.com/pradyroy/imagefox/core/jpg"
)

// viewOrder is the flattening order: 0th before its children, thumbnail last.
var viewOrder = []exif.Directory{
	exif.DirZeroth, exif.DirExif, exif.DirGPS, exif.DirInterop, exif.DirThumbnail,
}

// View flattens all present directories into rendered (name, value) pairs.
// Registered tags show their field name; everything else shows its numeric id.
func View(doc *exif.Document) []core.MetaField {
	var fields []core.MetaField
	for _, dir := range viewOrder {
		ifd := doc.Dir(dir)
		if ifd == nil {
			continue
		}
		for _, id := range ifd.Tags() {
			v, _ := ifd.Get(id)
			name := fmt.Sprintf("0x%04X", id)
			if td, ok := exif.Describe(dir, id); ok {
				name = td.Name
			}
			fields = append(fields, core.MetaField{
				Name:      name,
				Value:     v.Render(),
				Directory: dir.String(),
			})
		}
	}
	return fields
}

// Remove returns an empty document: total removal, not selective.
func Remove(doc *exif.Document) *exif.Document {
	return exif.NewDocument()
}

// Edit resolves the field name, parses text according to the field's declared
// type and sets the value into the owning directory, creating the directory
// and any parent link on demand. The document is mutated in place and
// returned. Only registered, named fields can be edited.
func Edit(doc *exif.Document, field, text string) (*exif.Document, error) {
	td, err := exif.Resolve(field)
	if err != nil {
		return nil, err
	}
	v, err := exif.ParseValue(td.Type, text)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", field, err)
	}
	if err := doc.EnsureDir(td.Dir).Set(td.ID, v); err != nil {
		return nil, err
	}
	return doc, nil
}

// ViewMetadata reads all metadata from the file bytes.
func ViewMetadata(data []byte) ([]core.MetaField, error) {
	blob, _, err := jpg.ExtractBlob(data)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}
	doc, err := exif.Decode(blob)
	if err != nil {
		return nil, err
	}
	return View(doc), nil
}

// RemoveMetadata returns the file with its metadata stripped. Pixel data and
// unrelated container structures are untouched.
func RemoveMetadata(data []byte) ([]byte, error) {
	blob, _, err := jpg.ExtractBlob(data)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return data, nil
	}
	return jpg.Splice(data, nil)
}

// EditMetadata sets one named field to the given value and returns the
// rewritten file. A file without metadata gains a fresh EXIF block holding
// just the edited field.
func EditMetadata(data []byte, field, text string) ([]byte, error) {
	blob, _, err := jpg.ExtractBlob(data)
	if err != nil {
		return nil, err
	}
	doc := exif.NewDocument()
	if blob != nil {
		if doc, err = exif.Decode(blob); err != nil {
			return nil, err
		}
	}
	if _, err = Edit(doc, field, text); err != nil {
		return nil, err
	}
	newBlob, err := exif.Encode(doc)
	if err != nil {
		return nil, err
	}
	return jpg.Splice(data, newBlob)
}

// Compress re-encodes the file lossily at the given quality, optionally
// bounded to maxWidth x maxHeight, preserving its metadata blob.
func Compress(data []byte, quality, maxWidth, maxHeight int) ([]byte, error) {
	img, blob, err := jpg.Decode(data)
	if err != nil {
		return nil, err
	}
	return jpg.Encode(img, blob, core.Detect(data), jpg.EncodeOptions{
		Quality:   quality,
		MaxWidth:  maxWidth,
		MaxHeight: maxHeight,
	})
}

// Convert re-encodes the file into the target format, carrying the metadata
// blob across containers.
func Convert(data []byte, target core.FormatID) ([]byte, error) {
	img, blob, err := jpg.Decode(data)
	if err != nil {
		return nil, err
	}
	return jpg.Encode(img, blob, target, jpg.EncodeOptions{})
}
