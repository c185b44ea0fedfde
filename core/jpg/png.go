package jpg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/pradyroy/imagefox/core"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

type pngChunk struct {
	typ  string
	data []byte
}

func parsePNGChunks(data []byte) ([]pngChunk, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, fmt.Errorf("%w: missing PNG signature", core.ErrUnsupportedFormat)
	}
	var chunks []pngChunk
	i := len(pngSignature)
	for i+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[i : i+4]))
		typ := string(data[i+4 : i+8])
		i += 8
		if i+length+4 > len(data) {
			return nil, fmt.Errorf("%w: %s chunk overruns file", core.ErrCorruptImage, typ)
		}
		chunks = append(chunks, pngChunk{typ: typ, data: append([]byte(nil), data[i:i+length]...)})
		i += length + 4 // skip CRC, recomputed on write
		if typ == "IEND" {
			break
		}
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks", core.ErrCorruptImage)
	}
	return chunks, nil
}

func writePNGChunks(chunks []pngChunk) []byte {
	var buf bytes.Buffer
	buf.Write(pngSignature)
	for _, c := range chunks {
		var hdr [8]byte
		binary.BigEndian.PutUint32(hdr[:4], uint32(len(c.data)))
		copy(hdr[4:], c.typ)
		buf.Write(hdr[:])
		buf.Write(c.data)

		crc := crc32.NewIEEE()
		crc.Write([]byte(c.typ))
		crc.Write(c.data)
		var sum [4]byte
		binary.BigEndian.PutUint32(sum[:], crc.Sum32())
		buf.Write(sum[:])
	}
	return buf.Bytes()
}

// extractPNG returns the raw TIFF blob from the eXIf chunk, or nil when the
// file carries none.
func extractPNG(data []byte) ([]byte, error) {
	chunks, err := parsePNGChunks(data)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		if c.typ == "eXIf" {
			return c.data, nil
		}
	}
	return nil, nil
}

// splicePNG rewrites the file with blob as its eXIf chunk: replaced when one
// exists, inserted before the first IDAT when not, dropped when blob is nil.
func splicePNG(data []byte, blob []byte) ([]byte, error) {
	chunks, err := parsePNGChunks(data)
	if err != nil {
		return nil, err
	}

	var out []pngChunk
	replaced := false
	for _, c := range chunks {
		if c.typ == "eXIf" {
			if blob == nil {
				continue
			}
			c.data = blob
			replaced = true
		}
		out = append(out, c)
	}
	if blob != nil && !replaced {
		var final []pngChunk
		inserted := false
		for _, c := range out {
			if !inserted && c.typ == "IDAT" {
				final = append(final, pngChunk{typ: "eXIf", data: blob})
				inserted = true
			}
			final = append(final, c)
		}
		if !inserted {
			final = append(final, pngChunk{typ: "eXIf", data: blob})
		}
		out = final
	}
	return writePNGChunks(out), nil
}
