package jpg

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/pradyroy/imagefox/core"
)

// EncodeOptions controls the pixel encode path.
type EncodeOptions struct {
	Quality   int // JPEG quality 1-100; 0 means the codec default
	MaxWidth  int // downscale bound, 0 = unbounded
	MaxHeight int
}

const defaultQuality = 85

// ExtractBlob pulls the raw EXIF blob out of a file without touching pixel
// data. A nil blob with a nil error means the file simply has no metadata.
func ExtractBlob(data []byte) ([]byte, core.FormatID, error) {
	switch id := core.Detect(data); id {
	case core.FmtJPEG:
		blob, err := extractJPEG(data)
		return blob, id, err
	case core.FmtPNG:
		blob, err := extractPNG(data)
		return blob, id, err
	default:
		return nil, id, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, id)
	}
}

// Splice writes blob back into the file's metadata slot, leaving pixel data
// and every unrelated container structure byte for byte unchanged. A nil
// blob removes the metadata slot entirely.
func Splice(data []byte, blob []byte) ([]byte, error) {
	switch id := core.Detect(data); id {
	case core.FmtJPEG:
		return spliceJPEG(data, blob)
	case core.FmtPNG:
		return splicePNG(data, blob)
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, id)
	}
}

// Decode reads the pixel buffer and the raw metadata blob from a file.
func Decode(data []byte) (image.Image, []byte, error) {
	blob, id, err := ExtractBlob(data)
	if err != nil {
		return nil, nil, err
	}
	var img image.Image
	switch id {
	case core.FmtJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	case core.FmtPNG:
		img, err = png.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrCorruptImage, err)
	}
	return img, blob, nil
}

// Encode renders the pixel buffer into the target format, applying the
// quality and dimension options, and embeds blob when non-nil.
func Encode(img image.Image, blob []byte, target core.FormatID, opts EncodeOptions) ([]byte, error) {
	if opts.MaxWidth > 0 || opts.MaxHeight > 0 {
		w, h := opts.MaxWidth, opts.MaxHeight
		if w == 0 {
			w = img.Bounds().Dx()
		}
		if h == 0 {
			h = img.Bounds().Dy()
		}
		img = imaging.Fit(img, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	switch target {
	case core.FmtJPEG:
		q := opts.Quality
		if q == 0 {
			q = defaultQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrCorruptImage, err)
		}
	case core.FmtPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrCorruptImage, err)
		}
	default:
		return nil, fmt.Errorf("%w: cannot encode %s", core.ErrUnsupportedFormat, target)
	}

	if blob == nil {
		return buf.Bytes(), nil
	}
	return Splice(buf.Bytes(), blob)
}
