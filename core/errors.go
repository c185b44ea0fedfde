package core

import "errors"

var (
	// ErrUnknownField is returned when a field name is not in the tag registry.
	ErrUnknownField = errors.New("imagefox: unknown field")

	// ErrTypeMismatch is returned when a value's variant disagrees with the
	// registered type for its tag.
	ErrTypeMismatch = errors.New("imagefox: type mismatch")

	// ErrValueParse is returned when user-supplied text cannot be parsed
	// according to the resolved tag type.
	ErrValueParse = errors.New("imagefox: value parse error")

	// ErrCorruptMetadata is returned when an EXIF blob contains a malformed
	// directory entry, truncated offset, or out-of-bounds sub-IFD pointer.
	ErrCorruptMetadata = errors.New("imagefox: corrupt metadata")

	// ErrEncodingOverflow is returned when a value is too large for the
	// count/type encoding of a directory entry.
	ErrEncodingOverflow = errors.New("imagefox: encoding overflow")

	// ErrUnsupportedFormat is returned when the image format cannot be
	// detected or is not handled by the codec.
	ErrUnsupportedFormat = errors.New("imagefox: unsupported format")

	// ErrCorruptImage is returned when the image container itself is damaged.
	ErrCorruptImage = errors.New("imagefox: corrupt image")
)
