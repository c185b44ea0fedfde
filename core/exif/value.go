package exif

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pradyroy/imagefox/core"
)

// Rational is an unsigned numerator/denominator pair.
type Rational struct {
	Num uint32
	Den uint32
}

// SRational is a signed numerator/denominator pair.
type SRational struct {
	Num int32
	Den int32
}

// TagValue is the tagged union over the value variants a directory entry can
// carry. Exactly one variant is active, selected by Type. Entries whose wire
// type code is not one of the known ValueType constants are carried through
// verbatim in raw form (rawField true, Bytes holding the 4-byte value field).
type TagValue struct {
	Type ValueType

	Text   string      // TypeASCII
	Bytes  []byte      // TypeByte, TypeUndefined, raw passthrough
	Shorts []uint16    // TypeShort
	Longs  []uint32    // TypeLong
	Rats   []Rational  // TypeRational
	SRats  []SRational // TypeSRational

	// Wire passthrough for entries with an unrecognized type code: count as
	// read, Bytes holds the value-or-offset field untouched.
	rawField bool
	rawCount uint32
}

// ASCII returns a TagValue holding text. The trailing NUL terminator is a
// wire concern and is added by the encoder, not stored here.
func ASCII(s string) TagValue { return TagValue{Type: TypeASCII, Text: s} }

// Byte returns a TagValue holding unsigned 8-bit integers.
func Byte(b ...uint8) TagValue { return TagValue{Type: TypeByte, Bytes: b} }

// Short returns a TagValue holding unsigned 16-bit integers.
func Short(v ...uint16) TagValue { return TagValue{Type: TypeShort, Shorts: v} }

// Long returns a TagValue holding unsigned 32-bit integers.
func Long(v ...uint32) TagValue { return TagValue{Type: TypeLong, Longs: v} }

// Rationals returns a TagValue holding unsigned rational pairs.
func Rationals(r ...Rational) TagValue { return TagValue{Type: TypeRational, Rats: r} }

// SRationals returns a TagValue holding signed rational pairs.
func SRationals(r ...SRational) TagValue { return TagValue{Type: TypeSRational, SRats: r} }

// Undefined returns a TagValue holding opaque bytes.
func Undefined(b []byte) TagValue { return TagValue{Type: TypeUndefined, Bytes: b} }

// Count returns the wire element count for the value.
func (v TagValue) Count() uint32 {
	switch v.Type {
	case TypeASCII:
		return uint32(len(v.Text)) + 1 // trailing NUL
	case TypeByte, TypeUndefined:
		return uint32(len(v.Bytes))
	case TypeShort:
		return uint32(len(v.Shorts))
	case TypeLong:
		return uint32(len(v.Longs))
	case TypeRational:
		return uint32(len(v.Rats))
	case TypeSRational:
		return uint32(len(v.SRats))
	default:
		return v.rawCount
	}
}

// Render formats the value for display: ASCII as text without the
// terminator, integer sequences comma-separated, rationals as "n/d" and
// opaque bytes as hex.
func (v TagValue) Render() string {
	switch v.Type {
	case TypeASCII:
		return strings.TrimRight(v.Text, "\x00")
	case TypeByte:
		return joinInts(len(v.Bytes), func(i int) string { return strconv.Itoa(int(v.Bytes[i])) })
	case TypeShort:
		return joinInts(len(v.Shorts), func(i int) string { return strconv.Itoa(int(v.Shorts[i])) })
	case TypeLong:
		return joinInts(len(v.Longs), func(i int) string { return strconv.FormatUint(uint64(v.Longs[i]), 10) })
	case TypeRational:
		return joinInts(len(v.Rats), func(i int) string {
			return fmt.Sprintf("%d/%d", v.Rats[i].Num, v.Rats[i].Den)
		})
	case TypeSRational:
		return joinInts(len(v.SRats), func(i int) string {
			return fmt.Sprintf("%d/%d", v.SRats[i].Num, v.SRats[i].Den)
		})
	default:
		return fmt.Sprintf("% X", v.Bytes)
	}
}

func joinInts(n int, item func(int) string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = item(i)
	}
	return strings.Join(parts, ",")
}

// ParseValue parses user-supplied text into a TagValue of the given type.
// ASCII is passed through; integer sequences are comma-separated; rationals
// accept "n/d" or a bare integer treated as n/1.
func ParseValue(t ValueType, text string) (TagValue, error) {
	switch t {
	case TypeASCII:
		return ASCII(text), nil
	case TypeUndefined:
		return Undefined([]byte(text)), nil
	case TypeByte:
		vals, err := parseUints(text, 8)
		if err != nil {
			return TagValue{}, err
		}
		b := make([]byte, len(vals))
		for i, n := range vals {
			b[i] = uint8(n)
		}
		return Byte(b...), nil
	case TypeShort:
		vals, err := parseUints(text, 16)
		if err != nil {
			return TagValue{}, err
		}
		s := make([]uint16, len(vals))
		for i, n := range vals {
			s[i] = uint16(n)
		}
		return Short(s...), nil
	case TypeLong:
		vals, err := parseUints(text, 32)
		if err != nil {
			return TagValue{}, err
		}
		l := make([]uint32, len(vals))
		for i, n := range vals {
			l[i] = uint32(n)
		}
		return Long(l...), nil
	case TypeRational:
		rats := []Rational{}
		for _, part := range strings.Split(text, ",") {
			num, den, err := parseRatio(part)
			if err != nil {
				return TagValue{}, err
			}
			if num < 0 || den < 0 {
				return TagValue{}, fmt.Errorf("%w: negative value %q for unsigned rational", core.ErrValueParse, part)
			}
			rats = append(rats, Rational{Num: uint32(num), Den: uint32(den)})
		}
		return Rationals(rats...), nil
	case TypeSRational:
		rats := []SRational{}
		for _, part := range strings.Split(text, ",") {
			num, den, err := parseRatio(part)
			if err != nil {
				return TagValue{}, err
			}
			rats = append(rats, SRational{Num: int32(num), Den: int32(den)})
		}
		return SRationals(rats...), nil
	default:
		return TagValue{}, fmt.Errorf("%w: type code %d is not editable", core.ErrValueParse, t)
	}
}

func parseUints(text string, bits int) ([]uint64, error) {
	var out []uint64
	for _, part := range strings.Split(text, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, bits)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a %d-bit unsigned integer", core.ErrValueParse, part, bits)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseRatio(part string) (num, den int64, err error) {
	part = strings.TrimSpace(part)
	numStr, denStr, slash := strings.Cut(part, "/")
	num, err = strconv.ParseInt(numStr, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q is not a rational", core.ErrValueParse, part)
	}
	if !slash {
		return num, 1, nil
	}
	den, err = strconv.ParseInt(denStr, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q is not a rational", core.ErrValueParse, part)
	}
	if den == 0 {
		return 0, 0, fmt.Errorf("%w: zero denominator in %q", core.ErrValueParse, part)
	}
	return num, den, nil
}
