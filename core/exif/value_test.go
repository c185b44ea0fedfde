package exif

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pradyroy/imagefox/core"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		typ     ValueType
		text    string
		want    TagValue
		wantErr error
	}{
		{
			name: "ascii passthrough",
			typ:  TypeASCII,
			text: "not-a-rational",
			want: ASCII("not-a-rational"),
		},
		{
			name: "short sequence",
			typ:  TypeShort,
			text: "1, 2,3",
			want: Short(1, 2, 3),
		},
		{
			name: "long scalar",
			typ:  TypeLong,
			text: "70000",
			want: Long(70000),
		},
		{
			name: "rational n/d",
			typ:  TypeRational,
			text: "28/10",
			want: Rationals(Rational{Num: 28, Den: 10}),
		},
		{
			name: "bare integer becomes n/1",
			typ:  TypeRational,
			text: "5",
			want: Rationals(Rational{Num: 5, Den: 1}),
		},
		{
			name: "signed rational",
			typ:  TypeSRational,
			text: "-1/3",
			want: SRationals(SRational{Num: -1, Den: 3}),
		},
		{
			name:    "rational garbage",
			typ:     TypeRational,
			text:    "abc",
			wantErr: core.ErrValueParse,
		},
		{
			name:    "zero denominator",
			typ:     TypeRational,
			text:    "1/0",
			wantErr: core.ErrValueParse,
		},
		{
			name:    "negative unsigned rational",
			typ:     TypeRational,
			text:    "-1/2",
			wantErr: core.ErrValueParse,
		},
		{
			name:    "short overflow",
			typ:     TypeShort,
			text:    "70000",
			wantErr: core.ErrValueParse,
		},
		{
			name:    "byte garbage",
			typ:     TypeByte,
			text:    "1,x",
			wantErr: core.ErrValueParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.typ, tt.text)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		v    TagValue
		want string
	}{
		{"ascii trims terminator", TagValue{Type: TypeASCII, Text: "Acme\x00"}, "Acme"},
		{"shorts", Short(1, 2), "1,2"},
		{"rational", Rationals(Rational{Num: 28, Den: 10}), "28/10"},
		{"signed rational", SRationals(SRational{Num: -7, Den: 2}), "-7/2"},
		{"bytes", Byte(2, 0, 0, 0), "2,0,0,0"},
		{"undefined as hex", Undefined([]byte{0xDE, 0xAD}), "DE AD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Render())
		})
	}
}
