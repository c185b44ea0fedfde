package core

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		magic    []byte
		expected FormatID
	}{
		{"JPEG", []byte{0xFF, 0xD8, 0xFF, 0xE0}, FmtJPEG},
		{"PNG", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, FmtPNG},
		{"GIF87a", []byte("GIF87a"), FmtGIF},
		{"GIF89a", []byte("GIF89a"), FmtGIF},
		{"WebP", []byte("RIFF\x00\x00\x00\x00WEBP"), FmtWebP},
		{"TIFF LE", []byte{0x49, 0x49, 0x2A, 0x00}, FmtTIFF},
		{"TIFF BE", []byte{0x4D, 0x4D, 0x00, 0x2A}, FmtTIFF},
		{"BMP", []byte{0x42, 0x4D, 0x00, 0x00}, FmtBMP},
		{"unknown", []byte{0x00, 0x00, 0x00, 0x00}, FmtUnknown},
		{"too short", []byte{0xFF}, FmtUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.magic); got != tt.expected {
				t.Errorf("Detect() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFormatForExt(t *testing.T) {
	if got := FormatForExt(".jpeg"); got != FmtJPEG {
		t.Errorf("FormatForExt(.jpeg) = %v", got)
	}
	if got := FormatForExt(".xyz"); got != FmtUnknown {
		t.Errorf("FormatForExt(.xyz) = %v", got)
	}
}
