// Package core defines the shared types, error kinds, and format detection
// for imagefox.
package core

// MetaField represents a single rendered metadata key-value pair.
type MetaField struct {
	Name      string // Field name when registered (e.g. "Make"), else "0xNNNN"
	Value     string // Rendered value
	Directory string // Owning directory (e.g. "0th", "Exif", "GPS")
}

// Metadata holds all metadata extracted from a single file.
type Metadata struct {
	FilePath string
	Format   string // Human-readable format name (e.g. "JPEG", "PNG")
	Fields   []MetaField
}

// Summary returns a short string of key fields for quick display.
func (m *Metadata) Summary() string {
	for _, f := range m.Fields {
		if f.Name == "Make" || f.Name == "Model" {
			return f.Name + ": " + f.Value
		}
	}
	return m.Format
}
