package util

import (
	"path/filepath"
	"strings"
)

// TrimAll trims surrounding whitespace from every field in place.
func TrimAll(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// SanitizeFilename keeps the base name of an uploaded file and replaces every
// character outside [a-zA-Z0-9.-] with an underscore, one per UTF-16 code
// unit, so names match those already stored under uploads.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-':
			b.WriteRune(c)
		case c > 0xFFFF:
			// surrogate pair
			b.WriteString("__")
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
