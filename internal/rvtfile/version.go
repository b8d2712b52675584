// Package rvtfile detects the saved application version of a model file.
// Model files are OLE compound documents whose BasicFileInfo stream
// carries the build year as UTF-16 text; this collaborator checks the
// container magic and scans for that marker. It is a narrow interface:
// a version string given a file path.
package rvtfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf16"
)

// ErrNotOLE reports a file without the compound-document signature.
var ErrNotOLE = errors.New("not an OLE compound file")

// ErrVersionNotFound reports a container without a recognizable version
// marker.
var ErrVersionNotFound = errors.New("model version marker not found")

// oleMagic is the OLE2 compound document signature.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

var versionPattern = regexp.MustCompile(` (20\d{2}) `)

// Version returns the 4-digit version saved in the model at path.
func Version(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read model %s: %w", path, err)
	}
	if len(b) < len(oleMagic) || string(b[:len(oleMagic)]) != string(oleMagic) {
		return "", fmt.Errorf("%w: %s", ErrNotOLE, path)
	}

	text := decodeUTF16LE(b)
	// Anchor on the file-info text when present to avoid matching stray
	// year-like sequences elsewhere in the container.
	search := text
	if i := strings.Index(text, "Autodesk Revit"); i >= 0 {
		end := i + 512
		if end > len(text) {
			end = len(text)
		}
		search = text[i:end]
	}
	m := versionPattern.FindStringSubmatch(search)
	if m == nil {
		// Fall back to the whole decoded container.
		m = versionPattern.FindStringSubmatch(text)
	}
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrVersionNotFound, path)
	}
	return m[1], nil
}

// decodeUTF16LE decodes b as little-endian UTF-16, dropping a trailing
// odd byte and unmappable units.
func decodeUTF16LE(b []byte) string {
	n := len(b) / 2
	u := make([]uint16, n)
	for i := 0; i < n; i++ {
		u[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(u))
}
