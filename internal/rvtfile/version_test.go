package rvtfile

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"
)

func encodeUTF16LE(s string) []byte {
	u := utf16.Encode([]rune(s))
	b := make([]byte, 2*len(u))
	for i, v := range u {
		binary.LittleEndian.PutUint16(b[2*i:], v)
	}
	return b
}

// writeModel fabricates a minimal compound-document lookalike: the OLE
// magic followed by padding and a UTF-16 file-info string.
func writeModel(t *testing.T, info string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.rvt")
	b := append([]byte{}, oleMagic...)
	b = append(b, make([]byte, 64)...)
	b = append(b, encodeUTF16LE(info)...)
	if err := os.WriteFile(path, b, 0o640); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

func TestVersionFromFileInfo(t *testing.T) {
	path := writeModel(t, "Format: Autodesk Revit 2019 (Build: 20180806_1515)")
	v, err := Version(path)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "2019" {
		t.Fatalf("version = %q, want 2019", v)
	}
}

func TestVersionAnchorsOnFileInfoMarker(t *testing.T) {
	// A year-like token before the marker must not win.
	path := writeModel(t, "saved 2001 odyssey Autodesk Revit 2021 build")
	v, err := Version(path)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "2021" {
		t.Fatalf("version = %q, want 2021", v)
	}
}

func TestVersionNotOLE(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.rvt")
	if err := os.WriteFile(path, []byte("PK\x03\x04 not a compound file"), 0o640); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Version(path); !errors.Is(err, ErrNotOLE) {
		t.Fatalf("expected ErrNotOLE, got %v", err)
	}
}

func TestVersionMarkerMissing(t *testing.T) {
	path := writeModel(t, "no build year in here")
	if _, err := Version(path); !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}
}

func TestVersionMissingFile(t *testing.T) {
	if _, err := Version(filepath.Join(t.TempDir(), "absent.rvt")); err == nil {
		t.Fatal("expected read error")
	}
}
