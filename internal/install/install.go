// Package install locates the installed application executable for a
// given major version. A narrow collaborator: an executable path given a
// version string. Discovery probes the configured install roots for the
// known vendor directory layouts.
package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotInstalled reports that no executable was found for the version.
var ErrNotInstalled = errors.New("no installed application found")

// DefaultRoots are probed when the config names none.
var DefaultRoots = []string{
	`C:\Program Files\Autodesk`,
	`C:\Program Files (x86)\Autodesk`,
}

// layouts are the vendor directory patterns, relative to a root.
var layouts = []string{
	"Revit %s",
	"Revit Architecture %s",
	"Revit Structure %s",
	"Revit MEP %s",
}

// Detect returns the executable path for the given major version, probing
// roots in order and layouts in order within each root.
func Detect(version string, roots []string) (string, error) {
	if len(roots) == 0 {
		roots = DefaultRoots
	}
	for _, root := range roots {
		for _, layout := range layouts {
			exe := filepath.Join(root, fmt.Sprintf(layout, version), "Revit.exe")
			if info, err := os.Stat(exe); err == nil && !info.IsDir() {
				return exe, nil
			}
		}
	}
	return "", fmt.Errorf("%w: version %s under %v", ErrNotInstalled, version, roots)
}
