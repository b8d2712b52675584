// Package rpscatalog resolves named RevitPythonShell ribbon buttons from
// the version-specific control catalog (RibbonPanel.xml) into the journal
// ribbon-event instruction that triggers them.
package rpscatalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrButtonNotFound reports a button name absent from the catalog.
var ErrButtonNotFound = errors.New("ribbon button not found")

type ribbonPanel struct {
	XMLName xml.Name     `xml:"RibbonPanel"`
	Buttons []pushButton `xml:"PushButton"`
}

type pushButton struct {
	Text            string `xml:"text,attr"`
	Script          string `xml:"script,attr"`
	ExternalCommand string `xml:"externalcommand,attr"`
}

// Catalog is one version's parsed control catalog.
type Catalog struct {
	path    string
	buttons map[string]pushButton
}

// Find locates and parses the catalog for the given application major
// version under root (root/RevitPythonShell_<version>/RibbonPanel.xml).
func Find(root, rvtVersion string) (*Catalog, error) {
	path := filepath.Join(root, "RevitPythonShell_"+rvtVersion, "RibbonPanel.xml")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("control catalog for version %s: %w", rvtVersion, err)
	}
	var panel ribbonPanel
	if err := xml.Unmarshal(b, &panel); err != nil {
		return nil, fmt.Errorf("parse control catalog %s: %w", path, err)
	}
	c := &Catalog{path: path, buttons: make(map[string]pushButton, len(panel.Buttons))}
	for _, b := range panel.Buttons {
		c.buttons[b.Text] = b
	}
	return c, nil
}

// Path returns the catalog file location, for diagnostics.
func (c *Catalog) Path() string { return c.path }

// Button resolves a named button into the journal instruction fragment
// that executes it as an external command.
func (c *Catalog) Button(name string) (string, error) {
	b, ok := c.buttons[name]
	if !ok {
		return "", fmt.Errorf("%w: %q in %s", ErrButtonNotFound, name, c.path)
	}
	id := b.ExternalCommand
	if id == "" {
		return "", fmt.Errorf("%w: %q has no externalcommand attribute", ErrButtonNotFound, name)
	}
	fragment := fmt.Sprintf("Jrn.RibbonEvent \"Execute external command:CustomCtrl_%%CustomCtrl_%%Add-Ins%%RevitPythonShell%%%s:%s\"\n", b.Text, id)
	return fragment, nil
}
