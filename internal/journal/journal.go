// Package journal composes the instruction artifacts consumed by the
// external application: the per-project job journal and the fixed-name
// add-in descriptor. Composition is literal placeholder substitution so
// that instruction text the composer does not recognize passes through
// untouched.
package journal

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrTemplate reports a template missing a required placeholder.
var ErrTemplate = errors.New("journal template error")

const (
	phModelDir    = "{{model_dir}}"
	phModelFile   = "{{model_file}}"
	phFragment    = "{{command_fragment}}"
	phRvtVersion  = "{{rvt_version}}"
	phWarningsDir = "{{warnings_dir}}"
	phProjectCode = "{{project_code}}"
)

// Compose renders the journal of the given kind for one model and command
// fragment. Identical inputs yield byte-identical output.
func Compose(kind Kind, modelDir, modelFile, fragment string) (string, error) {
	var tpl string
	switch kind {
	case KindDetachRPS:
		tpl = detachRPSTemplate
	case KindAuditDetach:
		tpl = auditDetachTemplate
	default:
		return "", fmt.Errorf("%w: unknown template kind %q", ErrTemplate, kind)
	}
	if err := requirePlaceholders(tpl, kind, phModelDir, phModelFile, phFragment); err != nil {
		return "", err
	}
	r := strings.NewReplacer(
		phModelDir, modelDir,
		phModelFile, modelFile,
		phFragment, fragment,
	)
	return r.Replace(tpl), nil
}

// ComposeAddin renders the add-in descriptor from the application's major
// version number alone.
func ComposeAddin(rvtVersion string) (string, error) {
	if err := requirePlaceholders(addinTemplate, "addin", phRvtVersion); err != nil {
		return "", err
	}
	return strings.ReplaceAll(addinTemplate, phRvtVersion, rvtVersion), nil
}

// WarningsExportFragment builds the instruction fragment injected by the
// warnings command: an export of the warnings table into warningsDir keyed
// by project code.
func WarningsExportFragment(warningsDir, projectCode string) (string, error) {
	if err := requirePlaceholders(warningsExportFragment, "warnings_export", phWarningsDir, phProjectCode); err != nil {
		return "", err
	}
	r := strings.NewReplacer(
		phWarningsDir, warningsDir,
		phProjectCode, projectCode,
	)
	return r.Replace(warningsExportFragment), nil
}

// AuditFragment is the no-op fragment for the audit command.
func AuditFragment() string { return auditFragment }

func requirePlaceholders(tpl string, kind Kind, placeholders ...string) error {
	for _, ph := range placeholders {
		if !strings.Contains(tpl, ph) {
			return fmt.Errorf("%w: template %q lacks required placeholder %s", ErrTemplate, kind, ph)
		}
	}
	return nil
}

// Write replaces the file at path with content. Writes are full
// truncate-replace, never append, so regeneration is idempotent.
func Write(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
		return fmt.Errorf("write journal artifact %s: %w", path, err)
	}
	return nil
}
