package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bimops/rvtbatch/internal/journal"
)

type fakeButtons struct {
	fragment string
	err      error
}

func (f fakeButtons) Button(name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.fragment + name, nil
}

func writeCommand(t *testing.T, root, name, descriptor string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if descriptor == "" {
		return
	}
	if err := os.WriteFile(filepath.Join(dir, DescriptorFileName), []byte(descriptor), 0o644); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
}

func testBuilder() FragmentBuilder {
	return FragmentBuilder{
		WarningsDir:    "/warn/",
		ProjectCode:    "456_11",
		WarningsExport: journal.WarningsExportFragment,
		Audit:          journal.AuditFragment,
	}
}

func TestResolveUIButtonCommand(t *testing.T) {
	root := t.TempDir()
	writeCommand(t, root, "qc", "name = \"qc\"\nui_button_name = \"qc_model\"\n")

	spec, err := Resolve("qc", root, fakeButtons{fragment: "BTN:"}, testBuilder())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if spec.Name != "qc" || spec.Kind != KindUIButton || spec.ButtonName != "qc_model" {
		t.Fatalf("unexpected spec: %+v", spec)
	}
	if spec.Fragment != "BTN:qc_model" {
		t.Fatalf("fragment not resolved via button lookup: %q", spec.Fragment)
	}
	if spec.Hook != HookQCGraphs || spec.HookPolicy != PolicyOnSuccess {
		t.Fatalf("qc hook table not applied: %+v", spec)
	}
}

func TestResolveWarningsCommand(t *testing.T) {
	root := t.TempDir()
	writeCommand(t, root, "warnings", "name = \"warnings\"\njournal_builder_kind = \"warnings_export\"\n")

	spec, err := Resolve("warnings", root, fakeButtons{}, testBuilder())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if spec.Builder != BuilderWarningsExport || spec.Fragment == "" {
		t.Fatalf("unexpected spec: %+v", spec)
	}
	if spec.Hook != HookWarnings || spec.HookPolicy != PolicyAlways {
		t.Fatalf("warnings must carry the always policy: %+v", spec)
	}
}

func TestResolveAuditCommand(t *testing.T) {
	root := t.TempDir()
	writeCommand(t, root, "audit", "name = \"audit\"\njournal_builder_kind = \"audit\"\n")

	spec, err := Resolve("audit", root, fakeButtons{}, testBuilder())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if spec.Fragment != journal.AuditFragment() {
		t.Fatalf("audit fragment should be the no-op comment, got %q", spec.Fragment)
	}
	if spec.Hook != HookNone {
		t.Fatalf("audit hook should be none: %+v", spec)
	}
}

func TestResolveCommandNotFound(t *testing.T) {
	root := t.TempDir()
	writeCommand(t, root, "qc", "name = \"qc\"\nui_button_name = \"qc_model\"\n")

	_, err := Resolve("unknown_cmd", root, fakeButtons{}, testBuilder())
	if !errors.Is(err, ErrCommandNotFound) {
		t.Fatalf("expected ErrCommandNotFound, got %v", err)
	}
}

func TestResolveInvalidPlugins(t *testing.T) {
	cases := []struct {
		name       string
		descriptor string
	}{
		{"missing_descriptor", ""},
		{"name_mismatch", "name = \"other\"\nui_button_name = \"b\"\n"},
		{"no_capability", "name = \"%s\"\n"},
		{"unknown_builder", "name = \"%s\"\njournal_builder_kind = \"bogus\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			desc := tc.descriptor
			if desc != "" {
				desc = fmt.Sprintf(desc, tc.name)
			}
			writeCommand(t, root, tc.name, desc)
			_, err := Resolve(tc.name, root, fakeButtons{}, testBuilder())
			if !errors.Is(err, ErrInvalidPlugin) {
				t.Fatalf("expected ErrInvalidPlugin, got %v", err)
			}
		})
	}
}

func TestResolveButtonLookupFailureIsInvalidPlugin(t *testing.T) {
	root := t.TempDir()
	writeCommand(t, root, "qc", "name = \"qc\"\nui_button_name = \"gone\"\n")

	_, err := Resolve("qc", root, fakeButtons{err: errors.New("no such button")}, testBuilder())
	if !errors.Is(err, ErrInvalidPlugin) {
		t.Fatalf("button failure must propagate as ErrInvalidPlugin, got %v", err)
	}
}

func TestNamesListsOnlyDescribedDirs(t *testing.T) {
	root := t.TempDir()
	writeCommand(t, root, "qc", "name = \"qc\"\nui_button_name = \"b\"\n")
	writeCommand(t, root, "stray", "") // dir without descriptor

	names, err := Names(root)
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	if len(names) != 1 || names[0] != "qc" {
		t.Fatalf("unexpected names: %v", names)
	}
}
