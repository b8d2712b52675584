// Package registry discovers command plugins under the commands root,
// validates their capability descriptors, and resolves a requested
// command name into the journal fragment and post-run hook it needs.
//
// A command is a directory under the commands root carrying a
// command.toml descriptor. The descriptor is a minimal capability
// advertisement, not a rich plugin API: it names the command and at most
// one of the closed set of injection capabilities.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrCommandNotFound reports a requested name with no matching
	// directory under the commands root. Operator configuration error.
	ErrCommandNotFound = errors.New("command not found")
	// ErrInvalidPlugin reports a matching directory whose capability
	// descriptor is missing or malformed.
	ErrInvalidPlugin = errors.New("invalid command plugin")
)

// DescriptorFileName is the capability descriptor inside a command dir.
const DescriptorFileName = "command.toml"

// ButtonResolver resolves a named UI button into a journal instruction
// fragment. Implemented by the rpscatalog collaborator; its failure is
// propagated as ErrInvalidPlugin.
type ButtonResolver interface {
	Button(name string) (string, error)
}

// FragmentBuilder builds the pre-built instruction fragments for the
// closed set of journal builder kinds.
type FragmentBuilder struct {
	WarningsDir string
	ProjectCode string
	// WarningsExport composes the warnings export fragment; injected so
	// the registry stays decoupled from the journal composer.
	WarningsExport func(warningsDir, projectCode string) (string, error)
	// Audit returns the audit no-op fragment.
	Audit func() string
}

// Resolve enumerates the direct subdirectories of commandsRoot, loads the
// descriptor of the one matching name, and returns its CommandSpec.
func Resolve(name, commandsRoot string, buttons ButtonResolver, builder FragmentBuilder) (CommandSpec, error) {
	entries, err := os.ReadDir(commandsRoot)
	if err != nil {
		return CommandSpec{}, fmt.Errorf("scan commands root %s: %w", commandsRoot, err)
	}
	for _, e := range entries {
		if !e.IsDir() || e.Name() != name {
			continue
		}
		return load(name, filepath.Join(commandsRoot, e.Name()), buttons, builder)
	}
	return CommandSpec{}, fmt.Errorf("%w: no directory %q under %s", ErrCommandNotFound, name, commandsRoot)
}

// Names lists the discovered command directories, for operator listings.
func Names(commandsRoot string) ([]string, error) {
	entries, err := os.ReadDir(commandsRoot)
	if err != nil {
		return nil, fmt.Errorf("scan commands root %s: %w", commandsRoot, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(commandsRoot, e.Name(), DescriptorFileName)); err == nil {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func load(name, dir string, buttons ButtonResolver, builder FragmentBuilder) (CommandSpec, error) {
	descPath := filepath.Join(dir, DescriptorFileName)
	if _, err := os.Stat(descPath); err != nil {
		return CommandSpec{}, fmt.Errorf("%w: %s missing descriptor %s", ErrInvalidPlugin, name, DescriptorFileName)
	}
	v := viper.New()
	v.SetConfigFile(descPath)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return CommandSpec{}, fmt.Errorf("%w: %s: %v", ErrInvalidPlugin, name, err)
	}
	var d descriptor
	if err := v.Unmarshal(&d); err != nil {
		return CommandSpec{}, fmt.Errorf("%w: %s: %v", ErrInvalidPlugin, name, err)
	}
	if d.Name != name {
		return CommandSpec{}, fmt.Errorf("%w: descriptor name %q does not match directory %q", ErrInvalidPlugin, d.Name, name)
	}

	spec := CommandSpec{Name: name, Hook: HookNone, HookPolicy: PolicyOnSuccess}
	if hp, ok := hookTable[name]; ok {
		spec.Hook, spec.HookPolicy = hp.hook, hp.policy
	}

	switch {
	case d.UIButtonName != "":
		spec.Kind = KindUIButton
		spec.ButtonName = d.UIButtonName
		fragment, err := buttons.Button(d.UIButtonName)
		if err != nil {
			return CommandSpec{}, fmt.Errorf("%w: %s: resolve button %q: %v", ErrInvalidPlugin, name, d.UIButtonName, err)
		}
		spec.Fragment = fragment
	case d.JournalBuilderKind != "":
		spec.Kind = KindJournalBuilder
		spec.Builder = BuilderKind(d.JournalBuilderKind)
		switch spec.Builder {
		case BuilderWarningsExport:
			fragment, err := builder.WarningsExport(builder.WarningsDir, builder.ProjectCode)
			if err != nil {
				return CommandSpec{}, fmt.Errorf("%w: %s: %v", ErrInvalidPlugin, name, err)
			}
			spec.Fragment = fragment
		case BuilderAudit:
			spec.Fragment = builder.Audit()
		default:
			return CommandSpec{}, fmt.Errorf("%w: %s: unrecognized journal_builder_kind %q", ErrInvalidPlugin, name, d.JournalBuilderKind)
		}
	default:
		return CommandSpec{}, fmt.Errorf("%w: %s: descriptor advertises no recognized capability", ErrInvalidPlugin, name)
	}
	return spec, nil
}
