package registry

// CapabilityKind is the closed set of ways a command injects work into
// the job journal.
type CapabilityKind string

const (
	// KindUIButton resolves a named ribbon button from the UI control
	// catalog and triggers it from the journal.
	KindUIButton CapabilityKind = "ui_button"
	// KindJournalBuilder injects a pre-built instruction fragment.
	KindJournalBuilder CapabilityKind = "journal_builder"
)

// BuilderKind is the closed set of recognized journal builders.
type BuilderKind string

const (
	BuilderWarningsExport BuilderKind = "warnings_export"
	BuilderAudit          BuilderKind = "audit"
)

// Hook selects the post-run action for a command.
type Hook string

const (
	// HookQCGraphs updates the quality-control graphs on success.
	HookQCGraphs Hook = "qc_graphs"
	// HookWarnings exports the warnings graphs/json.
	HookWarnings Hook = "warnings"
	// HookNone is an explicit no-op terminal step.
	HookNone Hook = "none"
)

// HookPolicy decides when the hook fires.
type HookPolicy string

const (
	// PolicyOnSuccess fires the hook only on Completed(0).
	PolicyOnSuccess HookPolicy = "on_success"
	// PolicyAlways fires the hook once Polling exits, success or timeout:
	// the command's value derives from artifacts the application writes
	// incrementally, not from its exit code.
	PolicyAlways HookPolicy = "always"
)

// CommandSpec is one resolved command: its identity, the journal fragment
// it injects, and its post-run behavior. Constructed once at resolution
// time, immutable for the run.
type CommandSpec struct {
	Name       string
	Kind       CapabilityKind
	Builder    BuilderKind // set when Kind == KindJournalBuilder
	ButtonName string      // set when Kind == KindUIButton
	Fragment   string      // instruction text injected into the journal
	Hook       Hook
	HookPolicy HookPolicy
}

// descriptor mirrors the command.toml capability descriptor of a command
// directory under the commands root.
type descriptor struct {
	Name               string `toml:"name" mapstructure:"name"`
	UIButtonName       string `toml:"ui_button_name" mapstructure:"ui_button_name"`
	JournalBuilderKind string `toml:"journal_builder_kind" mapstructure:"journal_builder_kind"`
}

// hookTable maps command names to their post-run behavior. Commands not
// listed default to HookNone/PolicyOnSuccess.
var hookTable = map[string]struct {
	hook   Hook
	policy HookPolicy
}{
	"qc":       {HookQCGraphs, PolicyOnSuccess},
	"warnings": {HookWarnings, PolicyAlways},
	"audit":    {HookNone, PolicyOnSuccess},
}
