package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// PathLayout is the process-wide set of resolved directories. It is computed
// once at startup from a fixed root and read-only for the remainder of the run.
type PathLayout struct {
	Root            string
	Journals        string
	Logs            string
	Warnings        string
	Commands        string
	CommandQC       string
	CommandWarnings string
}

// ResolveLayout maps the directory structure under root into a PathLayout.
func ResolveLayout(root string) (PathLayout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return PathLayout{}, fmt.Errorf("resolve root %q: %w", root, err)
	}
	commands := filepath.Join(abs, "commands")
	return PathLayout{
		Root:            abs,
		Journals:        filepath.Join(abs, "journals"),
		Logs:            filepath.Join(abs, "logs"),
		Warnings:        filepath.Join(abs, "warnings"),
		Commands:        commands,
		CommandQC:       filepath.Join(commands, "qc"),
		CommandWarnings: filepath.Join(commands, "warnings"),
	}, nil
}

// EnsureDirs creates every directory of the layout.
func (l PathLayout) EnsureDirs() error {
	for _, dir := range []string{l.Journals, l.Logs, l.Warnings, l.Commands, l.CommandQC, l.CommandWarnings} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// JournalFile is the per-project journal artifact path, keyed by project code.
func (l PathLayout) JournalFile(projectCode string) string {
	return filepath.Join(l.Journals, projectCode+".txt")
}

// AddinFile is the fixed-name add-in descriptor artifact path.
func (l PathLayout) AddinFile() string {
	return filepath.Join(l.Journals, "RevitPythonShell.addin")
}

// JobLogFile is the semicolon-delimited structured run log.
func (l PathLayout) JobLogFile() string {
	return filepath.Join(l.Logs, "job_logging.csv")
}

// HTMLDir returns the default graph output directory for a command.
func (l PathLayout) HTMLDir(command string) string {
	switch command {
	case "warnings":
		return l.CommandWarnings
	default:
		return l.CommandQC
	}
}

// LogConfig mirrors the [log] TOML table.
type LogConfig struct {
	Level      string `toml:"level" mapstructure:"level"`
	Color      bool   `toml:"color" mapstructure:"color"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// HistoryConfig mirrors the [history] TOML table.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	DSN     string `toml:"dsn" mapstructure:"dsn"`
}

// MailTarget mirrors one [notify.<project>] TOML table.
type MailTarget struct {
	Server   string `toml:"server" mapstructure:"server"`
	Port     int    `toml:"port" mapstructure:"port"`
	Sender   string `toml:"sender" mapstructure:"sender"`
	Receiver string `toml:"receiver" mapstructure:"receiver"`
}

// InstallConfig mirrors the [install] TOML table.
type InstallConfig struct {
	Roots []string `toml:"roots" mapstructure:"roots"`
}

// FileConfig is the optional rvtbatch.toml at the root directory.
type FileConfig struct {
	Log     LogConfig             `toml:"log" mapstructure:"log"`
	History HistoryConfig         `toml:"history" mapstructure:"history"`
	Install InstallConfig         `toml:"install" mapstructure:"install"`
	Notify  map[string]MailTarget `toml:"notify" mapstructure:"notify"`
}

// ConfigFileName is the well-known config file name under the root directory.
const ConfigFileName = "rvtbatch.toml"

// Load reads the TOML config at path. A missing file yields defaults, any
// other read or decode failure is surfaced.
func Load(path string) (FileConfig, error) {
	fc := FileConfig{Log: LogConfig{Level: "info", Color: true}}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return fc, err
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return fc, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&fc); err != nil {
		return fc, fmt.Errorf("decode config %s: %w", path, err)
	}
	return fc, nil
}
