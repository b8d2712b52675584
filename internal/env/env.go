package env

import (
	"os"
	"strings"
)

// Environment variable names consumed by the downstream graph and report
// collaborators. They are part of the external contract and must not change.
const (
	KeyProject = "RVT_QC_PRJ"
	KeyModel   = "RVT_QC_PATH"
	KeyLogs    = "RVT_LOG_PATH"
)

type Var map[string]string

// Env composes the environment handed to the launched application. The base
// is the OS environment; Var holds run-specific overrides applied on top.
type Env struct {
	Var  Var
	base Var
}

func New() *Env {
	return &Env{Var: make(Var)}
}

// FromOS caches the current process environment as the base.
func (e *Env) FromOS() {
	base := make(Var)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			k := kv[:i]
			if k == "" {
				continue
			}
			base[k] = kv[i+1:]
		}
	}
	e.base = base
}

// Set records an override K=V.
func (e *Env) Set(k, v string) {
	if e.Var == nil {
		e.Var = make(Var)
	}
	e.Var[k] = v
}

// SetContract installs the three run variables consumed by collaborators
// and mirrors them into the current process so in-process hooks see them.
func (e *Env) SetContract(projectCode, modelPath, logsDir string) {
	e.Set(KeyProject, projectCode)
	e.Set(KeyModel, modelPath)
	e.Set(KeyLogs, logsDir)
	_ = os.Setenv(KeyProject, projectCode)
	_ = os.Setenv(KeyModel, modelPath)
	_ = os.Setenv(KeyLogs, logsDir)
}

// Merge returns the composed environment in "K=V" form: cached OS base,
// then overrides. Keys are not expanded; values are passed verbatim.
func (e *Env) Merge() []string {
	if e.base == nil {
		e.FromOS()
	}
	m := make(Var, len(e.base)+len(e.Var))
	for k, v := range e.base {
		m[k] = v
	}
	for k, v := range e.Var {
		m[k] = v
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}
