package report

import "log/slog"

// GraphUpdater is the quality-control graph collaborator. It consumes the
// project code and output path and produces artifacts; rendering itself
// is outside this core.
type GraphUpdater interface {
	UpdateQC(projectCode, htmlPath string) error
}

// WarningsExporter is the warnings graph/export collaborator. It derives
// its value from artifacts the external application writes incrementally,
// so it is invoked regardless of the run's exit code.
type WarningsExporter interface {
	Export(projectCode, htmlPath string) error
}

// LogHooks records hook invocations without rendering anything; the
// default wiring until a real graph backend is attached.
type LogHooks struct {
	Logger *slog.Logger
}

func (h LogHooks) UpdateQC(projectCode, htmlPath string) error {
	h.Logger.Info("qc graphs update requested", "project", projectCode, "html_path", htmlPath)
	return nil
}

func (h LogHooks) Export(projectCode, htmlPath string) error {
	h.Logger.Info("warnings export requested", "project", projectCode, "html_path", htmlPath)
	return nil
}
