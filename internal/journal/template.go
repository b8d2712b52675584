package journal

// Journal and add-in templates fed to the external application. Only the
// {{...}} insertion points matter to the composer; everything else is
// opaque instruction text replayed by Revit's journal engine.

// Kind selects one of the closed set of templates.
type Kind string

const (
	// KindDetachRPS is the standard detach/reload journal running a
	// RevitPythonShell external command against the opened model.
	KindDetachRPS Kind = "detach_rps"
	// KindAuditDetach is the audit variant: open with audit enabled,
	// detach, and close without running an add-in command.
	KindAuditDetach Kind = "audit_detach"
)

const detachRPSTemplate = `' rvtbatch journal: open detached, run shell command, close
Dim Jrn
Set Jrn = CrsJournalScript
Jrn.Command "StartupPage" , "Open this project , ID_FILE_MRU_FIRST"
Jrn.Data "MRUFileName" , "{{model_dir}}{{model_file}}"
Jrn.Data "FileOpenSubDialog" , "OpenAsLocalCheckBox", "False"
Jrn.Data "FileOpenSubDialog" , "DetachCheckBox", "True"
Jrn.Data "TaskDialogResult" , "Detach Model from Central", "Detach and preserve worksets", "1001"
{{command_fragment}}
Jrn.Command "Internal" , "Close the active project , ID_REVIT_FILE_CLOSE"
Jrn.Command "SystemMenu" , "Quit the application; prompts to save projects , ID_APP_EXIT"
Jrn.Data "TaskDialogResult" , "Do you want to save changes?", "No", "IDNO"
`

const auditDetachTemplate = `' rvtbatch journal: open detached with audit, close
Dim Jrn
Set Jrn = CrsJournalScript
Jrn.Command "StartupPage" , "Open this project , ID_FILE_MRU_FIRST"
Jrn.Data "MRUFileName" , "{{model_dir}}{{model_file}}"
Jrn.Data "FileOpenSubDialog" , "OpenAsLocalCheckBox", "False"
Jrn.Data "FileOpenSubDialog" , "DetachCheckBox", "True"
Jrn.Data "FileOpenSubDialog" , "AuditCheckBox", "True"
Jrn.Data "TaskDialogResult" , "This operation can take a long time. Proceed?", "Yes", "IDYES"
Jrn.Data "TaskDialogResult" , "Detach Model from Central", "Detach and preserve worksets", "1001"
{{command_fragment}}
Jrn.Command "Internal" , "Close the active project , ID_REVIT_FILE_CLOSE"
Jrn.Command "SystemMenu" , "Quit the application; prompts to save projects , ID_APP_EXIT"
Jrn.Data "TaskDialogResult" , "Do you want to save changes?", "No", "IDNO"
`

const addinTemplate = `<?xml version="1.0" encoding="utf-8"?>
<RevitAddIns>
  <AddIn Type="Application">
    <Name>RevitPythonShell</Name>
    <Assembly>C:\Program Files (x86)\RevitPythonShell{{rvt_version}}\RevitPythonShell.dll</Assembly>
    <AddInId>3a7a1d24-51ed-462b-949f-1ddcca12008d</AddInId>
    <FullClassName>RevitPythonShell.RevitPythonShellApplication</FullClassName>
    <VendorId>RIPS</VendorId>
  </AddIn>
</RevitAddIns>
`

// warningsExportFragment is the journal fragment for the warnings export
// command; it instructs the review-warnings dialog to dump its table.
const warningsExportFragment = `Jrn.Command "Ribbon" , "Review warnings in the project , ID_REVIEW_WARNINGS"
Jrn.Command "Control" , "Export warnings table , Control_Revit_ExportWarning"
Jrn.Data "File Name" , "IDOK", "{{warnings_dir}}{{project_code}}_warnings.html"
Jrn.Data "TaskDialogResult" , "Export complete", "Close", "IDCLOSE"
`

// auditFragment is the deliberate no-op fragment for the audit command:
// a journal comment line, since audit work happens during file open.
const auditFragment = "' "
