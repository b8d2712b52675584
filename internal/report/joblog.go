package report

import (
	"fmt"
	"os"
	"time"
)

// JobLog appends semicolon-delimited rows to the structured run log.
// The row format is a persisted external interface consumed by the graph
// and report collaborators; it must not change:
//
//	time_stamp;level;project;process_hash;error_code;args
const jobLogHeader = "time_stamp;level;project;process_hash;error_code;args\n"

const timestampLayout = "20060102T150405Z"

// Result codes recorded in the error_code column.
const (
	CodeSuccess       = 0
	CodeTimeout       = 1
	CodeModelNotFound = 2
	CodeCancelled     = 3
)

type JobLog struct {
	path string
}

// OpenJobLog seeds the log file with its header if (and only if) it does
// not exist yet, and returns the appender.
func OpenJobLog(path string) (*JobLog, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(jobLogHeader), 0o640); err != nil {
			return nil, fmt.Errorf("seed job log %s: %w", path, err)
		}
	}
	return &JobLog{path: path}, nil
}

// Path returns the log file location.
func (j *JobLog) Path() string { return j.path }

// Append writes one row. level is INFO or WARNING; args carries the
// original invocation arguments (comma-concatenated) on start rows and is
// empty on result rows.
func (j *JobLog) Append(level, project string, processHash uint64, errorCode int, args string) error {
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open job log %s: %w", j.path, err)
	}
	defer func() { _ = f.Close() }()
	row := fmt.Sprintf("%s;%s;%s;%d;%d;%s\n",
		time.Now().UTC().Format(timestampLayout), level, project, processHash, errorCode, args)
	if _, err := f.WriteString(row); err != nil {
		return fmt.Errorf("append job log %s: %w", j.path, err)
	}
	return nil
}
