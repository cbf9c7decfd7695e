package placement

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bidsmap/internal/faults"
	"bidsmap/internal/fileutil"
	"bidsmap/internal/journal"
	"bidsmap/internal/naming"
	"bidsmap/internal/source"
	"bidsmap/internal/textutil"
)

// Options configure a Driver.
type Options struct {
	SourceDir string
	DestDir   string
	// MappingPath is recorded in the journal only.
	MappingPath string
	Subject     string
	Session     string
	Naming      naming.Policy
	Method      fileutil.Method
	// EventsDir holds task-<task>_<run>_events.tsv files for nested runs.
	EventsDir string
	DryRun    bool
	// LockDir enables the destination lock when non-empty.
	LockDir string
	Journal *journal.Store
	Logger  *slog.Logger
	// Out receives dry-run action lines; defaults to io.Discard.
	Out io.Writer
}

// validate checks every fatal precondition and fills defaults. It touches
// nothing on disk.
func (o *Options) validate() error {
	if err := source.RequireDir(o.SourceDir, "source"); err != nil {
		return err
	}
	if strings.TrimSpace(o.DestDir) == "" {
		return faults.Wrap(faults.ErrPath, "dest", "validate", "destination directory is required", nil)
	}
	if info, err := os.Stat(o.DestDir); err == nil && !info.IsDir() {
		return faults.Wrap(faults.ErrPath, "dest", "validate", "destination path is not a directory: "+o.DestDir, nil)
	}
	if o.EventsDir != "" {
		if err := source.RequireDir(o.EventsDir, "events"); err != nil {
			return err
		}
	}
	if strings.TrimSpace(o.Subject) == "" {
		o.Subject = SubjectFromSource(o.SourceDir)
	}
	method, err := fileutil.ParseMethod(string(o.Method))
	if err != nil {
		return faults.Wrap(faults.ErrConfig, "placement", "validate", "", err)
	}
	o.Method = method
	if o.Out == nil {
		o.Out = io.Discard
	}
	return nil
}

// SubjectFromSource derives a subject label from the source directory leaf,
// reduced to lower-case alphanumerics.
func SubjectFromSource(sourceDir string) string {
	abs, err := filepath.Abs(sourceDir)
	if err != nil {
		abs = sourceDir
	}
	return textutil.SanitizeLabel(filepath.Base(filepath.Clean(abs)), "unknown")
}
