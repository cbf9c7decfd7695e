package placement

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"bidsmap/internal/classify"
	"bidsmap/internal/faults"
	"bidsmap/internal/fileutil"
	"bidsmap/internal/journal"
	"bidsmap/internal/logging"
	"bidsmap/internal/mapping"
	"bidsmap/internal/naming"
	"bidsmap/internal/source"
)

// Driver places one mapping. A Driver is single use: its naming engine and
// claim table belong to one pass.
type Driver struct {
	opts   Options
	engine *naming.Engine
	logger *slog.Logger

	claims map[string]string
	report *Report
}

// NewDriver validates opts. All fatal checks happen here, before anything is
// written.
func NewDriver(opts Options) (*Driver, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	engine, err := naming.NewEngine(naming.Context{
		Subject: opts.Subject,
		Session: opts.Session,
		Policy:  opts.Naming,
	}, opts.Logger)
	if err != nil {
		return nil, err
	}
	return &Driver{
		opts:   opts,
		engine: engine,
		logger: logging.NewComponentLogger(opts.Logger, "placement"),
		claims: make(map[string]string),
	}, nil
}

// AttachJournal records the pass in store. It must be called before Run; a
// nil store disables recording.
func (d *Driver) AttachJournal(store *journal.Store) {
	d.opts.Journal = store
}

// Run places every entry of m and returns the pass report. The returned error
// is non-nil only for fatal conditions (lock held, context cancelled).
func (d *Driver) Run(ctx context.Context, m mapping.Mapping) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if m == nil {
		return nil, faults.Wrap(faults.ErrConfig, "placement", "run", "nil mapping", nil)
	}
	if d.report != nil {
		return nil, fmt.Errorf("placement driver already used")
	}

	sessionID := uuid.NewString()
	ctx = logging.WithSession(ctx, sessionID)
	logger := logging.WithContext(ctx, d.logger)
	d.report = &Report{SessionID: sessionID, DryRun: d.opts.DryRun}

	if !d.opts.DryRun {
		if d.opts.LockDir != "" {
			lock, err := acquireLock(d.opts.LockDir, d.opts.DestDir)
			if err != nil {
				return nil, err
			}
			defer func() {
				if err := lock.release(); err != nil {
					logger.Warn("failed to release destination lock", logging.Error(err))
				}
			}()
		}
		d.beginJournal(ctx, logger, m)
	}

	ctxName := d.engine.Context()
	logger.Info("placement started",
		logging.String("layout", string(m.Layout())),
		logging.String("method", string(d.opts.Method)),
		logging.String("naming", string(ctxName.Policy)),
		logging.String("subject", ctxName.Subject),
		logging.String("session", ctxName.Session),
		logging.Bool("dry_run", d.opts.DryRun),
	)

	var runErr error
	for _, entry := range m.Entries() {
		if err := ctx.Err(); err != nil {
			runErr = err
			logger.Warn("placement interrupted", logging.Error(err))
			break
		}
		entryLogger := logger.With(
			logging.String(logging.FieldSection, string(entry.Section)),
			logging.String(logging.FieldStem, entry.Stem),
		)
		switch m.Layout() {
		case mapping.LayoutFlat:
			d.placeFlat(ctx, entryLogger, entry)
		default:
			d.placeNested(ctx, entryLogger, entry)
		}
	}

	d.finishJournal(ctx, logger)
	logger.Info("placement finished",
		logging.Int("placed", d.report.Placed),
		logging.Int("skipped", d.report.Skipped),
		logging.Int("missing", d.report.Missing),
		logging.Int("failed", d.report.Failed),
		logging.Int("events", d.report.Events),
	)
	return d.report, runErr
}

func (d *Driver) placeNested(ctx context.Context, logger *slog.Logger, entry mapping.Entry) {
	files := d.locate(logger, entry)
	ctxName := d.engine.Context()
	dir := filepath.Join(d.opts.DestDir, naming.BIDSFolder(ctxName.Subject, ctxName.Session), string(entry.Section))
	prefix := naming.BIDSPrefix(ctxName.Subject, ctxName.Session)

	var suffix string
	switch entry.Section {
	case classify.SectionAnat:
		suffix = entry.Group
	case classify.SectionFunc:
		suffix = fmt.Sprintf("task-%s_%s_%s", entry.Group, entry.Key, entry.Kind)
	case classify.SectionFmap:
		suffix = entry.Key
	}

	for _, src := range files {
		name := prefix + "_" + suffix + source.Extension(src)
		if d.engine.Context().Policy == naming.PolicyPreserve {
			name = filepath.Base(src)
		}
		d.place(ctx, logger, entry, src, filepath.Join(dir, name))
	}

	if entry.Section == classify.SectionFunc && entry.Kind == mapping.KindBold {
		d.placeEvents(ctx, logger, entry, dir, prefix)
	}
}

func (d *Driver) placeFlat(ctx context.Context, logger *slog.Logger, entry mapping.Entry) {
	name, err := d.engine.Resolve(entry.Section, entry.Stem)
	if err != nil {
		logging.WarnWithContext(logger, "cannot name series", faults.EventType(err), logging.Error(err))
		d.report.Failed++
		return
	}
	dir := filepath.Join(d.opts.DestDir, d.engine.Context().Folder(), string(entry.Section))
	for _, src := range d.locate(logger, entry) {
		d.place(ctx, logger, entry, src, filepath.Join(dir, name.File(source.Extension(src))))
	}
}

// locate resolves the data files and sidecar of entry, warning about each
// missing part.
func (d *Driver) locate(logger *slog.Logger, entry mapping.Entry) []string {
	files := source.LocateSeries(d.opts.SourceDir, entry.Stem)
	if files.WalkErr != nil {
		logger.Debug("source search skipped unreadable paths", logging.Error(files.WalkErr))
	}
	if len(files.Data) == 0 {
		d.warnMissing(logger, entry.Stem, "data file")
	}
	if files.Sidecar == "" {
		d.warnMissing(logger, entry.Stem, "sidecar")
	}
	return files.Files()
}

func (d *Driver) warnMissing(logger *slog.Logger, stem, part string) {
	d.report.Missing++
	err := faults.Wrap(faults.ErrMissingSeries, "placement", "locate", part+" for "+stem, nil)
	logging.WarnWithContext(logger, "missing "+part,
		faults.EventType(err),
		logging.String("source_dir", d.opts.SourceDir),
		logging.String(logging.FieldErrorHint, "check the stem in the mapping against the source folder"),
		logging.String(logging.FieldImpact, "series placed without this file"),
	)
}

func (d *Driver) placeEvents(ctx context.Context, logger *slog.Logger, entry mapping.Entry, dir, prefix string) {
	if d.opts.EventsDir == "" || d.opts.DryRun {
		return
	}
	label := fmt.Sprintf("task-%s_%s_events", entry.Group, entry.Key)
	src := filepath.Join(d.opts.EventsDir, label+".tsv")
	if _, err := os.Stat(src); err != nil {
		logger.Info("no events file for run",
			logging.String("task", entry.Group),
			logging.String("run", entry.Key),
			logging.String("expected", src))
		return
	}
	if d.place(ctx, logger, entry, src, filepath.Join(dir, prefix+"_"+label+".tsv")) {
		d.report.Events++
	}
}

// place materializes one file and reports whether it was placed.
func (d *Driver) place(ctx context.Context, logger *slog.Logger, entry mapping.Entry, src, dst string) bool {
	if owner, claimed := d.claims[dst]; claimed {
		d.report.Skipped++
		if owner == src {
			logger.Debug("destination already placed from same source", logging.String("dest", dst))
			return false
		}
		logging.WarnWithContext(logger, "destination already claimed by another series",
			faults.EventType(faults.ErrAmbiguity),
			logging.String("dest", dst),
			logging.String("claimed_by", owner),
			logging.String("source", src),
			logging.String(logging.FieldErrorHint, "give the series distinct labels or runs in the mapping"),
			logging.String(logging.FieldImpact, "series not placed"),
		)
		return false
	}
	d.claims[dst] = src

	action := Action{
		Section:     string(entry.Section),
		Stem:        entry.Stem,
		Source:      src,
		Destination: dst,
		Method:      string(d.opts.Method),
		DryRun:      d.opts.DryRun,
	}
	if d.opts.DryRun {
		fmt.Fprintf(d.opts.Out, " [DRY] %-7s %s -> %s\n", strings.ToUpper(string(d.opts.Method)), src, dst)
		d.report.Placed++
		d.report.Actions = append(d.report.Actions, action)
		return true
	}

	if err := fileutil.Materialize(d.opts.Method, src, dst); err != nil {
		d.report.Failed++
		logger.Error("placement failed",
			logging.String("source", src),
			logging.String("dest", dst),
			logging.Error(err),
			logging.String(logging.FieldEventType, "placement_failed"),
			logging.String(logging.FieldErrorHint, "check permissions and free space at the destination"),
		)
		return false
	}
	d.report.Placed++
	d.report.Actions = append(d.report.Actions, action)
	logger.Info("file placed",
		logging.String("method", string(d.opts.Method)),
		logging.String("source", src),
		logging.String("dest", dst))

	if d.opts.Journal != nil {
		err := d.opts.Journal.RecordPlacement(ctx, journal.Placement{
			SessionID:  d.report.SessionID,
			Section:    string(entry.Section),
			Stem:       entry.Stem,
			SourcePath: src,
			DestPath:   dst,
			Method:     string(d.opts.Method),
		})
		if err != nil {
			logger.Warn("journal write failed", logging.Error(err))
		}
	}
	return true
}

func (d *Driver) beginJournal(ctx context.Context, logger *slog.Logger, m mapping.Mapping) {
	if d.opts.Journal == nil {
		return
	}
	ctxName := d.engine.Context()
	err := d.opts.Journal.BeginSession(ctx, journal.Session{
		ID:          d.report.SessionID,
		SourceDir:   d.opts.SourceDir,
		DestDir:     d.opts.DestDir,
		MappingPath: d.opts.MappingPath,
		Layout:      string(m.Layout()),
		Method:      string(d.opts.Method),
		Naming:      string(ctxName.Policy),
		Subject:     ctxName.Subject,
		Session:     ctxName.Session,
	})
	if err != nil {
		logger.Warn("journal unavailable for this pass", logging.Error(err))
		d.opts.Journal = nil
	}
}

func (d *Driver) finishJournal(ctx context.Context, logger *slog.Logger) {
	if d.opts.Journal == nil || d.opts.DryRun {
		return
	}
	// Record the counts even when the pass was interrupted.
	err := d.opts.Journal.FinishSession(context.WithoutCancel(ctx), d.report.SessionID,
		d.report.Placed, d.report.Skipped, d.report.Missing)
	if err != nil {
		logger.Warn("journal finish failed", logging.Error(err))
	}
}
