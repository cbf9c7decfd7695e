package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bidsmap/internal/config"
	"bidsmap/internal/fileutil"
	"bidsmap/internal/journal"
	"bidsmap/internal/logging"
	"bidsmap/internal/mapping"
	"bidsmap/internal/naming"
	"bidsmap/internal/placement"
)

type placeOptions struct {
	source    string
	dest      string
	mapping   string
	subject   string
	session   string
	method    string
	naming    string
	eventsDir string
	dryRun    bool
	noLock    bool
}

func newPlaceCommand(ctx *commandContext) *cobra.Command {
	var opts placeOptions

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Copy, link or symlink series into the destination tree",
		Long: `Place every series listed in a mapping file under the destination root.

Nested mappings produce sub-<subject>/ses-<session>/<section>/ entity names.
Flat mappings are named by --naming: preserve keeps source names, custom
builds <sub>_<ses>_<sequence>_<modality>_<run>, bids builds entity names with
per-section counters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlace(cmd, ctx, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.source, "source", "", "Folder with series files")
	flags.StringVar(&opts.dest, "dest", "", "Destination root (created if absent)")
	flags.StringVarP(&opts.mapping, "mapping", "m", "", "Mapping file (.yaml, .yml or .json)")
	flags.StringVar(&opts.subject, "subject", "", "Subject label [default: source folder name]")
	flags.StringVar(&opts.session, "session", "", "Session label [default: naming.session]")
	flags.StringVar(&opts.method, "method", "", "copy, link or symlink [default: placement.method]")
	flags.StringVar(&opts.naming, "naming", "", "preserve, custom or bids [default: naming.policy]")
	flags.StringVar(&opts.eventsDir, "events-dir", "", "Folder with task-<task>_run-<NN>_events.tsv files")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Print actions without writing anything")
	flags.BoolVar(&opts.noLock, "no-lock", false, "Do not lock the destination")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("dest")
	_ = cmd.MarkFlagRequired("mapping")
	return cmd
}

func runPlace(cmd *cobra.Command, ctx *commandContext, opts placeOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	var paths [4]string
	for i, raw := range []string{opts.source, opts.dest, opts.mapping, opts.eventsDir} {
		if paths[i], err = expandFlag(raw); err != nil {
			return err
		}
	}
	sourceDir, destDir, mappingPath, eventsDir := paths[0], paths[1], paths[2], paths[3]

	policy, err := naming.ParsePolicy(firstNonEmpty(opts.naming, cfg.Naming.Policy))
	if err != nil {
		return err
	}
	method, err := fileutil.ParseMethod(firstNonEmpty(opts.method, cfg.Placement.Method))
	if err != nil {
		return err
	}
	m, err := mapping.Load(mappingPath)
	if err != nil {
		return err
	}

	placeOpts := placement.Options{
		SourceDir:   sourceDir,
		DestDir:     destDir,
		MappingPath: mappingPath,
		Subject:     opts.subject,
		Session:     firstNonEmpty(opts.session, cfg.Naming.Session),
		Naming:      policy,
		Method:      method,
		EventsDir:   eventsDir,
		DryRun:      opts.dryRun,
		Logger:      logger,
		Out:         cmd.OutOrStdout(),
	}
	if !opts.dryRun && cfg.Placement.Lock && !opts.noLock {
		placeOpts.LockDir = cfg.LockDir()
	}
	driver, err := placement.NewDriver(placeOpts)
	if err != nil {
		return err
	}

	// Nothing is created on disk until every fatal check above has passed.
	if !opts.dryRun {
		if err := cfg.EnsureDirectories(); err != nil {
			return err
		}
		if store := openJournal(cfg, logger); store != nil {
			defer store.Close()
			driver.AttachJournal(store)
		}
	}
	report, runErr := driver.Run(cmd.Context(), m)
	if report != nil {
		printPlaceReport(cmd, report)
	}
	if runErr != nil {
		return runErr
	}
	if !report.OK() {
		return fmt.Errorf("%d file(s) could not be placed; see the log for details", report.Failed)
	}
	return nil
}

// openJournal returns nil when the journal is disabled or cannot be opened.
func openJournal(cfg *config.Config, logger *slog.Logger) *journal.Store {
	if !cfg.Journal.Enabled {
		return nil
	}
	store, err := journal.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "journal unavailable; placements will not be recorded",
			"journal_open",
			logging.String("path", cfg.Journal.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "placement history is not kept for this run"),
		)
		return nil
	}
	return store
}

func printPlaceReport(cmd *cobra.Command, report *placement.Report) {
	out := cmd.OutOrStdout()
	rows := [][]string{
		{"Placed", strconv.Itoa(report.Placed)},
		{"Skipped", strconv.Itoa(report.Skipped)},
		{"Missing", strconv.Itoa(report.Missing)},
		{"Failed", strconv.Itoa(report.Failed)},
		{"Events", strconv.Itoa(report.Events)},
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable([]string{"Result", "Files"}, rows, []columnAlignment{alignLeft, alignRight}, shouldColorize(out)))
	if report.DryRun {
		fmt.Fprintln(out, "Done (dry-run).")
		return
	}
	fmt.Fprintf(out, "Done. Session %s\n", report.SessionID)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
