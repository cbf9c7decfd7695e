package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bidsmap/internal/classify"
	"bidsmap/internal/logging"
	"bidsmap/internal/mapping"
	"bidsmap/internal/source"
)

type generateOptions struct {
	source        string
	out           string
	layout        string
	forceTask     string
	renames       []string
	noPrompt      bool
	parentContext bool
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	opts := generateOptions{out: "mapping.yaml", layout: string(mapping.LayoutNested)}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Scan a series folder and propose a mapping file",
		Long: `Scan a folder of NIfTI series (.nii / .nii.gz with .json sidecars), guess
each series' role from its filename and write a mapping for "bidsmap place".

--force-task labels every BOLD series with one task; --task-rename OLD=NEW is
applied afterwards, so a forced task can still be refined.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, ctx, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.source, "source", "", "Folder with NIfTI series and JSON sidecars")
	flags.StringVarP(&opts.out, "out", "o", opts.out, "Mapping file to write (.yaml, .yml or .json)")
	flags.StringVar(&opts.layout, "layout", opts.layout, "Mapping layout: nested or flat")
	flags.StringVar(&opts.forceTask, "force-task", "", "Assign every BOLD series to this task label")
	flags.StringArrayVarP(&opts.renames, "task-rename", "t", nil, "Rename task OLD to NEW (OLD=NEW, repeatable)")
	flags.BoolVar(&opts.noPrompt, "no-prompt", false, "Write without confirmation prompt")
	flags.BoolVar(&opts.parentContext, "parent-context", false, "Match against the parent directory name too")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func runGenerate(cmd *cobra.Command, ctx *commandContext, opts generateOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	sourceDir, err := expandFlag(opts.source)
	if err != nil {
		return err
	}
	outPath, err := expandFlag(opts.out)
	if err != nil {
		return err
	}
	format, err := mapping.FormatFromPath(outPath)
	if err != nil {
		return err
	}
	layout, err := mapping.ParseLayout(opts.layout)
	if err != nil {
		return err
	}
	renames, err := mapping.ParseRenames(opts.renames)
	if err != nil {
		return err
	}
	classifier, err := classify.New(classify.Options{
		ForceTask:         opts.forceTask,
		ExtraSkipPatterns: cfg.Classifier.ExtraSkipPatterns,
		ParentContext:     opts.parentContext || cfg.Classifier.ParentContext,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	records, err := source.Scan(sourceDir)
	if err != nil {
		return err
	}
	results := classifier.Classify(records)
	m := mapping.Build(layout, results, logger)
	mapping.ApplyRenames(m, renames, logger)
	logger.Info("mapping proposed",
		logging.Int("series_scanned", len(records)),
		logging.Int("series_mapped", len(results)),
		logging.String("layout", string(layout)))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderMappingSummary(m, shouldColorize(out)))

	var doc bytes.Buffer
	if err := mapping.Encode(&doc, format, m); err != nil {
		return err
	}
	fmt.Fprintln(out, "\nProposed mapping (edit later if needed):")
	fmt.Fprintln(out)
	fmt.Fprint(out, doc.String())

	absOut, err := filepath.Abs(outPath)
	if err != nil {
		absOut = outPath
	}
	if !opts.noPrompt {
		ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("Write mapping to %s?", absOut))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted - no file written.")
			return nil
		}
	}

	if err := mapping.Save(outPath, m); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nMapping saved to %s.\nReview or edit it, then run: bidsmap place --mapping %s --source %s --dest <DIR>\n",
		absOut, outPath, sourceDir)
	return nil
}

func renderMappingSummary(m mapping.Mapping, colorize bool) string {
	entries := m.Entries()
	if len(entries) == 0 {
		return "No series matched any rule."
	}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		detail := entry.Key
		if entry.Kind != "" {
			detail = strings.TrimSpace(detail + " " + entry.Kind)
		}
		rows = append(rows, []string{string(entry.Section), entry.Group, detail, entry.Stem})
	}
	return renderTable([]string{"Section", "Label", "Run / Role", "Stem"}, rows, nil, colorize)
}
