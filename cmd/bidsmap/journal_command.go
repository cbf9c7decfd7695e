package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bidsmap/internal/journal"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect recorded place sessions",
	}
	journalCmd.AddCommand(newJournalListCommand(ctx))
	journalCmd.AddCommand(newJournalShowCommand(ctx))
	return journalCmd
}

type sessionView struct {
	ID          string `json:"id"`
	SourceDir   string `json:"source_dir"`
	DestDir     string `json:"dest_dir"`
	MappingPath string `json:"mapping_path,omitempty"`
	Layout      string `json:"layout"`
	Method      string `json:"method"`
	Naming      string `json:"naming"`
	Subject     string `json:"subject"`
	Session     string `json:"session"`
	StartedAt   string `json:"started_at"`
	FinishedAt  string `json:"finished_at,omitempty"`
	Placed      int    `json:"placed"`
	Skipped     int    `json:"skipped"`
	Missing     int    `json:"missing"`
}

type placementView struct {
	Section     string `json:"section"`
	Stem        string `json:"stem"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Method      string `json:"method"`
}

func newSessionView(s journal.Session) sessionView {
	return sessionView{
		ID:          s.ID,
		SourceDir:   s.SourceDir,
		DestDir:     s.DestDir,
		MappingPath: s.MappingPath,
		Layout:      s.Layout,
		Method:      s.Method,
		Naming:      s.Naming,
		Subject:     s.Subject,
		Session:     s.Session,
		StartedAt:   formatTime(s.StartedAt),
		FinishedAt:  formatTime(s.FinishedAt),
		Placed:      s.Placed,
		Skipped:     s.Skipped,
		Missing:     s.Missing,
	}
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Local().Format(time.DateTime)
}

func openJournalForRead(ctx *commandContext) (*journal.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, fmt.Errorf("journal is disabled; set journal.enabled = true in the configuration")
	}
	return journal.Open(cfg)
}

func newJournalListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent place sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openJournalForRead(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.Sessions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			views := make([]sessionView, 0, len(sessions))
			for _, s := range sessions {
				views = append(views, newSessionView(s))
			}
			if asJSON {
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No sessions recorded.")
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{
					v.ID,
					v.StartedAt,
					"sub-" + v.Subject + " ses-" + v.Session,
					v.Method,
					strconv.Itoa(v.Placed),
					strconv.Itoa(v.Skipped),
					strconv.Itoa(v.Missing),
					v.DestDir,
				})
			}
			headers := []string{"ID", "Started", "Subject", "Method", "Placed", "Skipped", "Missing", "Destination"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns, shouldColorize(out)))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of sessions to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newJournalShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the files placed by one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openJournalForRead(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			id := strings.TrimSpace(args[0])
			session, err := store.GetSession(cmd.Context(), id)
			if err != nil {
				return err
			}
			if session == nil {
				return fmt.Errorf("session %s not found", id)
			}
			placements, err := store.Placements(cmd.Context(), id)
			if err != nil {
				return err
			}
			files := make([]placementView, 0, len(placements))
			for _, p := range placements {
				files = append(files, placementView{
					Section:     p.Section,
					Stem:        p.Stem,
					Source:      p.SourcePath,
					Destination: p.DestPath,
					Method:      p.Method,
				})
			}

			if asJSON {
				return writeJSON(cmd, struct {
					Session    sessionView     `json:"session"`
					Placements []placementView `json:"placements"`
				}{newSessionView(*session), files})
			}

			out := cmd.OutOrStdout()
			view := newSessionView(*session)
			fmt.Fprintf(out, "Session:  %s\n", view.ID)
			fmt.Fprintf(out, "Source:   %s\n", view.SourceDir)
			fmt.Fprintf(out, "Dest:     %s\n", view.DestDir)
			if view.MappingPath != "" {
				fmt.Fprintf(out, "Mapping:  %s (%s)\n", view.MappingPath, view.Layout)
			}
			fmt.Fprintf(out, "Subject:  %s  Session: %s  Naming: %s\n", view.Subject, view.Session, view.Naming)
			fmt.Fprintf(out, "Started:  %s\n", view.StartedAt)
			if view.FinishedAt != "" {
				fmt.Fprintf(out, "Finished: %s\n", view.FinishedAt)
			}
			fmt.Fprintln(out)
			if len(files) == 0 {
				fmt.Fprintln(out, "No files recorded.")
				return nil
			}
			rows := make([][]string, 0, len(files))
			for _, f := range files {
				rows = append(rows, []string{f.Section, f.Stem, f.Method, f.Destination})
			}
			fmt.Fprintln(out, renderTable([]string{"Section", "Stem", "Method", "Destination"}, rows, nil, shouldColorize(out)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
