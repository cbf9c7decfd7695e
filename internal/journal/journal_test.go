package journal_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"bidsmap/internal/journal"
	"bidsmap/internal/testsupport"
)

func TestSessionLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithJournal())
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	id := uuid.NewString()
	err := store.BeginSession(ctx, journal.Session{
		ID:          id,
		SourceDir:   "/data/src",
		DestDir:     "/data/bids",
		MappingPath: "/data/mapping.yaml",
		Layout:      "nested",
		Method:      "link",
		Naming:      "bids",
		Subject:     "01",
		Session:     "01",
	})
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	for _, stem := range []string{"0008_t1", "0010_bold"} {
		if err := store.RecordPlacement(ctx, journal.Placement{
			SessionID:  id,
			Section:    "anat",
			Stem:       stem,
			SourcePath: "/data/src/" + stem + ".nii.gz",
			DestPath:   "/data/bids/" + stem + ".nii.gz",
			Method:     "link",
		}); err != nil {
			t.Fatalf("RecordPlacement: %v", err)
		}
	}
	if err := store.FinishSession(ctx, id, 2, 1, 0); err != nil {
		t.Fatalf("FinishSession: %v", err)
	}

	session, err := store.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session == nil || session.Placed != 2 || session.Skipped != 1 || session.FinishedAt.IsZero() {
		t.Fatalf("unexpected session: %#v", session)
	}
	placements, err := store.Placements(ctx, id)
	if err != nil {
		t.Fatalf("Placements: %v", err)
	}
	if len(placements) != 2 || placements[0].Stem != "0008_t1" {
		t.Fatalf("unexpected placements: %#v", placements)
	}
}

func TestSessionsNewestFirst(t *testing.T) {
	store, err := journal.OpenPath(filepath.Join(t.TempDir(), "j", "journal.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		if err := store.BeginSession(ctx, journal.Session{ID: id, StartedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("BeginSession: %v", err)
		}
	}
	sessions, err := store.Sessions(ctx, 2)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "third" || sessions[1].ID != "second" {
		t.Fatalf("unexpected order: %#v", sessions)
	}
	if !sessions[0].FinishedAt.IsZero() {
		t.Fatal("unfinished session reported a finish time")
	}
}

func TestGetSessionMissing(t *testing.T) {
	store, err := journal.OpenPath(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	defer store.Close()

	session, err := store.GetSession(context.Background(), "nope")
	if err != nil || session != nil {
		t.Fatalf("GetSession = %#v, %v", session, err)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := journal.OpenPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.BeginSession(context.Background(), journal.Session{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := journal.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if s, err := reopened.GetSession(context.Background(), "a"); err != nil || s == nil {
		t.Fatalf("session lost after reopen: %v", err)
	}
}

func TestBeginSessionRequiresID(t *testing.T) {
	store, err := journal.OpenPath(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := store.BeginSession(context.Background(), journal.Session{}); err == nil {
		t.Fatal("expected error for empty id")
	}
}
