package source_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"bidsmap/internal/faults"
	"bidsmap/internal/source"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanNaturalOrderAndDedupe(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "0010_bold.nii.gz"))
	touch(t, filepath.Join(root, "0010_bold.json"))
	touch(t, filepath.Join(root, "0010_bold.nii"))
	touch(t, filepath.Join(root, "0002_localizer.nii"))
	touch(t, filepath.Join(root, "nested", "0009_SBRef.nii.gz"))
	touch(t, filepath.Join(root, "notes.txt"))

	records, err := source.Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	var stems []string
	for _, r := range records {
		stems = append(stems, r.Stem)
	}
	want := []string{"0002_localizer", "0009_SBRef", "0010_bold"}
	if !reflect.DeepEqual(stems, want) {
		t.Fatalf("stems = %v, want %v", stems, want)
	}
	bold := records[2]
	if !reflect.DeepEqual(bold.Extensions, []string{".nii.gz", ".nii"}) {
		t.Fatalf("extensions = %v", bold.Extensions)
	}
	if got := records[1].Dir; got != filepath.Join(root, "nested") {
		t.Fatalf("dir = %q", got)
	}
	if records[0].FileName() != "0002_localizer.nii" {
		t.Fatalf("file name = %q", records[0].FileName())
	}
}

func TestScanRejectsMissingRoot(t *testing.T) {
	_, err := source.Scan(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, faults.ErrPath) {
		t.Fatalf("expected ErrPath, got %v", err)
	}

	file := filepath.Join(t.TempDir(), "file.nii")
	touch(t, file)
	if _, err := source.Scan(file); !errors.Is(err, faults.ErrPath) {
		t.Fatalf("expected ErrPath for file root, got %v", err)
	}
}

func TestSeriesID(t *testing.T) {
	tests := map[string]string{
		"0010_bold.nii.gz": "0010_bold",
		"0010_bold.nii":    "0010_bold",
		"0010_bold.json":   "0010_bold",
		"0010_bold":        "0010_bold",
		".nii":             ".nii",
	}
	for in, want := range tests {
		if got := source.SeriesID(in); got != want {
			t.Errorf("SeriesID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLocatePrefersDirectThenRecursive(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b", "0010_bold.json"))
	touch(t, filepath.Join(root, "a", "0010_bold.json"))

	got, ok := source.Locate(root, "0010_bold", ".json")
	if !ok || got != filepath.Join(root, "a", "0010_bold.json") {
		t.Fatalf("Locate nested = %q, %v", got, ok)
	}

	touch(t, filepath.Join(root, "0010_bold.json"))
	got, ok = source.Locate(root, "0010_bold", ".json")
	if !ok || got != filepath.Join(root, "0010_bold.json") {
		t.Fatalf("Locate direct = %q, %v", got, ok)
	}

	if _, ok := source.Locate(root, "missing", ".json"); ok {
		t.Fatal("expected missing stem to be unresolved")
	}
}

func TestLocateSeries(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "0008_t1.nii.gz"))
	touch(t, filepath.Join(root, "0008_t1.json"))

	files := source.LocateSeries(root, "0008_t1")
	if len(files.Data) != 1 || files.Sidecar == "" {
		t.Fatalf("unexpected files: %+v", files)
	}
	if got := len(files.Files()); got != 2 {
		t.Fatalf("Files() len = %d", got)
	}
	if source.Extension(files.Data[0]) != ".nii.gz" {
		t.Fatalf("extension = %q", source.Extension(files.Data[0]))
	}
}

func TestLocateSeriesReportsUnreadableSubtree(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	touch(t, filepath.Join(root, "0008_t1.json"))
	locked := filepath.Join(root, "locked")
	touch(t, filepath.Join(locked, "0008_t1.nii.gz"))
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	files := source.LocateSeries(root, "0008_t1")
	if len(files.Data) != 0 {
		t.Fatalf("expected no readable data file, got %v", files.Data)
	}
	if files.Sidecar == "" {
		t.Fatal("expected the direct sidecar to resolve")
	}
	if !errors.Is(files.WalkErr, os.ErrPermission) {
		t.Fatalf("expected permission error, got %v", files.WalkErr)
	}
}

func TestLocateSeriesCleanWalk(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "nested", "0008_t1.nii"))
	files := source.LocateSeries(root, "0008_t1")
	if files.WalkErr != nil {
		t.Fatalf("unexpected walk error: %v", files.WalkErr)
	}
	if len(files.Data) != 1 || files.Sidecar != "" {
		t.Fatalf("unexpected files: %+v", files)
	}
}
