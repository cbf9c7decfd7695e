package classify_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"bidsmap/internal/classify"
	"bidsmap/internal/faults"
	"bidsmap/internal/source"
)

func records(names ...string) []source.SeriesRecord {
	out := make([]source.SeriesRecord, 0, len(names))
	for _, name := range names {
		out = append(out, source.SeriesRecord{Stem: name, Dir: "/data/subj01", Extensions: []string{".nii.gz"}})
	}
	return out
}

func newClassifier(t *testing.T, opts classify.Options) (*classify.Classifier, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts.Logger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, err := classify.New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, &buf
}

func TestClassifyTypicalSession(t *testing.T) {
	c, _ := newClassifier(t, classify.Options{})
	results := c.Classify(records(
		"0002_localizer",
		"0008_ADNI_192slices_64channel",
		"0009_cmrr_mbep2d_bold_64ch_MB2_GRAPPA2_2mm_PRG_TR2000_SBRef",
		"0010_cmrr_mbep2d_bold_64ch_MB2_GRAPPA2_2mm_PRG_TR2000",
		"0012_cmrr_mbep2d_bold_64ch_MB2_GRAPPA2_2mm_PRG_TR2000",
		"0025_gre_field_mapping_e1",
		"0026_gre_field_mapping_e2_ph",
		"0030_dti_unrelated",
	))

	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %+v", len(results), results)
	}
	for _, r := range results {
		if strings.Contains(r.Stem, "localizer") || strings.Contains(r.Stem, "SBRef") {
			t.Fatalf("unexpected standalone result %q", r.Stem)
		}
	}
	anat := results[0]
	if anat.Section != classify.SectionAnat || anat.Label != classify.LabelAnat {
		t.Fatalf("anat result = %+v", anat)
	}
	first := results[1]
	if first.Section != classify.SectionFunc || first.Task != "mbep2d" || first.RunLabel != "run-01" {
		t.Fatalf("first func = %+v", first)
	}
	if first.SBRef != "0009_cmrr_mbep2d_bold_64ch_MB2_GRAPPA2_2mm_PRG_TR2000_SBRef" {
		t.Fatalf("sbref not attached: %+v", first)
	}
	second := results[2]
	if second.RunLabel != "run-02" || second.SBRef != "" {
		t.Fatalf("second func = %+v", second)
	}
	if results[3].FieldmapRole != classify.RoleMagnitude1 || results[4].FieldmapRole != classify.RolePhase2 {
		t.Fatalf("fmap roles = %q, %q", results[3].FieldmapRole, results[4].FieldmapRole)
	}
}

func TestClassifyDropsTrailingSBRef(t *testing.T) {
	c, _ := newClassifier(t, classify.Options{})
	results := c.Classify(records("0001_t1_mprage", "0009_bold_SBRef"))
	if len(results) != 1 || results[0].Section != classify.SectionAnat {
		t.Fatalf("results = %+v", results)
	}
}

func TestClassifyForceTaskAndCounters(t *testing.T) {
	c, _ := newClassifier(t, classify.Options{ForceTask: "Vision"})
	results := c.Classify(records("0010_task-rest_bold", "0011_motor_bold", "0012_motor_bold"))
	for i, r := range results {
		if r.Task != "vision" {
			t.Fatalf("result %d task = %q", i, r.Task)
		}
	}
	if results[2].RunLabel != "run-03" {
		t.Fatalf("run label = %q", results[2].RunLabel)
	}
}

func TestClassifyPerTaskRunCounters(t *testing.T) {
	c, _ := newClassifier(t, classify.Options{})
	results := c.Classify(records("0010_task-rest_bold", "0011_motor_bold", "0012_task-rest_bold"))
	got := []string{results[0].Task + "/" + results[0].RunLabel, results[1].Task + "/" + results[1].RunLabel, results[2].Task + "/" + results[2].RunLabel}
	want := []string{"rest/run-01", "motor/run-01", "rest/run-02"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestClassifyAmbiguityWarnsOnce(t *testing.T) {
	c, buf := newClassifier(t, classify.Options{})
	results := c.Classify(records("0020_gre_T1_bold"))
	if len(results) != 1 || results[0].Section != classify.SectionFmap {
		t.Fatalf("results = %+v", results)
	}
	if n := strings.Count(buf.String(), "series matches several sections"); n != 1 {
		t.Fatalf("expected one ambiguity warning, got %d", n)
	}
}

func TestClassifyFieldmapDefaultRoleWarns(t *testing.T) {
	c, buf := newClassifier(t, classify.Options{})
	results := c.Classify(records("0025_gre_field_mapping_e2"))
	if results[0].FieldmapRole != classify.RolePhase1 {
		t.Fatalf("role = %q", results[0].FieldmapRole)
	}
	if !strings.Contains(buf.String(), "field map role guessed") {
		t.Fatal("expected guessed-role warning")
	}
}

func TestClassifyExtraSkipAndParentContext(t *testing.T) {
	c, _ := newClassifier(t, classify.Options{ExtraSkipPatterns: []string{"phantom"}})
	if results := c.Classify(records("0004_PHANTOM_bold")); len(results) != 0 {
		t.Fatalf("expected extra skip pattern to drop series, got %+v", results)
	}

	withParent, _ := newClassifier(t, classify.Options{ParentContext: true})
	recs := []source.SeriesRecord{{Stem: "0005_run", Dir: "/data/bold", Extensions: []string{".nii"}}}
	results := withParent.Classify(recs)
	if len(results) != 1 || results[0].Section != classify.SectionFunc {
		t.Fatalf("parent context not applied: %+v", results)
	}
	if results[0].Task != "task" {
		t.Fatalf("task = %q", results[0].Task)
	}
}

func TestNewRejectsInvalidSkipPattern(t *testing.T) {
	_, err := classify.New(classify.Options{ExtraSkipPatterns: []string{"("}})
	if !errors.Is(err, faults.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestDeriveTask(t *testing.T) {
	tests := []struct {
		name  string
		force string
		want  string
	}{
		{"0010_task-Rest_bold.nii.gz", "", "rest"},
		{"0010_motor_bold.nii", "", "motor"},
		{"bold_only.nii", "", "task"},
		{"0010__bold.nii", "", "task"},
		{"0010_motor_bold.nii", " Vision ", "vision"},
		{"0010_nothing.nii", "", "task"},
		{"0010_task-n-back_bold.nii.gz", "", "nback"},
		{"0010_visual-motor_bold.nii", "", "visualmotor"},
		{"0010_motor_bold.nii", "Finger Tap", "fingertap"},
		{"0010_motor_bold.nii", "--", "task"},
	}
	for _, tt := range tests {
		if got := classify.DeriveTask(tt.name, tt.force); got != tt.want {
			t.Errorf("DeriveTask(%q, %q) = %q, want %q", tt.name, tt.force, got, tt.want)
		}
	}
}
