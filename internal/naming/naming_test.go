package naming_test

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"bidsmap/internal/classify"
	"bidsmap/internal/faults"
	"bidsmap/internal/logging"
	"bidsmap/internal/naming"
)

func newEngine(t *testing.T, policy naming.Policy) *naming.Engine {
	t.Helper()
	engine, err := naming.NewEngine(naming.Context{Subject: "01", Session: "01", Policy: policy}, logging.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func resolve(t *testing.T, e *naming.Engine, section classify.Section, stem string) naming.Name {
	t.Helper()
	name, err := e.Resolve(section, stem)
	if err != nil {
		t.Fatalf("Resolve(%s, %q): %v", section, stem, err)
	}
	return name
}

func TestCustomFunctionalScenario(t *testing.T) {
	e := newEngine(t, naming.PolicyCustom)
	name := resolve(t, e, classify.SectionFunc, "0010_cmrr_mbep2d_bold_64ch_MB2_GRAPPA2_2mm_PRG_TR2000")
	if name.Stem != "01_01_ep2d_bold_2000_prep_run-01" {
		t.Fatalf("stem = %q", name.Stem)
	}
	if got := name.File(".nii.gz"); got != "01_01_ep2d_bold_2000_prep_run-01.nii.gz" {
		t.Fatalf("File = %q", got)
	}
	if got := name.File(".json"); got != "01_01_ep2d_bold_2000_prep_run-01.json" {
		t.Fatalf("sidecar = %q", got)
	}
}

func TestCustomCounterScoping(t *testing.T) {
	e := newEngine(t, naming.PolicyCustom)
	stems := []struct {
		section classify.Section
		stem    string
		want    string
	}{
		{classify.SectionFunc, "0010_ep2d_bold_TR2000", "01_01_ep2d_bold_2000_prep_run-01"},
		{classify.SectionFunc, "0012_ep2d_bold_TR2000", "01_01_ep2d_bold_2000_prep_run-02"},
		{classify.SectionFunc, "0014_ep2d_bold_TR2000_rest", "01_01_ep2d_bold_2000_rs_run-01"},
		{classify.SectionFunc, "0016_ep2d_bold_TR1000", "01_01_ep2d_bold_1000_prep_run-01"},
		{classify.SectionFunc, "0018_ep2d_bold_TR2000_run-07", "01_01_ep2d_bold_2000_prep_run-07"},
		{classify.SectionFunc, "0020_ep2d_bold_TR2000", "01_01_ep2d_bold_2000_prep_run-03"},
		{classify.SectionAnat, "0008_t1_mprage", "01_01_mprage_run-01"},
		{classify.SectionAnat, "0009_t1_mprage", "01_01_mprage_run-02"},
		{classify.SectionAnat, "0007_ADNI", "01_01_unknownseq_run-01"},
		{classify.SectionFmap, "0025_gre_field_mapping_e1", "01_01_unknownseq_run-01_magnitude1"},
		{classify.SectionFmap, "0026_gre_field_mapping_e2_ph", "01_01_unknownseq_run-02_phase2"},
	}
	for _, tt := range stems {
		if got := resolve(t, e, tt.section, tt.stem).Stem; got != tt.want {
			t.Errorf("Resolve(%s, %q) = %q, want %q", tt.section, tt.stem, got, tt.want)
		}
	}
}

func TestCustomExplicitRunIgnoresCounter(t *testing.T) {
	e := newEngine(t, naming.PolicyCustom)
	for i := 0; i < 3; i++ {
		resolve(t, e, classify.SectionFunc, "0010_ep2d_bold_TR2000")
	}
	if got := resolve(t, e, classify.SectionFunc, "bold_ep2d_bold_TR2000_run-07").Run; got != "run-07" {
		t.Fatalf("run = %q", got)
	}
}

func TestCustomSequenceAmbiguityWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	e, err := naming.NewEngine(naming.Context{Subject: "01", Session: "01", Policy: naming.PolicyCustom}, logger)
	if err != nil {
		t.Fatal(err)
	}
	name := resolve(t, e, classify.SectionAnat, "0004_vaso_mprage")
	if name.Sequence != "vaso" {
		t.Fatalf("sequence = %q", name.Sequence)
	}
	if n := strings.Count(buf.String(), "several sequence patterns match"); n != 1 {
		t.Fatalf("expected one warning, got %d", n)
	}
}

func TestBIDSPolicy(t *testing.T) {
	e := newEngine(t, naming.PolicyBIDS)
	tests := []struct {
		section classify.Section
		stem    string
		want    string
	}{
		{classify.SectionAnat, "0008_t1", "sub-01_ses-01_T1w"},
		{classify.SectionFunc, "0010_bold_run-07", "sub-01_ses-01_task-unk_run-01_bold"},
		{classify.SectionFunc, "0012_bold", "sub-01_ses-01_task-unk_run-02_bold"},
		{classify.SectionFmap, "0025_gre_e1", "sub-01_ses-01_fmap01"},
		{classify.SectionFmap, "0026_gre_e2", "sub-01_ses-01_fmap02"},
	}
	for _, tt := range tests {
		if got := resolve(t, e, tt.section, tt.stem).Stem; got != tt.want {
			t.Errorf("Resolve(%s, %q) = %q, want %q", tt.section, tt.stem, got, tt.want)
		}
	}
}

func TestPreservePolicy(t *testing.T) {
	e := newEngine(t, naming.PolicyPreserve)
	name := resolve(t, e, classify.SectionFunc, "0010_bold.nii.gz")
	if got := name.File(".nii.gz"); got != "0010_bold.nii.gz" {
		t.Fatalf("File = %q", got)
	}
}

func TestNewEngineValidation(t *testing.T) {
	tests := []naming.Context{
		{Subject: "", Session: "01", Policy: naming.PolicyBIDS},
		{Subject: "01", Session: "", Policy: naming.PolicyBIDS},
		{Subject: "a/b", Session: "01", Policy: naming.PolicyBIDS},
		{Subject: "01", Session: "01", Policy: "fancy"},
	}
	for _, ctx := range tests {
		if _, err := naming.NewEngine(ctx, nil); !errors.Is(err, faults.ErrConfig) {
			t.Errorf("NewEngine(%+v) err = %v, want ErrConfig", ctx, err)
		}
	}

	e, err := naming.NewEngine(naming.Context{Subject: "sub-07", Session: "ses-02", Policy: naming.PolicyBIDS}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Context().Folder(); got != filepath.Join("sub-07", "ses-02") {
		t.Fatalf("Folder = %q", got)
	}
	if _, err := e.Resolve("dwi", "x"); !errors.Is(err, faults.ErrConfig) {
		t.Fatalf("expected ErrConfig for unknown section, got %v", err)
	}
}

func TestContextFolder(t *testing.T) {
	custom := naming.Context{Subject: "01", Session: "02", Policy: naming.PolicyCustom}
	if got := custom.Folder(); got != filepath.Join("01", "02") {
		t.Fatalf("custom folder = %q", got)
	}
	if got := naming.BIDSFolder("01", "02"); got != filepath.Join("sub-01", "ses-02") {
		t.Fatalf("bids folder = %q", got)
	}
}

func TestRunCounterTable(t *testing.T) {
	table := naming.NewRunCounterTable()
	if table.Next("func", "seq", "task") != 1 || table.Next("func", "seq", "task") != 2 {
		t.Fatal("counter did not increment")
	}
	if table.Next("func", "seq", "rs") != 1 {
		t.Fatal("modality should scope counters")
	}
	if table.Next("anat", "seq", "") != 1 || table.Next("anat", "seq", naming.NoModality) != 2 {
		t.Fatal("empty modality should map to none")
	}
	if table.Next("func", "seq", "task") != 3 {
		t.Fatal("counters should survive other keys")
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := naming.ParsePolicy(" BIDS "); err != nil || p != naming.PolicyBIDS {
		t.Fatalf("ParsePolicy = %q, %v", p, err)
	}
	if _, err := naming.ParsePolicy("nope"); !errors.Is(err, faults.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
