package tokens

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0010_cmrr_mbep2d_bold_64ch_MB2_GRAPPA2_2mm_PRG_TR2000", "cmrr_mbep2d_bold_64ch_mb2_grappa2_2mm_prg_tr2000"},
		{"0010_bold.nii.gz", "bold"},
		{" 0008_ADNI.json ", "adni"},
		{"T1_Über.nii", "t1_uber"},
		{"2mm_iso", "2mm_iso"},
		{"0003", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSequence(t *testing.T) {
	tests := []struct {
		norm      string
		want      string
		ambiguous []string
	}{
		{"cmrr_mbep2d_bold_64ch_mb2_grappa2_2mm_prg_tr2000", "ep2d_bold_2000", nil},
		{"ep2d_bold_tr1000", "ep2d_bold_1000", nil},
		{"3d_bssfp_run-01", "bssfp", nil},
		{"bssfp", "bssfp", nil},
		{"mp2rage_inv1", "mp2rage", nil},
		{"t1_mprage_sag", "mprage", nil},
		{"vaso_mprage", "vaso", []string{"vaso", "mprage"}},
		{"novaso", UnknownSequence, nil},
		{"ep2d_bold_tr3000", UnknownSequence, nil},
		{"", UnknownSequence, nil},
		// an optional prefix glued to a longer word must not hide the bare token
		{"tse3d_bssfp", "bssfp", nil},
		{"tse_3d_bssfp", "bssfp", nil},
		{"bssfpx_3d_bssfp", "bssfp", nil},
		{"3d_bssfpx", UnknownSequence, nil},
		{"mbep2d_bold_tr2000", "ep2d_bold_2000", nil},
		{"cmrr_xmbep2d_bold_ep2d_bold_tr2000", "ep2d_bold_2000", nil},
		// ep2d inside a longer alphanumeric run is a partial match
		{"cmrrmbep2d_bold_tr2000", UnknownSequence, nil},
	}
	for _, tt := range tests {
		got, ambiguous := Sequence(tt.norm)
		if got != tt.want {
			t.Errorf("Sequence(%q) = %q, want %q", tt.norm, got, tt.want)
		}
		if !reflect.DeepEqual(ambiguous, tt.ambiguous) {
			t.Errorf("Sequence(%q) ambiguous = %v, want %v", tt.norm, ambiguous, tt.ambiguous)
		}
	}
}

func TestSequenceFromNormalizedStem(t *testing.T) {
	tests := map[string]string{
		"0005_tse3d_bssfp":                 "bssfp",
		"0007_3D-bSSFP_run-02.nii.gz":      "bssfp",
		"0010_cmrr_mbep2d_bold_TR2000.nii": "ep2d_bold_2000",
	}
	for stem, want := range tests {
		if got, _ := Sequence(Normalize(stem)); got != want {
			t.Errorf("Sequence(Normalize(%q)) = %q, want %q", stem, got, want)
		}
	}
}

func TestSequenceDeterministic(t *testing.T) {
	first, _ := Sequence("vaso_3d_bssfp")
	for i := 0; i < 10; i++ {
		got, ambiguous := Sequence("vaso_3d_bssfp")
		if got != first || len(ambiguous) != 2 {
			t.Fatalf("iteration %d: got %q %v", i, got, ambiguous)
		}
	}
}

func TestModality(t *testing.T) {
	tests := map[string]string{
		"bold_task_motor": "task",
		"bold_rs":         "rs",
		"resting_state":   "rs",
		"rest_bold":       "rs",
		"test_bold":       "test",
		"task_rs":         "task",
		"first_bold":      DefaultModality,
		"mrs_bold":        DefaultModality,
	}
	for in, want := range tests {
		if got := Modality(in); got != want {
			t.Errorf("Modality(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		norm string
		want string
		ok   bool
	}{
		{"bold_run-07", "run-07", true},
		{"bold_run_7", "run-07", true},
		{"bold_run3", "run-03", true},
		{"run-02_bold_run-05", "run-05", true},
		{"run-02_bold_run-05_x", "run-05", true},
		{"bold_run-12_sbref", "run-12", true},
		{"bold_rerun-1x", "", false},
		{"bold", "", false},
	}
	for _, tt := range tests {
		got, ok := Run(tt.norm)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Run(%q) = %q, %v; want %q, %v", tt.norm, got, ok, tt.want, tt.ok)
		}
	}
}

