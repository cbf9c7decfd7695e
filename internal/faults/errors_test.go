package faults_test

import (
	"errors"
	"strings"
	"testing"

	"bidsmap/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := faults.Wrap(faults.ErrConfig, "mapping", "load", "parse yaml", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, faults.ErrConfig) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"mapping", "load", "parse yaml", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := faults.Wrap(faults.ErrPath, "source", "scan", "not a directory", nil)
	if !errors.Is(err, faults.ErrPath) {
		t.Fatalf("expected path marker, got %v", err)
	}
	if got := err.Error(); got != "path error: source: scan: not a directory" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"config", faults.Wrap(faults.ErrConfig, "", "", "bad", nil), true},
		{"path", faults.Wrap(faults.ErrPath, "", "", "gone", nil), true},
		{"missing series", faults.Wrap(faults.ErrMissingSeries, "", "", "x", nil), false},
		{"ambiguity", faults.Wrap(faults.ErrAmbiguity, "", "", "x", nil), false},
		{"rename", faults.Wrap(faults.ErrRenameCollision, "", "", "x", nil), false},
		{"unknown", errors.New("io"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := faults.IsFatal(tc.err); got != tc.want {
				t.Fatalf("IsFatal = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEventType(t *testing.T) {
	err := faults.Wrap(faults.ErrRenameCollision, "mapping", "rename", "target exists", nil)
	if got := faults.EventType(err); got != "rename_collision" {
		t.Fatalf("EventType = %q", got)
	}
	if got := faults.EventType(errors.New("other")); got != "unexpected_error" {
		t.Fatalf("EventType = %q", got)
	}
}
