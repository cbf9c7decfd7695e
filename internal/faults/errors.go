package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfig          = errors.New("configuration error")
	ErrPath            = errors.New("path error")
	ErrMissingSeries   = errors.New("missing series file")
	ErrAmbiguity       = errors.New("classification ambiguity")
	ErrRenameCollision = errors.New("rename collision")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrConfig
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err must stop the run before any file is written.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrMissingSeries), errors.Is(err, ErrAmbiguity), errors.Is(err, ErrRenameCollision):
		return false
	default:
		return true
	}
}

// EventType maps an error to the event_type used in structured warnings.
func EventType(err error) string {
	switch {
	case errors.Is(err, ErrConfig):
		return "config_error"
	case errors.Is(err, ErrPath):
		return "path_error"
	case errors.Is(err, ErrMissingSeries):
		return "missing_series_file"
	case errors.Is(err, ErrAmbiguity):
		return "classification_ambiguity"
	case errors.Is(err, ErrRenameCollision):
		return "rename_collision"
	default:
		return "unexpected_error"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
