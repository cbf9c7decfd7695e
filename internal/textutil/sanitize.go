package textutil

import "strings"

// SanitizeLabel converts a string to a lowercase alphanumeric label suitable
// for BIDS entity values (task-<label>, sub-<label>). Every other character is
// dropped. Returns fallback when nothing survives.
func SanitizeLabel(value, fallback string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}
