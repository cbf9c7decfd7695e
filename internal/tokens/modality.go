package tokens

import "regexp"

// DefaultModality is returned when no modality keyword is present.
const DefaultModality = "prep"

var modalityRules = []struct {
	label   string
	pattern *regexp.Regexp
}{
	{label: "task", pattern: regexp.MustCompile(`task`)},
	{label: "rs", pattern: regexp.MustCompile(`resting|rest|rs`)},
	{label: "test", pattern: regexp.MustCompile(`test`)},
}

// Modality returns the first matching modality keyword of a normalized stem.
func Modality(norm string) string {
	for _, rule := range modalityRules {
		if matchBounded(rule.pattern, norm) {
			return rule.label
		}
	}
	return DefaultModality
}
