package tokens

import "regexp"

// UnknownSequence is returned when no sequence pattern matches.
const UnknownSequence = "unknownseq"

type sequenceRule struct {
	label string
	// every pattern must match for the rule to apply
	patterns []*regexp.Regexp
}

func (r sequenceRule) match(norm string) bool {
	for _, re := range r.patterns {
		if !matchBounded(re, norm) {
			return false
		}
	}
	return true
}

var (
	ep2dBold = regexp.MustCompile(`(?:mb)?ep2d_bold`)

	sequenceRules = []sequenceRule{
		{label: "vaso", patterns: []*regexp.Regexp{regexp.MustCompile(`vaso`)}},
		{label: "bssfp", patterns: []*regexp.Regexp{regexp.MustCompile(`(?:3d[_\-]?)?bssfp`)}},
		{label: "ep2d_bold_1000", patterns: []*regexp.Regexp{ep2dBold, regexp.MustCompile(`tr1000`)}},
		{label: "ep2d_bold_2000", patterns: []*regexp.Regexp{ep2dBold, regexp.MustCompile(`tr2000`)}},
		{label: "mp2rage", patterns: []*regexp.Regexp{regexp.MustCompile(`mp2rage`)}},
		{label: "mprage", patterns: []*regexp.Regexp{regexp.MustCompile(`mprage`)}},
	}
)

// Sequence returns the first matching sequence label for a normalized stem.
// When several patterns match, every matching label is returned in priority
// order as ambiguous so callers can report it; the first one still wins.
func Sequence(norm string) (string, []string) {
	var matched []string
	for _, rule := range sequenceRules {
		if rule.match(norm) {
			matched = append(matched, rule.label)
		}
	}
	switch len(matched) {
	case 0:
		return UnknownSequence, nil
	case 1:
		return matched[0], nil
	default:
		return matched[0], matched
	}
}
