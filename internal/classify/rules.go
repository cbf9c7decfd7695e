package classify

import "regexp"

// Section is a top-level mapping section.
type Section string

const (
	SectionAnat Section = "anat"
	SectionFunc Section = "func"
	SectionFmap Section = "fmap"
)

// Sections lists the mapping sections in placement order.
var Sections = []Section{SectionAnat, SectionFunc, SectionFmap}

// Valid reports whether s is a known section.
func (s Section) Valid() bool {
	switch s {
	case SectionAnat, SectionFunc, SectionFmap:
		return true
	}
	return false
}

// Labels written into nested mappings.
const (
	LabelAnat = "T1w"
	LabelFunc = "bold"
	LabelFmap = "gre"
)

// Field-map roles.
const (
	RoleMagnitude1 = "magnitude1"
	RolePhase1     = "phase1"
	RolePhase2     = "phase2"
)

type rule struct {
	section Section
	label   string
	pattern *regexp.Regexp
}

var (
	skipPattern  = regexp.MustCompile(`(?i)(localizer|scout)`)
	sbrefPattern = regexp.MustCompile(`(?i)sbref`)

	// sectionRules are evaluated in order after skip and reference checks.
	sectionRules = []rule{
		{section: SectionFmap, label: LabelFmap, pattern: regexp.MustCompile(`(?i)(field|gre)`)},
		{section: SectionAnat, label: LabelAnat, pattern: regexp.MustCompile(`(?i)(T1|ADNI|MPRAGE|MP2RAGE|me4)`)},
		{section: SectionFunc, label: LabelFunc, pattern: regexp.MustCompile(`(?i)bold`)},
	}

	echoOnePattern = regexp.MustCompile(`(?i)e1`)
	phasePattern   = regexp.MustCompile(`(?i)ph|phase`)
)

// FieldmapRole assigns a field-map role from a filename. The final fallback to
// phase1 is a guess; the second return value is false when it was used.
func FieldmapRole(fileName string) (string, bool) {
	switch {
	case echoOnePattern.MatchString(fileName):
		return RoleMagnitude1, true
	case phasePattern.MatchString(fileName):
		return RolePhase2, true
	default:
		return RolePhase1, false
	}
}
