package mapping

import (
	"fmt"
	"strings"

	"bidsmap/internal/classify"
	"bidsmap/internal/faults"
)

// Layout names a mapping variant.
type Layout string

const (
	LayoutNested Layout = "nested"
	LayoutFlat   Layout = "flat"
)

// ParseLayout validates a layout name.
func ParseLayout(value string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(value))); l {
	case LayoutNested, LayoutFlat:
		return l, nil
	default:
		return "", faults.Wrap(faults.ErrConfig, "mapping", "parse layout",
			fmt.Sprintf("unknown layout %q (want nested or flat)", value), nil)
	}
}

// Mapping is either *Nested or *Flat.
type Mapping interface {
	Layout() Layout
	// Entries lists every referenced stem in placement order.
	Entries() []Entry
	Empty() bool
	isMapping()
}

// Entry is one stem reference with the keys that lead to it.
type Entry struct {
	Section classify.Section
	// Group is the anat label, func task or fmap type. Empty for flat mappings.
	Group string
	// Key is the func run label or fmap role. Empty otherwise.
	Key string
	// Kind is "bold" or "sbref" for nested func entries.
	Kind string
	Stem string
}

// Kinds of nested functional entries.
const (
	KindBold  = "bold"
	KindSBRef = "sbref"
)

// AnatGroup lists anatomical stems under one label.
type AnatGroup struct {
	Label string
	Stems []string
}

// Run is one functional run of a task.
type Run struct {
	Label string
	Bold  string
	SBRef string
}

// Task holds the runs of one functional task.
type Task struct {
	Name string
	Runs []Run
}

// FieldmapRole binds a field-map role to a stem.
type FieldmapRole struct {
	Role string
	Stem string
}

// FieldmapGroup holds the roles of one field-map type.
type FieldmapGroup struct {
	Type  string
	Roles []FieldmapRole
}

// Nested is the task/run tree layout.
type Nested struct {
	Anat []AnatGroup
	Func []Task
	Fmap []FieldmapGroup
}

func (*Nested) Layout() Layout { return LayoutNested }

func (*Nested) isMapping() {}

func (n *Nested) Empty() bool {
	return len(n.Anat) == 0 && len(n.Func) == 0 && len(n.Fmap) == 0
}

// TaskIndex returns the position of the named task or -1.
func (n *Nested) TaskIndex(name string) int {
	for i, task := range n.Func {
		if task.Name == name {
			return i
		}
	}
	return -1
}

// TaskNames returns the task names in declared order.
func (n *Nested) TaskNames() []string {
	names := make([]string, 0, len(n.Func))
	for _, task := range n.Func {
		names = append(names, task.Name)
	}
	return names
}

func (n *Nested) Entries() []Entry {
	var entries []Entry
	for _, group := range n.Anat {
		for _, stem := range group.Stems {
			entries = append(entries, Entry{Section: classify.SectionAnat, Group: group.Label, Stem: stem})
		}
	}
	for _, task := range n.Func {
		for _, run := range task.Runs {
			entries = append(entries, Entry{Section: classify.SectionFunc, Group: task.Name, Key: run.Label, Kind: KindBold, Stem: run.Bold})
			if run.SBRef != "" {
				entries = append(entries, Entry{Section: classify.SectionFunc, Group: task.Name, Key: run.Label, Kind: KindSBRef, Stem: run.SBRef})
			}
		}
	}
	for _, group := range n.Fmap {
		for _, role := range group.Roles {
			entries = append(entries, Entry{Section: classify.SectionFmap, Group: group.Type, Key: role.Role, Stem: role.Stem})
		}
	}
	return entries
}

// Flat is the per-section list layout.
type Flat struct {
	Anat []string
	Func []string
	Fmap []string
}

func (*Flat) Layout() Layout { return LayoutFlat }

func (*Flat) isMapping() {}

func (f *Flat) Empty() bool {
	return len(f.Anat) == 0 && len(f.Func) == 0 && len(f.Fmap) == 0
}

// Section returns the stems listed under section.
func (f *Flat) Section(section classify.Section) []string {
	switch section {
	case classify.SectionAnat:
		return f.Anat
	case classify.SectionFunc:
		return f.Func
	case classify.SectionFmap:
		return f.Fmap
	}
	return nil
}

func (f *Flat) Entries() []Entry {
	var entries []Entry
	for _, section := range classify.Sections {
		for _, stem := range f.Section(section) {
			entries = append(entries, Entry{Section: section, Stem: stem})
		}
	}
	return entries
}
