package mapping

import (
	"log/slog"

	"bidsmap/internal/classify"
	"bidsmap/internal/faults"
	"bidsmap/internal/logging"
)

// BuildNested assembles classifier results into the task/run tree. A second
// stem for an already filled field-map role replaces the first.
func BuildNested(results []classify.Result, logger *slog.Logger) *Nested {
	logger = logging.NewComponentLogger(logger, "mapping")
	nested := &Nested{}
	anatIndex := make(map[string]int)
	taskIndex := make(map[string]int)
	fmapIndex := make(map[string]int)

	for _, r := range results {
		switch r.Section {
		case classify.SectionAnat:
			pos, ok := anatIndex[r.Label]
			if !ok {
				pos = len(nested.Anat)
				anatIndex[r.Label] = pos
				nested.Anat = append(nested.Anat, AnatGroup{Label: r.Label})
			}
			nested.Anat[pos].Stems = append(nested.Anat[pos].Stems, r.Stem)
		case classify.SectionFunc:
			pos, ok := taskIndex[r.Task]
			if !ok {
				pos = len(nested.Func)
				taskIndex[r.Task] = pos
				nested.Func = append(nested.Func, Task{Name: r.Task})
			}
			nested.Func[pos].Runs = append(nested.Func[pos].Runs, Run{Label: r.RunLabel, Bold: r.Stem, SBRef: r.SBRef})
		case classify.SectionFmap:
			pos, ok := fmapIndex[r.Label]
			if !ok {
				pos = len(nested.Fmap)
				fmapIndex[r.Label] = pos
				nested.Fmap = append(nested.Fmap, FieldmapGroup{Type: r.Label})
			}
			group := &nested.Fmap[pos]
			replaced := false
			for i := range group.Roles {
				if group.Roles[i].Role != r.FieldmapRole {
					continue
				}
				logging.WarnWithContext(logger, "field map role already assigned; later series wins",
					faults.EventType(faults.ErrAmbiguity),
					logging.String(logging.FieldStem, r.Stem),
					logging.String("replaced", group.Roles[i].Stem),
					logging.String("role", r.FieldmapRole),
				)
				group.Roles[i].Stem = r.Stem
				replaced = true
				break
			}
			if !replaced {
				group.Roles = append(group.Roles, FieldmapRole{Role: r.FieldmapRole, Stem: r.Stem})
			}
		}
	}
	return nested
}

// BuildFlat lists classifier results per section in scan order. Paired
// references are not listed.
func BuildFlat(results []classify.Result) *Flat {
	flat := &Flat{}
	for _, r := range results {
		switch r.Section {
		case classify.SectionAnat:
			flat.Anat = append(flat.Anat, r.Stem)
		case classify.SectionFunc:
			flat.Func = append(flat.Func, r.Stem)
		case classify.SectionFmap:
			flat.Fmap = append(flat.Fmap, r.Stem)
		}
	}
	return flat
}

// Build dispatches to BuildNested or BuildFlat.
func Build(layout Layout, results []classify.Result, logger *slog.Logger) Mapping {
	if layout == LayoutFlat {
		return BuildFlat(results)
	}
	return BuildNested(results, logger)
}
