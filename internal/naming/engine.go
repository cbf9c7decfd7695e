package naming

import (
	"fmt"
	"log/slog"
	"strings"

	"bidsmap/internal/classify"
	"bidsmap/internal/faults"
	"bidsmap/internal/logging"
	"bidsmap/internal/source"
	"bidsmap/internal/tokens"
)

// Name is the resolved destination stem of one series.
type Name struct {
	Section classify.Section
	// Stem is the destination filename without extension.
	Stem     string
	Sequence string
	Modality string
	Run      string
}

// File returns the destination filename for ext.
func (n Name) File(ext string) string {
	return n.Stem + ext
}

// Engine resolves names for one placement pass.
type Engine struct {
	ctx      Context
	counters *RunCounterTable
	bidsFunc int
	bidsFmap int
	logger   *slog.Logger
}

// NewEngine validates ctx and returns an Engine with an empty counter table.
func NewEngine(ctx Context, logger *slog.Logger) (*Engine, error) {
	ctx = ctx.normalize()
	policy, err := ParsePolicy(string(ctx.Policy))
	if err != nil {
		return nil, err
	}
	ctx.Policy = policy
	if err := ctx.validate(); err != nil {
		return nil, err
	}
	return &Engine{
		ctx:      ctx,
		counters: NewRunCounterTable(),
		logger:   logging.NewComponentLogger(logger, "naming"),
	}, nil
}

// Context returns the normalized naming context.
func (e *Engine) Context() Context {
	return e.ctx
}

// Resolve computes the destination name of the series identified by stem.
func (e *Engine) Resolve(section classify.Section, stem string) (Name, error) {
	if !section.Valid() {
		return Name{}, faults.Wrap(faults.ErrConfig, "naming", "resolve",
			fmt.Sprintf("unknown section %q", section), nil)
	}
	stem = source.SeriesID(strings.TrimSpace(stem))
	if stem == "" {
		return Name{}, faults.Wrap(faults.ErrConfig, "naming", "resolve", "empty stem", nil)
	}

	switch e.ctx.Policy {
	case PolicyPreserve:
		return Name{Section: section, Stem: stem}, nil
	case PolicyBIDS:
		return e.resolveBIDS(section), nil
	default:
		return e.resolveCustom(section, stem), nil
	}
}

func (e *Engine) resolveBIDS(section classify.Section) Name {
	prefix := BIDSPrefix(e.ctx.Subject, e.ctx.Session)
	name := Name{Section: section}
	switch section {
	case classify.SectionAnat:
		name.Stem = prefix + "_" + classify.LabelAnat
	case classify.SectionFunc:
		e.bidsFunc++
		name.Run = tokens.FormatRun(e.bidsFunc)
		name.Stem = fmt.Sprintf("%s_task-unk_%s_bold", prefix, name.Run)
	case classify.SectionFmap:
		e.bidsFmap++
		name.Stem = fmt.Sprintf("%s_fmap%02d", prefix, e.bidsFmap)
	}
	return name
}

func (e *Engine) resolveCustom(section classify.Section, stem string) Name {
	norm := tokens.Normalize(stem)
	sequence, ambiguous := tokens.Sequence(norm)
	if len(ambiguous) > 0 {
		logging.WarnWithContext(e.logger, "several sequence patterns match",
			faults.EventType(faults.ErrAmbiguity),
			logging.String(logging.FieldStem, stem),
			logging.Strings("candidates", ambiguous),
			logging.String("chosen", sequence),
		)
	}

	name := Name{Section: section, Sequence: sequence}
	counterModality := NoModality
	if section == classify.SectionFunc {
		name.Modality = tokens.Modality(norm)
		counterModality = name.Modality
	}
	if run, ok := tokens.Run(norm); ok {
		name.Run = run
	} else {
		name.Run = tokens.FormatRun(e.counters.Next(string(section), sequence, counterModality))
	}

	parts := []string{e.ctx.Subject, e.ctx.Session, sequence}
	switch section {
	case classify.SectionFunc:
		parts = append(parts, name.Modality, name.Run)
	case classify.SectionAnat:
		parts = append(parts, name.Run)
	case classify.SectionFmap:
		role, _ := classify.FieldmapRole(stem)
		parts = append(parts, name.Run, role)
	}
	name.Stem = strings.Join(parts, "_")
	return name
}
