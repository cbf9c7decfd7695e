package classify

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"bidsmap/internal/faults"
	"bidsmap/internal/logging"
	"bidsmap/internal/source"
	"bidsmap/internal/tokens"
)

// Result is the classification of one retained series.
type Result struct {
	Stem     string
	FileName string
	Section  Section
	// Label is the nested-mapping label: T1w, bold or gre.
	Label string
	// Task and RunLabel are set for functional series.
	Task     string
	RunLabel string
	// FieldmapRole is set for field maps.
	FieldmapRole string
	// SBRef is the stem of the paired reference attached to a functional run.
	SBRef string
}

// Options tune a Classifier.
type Options struct {
	// ForceTask labels every functional series with this task.
	ForceTask string
	// ExtraSkipPatterns are case-insensitive regular expressions that drop
	// matching series in addition to the built-in skip rule.
	ExtraSkipPatterns []string
	// ParentContext prepends the parent directory name to the match text.
	ParentContext bool
	Logger        *slog.Logger
}

// Classifier applies the ordered rule table to scanned series.
type Classifier struct {
	forceTask     string
	extraSkip     []*regexp.Regexp
	parentContext bool
	logger        *slog.Logger
}

// New compiles opts into a Classifier.
func New(opts Options) (*Classifier, error) {
	c := &Classifier{
		forceTask:     strings.TrimSpace(opts.ForceTask),
		parentContext: opts.ParentContext,
		logger:        logging.NewComponentLogger(opts.Logger, "classify"),
	}
	for _, raw := range opts.ExtraSkipPatterns {
		re, err := regexp.Compile("(?i)" + raw)
		if err != nil {
			return nil, faults.Wrap(faults.ErrConfig, "classify", "compile skip pattern", raw, err)
		}
		c.extraSkip = append(c.extraSkip, re)
	}
	return c, nil
}

// Classify walks records in order and returns one result per retained series.
// Paired references appear only as the SBRef of the functional result they
// were attached to.
func (c *Classifier) Classify(records []source.SeriesRecord) []Result {
	var (
		results      []Result
		pendingSBRef string
		runCounters  = make(map[string]int)
	)

	for _, record := range records {
		fileName := record.FileName()
		text := c.matchText(record)
		logger := c.logger.With(logging.String(logging.FieldStem, record.Stem))

		if c.skipped(text) {
			logger.Debug("series skipped", logging.Args(logging.DecisionAttrs("classify", "skip", "skip pattern")...)...)
			continue
		}
		if sbrefPattern.MatchString(text) {
			if pendingSBRef != "" {
				logger.Debug("paired reference replaced before a functional match",
					logging.String("dropped", pendingSBRef))
			}
			pendingSBRef = record.Stem
			continue
		}

		matched := c.matchingRules(text)
		if len(matched) == 0 {
			logger.Debug("series matched no rule")
			continue
		}
		if len(matched) > 1 {
			sections := make([]string, 0, len(matched))
			for _, r := range matched {
				sections = append(sections, string(r.section))
			}
			logging.WarnWithContext(logger, "series matches several sections",
				faults.EventType(faults.ErrAmbiguity),
				logging.Strings("candidates", sections),
				logging.String("chosen", string(matched[0].section)),
				logging.String(logging.FieldErrorHint, "move the stem to the right section in the mapping"),
			)
		}

		chosen := matched[0]
		result := Result{
			Stem:     record.Stem,
			FileName: fileName,
			Section:  chosen.section,
			Label:    chosen.label,
		}
		switch chosen.section {
		case SectionFmap:
			role, certain := FieldmapRole(fileName)
			result.FieldmapRole = role
			if !certain {
				logging.WarnWithContext(logger, "field map role guessed",
					faults.EventType(faults.ErrAmbiguity),
					logging.String("role", role),
					logging.String(logging.FieldErrorHint, "confirm the field map role in the mapping"),
				)
			}
		case SectionFunc:
			task := DeriveTask(fileName, c.forceTask)
			runCounters[task]++
			result.Task = task
			result.RunLabel = tokens.FormatRun(runCounters[task])
			if pendingSBRef != "" {
				result.SBRef = pendingSBRef
				pendingSBRef = ""
			}
		}
		logger.Debug("series classified",
			logging.String(logging.FieldSection, string(result.Section)),
			logging.String("label", result.Label))
		results = append(results, result)
	}

	if pendingSBRef != "" {
		c.logger.Debug("paired reference dropped without functional match",
			logging.String(logging.FieldStem, pendingSBRef))
	}
	return results
}

func (c *Classifier) matchText(record source.SeriesRecord) string {
	name := record.FileName()
	if !c.parentContext || record.Dir == "" {
		return name
	}
	return fmt.Sprintf("%s/%s", filepath.Base(record.Dir), name)
}

func (c *Classifier) skipped(text string) bool {
	if skipPattern.MatchString(text) {
		return true
	}
	for _, re := range c.extraSkip {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func (c *Classifier) matchingRules(text string) []rule {
	var matched []rule
	for _, r := range sectionRules {
		if r.pattern.MatchString(text) {
			matched = append(matched, r)
		}
	}
	return matched
}
