package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// consoleHandler renders one line per record:
//
//	2026-01-02 15:04:05 WARN placement: series file missing [0008_t1] section=anat
//	    hint: check the stem in the mapping against the source folder
//	    impact: series placed without this file
//
// Component, stem, hint and impact are lifted out of the attributes; hint and
// impact get their own lines on warnings only. Everything else is key=value.
type consoleHandler struct {
	out       *lockedWriter
	level     *slog.LevelVar
	addSource bool

	groups    string
	component string
	stem      string
	hint      string
	impact    string
	fields    []string
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) write(p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.w.Write(p)
	return err
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{out: &lockedWriter{w: w}, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	line := *h
	line.fields = slices.Clone(h.fields)
	record.Attrs(func(attr slog.Attr) bool {
		line.absorb(h.groups, attr)
		return true
	})

	warn := record.Level >= slog.LevelWarn
	if !warn {
		if line.hint != "" {
			line.fields = append(line.fields, FieldErrorHint+"="+quoteIfNeeded(line.hint))
		}
		if line.impact != "" {
			line.fields = append(line.fields, FieldImpact+"="+quoteIfNeeded(line.impact))
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	b.WriteString(ts.Local().Format(consoleTimeLayout))
	b.WriteByte(' ')
	b.WriteString(levelLabel(record.Level))
	b.WriteByte(' ')
	if line.component != "" {
		b.WriteString(line.component)
		b.WriteString(": ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(msg)
	if line.stem != "" {
		b.WriteString(" [")
		b.WriteString(line.stem)
		b.WriteByte(']')
	}
	for _, field := range line.fields {
		b.WriteByte(' ')
		b.WriteString(field)
	}
	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&b, " (%s:%d)", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteByte('\n')
	if warn && line.hint != "" {
		b.WriteString("    hint: " + line.hint + "\n")
	}
	if warn && line.impact != "" {
		b.WriteString("    impact: " + line.impact + "\n")
	}
	return h.out.write([]byte(b.String()))
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.fields = slices.Clone(h.fields)
	for _, attr := range attrs {
		clone.absorb(h.groups, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.fields = slices.Clone(h.fields)
	clone.groups = h.groups + name + "."
	return &clone
}

// absorb routes one attribute into the line layout.
func (h *consoleHandler) absorb(prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = prefix + attr.Key + "."
		}
		for _, child := range attr.Value.Group() {
			h.absorb(next, child)
		}
		return
	}
	if prefix == "" {
		switch attr.Key {
		case FieldComponent:
			if h.component == "" {
				h.component = plainValue(attr.Value)
			}
			return
		case FieldStem:
			h.stem = plainValue(attr.Value)
			return
		case FieldErrorHint:
			h.hint = plainValue(attr.Value)
			return
		case FieldImpact:
			h.impact = plainValue(attr.Value)
			return
		case FieldSessionID:
			id := plainValue(attr.Value)
			if len(id) > 8 {
				id = id[:8]
			}
			h.fields = append(h.fields, "session="+id)
			return
		}
	}
	h.fields = append(h.fields, prefix+attr.Key+"="+quoteIfNeeded(plainValue(attr.Value)))
}

func plainValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Local().Format(consoleTimeLayout)
	case slog.KindAny:
		switch value := v.Any().(type) {
		case error:
			return value.Error()
		case []string:
			return strings.Join(value, ",")
		default:
			return fmt.Sprint(value)
		}
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
