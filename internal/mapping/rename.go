package mapping

import (
	"fmt"
	"log/slog"
	"strings"

	"bidsmap/internal/faults"
	"bidsmap/internal/logging"
)

// Rename moves the run tree of task Old to New.
type Rename struct {
	Old string
	New string
}

// ParseRenames parses OLD=NEW pairs. Old names are lower-cased; a repeated Old
// keeps its first position and takes the last New.
func ParseRenames(pairs []string) ([]Rename, error) {
	var renames []Rename
	index := make(map[string]int)
	for _, pair := range pairs {
		oldName, newName, ok := strings.Cut(pair, "=")
		oldName = strings.ToLower(strings.TrimSpace(oldName))
		newName = strings.TrimSpace(newName)
		if !ok {
			return nil, faults.Wrap(faults.ErrConfig, "mapping", "parse rename",
				fmt.Sprintf("expected OLD=NEW, got %q", pair), nil)
		}
		if oldName == "" || newName == "" {
			return nil, faults.Wrap(faults.ErrConfig, "mapping", "parse rename",
				fmt.Sprintf("invalid rename pair %q", pair), nil)
		}
		if pos, seen := index[oldName]; seen {
			renames[pos].New = newName
			continue
		}
		index[oldName] = len(renames)
		renames = append(renames, Rename{Old: oldName, New: newName})
	}
	return renames, nil
}

// ApplyRenames renames tasks in m and returns one error per skipped rename.
// Skipped renames are logged and never stop the remaining ones.
func ApplyRenames(m Mapping, renames []Rename, logger *slog.Logger) []error {
	if len(renames) == 0 {
		return nil
	}
	logger = logging.NewComponentLogger(logger, "mapping")
	nested, ok := m.(*Nested)
	if !ok {
		err := faults.Wrap(faults.ErrRenameCollision, "mapping", "rename", "flat mappings have no task labels", nil)
		logging.WarnWithContext(logger, "task renames ignored for flat mapping",
			faults.EventType(err),
			logging.Int("renames", len(renames)),
			logging.String(logging.FieldErrorHint, "use the nested layout to rename tasks"),
		)
		return []error{err}
	}

	var skipped []error
	for _, rename := range renames {
		pos := nested.TaskIndex(rename.Old)
		switch {
		case pos < 0:
			err := faults.Wrap(faults.ErrRenameCollision, "mapping", "rename",
				fmt.Sprintf("task %q not in mapping", rename.Old), nil)
			logging.WarnWithContext(logger, "task rename ignored; task not in mapping",
				faults.EventType(err),
				logging.String("old", rename.Old),
				logging.String("new", rename.New),
				logging.Strings("tasks", nested.TaskNames()),
			)
			skipped = append(skipped, err)
		case rename.New == rename.Old:
			logger.Debug("task rename is a no-op", logging.String("task", rename.Old))
		case nested.TaskIndex(rename.New) >= 0:
			err := faults.Wrap(faults.ErrRenameCollision, "mapping", "rename",
				fmt.Sprintf("target task %q already exists", rename.New), nil)
			logging.WarnWithContext(logger, "task rename aborted; target task already exists",
				faults.EventType(err),
				logging.String("old", rename.Old),
				logging.String("new", rename.New),
				logging.String(logging.FieldErrorHint, "merge the run trees by hand"),
			)
			skipped = append(skipped, err)
		default:
			task := nested.Func[pos]
			task.Name = rename.New
			nested.Func = append(append(nested.Func[:pos:pos], nested.Func[pos+1:]...), task)
			logger.Info("task renamed", logging.String("old", rename.Old), logging.String("new", rename.New))
		}
	}
	return skipped
}
