package classify

import (
	"strings"

	"bidsmap/internal/source"
	"bidsmap/internal/textutil"
)

const fallbackTask = "task"

// DeriveTask returns the task label of a functional series. A forced label
// wins; otherwise a "task-<name>" segment; otherwise the segment before the
// first segment containing "bold". The label is reduced to lower-case
// alphanumerics so it can sit in a task-<label> entity.
func DeriveTask(fileName, force string) string {
	return textutil.SanitizeLabel(rawTask(fileName, force), fallbackTask)
}

func rawTask(fileName, force string) string {
	if force = strings.TrimSpace(force); force != "" {
		return force
	}
	segments := strings.Split(source.SeriesID(fileName), "_")
	for _, seg := range segments {
		lowered := strings.ToLower(seg)
		if name, ok := strings.CutPrefix(lowered, "task-"); ok && name != "" {
			return name
		}
	}
	for i, seg := range segments {
		if !strings.Contains(strings.ToLower(seg), "bold") {
			continue
		}
		if i == 0 || segments[i-1] == "" {
			return fallbackTask
		}
		return segments[i-1]
	}
	return fallbackTask
}
