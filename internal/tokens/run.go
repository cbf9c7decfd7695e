package tokens

import (
	"fmt"
	"regexp"
	"strconv"
)

var runToken = regexp.MustCompile(`run[-_]?(\d+)`)

// FormatRun renders a run index as "run-NN".
func FormatRun(n int) string {
	return fmt.Sprintf("run-%02d", n)
}

// Run extracts an explicit run token from a normalized stem. A token that ends
// the stem wins; otherwise the last token anywhere in the stem is used.
func Run(norm string) (string, bool) {
	matches := findBounded(runToken, norm)
	if len(matches) == 0 {
		return "", false
	}
	chosen := matches[len(matches)-1]
	for _, loc := range matches {
		if loc[1] == len(norm) {
			chosen = loc
			break
		}
	}
	n, err := strconv.Atoi(norm[chosen[2]:chosen[3]])
	if err != nil {
		return "", false
	}
	return FormatRun(n), true
}
