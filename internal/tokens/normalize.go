package tokens

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	knownExtensions = []string{".nii.gz", ".nii", ".json"}
	numericPrefix   = regexp.MustCompile(`^[_\-. ]*\d+(?:[_\-. ]+|$)`)
	lower           = cases.Lower(language.Und)
)

// Normalize prepares a stem for token extraction: known extensions are
// stripped, non-ASCII runes are transliterated, a leading acquisition number
// such as "0010_" is dropped and the result is lower-cased.
func Normalize(stem string) string {
	value := strings.TrimSpace(stem)
	for _, ext := range knownExtensions {
		if len(value) > len(ext) && strings.EqualFold(value[len(value)-len(ext):], ext) {
			value = value[:len(value)-len(ext)]
			break
		}
	}
	value = strings.TrimSpace(unidecode.Unidecode(value))
	value = numericPrefix.ReplaceAllString(value, "")
	return lower.String(value)
}

// isWordByte reports whether c counts as part of a token for boundary checks.
func isWordByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func bounded(s string, start, end int) bool {
	if start > 0 && isWordByte(s[start-1]) {
		return false
	}
	if end < len(s) && isWordByte(s[end]) {
		return false
	}
	return true
}

// findBounded returns submatch indexes of every boundary-safe match of re.
// A candidate that fails the boundary check is retried one byte later, so an
// optional prefix glued to a longer word does not hide the bare token.
func findBounded(re *regexp.Regexp, s string) [][]int {
	var out [][]int
	for offset := 0; offset <= len(s); {
		loc := re.FindStringSubmatchIndex(s[offset:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += offset
			}
		}
		if !bounded(s, loc[0], loc[1]) {
			offset = loc[0] + 1
			continue
		}
		out = append(out, loc)
		offset = loc[1]
		if loc[1] == loc[0] {
			offset++
		}
	}
	return out
}

func matchBounded(re *regexp.Regexp, s string) bool {
	return len(findBounded(re, s)) > 0
}
