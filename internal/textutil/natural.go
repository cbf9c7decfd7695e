package textutil

import (
	"sort"
	"strings"
)

// NaturalLess orders strings the way a person reads filenames: runs of digits
// compare by numeric value, everything else compares byte-wise with case
// preserved. When two names differ only in zero padding, the first padding
// difference decides so the order stays total.
func NaturalLess(a, b string) bool {
	return NaturalCompare(a, b) < 0
}

// NaturalCompare returns -1, 0, or 1 comparing a and b in natural order.
func NaturalCompare(a, b string) int {
	padding := 0
	for a != "" && b != "" {
		ca, restA := nextChunk(a)
		cb, restB := nextChunk(b)
		c, pad := compareChunk(ca, cb)
		if c != 0 {
			return c
		}
		if padding == 0 {
			padding = pad
		}
		a, b = restA, restB
	}
	switch {
	case a == "" && b == "":
		return padding
	case a == "":
		return -1
	default:
		return 1
	}
}

// SortNatural sorts values in place in natural order.
func SortNatural(values []string) {
	sort.SliceStable(values, func(i, j int) bool { return NaturalLess(values[i], values[j]) })
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func nextChunk(s string) (string, string) {
	digits := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i], s[i:]
}

// compareChunk returns the ordering of two chunks plus a padding tie-break
// used only when the whole names are otherwise equal.
func compareChunk(a, b string) (int, int) {
	aNum, bNum := isDigit(a[0]), isDigit(b[0])
	switch {
	case aNum && bNum:
		ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(ta) != len(tb) {
			return sign(len(ta) - len(tb)), 0
		}
		if c := strings.Compare(ta, tb); c != 0 {
			return c, 0
		}
		return 0, sign(len(a) - len(b))
	case aNum:
		return -1, 0
	case bNum:
		return 1, 0
	default:
		return strings.Compare(a, b), 0
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
