package exam

import (
	"regexp"
	"strconv"
	"strings"
)

// Authored answer patterns for the text-compared types. A fill_in pattern
// is a "|" separated list of acceptable answers, each of which may use "*"
// as a wildcard. A numeric pattern is a single value or a "lo|hi" range;
// a comma is accepted as the decimal point on both sides.

// matchFillIn reports whether the submitted text satisfies the authored
// pattern, case folded unless caseSensitive.
func matchFillIn(answer, pattern string, caseSensitive bool) bool {
	for _, alt := range strings.Split(pattern, "|") {
		var re strings.Builder
		if !caseSensitive {
			re.WriteString("(?i)")
		}
		re.WriteString("^")
		for i, piece := range strings.Split(alt, "*") {
			if i > 0 {
				re.WriteString(".+")
			}
			re.WriteString(regexp.QuoteMeta(piece))
		}
		re.WriteString("$")

		p, err := regexp.Compile(re.String())
		if err != nil {
			continue
		}
		if p.MatchString(answer) {
			return true
		}
	}
	return false
}

// matchNumeric reports whether the submitted text parses as a number
// inside the authored value or range.
func matchNumeric(answer, pattern string) bool {
	v, ok := parseDecimal(answer)
	if !ok {
		return false
	}

	lo, hi := 0.0, 0.0
	if i := strings.Index(pattern, "|"); i >= 0 {
		parts := strings.SplitN(pattern, "|", 2)
		a, okA := parseDecimal(parts[0])
		b, okB := parseDecimal(parts[1])
		if !okA || !okB {
			return false
		}
		lo, hi = a, b
		if lo > hi {
			lo, hi = hi, lo
		}
	} else {
		c, ok := parseDecimal(pattern)
		if !ok {
			return false
		}
		lo, hi = c, c
	}

	return v >= lo && v <= hi
}

func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
