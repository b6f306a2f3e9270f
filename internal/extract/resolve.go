package extract

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Proteobench/Proteobench/constants"
)

// FormatTolerance renders a mass-tolerance interval such as "[-10 ppm, 10 ppm]".
// The lower bound always carries an explicit sign; an unsigned lower bound is
// taken as a width below the measured mass.
func FormatTolerance(lower, upper, unit string) string {
	lower = strings.TrimSpace(lower)
	upper = strings.TrimSpace(upper)
	if !strings.HasPrefix(lower, "-") && !strings.HasPrefix(lower, "+") {
		lower = "-" + lower
	}
	u, _ := constants.NormalizeUnit(unit)
	return fmt.Sprintf("[%s %s, %s %s]", lower, u, upper, u)
}

// SymmetricTolerance is FormatTolerance with the same width on both sides.
func SymmetricTolerance(width, unit string) string {
	return FormatTolerance(width, width, unit)
}

// JoinList joins non-empty items with constants.ListSeparator.
func JoinList(items []string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, it)
		}
	}
	return strings.Join(kept, constants.ListSeparator)
}

// SplitList splits a comma- or semicolon-separated report value.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// AppendUnique adds item unless it is already listed.
func AppendUnique(items []string, item string) []string {
	if slices.Contains(items, item) {
		return items
	}
	return append(items, item)
}
