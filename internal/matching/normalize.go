package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Mounting orientation classes derived from option names.
type OrientationClass int

const (
	OrientationUnknown OrientationClass = iota
	OrientationVertical
	OrientationHorizontal
)

// NormalizeName lowercases, strips diacritics and collapses whitespace so
// option names coming from different CMS entries compare stably. Used when
// remapping a preserved selection onto a new product line's option set.
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, _ := transform.String(t, s)
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// NormalizeCode canonicalizes a SKU code fragment for comparison: trimmed
// and upper-cased. Codes are not guaranteed numeric or fixed-width.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Orientation classifies a mounting option by its name. Options that name
// neither orientation are OrientationUnknown and never filtered on image
// presence.
func Orientation(name string) OrientationClass {
	n := NormalizeName(name)
	switch {
	case strings.Contains(n, "vertical") || strings.Contains(n, "portrait"):
		return OrientationVertical
	case strings.Contains(n, "horizontal") || strings.Contains(n, "landscape"):
		return OrientationHorizontal
	}
	return OrientationUnknown
}
