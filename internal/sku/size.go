package sku

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/glowmirror/configurator/internal/types"
)

// NormalizeDimension canonicalizes a width/height string: parses it as a
// decimal (fractional inches are valid) and re-renders without trailing
// zeros. Returns "" for unparseable input.
func NormalizeDimension(s string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return d.String()
}

// CanonicalSize renders the canonical WIDTHxHEIGHT form with an upper-case
// separator, e.g. "24X36".
func CanonicalSize(width, height string) string {
	w, h := NormalizeDimension(width), NormalizeDimension(height)
	if w == "" || h == "" {
		return ""
	}
	return w + "X" + h
}

// sizeSegment picks the encoded size token: the preset's sku_code when a
// preset is selected and its dimensions still match the configuration
// exactly, otherwise the canonical WIDTHxHEIGHT form.
func sizeSegment(cfg types.Configuration, sets types.OptionSet) string {
	if !cfg.UseCustomSize && cfg.SizeID != "" {
		if opt, ok := sets.ByID(types.FieldSize, atoi(cfg.SizeID)); ok {
			if dimsEqual(opt.Width, cfg.Width) && dimsEqual(opt.Height, cfg.Height) {
				return opt.SKUCode
			}
		}
	}
	return CanonicalSize(cfg.Width, cfg.Height)
}

// SizeValue is a decoded size token.
type SizeValue struct {
	Width  string
	Height string
	SizeID string // preset option id when the token named a preset
}

// ParseSizeToken accepts the three literal size forms: a named preset code,
// WIDTHxHEIGHT, and the compact legacy digit concatenation ("2436"). The
// compact form is accepted on decode only; the encoder never emits it.
func ParseSizeToken(token string, sets types.OptionSet) (SizeValue, bool) {
	if opt, ok := sets.BySKUCode(types.FieldSize, token); ok {
		return SizeValue{Width: opt.Width, Height: opt.Height, SizeID: itoa(opt.ID)}, true
	}

	if i := strings.IndexAny(token, "xX"); i > 0 && i < len(token)-1 {
		w := NormalizeDimension(token[:i])
		h := NormalizeDimension(token[i+1:])
		if w != "" && h != "" {
			return sizeFromDims(w, h, sets), true
		}
	}

	// Compact legacy form: an even run of digits split down the middle,
	// "2436" -> 24x36.
	if isDigits(token) && len(token) >= 4 && len(token)%2 == 0 {
		half := len(token) / 2
		w := NormalizeDimension(token[:half])
		h := NormalizeDimension(token[half:])
		if w != "" && h != "" {
			return sizeFromDims(w, h, sets), true
		}
	}

	return SizeValue{}, false
}

// sizeFromDims snaps parsed dimensions back onto a preset when one matches
// exactly, so decode(encode(c)) restores the preset selection.
func sizeFromDims(w, h string, sets types.OptionSet) SizeValue {
	for _, opt := range sets[types.FieldSize] {
		if dimsEqual(opt.Width, w) && dimsEqual(opt.Height, h) {
			return SizeValue{Width: w, Height: h, SizeID: itoa(opt.ID)}
		}
	}
	return SizeValue{Width: w, Height: h}
}

func dimsEqual(a, b string) bool {
	na, nb := NormalizeDimension(a), NormalizeDimension(b)
	return na != "" && na == nb
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
