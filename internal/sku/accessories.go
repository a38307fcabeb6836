package sku

import (
	"sort"
	"strings"

	"github.com/glowmirror/configurator/internal/matching"
	"github.com/glowmirror/configurator/internal/types"
)

// CompositeTable maps sets of accessory sku codes to a single combined
// token (e.g. nightlight + anti-fog selected together collapse to one
// two-letter code). The mapping is external configuration data, not
// hardcoded logic; an empty or nil table means plain concatenation.
type CompositeTable struct {
	byKey   map[string]string
	byToken map[string][]string
}

// NewCompositeTable creates an empty table.
func NewCompositeTable() *CompositeTable {
	return &CompositeTable{
		byKey:   make(map[string]string),
		byToken: make(map[string][]string),
	}
}

// Add registers a combined token for a set of accessory codes.
func (t *CompositeTable) Add(token string, codes ...string) {
	t.byKey[comboKey(codes)] = token
	t.byToken[matching.NormalizeCode(token)] = append([]string(nil), codes...)
}

// Combine returns the combined token for the exact set of codes.
func (t *CompositeTable) Combine(codes []string) (string, bool) {
	if t == nil || len(t.byKey) == 0 {
		return "", false
	}
	token, ok := t.byKey[comboKey(codes)]
	return token, ok
}

// Expand returns the accessory codes a combined token stands for.
func (t *CompositeTable) Expand(token string) ([]string, bool) {
	if t == nil {
		return nil, false
	}
	codes, ok := t.byToken[matching.NormalizeCode(token)]
	return codes, ok
}

func comboKey(codes []string) string {
	norm := make([]string, 0, len(codes))
	for _, c := range codes {
		norm = append(norm, matching.NormalizeCode(c))
	}
	sort.Strings(norm)
	return strings.Join(norm, "+")
}

// accessorySegment renders the accessories token: the composite mapping for
// the full selected set when one is defined, otherwise the individual codes
// concatenated in selection order.
func accessorySegment(cfg types.Configuration, sets types.OptionSet, table *CompositeTable) string {
	codes := make([]string, 0, len(cfg.Accessories))
	for _, id := range cfg.Accessories {
		if opt, ok := sets.ByID(types.FieldAccessories, atoi(id)); ok && opt.SKUCode != "" {
			codes = append(codes, opt.SKUCode)
		}
	}
	if len(codes) == 0 {
		return ""
	}
	if token, ok := table.Combine(codes); ok {
		return token
	}
	return strings.Join(codes, "")
}

// parseAccessoryToken decodes an accessories token back to option ids.
// Composite tokens expand through the table; otherwise the token is split
// greedily against known codes (longest code first). Returns false unless
// the whole token is consumed.
func parseAccessoryToken(token string, sets types.OptionSet, table *CompositeTable) ([]string, bool) {
	if codes, ok := table.Expand(token); ok {
		return codesToIDs(codes, sets)
	}

	opts := sets[types.FieldAccessories]
	if len(opts) == 0 {
		return nil, false
	}

	var ids []string
	rest := matching.NormalizeCode(token)
	for rest != "" {
		matched := false
		// Longest code first so "ANL" can't be shadowed by "A".
		best := types.Option{}
		for _, opt := range opts {
			code := matching.NormalizeCode(opt.SKUCode)
			if code == "" || !strings.HasPrefix(rest, code) {
				continue
			}
			if len(code) > len(best.SKUCode) {
				best = opt
				matched = true
			}
		}
		if !matched {
			return nil, false
		}
		ids = append(ids, itoa(best.ID))
		rest = rest[len(matching.NormalizeCode(best.SKUCode)):]
	}
	return ids, true
}

func codesToIDs(codes []string, sets types.OptionSet) ([]string, bool) {
	ids := make([]string, 0, len(codes))
	for _, code := range codes {
		opt, ok := sets.BySKUCode(types.FieldAccessories, code)
		if !ok {
			return nil, false
		}
		ids = append(ids, itoa(opt.ID))
	}
	return ids, true
}
