package sku

import (
	"net/url"
	"sort"
	"strings"

	"github.com/glowmirror/configurator/internal/matching"
	"github.com/glowmirror/configurator/internal/types"
)

// Decoded is the partial configuration recovered from a SKU or query
// string. Only recognized segments appear; the orchestrator applies what
// was recognized and defaults the rest.
type Decoded struct {
	Fields      map[string]string // field key -> option id
	Width       string
	Height      string
	SizeID      string
	Accessories []string
}

// legacyKeys maps the historical multi-parameter query keys to field keys.
// Accepted on decode for backward compatibility, never emitted.
var legacyKeys = map[string]string{
	"ms":  types.FieldMirrorStyle,
	"ld":  types.FieldLightDirection,
	"fc":  types.FieldFrameColor,
	"ft":  types.FieldFrameThickness,
	"mnt": types.FieldMounting,
	"mo":  types.FieldMounting,
	"lo":  types.FieldLightOutput,
	"ct":  types.FieldColorTemperature,
	"drv": types.FieldDriver,
	"dr":  types.FieldDriver,
	"mc":  types.FieldMirrorControl,
}

// ExtractSKU pulls the SKU out of a query-or-SKU string. Returns the SKU
// (empty when absent) and any legacy parameters found. Accepts a full URL,
// a bare query string with or without "?", or a bare dashed SKU.
func ExtractSKU(raw string) (string, url.Values) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	if !strings.ContainsRune(raw, '=') {
		return raw, nil
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return "", nil
	}
	if sku := values.Get("search"); sku != "" {
		return sku, values
	}
	return "", values
}

// InferProductLine finds the product line whose sku_code prefixes the SKU's
// core segment; the longest matching prefix wins so "DD" beats "D".
func InferProductLine(skuStr string, lines []types.ProductLine) (types.ProductLine, bool) {
	core := skuStr
	if i := strings.IndexByte(core, '-'); i >= 0 {
		core = core[:i]
	}
	core = matching.NormalizeCode(core)

	var best types.ProductLine
	found := false
	for _, line := range lines {
		prefix := matching.NormalizeCode(line.SKUCode)
		if prefix == "" || !strings.HasPrefix(core, prefix) {
			continue
		}
		if !found || len(prefix) > len(best.SKUCode) {
			best = line
			found = true
		}
	}
	return best, found
}

// Decode recovers a partial configuration from a query-or-SKU string using
// one product line's option sets. Unknown segments and parameters are
// dropped silently; decode is best-effort and never fails.
func Decode(raw string, sets types.OptionSet, line types.ProductLine, table *CompositeTable) Decoded {
	dec := Decoded{Fields: make(map[string]string)}
	skuStr, legacy := ExtractSKU(raw)
	if skuStr != "" {
		decodeSKUString(&dec, skuStr, sets, line, table)
	}
	if legacy != nil {
		decodeLegacyParams(&dec, legacy, sets, table)
	}
	return dec
}

func decodeSKUString(dec *Decoded, skuStr string, sets types.OptionSet, line types.ProductLine, table *CompositeTable) {
	tokens := strings.Split(skuStr, "-")
	if len(tokens) == 0 || tokens[0] == "" {
		return
	}
	decodeCore(dec, tokens[0], sets, line)

	// Walk the remaining tokens against the fixed segment order with a
	// forward-only cursor; empty segments were omitted on encode so a token
	// may match any segment at or after the cursor. Unmatched tokens drop.
	cursor := 0
	for _, token := range tokens[1:] {
		for i := cursor; i < len(segmentOrder); i++ {
			if consumeSegment(dec, segmentOrder[i], token, sets, table) {
				cursor = i + 1
				break
			}
		}
	}
}

// decodeCore splits the core token into line prefix, style code and
// direction code. When the prefix does not match (a rule override replaced
// it) fall back to locating a style+direction code pair at the end of the
// token, which recovers cores like "W01d".
func decodeCore(dec *Decoded, core string, sets types.OptionSet, line types.ProductLine) {
	prefix := matching.NormalizeCode(line.SKUCode)
	rest := core
	if prefix != "" && strings.HasPrefix(matching.NormalizeCode(core), prefix) {
		rest = core[len(prefix):]
		if matchStyleDirection(dec, rest, sets, false) {
			return
		}
	}
	matchStyleDirection(dec, rest, sets, true)
}

// matchStyleDirection matches style code followed by direction code against
// s. With suffix=true the pair only needs to terminate s (the leading bytes
// are an unrecognized override and are ignored).
func matchStyleDirection(dec *Decoded, s string, sets types.OptionSet, suffix bool) bool {
	norm := matching.NormalizeCode(s)
	// Longest style code first so "01L" prefers style "01" + direction "L"
	// over a hypothetical style "0".
	styles := append([]types.Option(nil), sets[types.FieldMirrorStyle]...)
	sort.SliceStable(styles, func(i, j int) bool {
		return len(styles[i].SKUCode) > len(styles[j].SKUCode)
	})

	for _, style := range styles {
		styleCode := matching.NormalizeCode(style.SKUCode)
		if styleCode == "" {
			continue
		}
		for _, dir := range sets[types.FieldLightDirection] {
			dirCode := matching.NormalizeCode(dir.SKUCode)
			if dirCode == "" {
				continue
			}
			pair := styleCode + dirCode
			matched := norm == pair
			if suffix {
				matched = strings.HasSuffix(norm, pair)
			}
			if matched {
				dec.Fields[types.FieldMirrorStyle] = itoa(style.ID)
				dec.Fields[types.FieldLightDirection] = itoa(dir.ID)
				return true
			}
		}
	}
	return false
}

func consumeSegment(dec *Decoded, seg, token string, sets types.OptionSet, table *CompositeTable) bool {
	switch seg {
	case SegmentSize:
		size, ok := ParseSizeToken(token, sets)
		if !ok {
			return false
		}
		dec.Width, dec.Height, dec.SizeID = size.Width, size.Height, size.SizeID
		return true
	case SegmentAccessories:
		ids, ok := parseAccessoryToken(token, sets, table)
		if !ok {
			return false
		}
		dec.Accessories = ids
		return true
	default:
		field := segmentField(seg)
		opt, ok := sets.BySKUCode(field, token)
		if !ok {
			return false
		}
		dec.Fields[field] = itoa(opt.ID)
		return true
	}
}

func segmentField(seg string) string {
	switch seg {
	case SegmentLightOutput:
		return types.FieldLightOutput
	case SegmentColorTemperature:
		return types.FieldColorTemperature
	case SegmentMounting:
		return types.FieldMounting
	case SegmentDriver:
		return types.FieldDriver
	case SegmentFrameColor:
		return types.FieldFrameColor
	}
	return seg
}

func decodeLegacyParams(dec *Decoded, values url.Values, sets types.OptionSet, table *CompositeTable) {
	for key, field := range legacyKeys {
		v := values.Get(key)
		if v == "" {
			continue
		}
		if id, ok := resolveOptionValue(field, v, sets); ok {
			dec.Fields[field] = id
		}
	}
	if sz := values.Get("sz"); sz != "" {
		if size, ok := ParseSizeToken(sz, sets); ok {
			dec.Width, dec.Height, dec.SizeID = size.Width, size.Height, size.SizeID
		}
	}
	if w := values.Get("w"); w != "" {
		if d := NormalizeDimension(w); d != "" {
			dec.Width = d
		}
	}
	if h := values.Get("h"); h != "" {
		if d := NormalizeDimension(h); d != "" {
			dec.Height = d
		}
	}
	if acc := values.Get("acc"); acc != "" {
		if ids, ok := parseAccessoryToken(acc, sets, table); ok {
			dec.Accessories = ids
		}
	}
}

// resolveOptionValue accepts either a numeric option id or a sku code.
func resolveOptionValue(field, v string, sets types.OptionSet) (string, bool) {
	if isDigits(v) {
		if _, ok := sets.ByID(field, atoi(v)); ok {
			return v, true
		}
	}
	if opt, ok := sets.BySKUCode(field, v); ok {
		return itoa(opt.ID), true
	}
	return "", false
}
