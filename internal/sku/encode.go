package sku

import (
	"strconv"
	"strings"

	"github.com/glowmirror/configurator/internal/types"
)

// EncodedSKU is the result of encoding a configuration: the full dashed
// string plus the individual segment values for rendering.
type EncodedSKU struct {
	SKU   string            `json:"sku"`
	Parts map[string]string `json:"parts"`
}

// Encode assembles the canonical SKU for a configuration. Overrides carry
// rule-produced segment literals keyed by segment name; pass nil when no
// rule fired. Empty segments are omitted. Pure; never fails - fields whose
// option cannot be resolved simply contribute no segment.
func Encode(cfg types.Configuration, sets types.OptionSet, line types.ProductLine, overrides map[string]string, table *CompositeTable) EncodedSKU {
	parts := make(map[string]string)
	segments := make([]string, 0, len(segmentOrder)+1)

	core := coreSegment(cfg, sets, line, overrides)
	parts[SegmentCore] = core
	segments = append(segments, core)

	for _, seg := range segmentOrder {
		val := overrides[seg]
		if val == "" {
			val = computeSegment(seg, cfg, sets, table)
		}
		if val == "" {
			continue
		}
		parts[seg] = val
		segments = append(segments, val)
	}

	return EncodedSKU{SKU: strings.Join(segments, "-"), Parts: parts}
}

// coreSegment builds product-line prefix + style code + direction code. A
// rule override replaces the leading portion: when the override is already
// a full core (it ends with the computed style+direction codes) it is used
// verbatim, otherwise the computed codes are appended so a bare "W" becomes
// "W" + style + direction rather than swallowing them.
func coreSegment(cfg types.Configuration, sets types.OptionSet, line types.ProductLine, overrides map[string]string) string {
	style := fieldCode(cfg, sets, types.FieldMirrorStyle)
	direction := fieldCode(cfg, sets, types.FieldLightDirection)

	override := overrides[SegmentCore]
	if override == "" {
		override = overrides[types.FieldMirrorStyle]
	}
	if override != "" {
		return extendCore(override, style, direction)
	}
	return line.SKUCode + style + direction
}

func extendCore(override, style, direction string) string {
	tail := style + direction
	if tail != "" && len(override) > len(tail) &&
		strings.EqualFold(override[len(override)-len(tail):], tail) {
		return override
	}
	return override + tail
}

func computeSegment(seg string, cfg types.Configuration, sets types.OptionSet, table *CompositeTable) string {
	switch seg {
	case SegmentSize:
		return sizeSegment(cfg, sets)
	case SegmentLightOutput:
		return fieldCode(cfg, sets, types.FieldLightOutput)
	case SegmentColorTemperature:
		return fieldCode(cfg, sets, types.FieldColorTemperature)
	case SegmentMounting:
		return fieldCode(cfg, sets, types.FieldMounting)
	case SegmentDriver:
		return fieldCode(cfg, sets, types.FieldDriver)
	case SegmentAccessories:
		return accessorySegment(cfg, sets, table)
	case SegmentFrameColor:
		return fieldCode(cfg, sets, types.FieldFrameColor)
	}
	return ""
}

func fieldCode(cfg types.Configuration, sets types.OptionSet, field string) string {
	id := cfg.Get(field)
	if id == "" {
		return ""
	}
	if opt, ok := sets.ByID(field, atoi(id)); ok {
		return opt.SKUCode
	}
	return ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func itoa(n int) string { return strconv.Itoa(n) }
