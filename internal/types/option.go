package types

// Field keys for every configurable field. These form a closed schema:
// the rules engine, availability resolver and SKU codec only ever address
// fields through these keys.
const (
	FieldMirrorControl    = "mirror_control"
	FieldMirrorStyle      = "mirror_style"
	FieldLightDirection   = "light_direction"
	FieldFrameColor       = "frame_color"
	FieldFrameThickness   = "frame_thickness"
	FieldMounting         = "mounting"
	FieldLightOutput      = "light_output"
	FieldColorTemperature = "color_temperature"
	FieldDriver           = "driver"
	FieldAccessories      = "accessories"
	FieldSize             = "size"
)

// ConfigurableFields lists all single-select fields in stable order.
// Accessories and size are handled separately (multi-select and
// width/height-backed respectively).
var ConfigurableFields = []string{
	FieldMirrorControl,
	FieldMirrorStyle,
	FieldLightDirection,
	FieldFrameColor,
	FieldFrameThickness,
	FieldMounting,
	FieldLightOutput,
	FieldColorTemperature,
	FieldDriver,
}

// Option is one selectable value within a field's option set.
// Options are immutable snapshots fetched per product line; the core only
// filters and selects them, never mutates them.
type Option struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	SKUCode     string `json:"sku_code"`
	Description string `json:"description,omitempty"`
	HexCode     string `json:"hex_code,omitempty"`
	Width       string `json:"width,omitempty"`
	Height      string `json:"height,omitempty"`
}

// OptionSet maps a field key to its ordered sequence of options.
// Loaded once per product line, re-loaded on product-line switch.
type OptionSet map[string][]Option

// ByID returns the option with the given id for a field.
func (s OptionSet) ByID(field string, id int) (Option, bool) {
	for _, opt := range s[field] {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// BySKUCode returns the first option whose sku_code matches (case-insensitive).
func (s OptionSet) BySKUCode(field, code string) (Option, bool) {
	for _, opt := range s[field] {
		if equalFold(opt.SKUCode, code) {
			return opt, true
		}
	}
	return Option{}, false
}

// First returns the first option of a field, in option-set order.
func (s OptionSet) First(field string) (Option, bool) {
	opts := s[field]
	if len(opts) == 0 {
		return Option{}, false
	}
	return opts[0], true
}

// IDs returns the ids of a field's options in option-set order.
func (s OptionSet) IDs(field string) []int {
	opts := s[field]
	ids := make([]int, 0, len(opts))
	for _, opt := range opts {
		ids = append(ids, opt.ID)
	}
	return ids
}

// equalFold is an ASCII case-insensitive compare. SKU codes are ASCII.
func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
