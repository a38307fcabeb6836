package types

import "strings"

// FlatContext is the flattened configuration view the rules engine evaluates
// against: numeric ids per field plus derived *_sku_code string siblings.
// It is a closed schema - rule conditions can only address the enumerated
// keys below, never arbitrary nested objects.
type FlatContext struct {
	ProductLineID    int
	MirrorControlID  int
	MirrorStyleID    int
	LightDirectionID int
	FrameColorID     int
	FrameThicknessID int
	MountingID       int
	LightOutputID    int
	ColorTempID      int
	DriverID         int
	AccessoryIDs     []int

	ProductLineCode    string
	MirrorControlCode  string
	MirrorStyleCode    string
	LightDirectionCode string
	FrameColorCode     string
	FrameThicknessCode string
	MountingCode       string
	LightOutputCode    string
	ColorTempCode      string
	DriverCode         string

	Width  string
	Height string
}

// Lookup resolves a rule condition key against the context. Dotted paths
// are accepted as aliases for their underscored flattening, e.g.
// "product_line.sku_code" is the same key as "product_line_sku_code".
// Unset numeric fields (0) report ok=false so _empty conditions work.
func (c *FlatContext) Lookup(key string) (any, bool) {
	key = strings.ReplaceAll(key, ".", "_")
	switch key {
	case "product_line":
		return c.ProductLineID, c.ProductLineID != 0
	case "mirror_control":
		return c.MirrorControlID, c.MirrorControlID != 0
	case "mirror_style":
		return c.MirrorStyleID, c.MirrorStyleID != 0
	case "light_direction":
		return c.LightDirectionID, c.LightDirectionID != 0
	case "frame_color":
		return c.FrameColorID, c.FrameColorID != 0
	case "frame_thickness":
		return c.FrameThicknessID, c.FrameThicknessID != 0
	case "mounting":
		return c.MountingID, c.MountingID != 0
	case "light_output":
		return c.LightOutputID, c.LightOutputID != 0
	case "color_temperature":
		return c.ColorTempID, c.ColorTempID != 0
	case "driver":
		return c.DriverID, c.DriverID != 0
	case "accessories":
		return c.AccessoryIDs, len(c.AccessoryIDs) > 0
	case "product_line_sku_code":
		return c.ProductLineCode, c.ProductLineCode != ""
	case "mirror_control_sku_code":
		return c.MirrorControlCode, c.MirrorControlCode != ""
	case "mirror_style_sku_code":
		return c.MirrorStyleCode, c.MirrorStyleCode != ""
	case "light_direction_sku_code":
		return c.LightDirectionCode, c.LightDirectionCode != ""
	case "frame_color_sku_code":
		return c.FrameColorCode, c.FrameColorCode != ""
	case "frame_thickness_sku_code":
		return c.FrameThicknessCode, c.FrameThicknessCode != ""
	case "mounting_sku_code":
		return c.MountingCode, c.MountingCode != ""
	case "light_output_sku_code":
		return c.LightOutputCode, c.LightOutputCode != ""
	case "color_temperature_sku_code":
		return c.ColorTempCode, c.ColorTempCode != ""
	case "driver_sku_code":
		return c.DriverCode, c.DriverCode != ""
	case "width":
		return c.Width, c.Width != ""
	case "height":
		return c.Height, c.Height != ""
	}
	return nil, false
}

// SetID forces a field's numeric id, as applied by a rule's set-field action.
// Unknown fields are ignored.
func (c *FlatContext) SetID(field string, id int) {
	switch strings.ReplaceAll(field, ".", "_") {
	case "product_line":
		c.ProductLineID = id
	case "mirror_control":
		c.MirrorControlID = id
	case "mirror_style":
		c.MirrorStyleID = id
	case "light_direction":
		c.LightDirectionID = id
	case "frame_color":
		c.FrameColorID = id
	case "frame_thickness":
		c.FrameThicknessID = id
	case "mounting":
		c.MountingID = id
	case "light_output":
		c.LightOutputID = id
	case "color_temperature":
		c.ColorTempID = id
	case "driver":
		c.DriverID = id
	}
}

// FieldID reads a field's numeric id back out of the context.
func (c *FlatContext) FieldID(field string) int {
	v, _ := c.Lookup(field)
	if id, ok := v.(int); ok {
		return id
	}
	return 0
}
