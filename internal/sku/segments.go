// Package sku converts configurations to and from dash-separated SKU
// strings and their URL query representations. Encode and Decode are pure;
// decode is best-effort and never fails on unrecognized input.
package sku

// Segment names, in canonical emission order after the core segment.
const (
	SegmentCore             = "core"
	SegmentSize             = "size"
	SegmentLightOutput      = "light_output"
	SegmentColorTemperature = "color_temperature"
	SegmentMounting         = "mounting"
	SegmentDriver           = "driver"
	SegmentAccessories      = "accessories"
	SegmentFrameColor       = "frame_color"
)

// segmentOrder is the fixed order of segments following the core. Empty
// segments are omitted from the encoded string, never emitted as empty
// dashes, so decode walks this order with a forward-only cursor.
var segmentOrder = []string{
	SegmentSize,
	SegmentLightOutput,
	SegmentColorTemperature,
	SegmentMounting,
	SegmentDriver,
	SegmentAccessories,
	SegmentFrameColor,
}
