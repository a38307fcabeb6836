package types

import "encoding/json"

// ProductLine groups option sets and carries the SKU prefix used for the
// core segment. Selecting a product line resets the configuration to that
// line's defaults.
type ProductLine struct {
	ID       int            `json:"id"`
	Name     string         `json:"name"`
	SKUCode  string         `json:"sku_code"`
	Defaults map[string]int `json:"default_options,omitempty"`
}

// Product is a concrete catalog entity with fixed attribute values.
// Products are read-only ground truth for availability resolution and
// product matching.
type Product struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	ProductLineID    int      `json:"product_line"`
	MirrorStyleID    int      `json:"mirror_style"`
	LightDirectionID int      `json:"light_direction"`
	FrameThicknessID *int     `json:"frame_thickness,omitempty"`
	VerticalImage    string   `json:"vertical_image,omitempty"`
	HorizontalImage  string   `json:"horizontal_image,omitempty"`
	AdditionalImages []string `json:"additional_images,omitempty"`
}

// HasVerticalImage reports whether the product carries a portrait asset.
func (p Product) HasVerticalImage() bool { return p.VerticalImage != "" }

// HasHorizontalImage reports whether the product carries a landscape asset.
func (p Product) HasHorizontalImage() bool { return p.HorizontalImage != "" }

// ImageCompleteness scores the product's image set: both orientations = 2,
// one = 1, none = 0. Used as the matcher's first tie-break.
func (p Product) ImageCompleteness() int {
	n := 0
	if p.HasVerticalImage() {
		n++
	}
	if p.HasHorizontalImage() {
		n++
	}
	return n
}

// Rule is a declarative condition/action rule as fetched from the CMS.
// IfThis is a filter-style predicate tree, ThenThat the action payload;
// both stay raw until compiled by the rules engine.
type Rule struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Priority *int            `json:"priority,omitempty"`
	IfThis   json.RawMessage `json:"if_this"`
	ThenThat json.RawMessage `json:"then_that"`
}
