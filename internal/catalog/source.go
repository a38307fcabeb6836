// Package catalog is the boundary to the external CMS/Supabase collaborators:
// a Source abstraction over where option data lives, plus an explicitly
// owned cache with invalidate/reload semantics so "fetch once" is a property
// of an object the server holds, not hidden module state.
package catalog

import (
	"context"

	"github.com/glowmirror/configurator/internal/types"
)

// Collection names for each option field, as they exist in the CMS.
var optionCollections = map[string]string{
	types.FieldMirrorControl:    "mirror_controls",
	types.FieldMirrorStyle:      "mirror_styles",
	types.FieldLightDirection:   "light_directions",
	types.FieldFrameColor:       "frame_colors",
	types.FieldFrameThickness:   "frame_thicknesses",
	types.FieldMounting:         "mounting_options",
	types.FieldLightOutput:      "light_outputs",
	types.FieldColorTemperature: "color_temperatures",
	types.FieldDriver:           "drivers",
	types.FieldAccessories:      "accessories",
	types.FieldSize:             "sizes",
}

// Source fetches catalog collections. Implementations: DirectusSource
// (CMS REST API) and PostgresSource (Supabase schema via pgx).
type Source interface {
	ProductLines(ctx context.Context) ([]types.ProductLine, error)
	Products(ctx context.Context) ([]types.Product, error)
	Rules(ctx context.Context) ([]types.Rule, error)
	OptionSets(ctx context.Context, productLineID int) (types.OptionSet, error)
}
