// Package availability derives, per configurable field, the set of option
// ids actually realizable given the product catalog, the anchor selections
// and the rule constraints. The resolver is pure over its inputs: identical
// inputs always produce an identical map, which the orchestrator relies on
// for one-pass convergence.
package availability

import (
	"sort"

	"github.com/glowmirror/configurator/internal/matching"
	"github.com/glowmirror/configurator/internal/rules"
	"github.com/glowmirror/configurator/internal/types"
)

// Anchors are the selections that scope which catalog products count as
// candidates. A zero value means "not anchored" and matches any product.
type Anchors struct {
	MirrorStyleID    int
	LightDirectionID int
	FrameThicknessID int
}

// productFields are the fields whose base availability comes from scanning
// product attributes rather than the option set.
var productFields = []string{
	types.FieldMirrorStyle,
	types.FieldLightDirection,
	types.FieldFrameThickness,
}

// Resolve computes the availability map for one product line.
//
// Product-derived fields (mirror style, light direction, frame thickness)
// take the union of attribute values across candidate products; each field's
// own anchor is excluded from its candidate filter so a selection never
// restricts its own field to itself. Zero candidates yield an explicit empty
// set. All other fields start from the full option set. Rule constraints are
// then intersected, and mounting availability is re-derived from image-asset
// presence, overriding the generic result for that field only.
func Resolve(lineID int, anchors Anchors, products []types.Product, sets types.OptionSet, constraints rules.Constraints) types.AvailabilityMap {
	avail := make(types.AvailabilityMap)

	for _, field := range productFields {
		avail[field] = scanField(lineID, anchors, products, field)
	}

	// Products only declare style/direction/thickness; every other field's
	// base universe is its option set.
	for field := range sets {
		if _, done := avail[field]; done {
			continue
		}
		avail[field] = sortedIDs(sets.IDs(field))
	}

	for field, con := range constraints {
		base, ok := avail[field]
		if !ok {
			continue
		}
		avail[field] = applyConstraint(base, con)
	}

	avail[types.FieldMounting] = deriveMounting(lineID, anchors, products, sets, constraints)
	return avail
}

// scanField unions a product attribute across all candidates, anchoring on
// every anchor except the field's own.
func scanField(lineID int, anchors Anchors, products []types.Product, field string) []int {
	loo := anchors
	switch field {
	case types.FieldMirrorStyle:
		loo.MirrorStyleID = 0
	case types.FieldLightDirection:
		loo.LightDirectionID = 0
	case types.FieldFrameThickness:
		loo.FrameThicknessID = 0
	}

	seen := make(map[int]bool)
	for _, p := range products {
		if !candidate(p, lineID, loo) {
			continue
		}
		switch field {
		case types.FieldMirrorStyle:
			seen[p.MirrorStyleID] = true
		case types.FieldLightDirection:
			seen[p.LightDirectionID] = true
		case types.FieldFrameThickness:
			if p.FrameThicknessID != nil {
				seen[*p.FrameThicknessID] = true
			}
		}
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func candidate(p types.Product, lineID int, anchors Anchors) bool {
	if p.ProductLineID != lineID {
		return false
	}
	if anchors.MirrorStyleID != 0 && p.MirrorStyleID != anchors.MirrorStyleID {
		return false
	}
	if anchors.LightDirectionID != 0 && p.LightDirectionID != anchors.LightDirectionID {
		return false
	}
	if anchors.FrameThicknessID != 0 {
		if p.FrameThicknessID == nil || *p.FrameThicknessID != anchors.FrameThicknessID {
			return false
		}
	}
	return true
}

func applyConstraint(base []int, con rules.FieldConstraint) []int {
	out := make([]int, 0, len(base))
	for _, id := range base {
		if con.AllowSet && !contains(con.Allow, id) {
			continue
		}
		if contains(con.Deny, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// deriveMounting synthesizes mounting availability from which image assets
// exist on candidate products: no vertical asset in the whole candidate set
// means the vertical mounting option is not offered, regardless of what the
// option set says. Orientation is read off the option name; options that
// name neither orientation pass through unrestricted.
func deriveMounting(lineID int, anchors Anchors, products []types.Product, sets types.OptionSet, constraints rules.Constraints) []int {
	hasVertical, hasHorizontal := false, false
	any := false
	for _, p := range products {
		if !candidate(p, lineID, anchors) {
			continue
		}
		any = true
		if p.HasVerticalImage() {
			hasVertical = true
		}
		if p.HasHorizontalImage() {
			hasHorizontal = true
		}
	}
	if !any {
		return []int{}
	}

	ids := make([]int, 0, len(sets[types.FieldMounting]))
	for _, opt := range sets[types.FieldMounting] {
		switch matching.Orientation(opt.Name) {
		case matching.OrientationVertical:
			if !hasVertical {
				continue
			}
		case matching.OrientationHorizontal:
			if !hasHorizontal {
				continue
			}
		}
		ids = append(ids, opt.ID)
	}

	if con, ok := constraints[types.FieldMounting]; ok {
		ids = applyConstraint(ids, con)
	}
	sort.Ints(ids)
	return ids
}

func sortedIDs(ids []int) []int {
	out := append([]int(nil), ids...)
	sort.Ints(out)
	return out
}

func contains(list []int, id int) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
