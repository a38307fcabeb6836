// Package matching selects the single catalog product that realizes a set
// of attribute criteria, plus the name/code normalization helpers used when
// remapping selections across product lines.
package matching

import (
	"sort"

	"github.com/glowmirror/configurator/internal/types"
)

// Criteria identifies a product by its attribute values. FrameThicknessID
// is optional: product lines without a frame-thickness concept leave it nil
// and it is not filtered on.
type Criteria struct {
	ProductLineID    int
	MirrorStyleID    int
	LightDirectionID int
	FrameThicknessID *int
}

// Match filters the catalog to products matching the criteria and picks the
// single best candidate. Returns nil when nothing matches; "no product
// matched" is an expected outcome, not an error.
//
// Tie-break between remaining candidates is deterministic: prefer the most
// complete image set (both orientations beat one beats none), then lowest
// numeric id.
func Match(criteria Criteria, products []types.Product) *types.Product {
	var candidates []types.Product
	for _, p := range products {
		if p.ProductLineID != criteria.ProductLineID {
			continue
		}
		if p.MirrorStyleID != criteria.MirrorStyleID {
			continue
		}
		if p.LightDirectionID != criteria.LightDirectionID {
			continue
		}
		if criteria.FrameThicknessID != nil {
			if p.FrameThicknessID == nil || *p.FrameThicknessID != *criteria.FrameThicknessID {
				continue
			}
		}
		candidates = append(candidates, p)
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i].ImageCompleteness(), candidates[j].ImageCompleteness()
		if ci != cj {
			return ci > cj
		}
		return candidates[i].ID < candidates[j].ID
	})

	best := candidates[0]
	return &best
}
