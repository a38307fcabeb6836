package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glowmirror/configurator/internal/rules"
	"github.com/glowmirror/configurator/internal/types"
)

func thicknessPtr(n int) *int { return &n }

func testProducts() []types.Product {
	return []types.Product{
		{ID: 1, ProductLineID: 1, MirrorStyleID: 1, LightDirectionID: 1, FrameThicknessID: thicknessPtr(10), VerticalImage: "v1.webp", HorizontalImage: "h1.webp"},
		{ID: 2, ProductLineID: 1, MirrorStyleID: 1, LightDirectionID: 2, FrameThicknessID: thicknessPtr(10), VerticalImage: "v2.webp"},
		{ID: 3, ProductLineID: 1, MirrorStyleID: 2, LightDirectionID: 1, FrameThicknessID: thicknessPtr(11), HorizontalImage: "h3.webp"},
		{ID: 4, ProductLineID: 2, MirrorStyleID: 3, LightDirectionID: 3, FrameThicknessID: thicknessPtr(12)},
	}
}

func testSets() types.OptionSet {
	return types.OptionSet{
		types.FieldMirrorStyle: {
			{ID: 1, Name: "Full Frame", SKUCode: "01"},
			{ID: 2, Name: "Double Border", SKUCode: "02"},
		},
		types.FieldLightDirection: {
			{ID: 1, Name: "Direct", SKUCode: "D"},
			{ID: 2, Name: "Indirect", SKUCode: "I"},
		},
		types.FieldFrameThickness: {
			{ID: 10, Name: "Thin", SKUCode: "T"},
			{ID: 11, Name: "Wide", SKUCode: "W"},
		},
		types.FieldMounting: {
			{ID: 20, Name: "Vertical", SKUCode: "P"},
			{ID: 21, Name: "Horizontal", SKUCode: "L"},
		},
		types.FieldFrameColor: {
			{ID: 30, Name: "Black", SKUCode: "BF"},
			{ID: 31, Name: "Gold", SKUCode: "GF"},
		},
	}
}

func TestResolve_Unanchored(t *testing.T) {
	avail := Resolve(1, Anchors{}, testProducts(), testSets(), nil)

	assert.Equal(t, []int{1, 2}, avail[types.FieldMirrorStyle])
	assert.Equal(t, []int{1, 2}, avail[types.FieldLightDirection])
	assert.Equal(t, []int{10, 11}, avail[types.FieldFrameThickness])
	// Option-set fields pass through untouched.
	assert.Equal(t, []int{30, 31}, avail[types.FieldFrameColor])
	// Both orientations have assets somewhere in the line.
	assert.Equal(t, []int{20, 21}, avail[types.FieldMounting])
}

func TestResolve_AnchorDoesNotRestrictOwnField(t *testing.T) {
	// Anchoring on style 1 must not collapse style availability to {1}.
	avail := Resolve(1, Anchors{MirrorStyleID: 1}, testProducts(), testSets(), nil)

	assert.Equal(t, []int{1, 2}, avail[types.FieldMirrorStyle])
	// But it does restrict the other product fields.
	assert.Equal(t, []int{1, 2}, avail[types.FieldLightDirection])
	assert.Equal(t, []int{10}, avail[types.FieldFrameThickness])
}

func TestResolve_CrossAnchorNarrowing(t *testing.T) {
	avail := Resolve(1, Anchors{MirrorStyleID: 2}, testProducts(), testSets(), nil)

	assert.Equal(t, []int{1}, avail[types.FieldLightDirection])
	assert.Equal(t, []int{11}, avail[types.FieldFrameThickness])
}

func TestResolve_ZeroCandidatesYieldExplicitEmptySets(t *testing.T) {
	// Style 2 never occurs with direction 2 in line 1.
	avail := Resolve(1, Anchors{MirrorStyleID: 2, LightDirectionID: 2}, testProducts(), testSets(), nil)

	assert.True(t, avail.Computed(types.FieldFrameThickness))
	assert.Empty(t, avail[types.FieldFrameThickness])
	assert.True(t, avail.Computed(types.FieldMounting))
	assert.Empty(t, avail[types.FieldMounting])
}

func TestResolve_MountingFollowsImageAssets(t *testing.T) {
	// Style 2 candidates only carry a horizontal asset.
	avail := Resolve(1, Anchors{MirrorStyleID: 2}, testProducts(), testSets(), nil)
	assert.Equal(t, []int{21}, avail[types.FieldMounting])

	// Style 1 with direction 2 only carries a vertical asset.
	avail = Resolve(1, Anchors{MirrorStyleID: 1, LightDirectionID: 2}, testProducts(), testSets(), nil)
	assert.Equal(t, []int{20}, avail[types.FieldMounting])
}

func TestResolve_MountingIgnoresUnrecognizedNames(t *testing.T) {
	sets := testSets()
	sets[types.FieldMounting] = append(sets[types.FieldMounting], types.Option{ID: 22, Name: "Recessed", SKUCode: "R"})

	// Candidates with only horizontal assets still offer the neutral option.
	avail := Resolve(1, Anchors{MirrorStyleID: 2}, testProducts(), sets, nil)
	assert.Equal(t, []int{21, 22}, avail[types.FieldMounting])
}

func TestResolve_Constraints(t *testing.T) {
	constraints := rules.Constraints{
		types.FieldFrameColor: {Allow: []int{30}, AllowSet: true},
		types.FieldMirrorStyle: {Deny: []int{2}},
		types.FieldMounting: {Deny: []int{20}},
	}

	avail := Resolve(1, Anchors{}, testProducts(), testSets(), constraints)

	assert.Equal(t, []int{30}, avail[types.FieldFrameColor])
	assert.Equal(t, []int{1}, avail[types.FieldMirrorStyle])
	assert.Equal(t, []int{21}, avail[types.FieldMounting])
}

func TestResolve_EmptyAllowListClearsField(t *testing.T) {
	constraints := rules.Constraints{
		types.FieldFrameColor: {Allow: []int{}, AllowSet: true},
	}

	avail := Resolve(1, Anchors{}, testProducts(), testSets(), constraints)

	assert.True(t, avail.Computed(types.FieldFrameColor))
	assert.Empty(t, avail[types.FieldFrameColor])
}

func TestResolve_Deterministic(t *testing.T) {
	anchors := Anchors{MirrorStyleID: 1}
	first := Resolve(1, anchors, testProducts(), testSets(), nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve(1, anchors, testProducts(), testSets(), nil))
	}
}
