// Package session is the configuration orchestrator: the control loop that,
// on every user change, recomputes rule context, availability, corrections,
// SKU and matched product, and keeps the shareable URL in sync. The session
// owns the single mutable Configuration; every pipeline stage is called with
// snapshots and returns new values.
package session

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/glowmirror/configurator/internal/matching"
	"github.com/glowmirror/configurator/internal/sku"
	"github.com/glowmirror/configurator/internal/types"
)

// Session holds one user's configurator state. All mutation goes through
// HandleConfigChange / HandleProductLineChange on the Manager; reads take a
// Snapshot. Changes are serialized by the mutex; the version counter guards
// against committing results of a superseded recompute.
type Session struct {
	ID string

	mu       sync.Mutex
	version  uint64
	state    State
	lastUsed time.Time

	line     types.ProductLine
	sets     types.OptionSet
	config   types.Configuration
	avail    types.AvailabilityMap
	encoded  sku.EncodedSKU
	product  *types.Product
	queryURL string

	logger zerolog.Logger
}

// Snapshot is the read model exposed to the UI collaborator.
type Snapshot struct {
	SessionID     string                `json:"sessionId"`
	State         string                `json:"state"`
	ProductLine   types.ProductLine     `json:"productLine"`
	Configuration types.Configuration   `json:"configuration"`
	Availability  types.AvailabilityMap `json:"availability"`
	SKU           string                `json:"sku"`
	Parts         map[string]string     `json:"parts"`
	Product       *types.Product        `json:"product"`
	URL           string                `json:"url"`
}

// Snapshot returns a consistent copy of the session's current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	var product *types.Product
	if s.product != nil {
		p := *s.product
		product = &p
	}
	return Snapshot{
		SessionID:     s.ID,
		State:         s.state.String(),
		ProductLine:   s.line,
		Configuration: s.config.Clone(),
		Availability:  s.avail.Clone(),
		SKU:           s.encoded.SKU,
		Parts:         s.encoded.Parts,
		Product:       product,
		URL:           s.queryURL,
	}
}

// bump advances the session version and returns the new value. Callers that
// suspend (catalog fetches) re-check the version before committing.
func (s *Session) bump() uint64 {
	s.version++
	s.lastUsed = time.Now()
	return s.version
}

// touch records activity for idle expiry.
func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

// idleSince reports the last activity time.
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// canonicalURL renders the normalized shareable query string. The session
// always holds exactly one canonical URL; callers replace, never push.
func canonicalURL(skuStr string) string {
	if skuStr == "" {
		return ""
	}
	return "?search=" + url.QueryEscape(skuStr)
}

// defaultConfiguration builds the first-available default configuration for
// a product line: first option of every field in option-set order, the first
// size preset's dimensions, quantity 1.
func defaultConfiguration(line types.ProductLine, sets types.OptionSet) types.Configuration {
	cfg := types.Configuration{
		ProductLineID: strconv.Itoa(line.ID),
		Quantity:      1,
		Accessories:   []string{},
	}
	for _, field := range types.ConfigurableFields {
		if def, ok := lineDefault(line, sets, field); ok {
			cfg.Set(field, strconv.Itoa(def.ID))
		}
	}
	if size, ok := firstSizeDefault(line, sets); ok {
		cfg.SizeID = strconv.Itoa(size.ID)
		cfg.Width = size.Width
		cfg.Height = size.Height
	}
	return cfg
}

// lineDefault prefers the line's declared default option when it still
// exists in the option set, falling back to the first option.
func lineDefault(line types.ProductLine, sets types.OptionSet, field string) (types.Option, bool) {
	if id, ok := line.Defaults[field]; ok {
		if opt, found := sets.ByID(field, id); found {
			return opt, true
		}
	}
	return sets.First(field)
}

func firstSizeDefault(line types.ProductLine, sets types.OptionSet) (types.Option, bool) {
	if id, ok := line.Defaults[types.FieldSize]; ok {
		if opt, found := sets.ByID(types.FieldSize, id); found {
			return opt, true
		}
	}
	return sets.First(types.FieldSize)
}

// buildContext flattens the configuration into the rules-engine context:
// numeric ids plus their *_sku_code string siblings.
func buildContext(cfg types.Configuration, sets types.OptionSet, line types.ProductLine) types.FlatContext {
	ctx := types.FlatContext{
		ProductLineID:   line.ID,
		ProductLineCode: line.SKUCode,
		Width:           cfg.Width,
		Height:          cfg.Height,
	}
	for _, field := range types.ConfigurableFields {
		id := atoi(cfg.Get(field))
		if id == 0 {
			continue
		}
		ctx.SetID(field, id)
		if opt, ok := sets.ByID(field, id); ok {
			setContextCode(&ctx, field, opt.SKUCode)
		}
	}
	for _, acc := range cfg.Accessories {
		if id := atoi(acc); id != 0 {
			ctx.AccessoryIDs = append(ctx.AccessoryIDs, id)
		}
	}
	return ctx
}

func setContextCode(ctx *types.FlatContext, field, code string) {
	switch field {
	case types.FieldMirrorControl:
		ctx.MirrorControlCode = code
	case types.FieldMirrorStyle:
		ctx.MirrorStyleCode = code
	case types.FieldLightDirection:
		ctx.LightDirectionCode = code
	case types.FieldFrameColor:
		ctx.FrameColorCode = code
	case types.FieldFrameThickness:
		ctx.FrameThicknessCode = code
	case types.FieldMounting:
		ctx.MountingCode = code
	case types.FieldLightOutput:
		ctx.LightOutputCode = code
	case types.FieldColorTemperature:
		ctx.ColorTempCode = code
	case types.FieldDriver:
		ctx.DriverCode = code
	}
}

// remapOption carries one field's selection onto a new product line: keep
// the id when the new set has it, otherwise match by sku code
// (case/diacritic-insensitive), otherwise report no equivalent.
func remapOption(oldSets, newSets types.OptionSet, field, oldID string) (string, bool) {
	id := atoi(oldID)
	if id == 0 {
		return "", false
	}
	if _, ok := newSets.ByID(field, id); ok {
		return oldID, true
	}
	oldOpt, ok := oldSets.ByID(field, id)
	if !ok {
		return "", false
	}
	code := matching.NormalizeCode(oldOpt.SKUCode)
	if code == "" {
		return "", false
	}
	for _, opt := range newSets[field] {
		if matching.NormalizeCode(opt.SKUCode) == code {
			return strconv.Itoa(opt.ID), true
		}
	}
	// Last resort: equivalent by normalized name.
	name := matching.NormalizeName(oldOpt.Name)
	for _, opt := range newSets[field] {
		if matching.NormalizeName(opt.Name) == name {
			return strconv.Itoa(opt.ID), true
		}
	}
	return "", false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
