package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/glowmirror/configurator/internal/availability"
	"github.com/glowmirror/configurator/internal/catalog"
	"github.com/glowmirror/configurator/internal/matching"
	"github.com/glowmirror/configurator/internal/rules"
	"github.com/glowmirror/configurator/internal/sku"
	"github.com/glowmirror/configurator/internal/types"
)

// Options configure the manager.
type Options struct {
	// PreferredLineName is used during initial line inference when the URL
	// names no product line.
	PreferredLineName string
	// Composites is the external accessory-combination table; nil means
	// plain concatenation.
	Composites *sku.CompositeTable
}

// Manager owns all sessions and runs the orchestration pipeline against the
// catalog cache.
type Manager struct {
	catalog *catalog.Cache
	opts    Options
	logger  zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager over a warmed (or warmable) cache.
func NewManager(cache *catalog.Cache, opts Options) *Manager {
	return &Manager{
		catalog:  cache,
		opts:     opts,
		logger:   log.With().Str("component", "session_manager").Logger(),
		sessions: make(map[string]*Session),
	}
}

// Get returns a session by id and marks it as recently used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch()
	}
	return s, ok
}

// Drop removes a session.
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		activeSessions.Dec()
	}
}

// NewSession performs the initial load: infer the product line from the
// incoming URL (search SKU prefix, then legacy pl code, then the configured
// preferred line name, then first available), build line defaults, merge
// whatever the URL decodes to, and run one full resolve pass so the session
// starts with a normalized canonical URL.
func (m *Manager) NewSession(ctx context.Context, rawURL string) (*Session, error) {
	lines, err := m.catalog.ProductLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("load product lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no product lines configured")
	}

	line := m.inferLine(rawURL, lines)
	sets, err := m.catalog.OptionSets(ctx, line.ID)
	if err != nil {
		return nil, fmt.Errorf("load option sets: %w", err)
	}

	s := &Session{
		ID:       uuid.NewString(),
		state:    StateLoading,
		line:     line,
		sets:     sets,
		lastUsed: time.Now(),
	}
	s.logger = log.With().Str("component", "session").Str("session_id", s.ID).Logger()
	s.config = defaultConfiguration(line, sets)

	if rawURL != "" {
		dec := sku.Decode(rawURL, sets, line, m.opts.Composites)
		mergeDecoded(&s.config, dec)
	}

	if err := m.recompute(ctx, s); err != nil {
		return nil, err
	}
	s.state = StateReady

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	activeSessions.Inc()

	s.logger.Info().Str("product_line", line.Name).Str("sku", s.encoded.SKU).Msg("session created")
	return s, nil
}

// inferLine picks the initial product line.
func (m *Manager) inferLine(rawURL string, lines []types.ProductLine) types.ProductLine {
	if skuStr, legacy := sku.ExtractSKU(rawURL); skuStr != "" {
		if line, ok := sku.InferProductLine(skuStr, lines); ok {
			return line
		}
	} else if legacy != nil {
		if pl := legacy.Get("pl"); pl != "" {
			for _, line := range lines {
				if matching.NormalizeCode(line.SKUCode) == matching.NormalizeCode(pl) {
					return line
				}
			}
		}
	}
	if m.opts.PreferredLineName != "" {
		want := matching.NormalizeName(m.opts.PreferredLineName)
		for _, line := range lines {
			if matching.NormalizeName(line.Name) == want {
				return line
			}
		}
	}
	return lines[0]
}

// HandleConfigChange is the sole mutation surface for field changes. The
// change is merged into the configuration and one full pipeline pass runs
// before the call returns; the session's URL afterwards reflects the
// corrected, canonical state.
func (m *Manager) HandleConfigChange(ctx context.Context, s *Session, field, value string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateMutating
	s.bump()
	prev := s.config.Clone()

	applyChange(&s.config, s.sets, field, value)

	if err := m.recompute(ctx, s); err != nil {
		// Collaborator failure: leave the configuration unchanged rather
		// than half-mutated.
		s.config = prev
		s.state = StateReady
		return s.snapshotLocked(), err
	}

	configChanges.WithLabelValues(field).Inc()
	s.state = StateReady
	return s.snapshotLocked(), nil
}

// HandleProductLineChange switches the session to a new product line,
// preserving every field whose selection has an equivalent (by id or sku
// code) in the new line's option sets and defaulting the rest.
func (m *Manager) HandleProductLineChange(ctx context.Context, s *Session, newLineID int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if atoi(s.config.ProductLineID) == newLineID {
		return s.snapshotLocked(), nil
	}

	lines, err := m.catalog.ProductLines(ctx)
	if err != nil {
		return s.snapshotLocked(), fmt.Errorf("load product lines: %w", err)
	}
	var newLine types.ProductLine
	found := false
	for _, line := range lines {
		if line.ID == newLineID {
			newLine = line
			found = true
			break
		}
	}
	if !found {
		return s.snapshotLocked(), fmt.Errorf("unknown product line %d", newLineID)
	}

	s.state = StateSwitchingLine
	v := s.bump()

	// Parse the previous URL's SKU so as much of the visible configuration
	// as possible survives the switch.
	prevDecoded := sku.Decode(s.queryURL, s.sets, s.line, m.opts.Composites)
	oldSets, oldCfg := s.sets, s.config.Clone()

	// The option-set fetch may suspend; drop the result if a newer change
	// won the race for this session.
	s.mu.Unlock()
	newSets, err := m.catalog.OptionSets(ctx, newLineID)
	s.mu.Lock()

	if s.version != v {
		staleRecomputes.Inc()
		return s.snapshotLocked(), nil
	}
	if err != nil {
		s.state = StateReady
		return s.snapshotLocked(), fmt.Errorf("load option sets: %w", err)
	}

	next := defaultConfiguration(newLine, newSets)
	for _, field := range types.ConfigurableFields {
		oldID := oldCfg.Get(field)
		if oldID == "" {
			if fromURL, ok := prevDecoded.Fields[field]; ok {
				oldID = fromURL
			}
		}
		if mapped, ok := remapOption(oldSets, newSets, field, oldID); ok {
			next.Set(field, mapped)
		}
	}
	next.Width, next.Height = oldCfg.Width, oldCfg.Height
	next.UseCustomSize = oldCfg.UseCustomSize
	next.Quantity = oldCfg.Quantity
	next.Accessories = remapAccessories(oldSets, newSets, oldCfg.Accessories)
	if sizeID, ok := remapOption(oldSets, newSets, types.FieldSize, oldCfg.SizeID); ok {
		next.SizeID = sizeID
	}

	s.line = newLine
	s.sets = newSets
	s.config = next

	if err := m.recompute(ctx, s); err != nil {
		s.state = StateReady
		return s.snapshotLocked(), err
	}

	lineSwitches.Inc()
	s.state = StateReady
	s.logger.Info().Str("product_line", newLine.Name).Str("sku", s.encoded.SKU).Msg("switched product line")
	return s.snapshotLocked(), nil
}

// ResetForQuote returns the configuration to the line's defaults, as the
// add-to-quote flow does after capturing the current selection.
func (m *Manager) ResetForQuote(ctx context.Context, s *Session) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bump()
	s.config = defaultConfiguration(s.line, s.sets)
	if err := m.recompute(ctx, s); err != nil {
		return s.snapshotLocked(), err
	}
	return s.snapshotLocked(), nil
}

// recompute runs the full synchronous pipeline: rules, availability,
// auto-correction, SKU, product match, URL. It converges in this single
// pass: auto-correction adjusts configuration fields directly and never
// re-triggers another rules/availability cycle.
func (m *Manager) recompute(ctx context.Context, s *Session) error {
	start := time.Now()
	defer func() { recomputeDuration.Observe(time.Since(start).Seconds()) }()

	compiled, err := m.catalog.CompiledRules(ctx)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	products, err := m.catalog.Products(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	flat := buildContext(s.config, s.sets, s.line)
	res := rules.Evaluate(flat, compiled)

	// Rule-forced fields land back in the configuration before availability
	// anchors are read.
	for _, field := range types.ConfigurableFields {
		if forced := res.Context.FieldID(field); forced != 0 && forced != atoi(s.config.Get(field)) {
			s.config.Set(field, strconv.Itoa(forced))
		}
	}

	anchors := availability.Anchors{
		MirrorStyleID:    atoi(s.config.MirrorStyleID),
		LightDirectionID: atoi(s.config.LightDirectionID),
		FrameThicknessID: atoi(s.config.FrameThicknessID),
	}
	s.avail = availability.Resolve(s.line.ID, anchors, products, s.sets, res.Constraints)

	autoCorrect(&s.config, s.avail, s.sets)

	s.encoded = sku.Encode(s.config, s.sets, s.line, res.Overrides, m.opts.Composites)
	s.queryURL = canonicalURL(s.encoded.SKU)

	criteria := matching.Criteria{
		ProductLineID:    s.line.ID,
		MirrorStyleID:    atoi(s.config.MirrorStyleID),
		LightDirectionID: atoi(s.config.LightDirectionID),
	}
	if ft := atoi(s.config.FrameThicknessID); ft != 0 {
		criteria.FrameThicknessID = &ft
	}
	s.product = matching.Match(criteria, products)
	if s.product == nil {
		noMatch.Inc()
	}
	return nil
}

// autoCorrect clamps every computed field to its availability set: an empty
// set clears the field, a set that no longer contains the selection replaces
// it with the first available option in option-set order. Fields whose
// availability has not been computed are left untouched. Running this twice
// on an already-corrected configuration is a no-op.
func autoCorrect(cfg *types.Configuration, avail types.AvailabilityMap, sets types.OptionSet) {
	for _, field := range types.ConfigurableFields {
		if !avail.Computed(field) {
			continue
		}
		ids := avail[field]
		if len(ids) == 0 {
			cfg.Set(field, "")
			continue
		}
		if avail.Has(field, atoi(cfg.Get(field))) {
			continue
		}
		// First available in option-set order, not by raw id, so correction
		// lands on the same default the option list presents first.
		for _, opt := range sets[field] {
			if avail.Has(field, opt.ID) {
				cfg.Set(field, strconv.Itoa(opt.ID))
				break
			}
		}
	}

	if avail.Computed(types.FieldAccessories) {
		kept := cfg.Accessories[:0]
		for _, id := range cfg.Accessories {
			if avail.Has(types.FieldAccessories, atoi(id)) {
				kept = append(kept, id)
			}
		}
		cfg.Accessories = kept
	}

	if avail.Computed(types.FieldSize) && cfg.SizeID != "" {
		if !avail.Has(types.FieldSize, atoi(cfg.SizeID)) {
			cfg.SizeID = ""
		}
	}
}

// applyChange merges one user change into the configuration. Width, height,
// quantity, custom-size mode and accessories have dedicated handling; all
// other fields are single-select option ids.
func applyChange(cfg *types.Configuration, sets types.OptionSet, field, value string) {
	switch field {
	case "width":
		cfg.Width = value
	case "height":
		cfg.Height = value
	case "quantity":
		if q := atoi(value); q > 0 {
			cfg.Quantity = q
		}
	case "use_custom_size":
		cfg.UseCustomSize = value == "true" || value == "1"
		if cfg.UseCustomSize {
			cfg.SizeID = ""
		}
	case types.FieldAccessories:
		// Toggle semantics: selecting an already-selected accessory removes it.
		if cfg.HasAccessory(value) {
			kept := cfg.Accessories[:0]
			for _, id := range cfg.Accessories {
				if id != value {
					kept = append(kept, id)
				}
			}
			cfg.Accessories = kept
		} else if value != "" {
			cfg.Accessories = append(cfg.Accessories, value)
		}
	case types.FieldSize:
		cfg.SizeID = value
		cfg.UseCustomSize = false
		if opt, ok := sets.ByID(types.FieldSize, atoi(value)); ok {
			cfg.Width = opt.Width
			cfg.Height = opt.Height
		}
	default:
		cfg.Set(field, value)
	}
}

// mergeDecoded lays decoded URL state over the defaults.
func mergeDecoded(cfg *types.Configuration, dec sku.Decoded) {
	for field, id := range dec.Fields {
		cfg.Set(field, id)
	}
	if dec.Width != "" {
		cfg.Width = dec.Width
	}
	if dec.Height != "" {
		cfg.Height = dec.Height
	}
	if dec.SizeID != "" {
		cfg.SizeID = dec.SizeID
		cfg.UseCustomSize = false
	} else if dec.Width != "" || dec.Height != "" {
		cfg.SizeID = ""
		cfg.UseCustomSize = true
	}
	if dec.Accessories != nil {
		cfg.Accessories = dec.Accessories
	}
}

// remapAccessories keeps accessories that exist in the new line by id or code.
func remapAccessories(oldSets, newSets types.OptionSet, selected []string) []string {
	out := []string{}
	for _, id := range selected {
		if mapped, ok := remapOption(oldSets, newSets, types.FieldAccessories, id); ok {
			out = append(out, mapped)
		}
	}
	return out
}
