package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/glowmirror/configurator/internal/httpx"
	"github.com/glowmirror/configurator/internal/types"
)

// DirectusSource reads catalog collections from a Directus instance's
// /items REST endpoints.
type DirectusSource struct {
	baseURL string
	token   string
	client  *httpx.Client
	logger  zerolog.Logger
}

// NewDirectusSource creates a source for the given Directus base URL. The
// token may be empty for public-read collections.
func NewDirectusSource(baseURL, token string, client *httpx.Client) *DirectusSource {
	if client == nil {
		client = httpx.NewClientDefault()
	}
	return &DirectusSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
		logger:  log.With().Str("component", "directus_source").Logger(),
	}
}

// itemsEnvelope is the Directus response wrapper.
type itemsEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// ProductLines fetches all product lines.
func (s *DirectusSource) ProductLines(ctx context.Context) ([]types.ProductLine, error) {
	var lines []types.ProductLine
	if err := s.fetchItems(ctx, "product_lines", nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Products fetches the full product catalog.
func (s *DirectusSource) Products(ctx context.Context) ([]types.Product, error) {
	var products []types.Product
	if err := s.fetchItems(ctx, "products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Rules fetches all rules, already sorted by priority by the CMS; missing
// priorities sort last on our side regardless.
func (s *DirectusSource) Rules(ctx context.Context) ([]types.Rule, error) {
	var rules []types.Rule
	params := url.Values{"sort": {"priority"}}
	if err := s.fetchItems(ctx, "rules", params, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// OptionSets fetches every option collection for one product line.
func (s *DirectusSource) OptionSets(ctx context.Context, productLineID int) (types.OptionSet, error) {
	sets := make(types.OptionSet, len(optionCollections))
	for field, collection := range optionCollections {
		params := url.Values{"filter[product_line][_eq]": {strconv.Itoa(productLineID)}}
		var options []types.Option
		if err := s.fetchItems(ctx, collection, params, &options); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", collection, err)
		}
		sets[field] = options
	}
	return sets, nil
}

func (s *DirectusSource) fetchItems(ctx context.Context, collection string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("limit", "-1")
	endpoint := fmt.Sprintf("%s/items/%s?%s", s.baseURL, collection, params.Encode())

	headers := map[string]string{}
	if s.token != "" {
		headers["Authorization"] = "Bearer " + s.token
	}

	resp, err := s.client.Get(ctx, endpoint, headers)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", collection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", collection, err)
	}

	var envelope itemsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode %s envelope: %w", collection, err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode %s items: %w", collection, err)
	}

	s.logger.Debug().Str("collection", collection).Msg("fetched collection")
	return nil
}
