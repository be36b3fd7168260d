package botapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/herbarium/florasync/internal/core/domain"
)

// TrefleClient talks to the Trefle-like provider. Auth is a
// query-string token; the budget is roughly 120 requests per minute.
type TrefleClient struct {
	*Client
	token string
}

// NewTrefleClient creates a Trefle client. Missing credentials are a
// fatal configuration error.
func NewTrefleClient(cfg Config, cache Cache, log *slog.Logger) (*TrefleClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("trefle: %w", ErrMissingAPIKey)
	}
	return &TrefleClient{
		Client: newClient(string(domain.SourceTrefle), cfg, cache, log),
		token:  cfg.APIKey,
	}, nil
}

// TreflePlantSummary is a search/list result entry.
type TreflePlantSummary struct {
	ID             int      `json:"id"`
	CommonName     string   `json:"common_name"`
	ScientificName string   `json:"scientific_name"`
	ImageURL       string   `json:"image_url"`
	Synonyms       []string `json:"synonyms"`
}

// TreflePlant is the raw detail shape.
type TreflePlant struct {
	ID             int      `json:"id"`
	CommonName     string   `json:"common_name"`
	ScientificName string   `json:"scientific_name"`
	Family         string   `json:"family"`
	Genus          string   `json:"genus"`
	Synonyms       []string `json:"synonyms"`
	ImageURL       string   `json:"image_url"`
	Edible         bool     `json:"edible"`
	Vegetable      bool     `json:"vegetable"`
	Toxicity       string   `json:"toxicity"`
	Distributions  struct {
		Native []string `json:"native"`
	} `json:"distributions"`
	Images []struct {
		ID  int    `json:"id"`
		URL string `json:"image_url"`
	} `json:"images"`
	Growth struct {
		Description string   `json:"description"`
		Sowing      string   `json:"sowing"`
		Light       string   `json:"light"`
		Soil        []string `json:"soil_texture"`
	} `json:"growth"`
}

type trefleDetailResponse struct {
	Data TreflePlant `json:"data"`
}

type trefleListResponse struct {
	Data []TreflePlantSummary `json:"data"`
}

// SearchPlants queries GET /plants/search.
func (c *TrefleClient) SearchPlants(ctx context.Context, q string) ([]TreflePlantSummary, error) {
	query := url.Values{}
	query.Set("q", q)
	query.Set("token", c.token)

	var resp trefleListResponse
	if err := c.getJSON(ctx, "/plants/search", query, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListPlants queries GET /plants with pagination.
func (c *TrefleClient) ListPlants(ctx context.Context, page, limit int) ([]TreflePlantSummary, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("token", c.token)

	var resp trefleListResponse
	if err := c.getJSON(ctx, "/plants", query, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetPlant queries GET /plants/{id}.
func (c *TrefleClient) GetPlant(ctx context.Context, id int) (*TreflePlant, error) {
	query := url.Values{}
	query.Set("token", c.token)

	var resp trefleDetailResponse
	if err := c.getJSON(ctx, "/plants/"+strconv.Itoa(id), query, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetPlantCached is GetPlant behind the response cache. The auth
// token stays out of the cache key.
func (c *TrefleClient) GetPlantCached(ctx context.Context, id int) (*TreflePlant, error) {
	query := url.Values{}
	query.Set("token", c.token)

	var resp trefleDetailResponse
	resource := "/plants/" + strconv.Itoa(id)
	if err := c.getJSONCached(ctx, resource, query, url.Values{}, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ExtractEnrichment maps the raw detail shape to the provider-agnostic
// payload. Missing optional fields become defaults instead of errors.
func (c *TrefleClient) ExtractEnrichment(p *TreflePlant) domain.EnrichmentPayload {
	payload := domain.EnrichmentPayload{
		Source:         domain.SourceTrefle,
		SourceID:       p.ID,
		CommonName:     orUnknown(p.CommonName),
		ScientificName: p.ScientificName,
		Family:         p.Family,
		Genus:          p.Genus,
		Origin:         []string{},
		Edible:         p.Edible,
		Toxicity:       orUnknown(p.Toxicity),
		Images:         []domain.Image{},
		SyncedAt:       time.Now(),
	}
	if len(p.Distributions.Native) > 0 {
		payload.Origin = append(payload.Origin, p.Distributions.Native...)
	}
	if p.ImageURL != "" {
		payload.Images = append(payload.Images, domain.Image{URL: p.ImageURL})
	}
	for _, img := range p.Images {
		payload.Images = append(payload.Images, domain.Image{
			URL:      img.URL,
			SourceID: strconv.Itoa(img.ID),
		})
	}

	cult := &domain.Cultivation{
		Sunlight: nil,
		Notes:    p.Growth.Description,
		Soil:     p.Growth.Soil,
	}
	if p.Growth.Light != "" {
		cult.Sunlight = []string{p.Growth.Light}
	}
	if p.Growth.Sowing != "" {
		if cult.Notes != "" {
			cult.Notes += " "
		}
		cult.Notes += "Sowing: " + p.Growth.Sowing
	}
	if !cult.Empty() {
		payload.Cultivation = cult
	}

	if raw, err := json.Marshal(p); err == nil {
		payload.Raw = raw
	}
	return payload
}

// orUnknown substitutes the documented default for absent strings.
func orUnknown(s string) string {
	if s == "" {
		return domain.Unknown
	}
	return s
}
