package botapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/herbarium/florasync/internal/core/domain"
)

// PerenualClient talks to the Perenual-like provider. Auth is a
// query-string key; the budget is roughly 60 requests per minute.
type PerenualClient struct {
	*Client
	key string
}

// NewPerenualClient creates a Perenual client. Missing credentials
// are a fatal configuration error.
func NewPerenualClient(cfg Config, cache Cache, log *slog.Logger) (*PerenualClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("perenual: %w", ErrMissingAPIKey)
	}
	return &PerenualClient{
		Client: newClient(string(domain.SourcePerenual), cfg, cache, log),
		key:    cfg.APIKey,
	}, nil
}

// PerenualSpecies is the raw species shape. The list and detail
// endpoints share it; the detail endpoint fills more fields.
type PerenualSpecies struct {
	ID             int      `json:"id"`
	CommonName     string   `json:"common_name"`
	ScientificName []string `json:"scientific_name"`
	OtherName      []string `json:"other_name"`
	Family         string   `json:"family"`
	Genus          string   `json:"genus"`
	Origin         []string `json:"origin"`
	Cycle          string   `json:"cycle"`
	Watering       string   `json:"watering"`
	Sunlight       []string `json:"sunlight"`
	Hardiness      struct {
		Min string `json:"min"`
		Max string `json:"max"`
	} `json:"hardiness"`
	PoisonousToHumans  int      `json:"poisonous_to_humans"`
	PoisonousToPets    int      `json:"poisonous_to_pets"`
	EdibleFruit        bool     `json:"edible_fruit"`
	EdibleLeaf         bool     `json:"edible_leaf"`
	Medicinal          bool     `json:"medicinal"`
	CareGuides         string   `json:"care-guides"`
	PestSusceptibility []string `json:"pest_susceptibility"`
	DefaultImage       *struct {
		OriginalURL string `json:"original_url"`
	} `json:"default_image"`
}

type perenualListResponse struct {
	Data []PerenualSpecies `json:"data"`
}

// ListSpecies queries GET /species-list with pagination.
func (c *PerenualClient) ListSpecies(ctx context.Context, page, perPage int) ([]PerenualSpecies, error) {
	query := url.Values{}
	query.Set("key", c.key)
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	var resp perenualListResponse
	if err := c.getJSON(ctx, "/species-list", query, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetSpeciesDetails queries GET /species/details/{id}.
func (c *PerenualClient) GetSpeciesDetails(ctx context.Context, id int) (*PerenualSpecies, error) {
	query := url.Values{}
	query.Set("key", c.key)

	var species PerenualSpecies
	if err := c.getJSON(ctx, "/species/details/"+strconv.Itoa(id), query, &species); err != nil {
		return nil, err
	}
	return &species, nil
}

// GetSpeciesDetailsCached is GetSpeciesDetails behind the response
// cache. The auth key stays out of the cache key.
func (c *PerenualClient) GetSpeciesDetailsCached(ctx context.Context, id int) (*PerenualSpecies, error) {
	query := url.Values{}
	query.Set("key", c.key)

	var species PerenualSpecies
	resource := "/species/details/" + strconv.Itoa(id)
	if err := c.getJSONCached(ctx, resource, query, url.Values{}, &species); err != nil {
		return nil, err
	}
	return &species, nil
}

// ExtractEnrichment maps the raw species shape to the
// provider-agnostic payload. Missing optional fields become defaults
// instead of errors.
func (c *PerenualClient) ExtractEnrichment(s *PerenualSpecies) domain.EnrichmentPayload {
	payload := domain.EnrichmentPayload{
		Source:     domain.SourcePerenual,
		SourceID:   s.ID,
		CommonName: orUnknown(s.CommonName),
		Family:     s.Family,
		Genus:      s.Genus,
		Origin:     []string{},
		Medicinal:  s.Medicinal,
		Edible:     s.EdibleFruit || s.EdibleLeaf,
		Toxicity:   perenualToxicity(s),
		Images:     []domain.Image{},
		SyncedAt:   time.Now(),
	}
	if len(s.ScientificName) > 0 {
		payload.ScientificName = s.ScientificName[0]
	}
	payload.Origin = append(payload.Origin, s.Origin...)
	if s.DefaultImage != nil && s.DefaultImage.OriginalURL != "" {
		payload.Images = append(payload.Images, domain.Image{URL: s.DefaultImage.OriginalURL})
	}

	cult := &domain.Cultivation{
		Sunlight: s.Sunlight,
		Watering: s.Watering,
		Cycle:    s.Cycle,
		Notes:    s.CareGuides,
	}
	switch {
	case s.Hardiness.Min != "" && s.Hardiness.Max != "" && s.Hardiness.Min != s.Hardiness.Max:
		cult.HardinessZone = s.Hardiness.Min + "-" + s.Hardiness.Max
	case s.Hardiness.Min != "":
		cult.HardinessZone = s.Hardiness.Min
	case s.Hardiness.Max != "":
		cult.HardinessZone = s.Hardiness.Max
	}
	if len(s.PestSusceptibility) > 0 {
		cult.PestManagement = "Susceptible to: " + strings.Join(s.PestSusceptibility, ", ")
	}
	if !cult.Empty() {
		payload.Cultivation = cult
	}

	if raw, err := json.Marshal(s); err == nil {
		payload.Raw = raw
	}
	return payload
}

func perenualToxicity(s *PerenualSpecies) string {
	switch {
	case s.PoisonousToHumans > 0 && s.PoisonousToPets > 0:
		return "Poisonous to humans and pets"
	case s.PoisonousToHumans > 0:
		return "Poisonous to humans"
	case s.PoisonousToPets > 0:
		return "Poisonous to pets"
	}
	return "None known"
}
