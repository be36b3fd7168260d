package domain

import (
	"encoding/json"
	"time"
)

// Source identifies a plant-data provider.
type Source string

const (
	SourceTrefle   Source = "trefle"
	SourcePerenual Source = "perenual"
)

// Unknown is the documented placeholder for absent provider text
// (common names, toxicity). It is display filler, not data: resolution
// and merge must never treat it as a real value.
const Unknown = "Unknown"

// EnrichmentPayload is the provider-agnostic shape extracted from a
// provider's raw detail response. Missing optional fields are filled
// with defaults (empty slices, Unknown) at extraction time, never
// left to fail downstream.
type EnrichmentPayload struct {
	Source         Source
	SourceID       int
	CommonName     string
	ScientificName string
	Family         string
	Genus          string
	Origin         []string
	Medicinal      bool
	Edible         bool
	Toxicity       string
	Cultivation    *Cultivation
	Images         []Image
	Raw            json.RawMessage
	SyncedAt       time.Time
}
