package domain

import (
	"encoding/json"
	"time"
)

// Status is the publication state of a canonical record.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// BotanicalInfo holds the taxonomic identity of a herb along with
// per-provider identifiers and the raw payloads from the last sync.
type BotanicalInfo struct {
	ScientificName string
	Family         string
	Genus          string
	Species        string
	Synonyms       []string
	Origin         []string

	// Provider-owned fields. A given (provider, id) pair maps to at
	// most one canonical record.
	TrefleID     *int
	PerenualID   *int
	TrefleData   json.RawMessage
	PerenualData json.RawMessage
	LastSynced   map[Source]time.Time
}

// Cultivation holds growing instructions gathered from providers.
type Cultivation struct {
	Sunlight       []string
	Watering       string
	Cycle          string
	HardinessZone  string
	Soil           []string
	Notes          string
	PestManagement string
}

// Empty reports whether no cultivation data is present.
func (c *Cultivation) Empty() bool {
	if c == nil {
		return true
	}
	return len(c.Sunlight) == 0 && c.Watering == "" && c.Cycle == "" &&
		c.HardinessZone == "" && len(c.Soil) == 0 && c.Notes == "" &&
		c.PestManagement == ""
}

// Image is a gallery entry. Identity for de-duplication is URL, or
// SourceID when the URL is empty.
type Image struct {
	URL      string
	SourceID string
	Caption  string
}

// SafetyInfo holds usage warnings and edibility flags.
type SafetyInfo struct {
	Warnings  []string
	Toxicity  string
	Edible    bool
	Medicinal bool
}

// Herb is the single canonical record for a real-world plant species.
// New records are created as drafts pending manual review; they are
// deleted only when folded into another record during reconciliation.
type Herb struct {
	ID          string
	Title       string
	Description string
	Botanical   BotanicalInfo
	Cultivation *Cultivation
	Gallery     []Image
	Safety      SafetyInfo
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SourceID returns the provider-specific ID attached to this record,
// or nil when the record has never been synced from that provider.
func (h *Herb) SourceID(source Source) *int {
	switch source {
	case SourceTrefle:
		return h.Botanical.TrefleID
	case SourcePerenual:
		return h.Botanical.PerenualID
	}
	return nil
}

// SourceIDCount returns how many providers have claimed this record.
func (h *Herb) SourceIDCount() int {
	n := 0
	if h.Botanical.TrefleID != nil {
		n++
	}
	if h.Botanical.PerenualID != nil {
		n++
	}
	return n
}
