package dedup

import (
	"strings"
	"time"

	"github.com/herbarium/florasync/internal/core/domain"
)

// notesSeparator joins free-text fields when both records carry one.
const notesSeparator = "\n\n---\n\n"

// FromPayload builds a draft record from an enrichment payload. New
// records always require manual review before publish.
func FromPayload(p domain.EnrichmentPayload) *domain.Herb {
	herb := &domain.Herb{
		Title:       p.CommonName,
		Description: "",
		Botanical: domain.BotanicalInfo{
			ScientificName: p.ScientificName,
			Family:         p.Family,
			Genus:          p.Genus,
			Origin:         append([]string(nil), p.Origin...),
		},
		Cultivation: p.Cultivation,
		Gallery:     append([]domain.Image(nil), p.Images...),
		Safety: domain.SafetyInfo{
			Toxicity:  p.Toxicity,
			Edible:    p.Edible,
			Medicinal: p.Medicinal,
		},
		Status: domain.StatusDraft,
	}

	fields := strings.Fields(Normalize(p.ScientificName))
	if herb.Botanical.Genus == "" && len(fields) > 0 {
		herb.Botanical.Genus = capitalize(fields[0])
	}
	if len(fields) > 1 {
		herb.Botanical.Species = fields[1]
	}

	setSourceData(herb, p)
	return herb
}

// Merge combines an existing canonical record with incoming source
// data under the non-destructive policy: curated scalars win, provider
// -owned fields follow the latest sync, arrays union, free text
// appends. Pure, and idempotent: Merge(x, x) leaves x unchanged.
func Merge(existing, incoming *domain.Herb) *domain.Herb {
	merged := *existing

	// Scalar descriptive fields: prefer the existing non-empty value.
	// Title and toxicity may carry the extraction placeholder, which
	// yields to any real value from either side.
	merged.Title = preferKnown(existing.Title, incoming.Title)
	merged.Description = preferExisting(existing.Description, incoming.Description)
	merged.Botanical.ScientificName = preferExisting(
		existing.Botanical.ScientificName, incoming.Botanical.ScientificName)
	merged.Botanical.Family = preferExisting(existing.Botanical.Family, incoming.Botanical.Family)
	merged.Botanical.Genus = preferExisting(existing.Botanical.Genus, incoming.Botanical.Genus)
	merged.Botanical.Species = preferExisting(existing.Botanical.Species, incoming.Botanical.Species)
	merged.Safety.Toxicity = preferKnown(existing.Safety.Toxicity, incoming.Safety.Toxicity)

	// Provider-owned identifiers and raw payloads: latest sync wins.
	if incoming.Botanical.TrefleID != nil {
		merged.Botanical.TrefleID = incoming.Botanical.TrefleID
		merged.Botanical.TrefleData = incoming.Botanical.TrefleData
	}
	if incoming.Botanical.PerenualID != nil {
		merged.Botanical.PerenualID = incoming.Botanical.PerenualID
		merged.Botanical.PerenualData = incoming.Botanical.PerenualData
	}
	if len(incoming.Botanical.LastSynced) > 0 {
		synced := make(map[domain.Source]time.Time, len(existing.Botanical.LastSynced))
		for src, at := range existing.Botanical.LastSynced {
			synced[src] = at
		}
		for src, at := range incoming.Botanical.LastSynced {
			synced[src] = at
		}
		merged.Botanical.LastSynced = synced
	}

	// Arrays: union, existing order preserved, new unique items
	// appended.
	merged.Botanical.Synonyms = combineStrings(existing.Botanical.Synonyms, incoming.Botanical.Synonyms)
	merged.Botanical.Origin = combineStrings(existing.Botanical.Origin, incoming.Botanical.Origin)
	merged.Safety.Warnings = combineStrings(existing.Safety.Warnings, incoming.Safety.Warnings)
	merged.Gallery = combineImages(existing.Gallery, incoming.Gallery)

	merged.Cultivation = mergeCultivation(existing.Cultivation, incoming.Cultivation)

	merged.Safety.Edible = existing.Safety.Edible || incoming.Safety.Edible
	merged.Safety.Medicinal = existing.Safety.Medicinal || incoming.Safety.Medicinal

	return &merged
}

// MergePayload applies an enrichment payload to an existing record.
func MergePayload(existing *domain.Herb, p domain.EnrichmentPayload) *domain.Herb {
	return Merge(existing, FromPayload(p))
}

func preferExisting(existing, incoming string) string {
	if existing != "" {
		return existing
	}
	return incoming
}

// preferKnown is preferExisting with the extraction placeholder
// demoted to empty: a real value from either side beats it.
func preferKnown(existing, incoming string) string {
	if existing != "" && existing != domain.Unknown {
		return existing
	}
	if incoming != "" && incoming != domain.Unknown {
		return incoming
	}
	return preferExisting(existing, incoming)
}

// combineStrings unions two string slices, de-duplicated
// case-insensitively.
func combineStrings(existing, incoming []string) []string {
	if len(existing) == 0 && len(incoming) == 0 {
		return existing
	}

	out := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, s := range existing {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	for _, s := range incoming {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// combineImages unions galleries by URL, falling back to source ID
// when the URL is empty.
func combineImages(existing, incoming []domain.Image) []domain.Image {
	if len(existing) == 0 && len(incoming) == 0 {
		return existing
	}

	identity := func(img domain.Image) string {
		if img.URL != "" {
			return "url:" + strings.ToLower(img.URL)
		}
		return "id:" + img.SourceID
	}

	out := make([]domain.Image, 0, len(existing)+len(incoming))
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, img := range append(append([]domain.Image{}, existing...), incoming...) {
		key := identity(img)
		if key == "url:" || key == "id:" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, img)
	}
	return out
}

// mergeCultivation takes incoming wholesale when the existing object
// is empty, otherwise shallow-merges with incoming overwriting
// collisions at the object level. Coarser than the scalar-preference
// rule: cultivation data goes stale fast, so freshness wins. Notes and
// pest management keep append semantics.
func mergeCultivation(existing, incoming *domain.Cultivation) *domain.Cultivation {
	if existing.Empty() {
		return incoming
	}
	if incoming.Empty() {
		return existing
	}

	merged := *existing
	if len(incoming.Sunlight) > 0 {
		merged.Sunlight = incoming.Sunlight
	}
	if incoming.Watering != "" {
		merged.Watering = incoming.Watering
	}
	if incoming.Cycle != "" {
		merged.Cycle = incoming.Cycle
	}
	if incoming.HardinessZone != "" {
		merged.HardinessZone = incoming.HardinessZone
	}
	if len(incoming.Soil) > 0 {
		merged.Soil = incoming.Soil
	}
	merged.Notes = appendText(existing.Notes, incoming.Notes)
	merged.PestManagement = appendText(existing.PestManagement, incoming.PestManagement)
	return &merged
}

// appendText concatenates two free-text fields with a visible
// separator. Equal or contained text is not repeated.
func appendText(existing, incoming string) string {
	if existing == "" {
		return incoming
	}
	if incoming == "" || strings.Contains(existing, incoming) {
		return existing
	}
	return existing + notesSeparator + incoming
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func setSourceData(herb *domain.Herb, p domain.EnrichmentPayload) {
	syncedAt := p.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now()
	}
	herb.Botanical.LastSynced = map[domain.Source]time.Time{p.Source: syncedAt}

	id := p.SourceID
	switch p.Source {
	case domain.SourceTrefle:
		herb.Botanical.TrefleID = &id
		herb.Botanical.TrefleData = p.Raw
	case domain.SourcePerenual:
		herb.Botanical.PerenualID = &id
		herb.Botanical.PerenualData = p.Raw
	}
}
