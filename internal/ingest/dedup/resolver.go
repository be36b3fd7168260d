package dedup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/herbarium/florasync/internal/core/domain"
	"github.com/herbarium/florasync/internal/infra/storage"
)

// Query carries the identifying material extracted from an incoming
// payload.
type Query struct {
	TrefleID       *int
	PerenualID     *int
	ScientificName string
	CommonName     string
}

// Resolver finds the canonical record an incoming payload refers to.
type Resolver struct {
	repo storage.HerbRepository
	// pageSize bounds the scientific-name scan. Records beyond it are
	// not compared; with a large corpus matches past the page are
	// missed. A known limitation of the linear scan, not silent
	// truncation.
	pageSize int
	log      *slog.Logger
}

// NewResolver creates a resolver. pageSize <= 0 falls back to 1000.
func NewResolver(repo storage.HerbRepository, pageSize int, log *slog.Logger) *Resolver {
	if pageSize <= 0 {
		pageSize = 1000
	}
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{repo: repo, pageSize: pageSize, log: log}
}

// Find returns the matching canonical record or nil. Search order,
// first hit wins: provider source IDs (indexed, most reliable), then
// scientific-name comparison over a bounded page, then exact title as
// a last resort.
func (r *Resolver) Find(ctx context.Context, q Query) (*domain.Herb, error) {
	if q.TrefleID != nil {
		herb, err := r.repo.GetBySourceID(ctx, domain.SourceTrefle, *q.TrefleID)
		if err != nil {
			return nil, fmt.Errorf("lookup by trefle id: %w", err)
		}
		if herb != nil {
			return herb, nil
		}
	}
	if q.PerenualID != nil {
		herb, err := r.repo.GetBySourceID(ctx, domain.SourcePerenual, *q.PerenualID)
		if err != nil {
			return nil, fmt.Errorf("lookup by perenual id: %w", err)
		}
		if herb != nil {
			return herb, nil
		}
	}

	if q.ScientificName != "" {
		herb, err := r.findByScientificName(ctx, q.ScientificName)
		if err != nil {
			return nil, err
		}
		if herb != nil {
			return herb, nil
		}
	}

	// The extraction placeholder is not an identity: matching on it
	// would fold every species lacking a common name into one record.
	if q.CommonName != "" && q.CommonName != domain.Unknown {
		herb, err := r.repo.GetByTitle(ctx, q.CommonName)
		if err != nil {
			return nil, fmt.Errorf("lookup by title: %w", err)
		}
		if herb != nil {
			return herb, nil
		}
	}

	return nil, nil
}

// findByScientificName scans stored names and synonyms with the
// normalized-name predicate. Taxonomic spelling and citation variants
// rule out an indexed equality lookup.
func (r *Resolver) findByScientificName(ctx context.Context, name string) (*domain.Herb, error) {
	herbs, err := r.repo.List(ctx, r.pageSize)
	if err != nil {
		return nil, fmt.Errorf("list herbs for name scan: %w", err)
	}
	if len(herbs) == r.pageSize {
		r.log.Warn("name scan page is full, matches beyond it are missed",
			"page_size", r.pageSize)
	}

	for _, herb := range herbs {
		if Matches(herb.Botanical.ScientificName, name) {
			return herb, nil
		}
		for _, syn := range herb.Botanical.Synonyms {
			if Matches(syn, name) {
				return herb, nil
			}
		}
	}
	return nil, nil
}
