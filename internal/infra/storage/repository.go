package storage

import (
	"context"
	"errors"

	"github.com/herbarium/florasync/internal/core/domain"
)

var (
	// ErrHerbNotFound is returned when a herb doesn't exist
	ErrHerbNotFound = errors.New("herb not found")
)

// HerbRepository handles canonical herb record storage operations.
// Lookup methods return (nil, nil) when no record matches.
type HerbRepository interface {
	// Create persists a new herb and returns it with its ID assigned
	Create(ctx context.Context, herb *domain.Herb) (*domain.Herb, error)

	// Update replaces the stored herb with the given ID
	Update(ctx context.Context, id string, herb *domain.Herb) (*domain.Herb, error)

	// Delete removes a herb (only used when folding duplicates)
	Delete(ctx context.Context, id string) error

	// GetByID retrieves a herb by ID
	GetByID(ctx context.Context, id string) (*domain.Herb, error)

	// GetBySourceID retrieves a herb by provider-specific ID
	GetBySourceID(ctx context.Context, source domain.Source, sourceID int) (*domain.Herb, error)

	// GetByTitle retrieves a herb by exact title
	GetByTitle(ctx context.Context, title string) (*domain.Herb, error)

	// List retrieves up to limit herbs ordered by creation time.
	// limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*domain.Herb, error)
}
