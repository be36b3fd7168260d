package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/herbarium/florasync/internal/core/domain"
	"github.com/herbarium/florasync/internal/infra/storage"
)

// HerbRepo is an in-memory implementation of storage.HerbRepository.
// Used in tests and when no database is configured.
type HerbRepo struct {
	mu    sync.RWMutex
	herbs map[string]*domain.Herb
}

func NewHerbRepo() *HerbRepo {
	return &HerbRepo{herbs: make(map[string]*domain.Herb)}
}

func (r *HerbRepo) Create(ctx context.Context, herb *domain.Herb) (*domain.Herb, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneHerb(herb)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.herbs[stored.ID] = stored
	return cloneHerb(stored), nil
}

func (r *HerbRepo) Update(ctx context.Context, id string, herb *domain.Herb) (*domain.Herb, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.herbs[id]
	if !ok {
		return nil, storage.ErrHerbNotFound
	}

	stored := cloneHerb(herb)
	stored.ID = id
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	r.herbs[id] = stored
	return cloneHerb(stored), nil
}

func (r *HerbRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.herbs[id]; !ok {
		return storage.ErrHerbNotFound
	}
	delete(r.herbs, id)
	return nil
}

func (r *HerbRepo) GetByID(ctx context.Context, id string) (*domain.Herb, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	herb, ok := r.herbs[id]
	if !ok {
		return nil, nil
	}
	return cloneHerb(herb), nil
}

func (r *HerbRepo) GetBySourceID(
	ctx context.Context,
	source domain.Source,
	sourceID int,
) (*domain.Herb, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, herb := range r.herbs {
		if id := herb.SourceID(source); id != nil && *id == sourceID {
			return cloneHerb(herb), nil
		}
	}
	return nil, nil
}

func (r *HerbRepo) GetByTitle(ctx context.Context, title string) (*domain.Herb, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, herb := range r.herbs {
		if herb.Title == title {
			return cloneHerb(herb), nil
		}
	}
	return nil, nil
}

func (r *HerbRepo) List(ctx context.Context, limit int) ([]*domain.Herb, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	herbs := make([]*domain.Herb, 0, len(r.herbs))
	for _, herb := range r.herbs {
		herbs = append(herbs, cloneHerb(herb))
	}
	sort.Slice(herbs, func(i, j int) bool {
		if herbs[i].CreatedAt.Equal(herbs[j].CreatedAt) {
			return herbs[i].ID < herbs[j].ID
		}
		return herbs[i].CreatedAt.Before(herbs[j].CreatedAt)
	})
	if limit > 0 && len(herbs) > limit {
		herbs = herbs[:limit]
	}
	return herbs, nil
}

// cloneHerb deep-copies a herb so callers cannot mutate stored state.
func cloneHerb(h *domain.Herb) *domain.Herb {
	c := *h
	c.Botanical.Synonyms = append([]string(nil), h.Botanical.Synonyms...)
	c.Botanical.Origin = append([]string(nil), h.Botanical.Origin...)
	if h.Botanical.TrefleID != nil {
		v := *h.Botanical.TrefleID
		c.Botanical.TrefleID = &v
	}
	if h.Botanical.PerenualID != nil {
		v := *h.Botanical.PerenualID
		c.Botanical.PerenualID = &v
	}
	c.Botanical.TrefleData = append([]byte(nil), h.Botanical.TrefleData...)
	c.Botanical.PerenualData = append([]byte(nil), h.Botanical.PerenualData...)
	if h.Botanical.LastSynced != nil {
		c.Botanical.LastSynced = make(map[domain.Source]time.Time, len(h.Botanical.LastSynced))
		for k, v := range h.Botanical.LastSynced {
			c.Botanical.LastSynced[k] = v
		}
	}
	if h.Cultivation != nil {
		cult := *h.Cultivation
		cult.Sunlight = append([]string(nil), h.Cultivation.Sunlight...)
		cult.Soil = append([]string(nil), h.Cultivation.Soil...)
		c.Cultivation = &cult
	}
	c.Gallery = append([]domain.Image(nil), h.Gallery...)
	c.Safety.Warnings = append([]string(nil), h.Safety.Warnings...)
	return &c
}
