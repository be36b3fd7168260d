package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/herbarium/florasync/internal/core/domain"
	"github.com/herbarium/florasync/internal/infra/storage"
)

func intPtr(v int) *int { return &v }

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	repo := NewHerbRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Herb{Title: "Spearmint"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("ID not assigned")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestGetByIDMissReturnsNilNil(t *testing.T) {
	repo := NewHerbRepo()

	herb, err := repo.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if herb != nil {
		t.Fatalf("herb = %+v, want nil on miss", herb)
	}
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	repo := NewHerbRepo()

	_, err := repo.Update(context.Background(), "nope", &domain.Herb{Title: "x"})
	if !errors.Is(err, storage.ErrHerbNotFound) {
		t.Fatalf("got %v, want ErrHerbNotFound", err)
	}
}

func TestUpdatePreservesCreatedAt(t *testing.T) {
	repo := NewHerbRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Herb{Title: "Spearmint"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := repo.Update(ctx, created.ID, &domain.Herb{Title: "Garden Mint"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Garden Mint" {
		t.Errorf("Title = %q", updated.Title)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
}

func TestDelete(t *testing.T) {
	repo := NewHerbRepo()
	ctx := context.Background()

	created, _ := repo.Create(ctx, &domain.Herb{Title: "Spearmint"})
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); !errors.Is(err, storage.ErrHerbNotFound) {
		t.Fatalf("second delete: got %v, want ErrHerbNotFound", err)
	}
}

func TestGetBySourceID(t *testing.T) {
	repo := NewHerbRepo()
	ctx := context.Background()

	created, _ := repo.Create(ctx, &domain.Herb{
		Title:     "Spearmint",
		Botanical: domain.BotanicalInfo{TrefleID: intPtr(100)},
	})

	found, err := repo.GetBySourceID(ctx, domain.SourceTrefle, 100)
	if err != nil {
		t.Fatalf("GetBySourceID: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("found = %+v, want stored record", found)
	}

	miss, err := repo.GetBySourceID(ctx, domain.SourcePerenual, 100)
	if err != nil {
		t.Fatalf("GetBySourceID miss: %v", err)
	}
	if miss != nil {
		t.Fatalf("miss = %+v, want nil: IDs are per provider", miss)
	}
}

func TestListOrderAndLimit(t *testing.T) {
	repo := NewHerbRepo()
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		if _, err := repo.Create(ctx, &domain.Herb{Title: title}); err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
	}

	all, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.Before(all[i-1].CreatedAt) {
			t.Errorf("records out of creation order at %d", i)
		}
	}

	limited, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("got %d records, want 2", len(limited))
	}
}

func TestStoredRecordsAreIsolated(t *testing.T) {
	repo := NewHerbRepo()
	ctx := context.Background()

	created, _ := repo.Create(ctx, &domain.Herb{
		Title:     "Spearmint",
		Botanical: domain.BotanicalInfo{Synonyms: []string{"Mentha viridis"}},
	})

	// Mutating the returned copy must not touch the stored record.
	created.Botanical.Synonyms[0] = "corrupted"
	created.Title = "corrupted"

	fresh, _ := repo.GetByID(ctx, created.ID)
	if fresh.Title != "Spearmint" {
		t.Errorf("Title = %q, stored record was mutated", fresh.Title)
	}
	if fresh.Botanical.Synonyms[0] != "Mentha viridis" {
		t.Errorf("Synonyms = %v, stored record was mutated", fresh.Botanical.Synonyms)
	}
}
