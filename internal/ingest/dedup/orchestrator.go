package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/herbarium/florasync/internal/core/domain"
	"github.com/herbarium/florasync/internal/infra/storage"
	"github.com/herbarium/florasync/internal/ingest/metrics"
)

// Orchestrator routes incoming provider payloads into the canonical
// store and reconciles duplicates that slipped past resolution.
type Orchestrator struct {
	repo     storage.HerbRepository
	resolver *Resolver
	log      *slog.Logger
}

func NewOrchestrator(repo storage.HerbRepository, resolver *Resolver, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{repo: repo, resolver: resolver, log: log}
}

// CreateOrUpdate resolves the payload against the store and either
// merges it into the matching record or creates a new draft. The
// returned bool reports whether a new record was created.
func (o *Orchestrator) CreateOrUpdate(
	ctx context.Context,
	payload domain.EnrichmentPayload,
) (*domain.Herb, bool, error) {
	query := Query{
		ScientificName: payload.ScientificName,
		CommonName:     payload.CommonName,
	}
	id := payload.SourceID
	switch payload.Source {
	case domain.SourceTrefle:
		query.TrefleID = &id
	case domain.SourcePerenual:
		query.PerenualID = &id
	}

	existing, err := o.resolver.Find(ctx, query)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		merged := MergePayload(existing, payload)
		updated, err := o.repo.Update(ctx, existing.ID, merged)
		if err != nil {
			return nil, false, fmt.Errorf("update herb %s: %w", existing.ID, err)
		}
		metrics.HerbsMerged.Inc()
		o.log.Debug("merged payload into existing herb",
			"herb_id", existing.ID,
			"source", payload.Source,
			"source_id", payload.SourceID)
		return updated, false, nil
	}

	created, err := o.repo.Create(ctx, FromPayload(payload))
	if err != nil {
		return nil, false, fmt.Errorf("create herb: %w", err)
	}
	metrics.HerbsCreated.Inc()
	o.log.Info("created draft herb",
		"herb_id", created.ID,
		"title", created.Title,
		"source", payload.Source,
		"source_id", payload.SourceID)
	return created, true, nil
}

// ReconcileReport summarizes a reconciliation run.
type ReconcileReport struct {
	Processed int `json:"processed"`
	Merged    int `json:"merged"`
	Deleted   int `json:"deleted"`
	Errors    int `json:"errors"`
}

// BulkReconcile groups all records by normalized scientific name and
// folds each duplicate group into its highest-ranked member. A failing
// group is logged and counted, never aborts the run; already-clean
// data yields an all-zero report beyond Processed.
func (o *Orchestrator) BulkReconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	herbs, err := o.repo.List(ctx, 0)
	if err != nil {
		return report, fmt.Errorf("list herbs: %w", err)
	}
	report.Processed = len(herbs)

	groups := make(map[string][]*domain.Herb)
	for _, herb := range herbs {
		key := Normalize(herb.Botanical.ScientificName)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], herb)
	}

	for key, group := range groups {
		if len(group) < 2 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		merged, deleted, err := o.reconcileGroup(ctx, group)
		report.Merged += merged
		report.Deleted += deleted
		if err != nil {
			report.Errors++
			o.log.Error("failed to reconcile duplicate group",
				"name", key,
				"size", len(group),
				"error", err)
		}
	}

	o.log.Info("reconciliation finished",
		"processed", report.Processed,
		"merged", report.Merged,
		"deleted", report.Deleted,
		"errors", report.Errors)
	return report, nil
}

// reconcileGroup folds every record in the group into the primary.
// Returns counts for the records merged and deleted before any error.
func (o *Orchestrator) reconcileGroup(
	ctx context.Context,
	group []*domain.Herb,
) (merged, deleted int, err error) {
	sort.SliceStable(group, func(i, j int) bool {
		return moreCanonical(group[i], group[j])
	})
	primary := group[0]

	result := primary
	for _, dup := range group[1:] {
		result = Merge(result, dup)
	}

	if _, err := o.repo.Update(ctx, primary.ID, result); err != nil {
		return 0, 0, fmt.Errorf("update primary %s: %w", primary.ID, err)
	}
	merged = len(group) - 1
	metrics.HerbsMerged.Add(float64(merged))

	for _, dup := range group[1:] {
		if err := o.repo.Delete(ctx, dup.ID); err != nil {
			return merged, deleted, fmt.Errorf("delete duplicate %s: %w", dup.ID, err)
		}
		deleted++
		metrics.DuplicatesDeleted.Inc()
	}
	return merged, deleted, nil
}

// moreCanonical ranks group members for primary selection: published
// beats draft, then more provider claims, then the older record, then
// lowest ID for a stable order.
func moreCanonical(a, b *domain.Herb) bool {
	aPub := a.Status == domain.StatusPublished
	bPub := b.Status == domain.StatusPublished
	if aPub != bPub {
		return aPub
	}
	if ac, bc := a.SourceIDCount(), b.SourceIDCount(); ac != bc {
		return ac > bc
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
