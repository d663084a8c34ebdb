// Package review implements the application workflow: the aggregator is the
// read path over all seven form tables, the notifier is the write path for
// status transitions.
package review

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rahmanmohd/incubator-api/internal/domain"
)

// DefaultPageSize applies when a caller omits or zeroes pageSize.
const DefaultPageSize = 20

// Aggregator merges the per-kind application tables into one normalized,
// filterable feed. It is read-only.
type Aggregator struct {
	store  domain.ApplicationStore
	logger zerolog.Logger
}

func NewAggregator(store domain.ApplicationStore, logger zerolog.Logger) *Aggregator {
	return &Aggregator{store: store, logger: logger}
}

var kindOrder = buildKindOrder()

func buildKindOrder() map[domain.Kind]int {
	order := make(map[domain.Kind]int, len(domain.Kinds()))
	for i, k := range domain.Kinds() {
		order[k] = i
	}
	return order
}

// List reads every kind (or just the filtered one) concurrently, waits for
// all reads, then merges, sorts, filters and paginates. A failed kind read
// degrades to a warning; the remaining kinds still serve.
func (a *Aggregator) List(ctx context.Context, filter domain.ListFilter) (*domain.Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = DefaultPageSize
	}

	kinds := domain.Kinds()
	if filter.Kind != "" {
		kinds = []domain.Kind{filter.Kind}
	}

	perKind := make([][]domain.Application, len(kinds))
	errs := make([]error, len(kinds))

	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(i int, kind domain.Kind) {
			defer wg.Done()
			perKind[i], errs[i] = a.store.ListByKind(ctx, kind)
		}(i, kind)
	}
	wg.Wait()

	var merged []domain.Application
	var warnings []string
	for i, kind := range kinds {
		if errs[i] != nil {
			a.logger.Error().Err(errs[i]).Str("kind", string(kind)).Msg("application source read failed, serving partial feed")
			warnings = append(warnings, string(kind))
			continue
		}
		merged = append(merged, perKind[i]...)
	}

	sortApplications(merged)

	filtered := merged[:0:0]
	for _, app := range merged {
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		if !app.MatchesSearch(filter.Search) {
			continue
		}
		filtered = append(filtered, app)
	}

	total := len(filtered)
	start := (filter.Page - 1) * filter.PageSize
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}

	items := filtered[start:end]
	if items == nil {
		// keep the JSON field an array even when nothing matched
		items = []domain.Application{}
	}

	return &domain.Page{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Warnings: warnings,
	}, nil
}

// Get fetches one application by its (kind, id) identity.
func (a *Aggregator) Get(ctx context.Context, kind domain.Kind, id string) (*domain.Application, error) {
	return a.store.GetByKind(ctx, kind, id)
}

// Stats sums count-only queries per kind and status; no rows are fetched.
// Like List, a failing kind is reported in Warnings instead of failing the
// whole call.
func (a *Aggregator) Stats(ctx context.Context) (*domain.Stats, error) {
	kinds := domain.Kinds()
	type kindCounts struct {
		byStatus map[domain.Status]int
		err      error
	}
	results := make([]kindCounts, len(kinds))

	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(i int, kind domain.Kind) {
			defer wg.Done()
			counts := map[domain.Status]int{}
			for _, status := range domain.Statuses() {
				n, err := a.store.CountByStatus(ctx, kind, status)
				if err != nil {
					results[i] = kindCounts{err: err}
					return
				}
				counts[status] = n
			}
			results[i] = kindCounts{byStatus: counts}
		}(i, kind)
	}
	wg.Wait()

	stats := &domain.Stats{PerKind: make(map[domain.Kind]int, len(kinds))}
	for i, kind := range kinds {
		if results[i].err != nil {
			a.logger.Error().Err(results[i].err).Str("kind", string(kind)).Msg("application count failed, stats are partial")
			stats.Warnings = append(stats.Warnings, string(kind))
			continue
		}
		counts := results[i].byStatus
		stats.Pending += counts[domain.StatusPending]
		stats.UnderReview += counts[domain.StatusUnderReview]
		stats.Approved += counts[domain.StatusApproved]
		stats.Rejected += counts[domain.StatusRejected]
		kindTotal := counts[domain.StatusPending] + counts[domain.StatusUnderReview] +
			counts[domain.StatusApproved] + counts[domain.StatusRejected]
		stats.PerKind[kind] = kindTotal
		stats.Total += kindTotal
	}
	return stats, nil
}

// sortApplications orders newest first. Ties on SubmittedAt break by kind
// registry order, then id, so the merged order is deterministic across
// calls.
func sortApplications(apps []domain.Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		a, b := apps[i], apps[j]
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.After(b.SubmittedAt)
		}
		if kindOrder[a.Kind] != kindOrder[b.Kind] {
			return kindOrder[a.Kind] < kindOrder[b.Kind]
		}
		return a.ID < b.ID
	})
}
