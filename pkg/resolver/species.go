package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/swapi-aggregator/pkg/cache"
	"github.com/Sternrassler/swapi-aggregator/pkg/pagination"
	"github.com/Sternrassler/swapi-aggregator/pkg/swapi"
)

// SpeciesResolver resolves a person's species, either from the first listed
// species reference or by searching the species listing for the person.
type SpeciesResolver struct {
	fetcher   pagination.JSONFetcher
	endpoints swapi.Endpoints
	names     *cache.ReferenceCache
	logger    zerolog.Logger
}

// NewSpeciesResolver creates a species resolver. names may be nil.
func NewSpeciesResolver(fetcher pagination.JSONFetcher, endpoints swapi.Endpoints, names *cache.ReferenceCache, logger zerolog.Logger) *SpeciesResolver {
	if names == nil {
		names = cache.NewReferenceCache(cache.KindSpecies, nil, logger)
	}
	return &SpeciesResolver{
		fetcher:   fetcher,
		endpoints: endpoints,
		names:     names,
		logger:    logger,
	}
}

// Resolve returns the species name of the person with personID.
func (r *SpeciesResolver) Resolve(ctx context.Context, personID string, person swapi.PersonProperties) Result[string] {
	if len(person.Species) > 0 {
		return r.direct(ctx, person.Species[0])
	}
	return r.search(ctx, personID)
}

func (r *SpeciesResolver) direct(ctx context.Context, ref string) Result[string] {
	key := refKey(ref)
	if name, ok := r.names.Get(ctx, key); ok {
		return resolved(name)
	}

	detail, err := r.fetchDetail(ctx, ref)
	if err != nil {
		return degraded(err)
	}
	name, err := displayValue(detail.Name)
	if err != nil {
		return degraded(fmt.Errorf("species %s: %w", ref, err))
	}

	r.names.Set(ctx, key, name)
	return resolved(name)
}

// search scans the species listing in upstream order, one species detail
// at a time, and stops at the first species listing personID as a member.
// A failing species detail is skipped; a failing listing page ends the scan.
func (r *SpeciesResolver) search(ctx context.Context, personID string) Result[string] {
	if personID == "" {
		return degraded(ErrNoReference)
	}

	var (
		found   string
		skipped error
	)
	err := pagination.Walk(ctx, r.fetcher, r.endpoints.Species(), func(_ int, items []swapi.ResourceRef) (bool, error) {
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return true, err
			}

			detail, err := r.fetchDetail(ctx, item.URL)
			if err != nil {
				skipped = errors.Join(skipped, err)
				continue
			}
			if !swapi.ReferencesPerson(detail.People, personID) {
				continue
			}

			name, err := displayValue(detail.Name)
			if err != nil {
				return true, fmt.Errorf("species %s: %w", item.URL, err)
			}
			r.names.Set(ctx, refKey(item.URL), name)
			found = name
			return true, nil
		}
		return false, nil
	})

	switch {
	case found != "":
		r.logger.Debug().Str("entity_id", personID).Str("species", found).Msg("Species found by member search")
		return resolved(found)
	case err != nil:
		return degraded(fmt.Errorf("species search for %s: %w", personID, err))
	case skipped != nil:
		return degraded(fmt.Errorf("species search for %s: %w: %w", personID, ErrNoMatch, skipped))
	default:
		return degraded(fmt.Errorf("species search for %s: %w", personID, ErrNoMatch))
	}
}

func (r *SpeciesResolver) fetchDetail(ctx context.Context, ref string) (swapi.SpeciesProperties, error) {
	var detail swapi.Detail[swapi.SpeciesProperties]
	if err := r.fetcher.GetJSON(ctx, ref, &detail); err != nil {
		r.logger.Debug().Err(err).Str("url", ref).Msg("Species fetch failed")
		return swapi.SpeciesProperties{}, fmt.Errorf("species %s: %w", ref, err)
	}
	if detail.Result == nil {
		return swapi.SpeciesProperties{}, fmt.Errorf("species %s: %w", ref, ErrEmptyField)
	}
	return detail.Result.Properties, nil
}
