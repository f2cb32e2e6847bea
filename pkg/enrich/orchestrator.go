package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/swapi-aggregator/pkg/pagination"
	"github.com/Sternrassler/swapi-aggregator/pkg/resolver"
	"github.com/Sternrassler/swapi-aggregator/pkg/swapi"
)

// EnrichedEntity is a person with its references resolved.
type EnrichedEntity struct {
	ID        string   `json:"uid"`
	Name      string   `json:"name"`
	Height    string   `json:"height"`
	Mass      string   `json:"mass"`
	Homeworld string   `json:"homeworld"`
	Species   string   `json:"species"`
	Films     []string `json:"films"`
}

// Orchestrator enriches batches of entities.
type Orchestrator struct {
	fetcher   pagination.JSONFetcher
	endpoints swapi.Endpoints
	homeworld *resolver.HomeworldResolver
	species   *resolver.SpeciesResolver
	films     *resolver.FilmResolver
	logger    zerolog.Logger
}

// NewOrchestrator wires the resolvers around fetcher. Nil resolvers are
// created with in-memory caches.
func NewOrchestrator(
	fetcher pagination.JSONFetcher,
	endpoints swapi.Endpoints,
	homeworld *resolver.HomeworldResolver,
	species *resolver.SpeciesResolver,
	films *resolver.FilmResolver,
	logger zerolog.Logger,
) *Orchestrator {
	if homeworld == nil {
		homeworld = resolver.NewHomeworldResolver(fetcher, logger)
	}
	if species == nil {
		species = resolver.NewSpeciesResolver(fetcher, endpoints, nil, logger)
	}
	if films == nil {
		films = resolver.NewFilmResolver(fetcher, endpoints, nil, logger)
	}
	return &Orchestrator{
		fetcher:   fetcher,
		endpoints: endpoints,
		homeworld: homeworld,
		species:   species,
		films:     films,
		logger:    logger,
	}
}

// Films returns the film resolver.
func (o *Orchestrator) Films() *resolver.FilmResolver { return o.films }

// Enrich returns one record per entity, in input order.
func (o *Orchestrator) Enrich(ctx context.Context, entities []swapi.BaseEntity) []EnrichedEntity {
	start := time.Now()
	defer func() {
		enrichDuration.Observe(time.Since(start).Seconds())
	}()

	out := make([]EnrichedEntity, len(entities))

	var g errgroup.Group
	for i, base := range entities {
		g.Go(func() error {
			out[i] = o.EnrichOne(ctx, base)
			return nil
		})
	}
	_ = g.Wait()

	o.logger.Debug().
		Int("entities", len(entities)).
		Dur("duration", time.Since(start)).
		Msg("Batch enriched")

	return out
}

// EnrichOne fetches the detail of base and resolves its references.
func (o *Orchestrator) EnrichOne(ctx context.Context, base swapi.BaseEntity) EnrichedEntity {
	id := base.ID
	if parsed, ok := swapi.PersonID(base.URL); ok {
		id = parsed
	}
	logger := o.logger.With().Str("entity_id", id).Logger()

	var detail swapi.Detail[swapi.PersonProperties]
	err := o.fetcher.GetJSON(ctx, o.endpoints.Person(id), &detail)
	if err == nil && detail.Result == nil {
		err = resolver.ErrEmptyField
	}
	if err != nil {
		kind := resolver.KindOf(err)
		degradedFields.WithLabelValues("detail", string(kind)).Inc()
		entitiesTotal.WithLabelValues("degraded").Inc()
		logger.Warn().Err(err).Str("kind", string(kind)).Msg("Person detail unavailable, returning degraded record")
		return degradedEntity(id, base.Name)
	}
	person := detail.Result.Properties

	var (
		wg        sync.WaitGroup
		homeworld resolver.Result[string]
		species   resolver.Result[string]
		films     resolver.Result[[]string]
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		homeworld = o.homeworld.Resolve(ctx, person)
	}()
	go func() {
		defer wg.Done()
		species = o.species.Resolve(ctx, id, person)
	}()
	go func() {
		defer wg.Done()
		films = o.films.Resolve(ctx, id, person)
	}()
	wg.Wait()

	partial := false
	for _, f := range []struct {
		field string
		err   error
	}{
		{"homeworld", homeworld.Err},
		{"species", species.Err},
		{"films", films.Err},
	} {
		if f.err == nil {
			continue
		}
		partial = true
		kind := resolver.KindOf(f.err)
		degradedFields.WithLabelValues(f.field, string(kind)).Inc()
		// Absent references are normal for many records.
		if kind == resolver.KindMissing {
			logger.Debug().Str("field", f.field).Msg("No reference to resolve")
			continue
		}
		logger.Warn().Err(f.err).Str("field", f.field).Str("kind", string(kind)).Msg("Field degraded")
	}
	if partial {
		entitiesTotal.WithLabelValues("partial").Inc()
	} else {
		entitiesTotal.WithLabelValues("complete").Inc()
	}

	return EnrichedEntity{
		ID:        id,
		Name:      orSentinel(person.Name),
		Height:    orSentinel(person.Height),
		Mass:      orSentinel(person.Mass),
		Homeworld: homeworld.Value,
		Species:   species.Value,
		Films:     films.Value,
	}
}

func degradedEntity(id, name string) EnrichedEntity {
	return EnrichedEntity{
		ID:        id,
		Name:      orSentinel(name),
		Height:    resolver.Sentinel,
		Mass:      resolver.Sentinel,
		Homeworld: resolver.Sentinel,
		Species:   resolver.Sentinel,
		Films:     []string{resolver.Sentinel},
	}
}

func orSentinel(v string) string {
	if v == "" {
		return resolver.Sentinel
	}
	return v
}
