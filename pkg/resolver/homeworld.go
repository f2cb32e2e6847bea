package resolver

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/swapi-aggregator/pkg/pagination"
	"github.com/Sternrassler/swapi-aggregator/pkg/swapi"
)

// HomeworldResolver follows a person's homeworld URL. There is no fallback.
type HomeworldResolver struct {
	fetcher pagination.JSONFetcher
	logger  zerolog.Logger
}

// NewHomeworldResolver creates a homeworld resolver.
func NewHomeworldResolver(fetcher pagination.JSONFetcher, logger zerolog.Logger) *HomeworldResolver {
	return &HomeworldResolver{fetcher: fetcher, logger: logger}
}

// Resolve returns the planet name of person's homeworld.
func (r *HomeworldResolver) Resolve(ctx context.Context, person swapi.PersonProperties) Result[string] {
	if person.Homeworld == "" {
		return degraded(ErrNoReference)
	}

	var detail swapi.Detail[swapi.PlanetProperties]
	if err := r.fetcher.GetJSON(ctx, person.Homeworld, &detail); err != nil {
		r.logger.Debug().Err(err).Str("url", person.Homeworld).Msg("Homeworld fetch failed")
		return degraded(fmt.Errorf("homeworld %s: %w", person.Homeworld, err))
	}
	if detail.Result == nil {
		return degraded(fmt.Errorf("homeworld %s: %w", person.Homeworld, ErrEmptyField))
	}

	name, err := displayValue(detail.Result.Properties.Name)
	if err != nil {
		return degraded(fmt.Errorf("homeworld %s: %w", person.Homeworld, err))
	}
	return resolved(name)
}
