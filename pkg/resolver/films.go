package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/swapi-aggregator/pkg/cache"
	"github.com/Sternrassler/swapi-aggregator/pkg/pagination"
	"github.com/Sternrassler/swapi-aggregator/pkg/swapi"
)

// FilmResolver resolves the film titles of a person.
type FilmResolver struct {
	fetcher   pagination.JSONFetcher
	endpoints swapi.Endpoints
	titles    *cache.ReferenceCache
	logger    zerolog.Logger
}

// NewFilmResolver creates a film resolver. titles may be nil.
func NewFilmResolver(fetcher pagination.JSONFetcher, endpoints swapi.Endpoints, titles *cache.ReferenceCache, logger zerolog.Logger) *FilmResolver {
	if titles == nil {
		titles = cache.NewReferenceCache(cache.KindFilm, nil, logger)
	}
	return &FilmResolver{
		fetcher:   fetcher,
		endpoints: endpoints,
		titles:    titles,
		logger:    logger,
	}
}

// Titles returns the film title cache.
func (r *FilmResolver) Titles() *cache.ReferenceCache { return r.titles }

// Resolve returns the titles of the person's films in listed order. Each
// listed film is resolved concurrently; a failed film becomes Sentinel in
// its slot. With no listed films the film listing is searched instead.
func (r *FilmResolver) Resolve(ctx context.Context, personID string, person swapi.PersonProperties) Result[[]string] {
	if len(person.Films) == 0 {
		return r.search(ctx, personID)
	}

	titles := make([]string, len(person.Films))
	errs := make([]error, len(person.Films))

	var g errgroup.Group
	for i, ref := range person.Films {
		g.Go(func() error {
			title, err := r.title(ctx, ref)
			if err != nil {
				titles[i] = Sentinel
				errs[i] = err
				return nil
			}
			titles[i] = title
			return nil
		})
	}
	_ = g.Wait()

	return Result[[]string]{Value: titles, Err: errors.Join(errs...)}
}

func (r *FilmResolver) title(ctx context.Context, ref string) (string, error) {
	key := refKey(ref)
	if title, ok := r.titles.Get(ctx, key); ok {
		return title, nil
	}

	var detail swapi.Detail[swapi.FilmProperties]
	if err := r.fetcher.GetJSON(ctx, ref, &detail); err != nil {
		r.logger.Debug().Err(err).Str("url", ref).Msg("Film fetch failed")
		return "", fmt.Errorf("film %s: %w", ref, err)
	}
	if detail.Result == nil {
		return "", fmt.Errorf("film %s: %w", ref, ErrEmptyField)
	}

	title, err := displayValue(detail.Result.Properties.Title)
	if err != nil {
		return "", fmt.Errorf("film %s: %w", ref, err)
	}
	r.titles.Set(ctx, key, title)
	return title, nil
}

// search lists all films and keeps those featuring personID.
func (r *FilmResolver) search(ctx context.Context, personID string) Result[[]string] {
	unknown := []string{Sentinel}
	if personID == "" {
		return Result[[]string]{Value: unknown, Err: ErrNoReference}
	}

	films, _, err := r.list(ctx)
	if err != nil {
		return Result[[]string]{Value: unknown, Err: fmt.Errorf("film search for %s: %w", personID, err)}
	}

	var titles []string
	for _, film := range films {
		if swapi.ReferencesPerson(film.Properties.Characters, personID) && film.Properties.Title != "" {
			titles = append(titles, film.Properties.Title)
		}
	}
	if len(titles) == 0 {
		return Result[[]string]{Value: unknown, Err: fmt.Errorf("film search for %s: %w", personID, ErrNoMatch)}
	}
	return Result[[]string]{Value: titles}
}

// Preload seeds the title cache from the film listing and returns the
// number of titles stored.
func (r *FilmResolver) Preload(ctx context.Context) (int, error) {
	films, stored, err := r.list(ctx)
	if err != nil {
		return 0, err
	}
	r.logger.Info().Int("films", len(films)).Int("stored", stored).Msg("Film titles preloaded")
	return stored, nil
}

// list fetches the film listing and caches every title it carries. stored
// counts the titles written to the cache.
func (r *FilmResolver) list(ctx context.Context) (films []swapi.Resource[swapi.FilmProperties], stored int, err error) {
	var listing swapi.FilmListing
	if err := r.fetcher.GetJSON(ctx, r.endpoints.Films(), &listing); err != nil {
		return nil, 0, fmt.Errorf("film listing: %w", err)
	}

	films = listing.Items()
	for _, film := range films {
		ref := film.Properties.URL
		if ref == "" && film.UID != "" {
			ref = r.endpoints.Film(film.UID)
		}
		if ref != "" && film.Properties.Title != "" {
			r.titles.Set(ctx, refKey(ref), film.Properties.Title)
			stored++
		}
	}
	return films, stored, nil
}
