package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/swapi-aggregator/pkg/swapi"
)

// ErrCursorLoop is returned when a listing links back to a page already visited.
var ErrCursorLoop = errors.New("listing cursor loop")

// JSONFetcher is the part of the upstream client the walker needs.
type JSONFetcher interface {
	GetJSON(ctx context.Context, url string, v any) error
}

// PageFunc receives the items of one page (1-based page number).
// Returning stop=true ends the walk without error.
type PageFunc[T any] func(page int, items []T) (stop bool, err error)

// Walk fetches startURL and follows the next cursor sequentially, calling fn
// for every page. It stops on a null cursor, an empty page, fn asking to
// stop, or the first error. Page errors are returned wrapped with the page
// number and URL.
func Walk[T any](ctx context.Context, fetcher JSONFetcher, startURL string, fn PageFunc[T]) error {
	start := time.Now()
	visited := make(map[string]struct{})
	url := startURL
	page := 0

	for url != "" {
		if _, seen := visited[url]; seen {
			return fmt.Errorf("%w: %s", ErrCursorLoop, url)
		}
		visited[url] = struct{}{}
		page++

		var body swapi.ListPage[T]
		if err := fetcher.GetJSON(ctx, url, &body); err != nil {
			return fmt.Errorf("fetch page %d (%s): %w", page, url, err)
		}

		log.Debug().
			Str("url", url).
			Int("page", page).
			Int("items", len(body.Results)).
			Msg("Fetched listing page")

		if len(body.Results) == 0 {
			break
		}

		stop, err := fn(page, body.Results)
		if err != nil {
			return err
		}
		if stop {
			log.Debug().
				Str("start_url", startURL).
				Int("pages", page).
				Msg("Listing walk stopped early")
			return nil
		}

		url = body.NextURL()
	}

	log.Debug().
		Str("start_url", startURL).
		Int("pages", page).
		Dur("duration", time.Since(start)).
		Msg("Listing walk complete")

	return nil
}

// Collect walks the whole listing and returns all items in upstream order.
// Nothing is returned unless every page succeeds.
func Collect[T any](ctx context.Context, fetcher JSONFetcher, startURL string) ([]T, error) {
	var all []T
	err := Walk(ctx, fetcher, startURL, func(_ int, items []T) (bool, error) {
		all = append(all, items...)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}
