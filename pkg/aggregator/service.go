package aggregator

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Sternrassler/swapi-aggregator/pkg/enrich"
	"github.com/Sternrassler/swapi-aggregator/pkg/pagination"
	"github.com/Sternrassler/swapi-aggregator/pkg/snapshot"
)

// DefaultLinkPath is the path pagination links point at.
const DefaultLinkPath = "/api/characters"

// Query is a parsed character request.
type Query struct {
	Search string
	Page   int
	All    bool
}

// ParseQuery reads search, page and all from request parameters.
// A missing, unparsable or non-positive page selects page 1.
func ParseQuery(values url.Values) Query {
	page, err := strconv.Atoi(strings.TrimSpace(values.Get("page")))
	if err != nil || page < 1 {
		page = 1
	}
	all, _ := strconv.ParseBool(values.Get("all"))
	return Query{
		Search: values.Get("search"),
		Page:   page,
		All:    all,
	}
}

// Response is the body returned for a character request.
type Response struct {
	Characters []enrich.EnrichedEntity `json:"characters"`
	TotalPages int                     `json:"total_pages"`
	Next       Link                    `json:"next"`
	Previous   Link                    `json:"previous"`
}

// Options configures a Service.
type Options struct {
	PageSize int
	// LinkPath defaults to DefaultLinkPath.
	LinkPath string
	// PreloadFilms seeds the film cache before enriching when it is empty.
	PreloadFilms bool
	Logger       zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service answers character requests.
type Service struct {
	snapshots    *snapshot.Store
	orchestrator *enrich.Orchestrator
	opts         Options
	preload      singleflight.Group
}

// NewService creates a service over a snapshot store and an orchestrator.
func NewService(snapshots *snapshot.Store, orchestrator *enrich.Orchestrator, opts Options) *Service {
	if opts.PageSize < 1 {
		opts.PageSize = pagination.DefaultPageSize
	}
	if opts.LinkPath == "" {
		opts.LinkPath = DefaultLinkPath
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		snapshots:    snapshots,
		orchestrator: orchestrator,
		opts:         opts,
	}
}

// Ready reports whether a snapshot has been published.
func (s *Service) Ready() bool {
	_, ok := s.snapshots.Get()
	return ok
}

// Characters serves one request. The only error is a snapshot that could
// never be loaded (matching snapshot.ErrNoSnapshot) or a cancelled ctx;
// every other failure is reflected as sentinel values in the records.
func (s *Service) Characters(ctx context.Context, q Query) (*Response, error) {
	snap, err := s.snapshots.EnsureFresh(ctx, s.opts.Now())
	if err != nil {
		return nil, err
	}

	if s.opts.PreloadFilms {
		s.preloadFilms(ctx)
	}

	sel := pagination.Select(snap.Entities, pagination.Query{
		Search:   q.Search,
		Page:     q.Page,
		PageSize: s.opts.PageSize,
		All:      q.All,
	})

	s.opts.Logger.Debug().
		Str("search", q.Search).
		Int("page", sel.Page).
		Bool("all", q.All).
		Int("selected", len(sel.Items)).
		Int("total_pages", sel.TotalPages).
		Msg("Enriching selection")

	resp := &Response{
		Characters: s.orchestrator.Enrich(ctx, sel.Items),
		TotalPages: sel.TotalPages,
	}

	if q.All {
		resp.Next, resp.Previous = DisabledLink, DisabledLink
		return resp, nil
	}

	if sel.Page < sel.TotalPages {
		resp.Next = PageLink(s.opts.LinkPath, sel.Page+1, q.Search)
	}
	if sel.Page > 1 {
		resp.Previous = PageLink(s.opts.LinkPath, sel.Page-1, q.Search)
	}
	return resp, nil
}

// preloadFilms fills an empty film title cache. Failures are logged only.
func (s *Service) preloadFilms(ctx context.Context) {
	films := s.orchestrator.Films()
	if films.Titles().Len(ctx) > 0 {
		return
	}

	_, err, _ := s.preload.Do("films", func() (any, error) {
		return films.Preload(ctx)
	})
	if err != nil {
		s.opts.Logger.Warn().Err(err).Msg("Film preload failed")
	}
}
