package pagination

import (
	"slices"
	"strings"

	"github.com/Sternrassler/swapi-aggregator/pkg/swapi"
)

// DefaultPageSize is the number of entities per client page.
const DefaultPageSize = 10

// Query selects a page of entities.
type Query struct {
	// Search is matched case-insensitively as a substring of the name.
	Search string
	// Page is 1-based; values below 1 select the first page.
	Page     int
	PageSize int
	// All bypasses paging and returns the whole filtered list.
	All bool
}

// Normalize returns q with Page and PageSize clamped to usable values.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	return q
}

// Result is a selected page.
type Result struct {
	Items      []swapi.BaseEntity
	TotalPages int
	Page       int
}

// Filter returns the entities whose name contains search, ignoring case.
// An empty search matches everything; whitespace is matched literally.
func Filter(entities []swapi.BaseEntity, search string) []swapi.BaseEntity {
	needle := strings.ToLower(search)
	if needle == "" {
		return entities
	}

	out := make([]swapi.BaseEntity, 0)
	for _, e := range entities {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out = append(out, e)
		}
	}
	return out
}

// Select filters entities by q.Search and slices the requested page.
// A page past the end yields an empty slice. The returned slice shares
// memory with entities and must not be modified.
func Select(entities []swapi.BaseEntity, q Query) Result {
	q = q.Normalize()
	filtered := Filter(entities, q.Search)

	if q.All {
		return Result{Items: slices.Clip(filtered), TotalPages: 1, Page: 1}
	}

	total := (len(filtered) + q.PageSize - 1) / q.PageSize

	start := len(filtered)
	if q.Page-1 < total {
		start = (q.Page - 1) * q.PageSize
	}
	end := min(start+q.PageSize, len(filtered))

	return Result{
		Items:      slices.Clip(filtered[start:end]),
		TotalPages: total,
		Page:       q.Page,
	}
}
