// Package pagination walks cursor-paginated upstream listings and slices
// the local snapshot into client-facing pages.
//
// Upstream listings return {results, next} envelopes where next is the
// absolute URL of the following page or null. Walk follows the cursor one
// page at a time until next is null or a page comes back empty:
//
//	err := pagination.Walk(ctx, c, endpoints.People(),
//		func(page int, items []swapi.BaseEntity) (bool, error) {
//			all = append(all, items...)
//			return false, nil
//		})
//
// Select applies the search filter and 1-based page slicing over an
// in-memory entity list:
//
//	res := pagination.Select(snap.Entities, pagination.Query{
//		Search:   "sky",
//		Page:     2,
//		PageSize: 10,
//	})
//	// res.Items, res.TotalPages
package pagination
