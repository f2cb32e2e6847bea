// Package swapi models the upstream Star Wars catalog API (swapi.tech shape):
// the paginated listing envelope, the nested detail envelope and the helpers
// used to build and match resource URLs.
//
// Listing pages look like:
//
//	{"results": [{"uid": "1", "name": "Luke Skywalker", "url": ".../people/1"}],
//	 "next": ".../people?page=2&limit=10"}
//
// Detail records nest their attributes under result.properties:
//
//	{"result": {"uid": "1", "properties": {"name": "Luke Skywalker", "homeworld": ".../planets/1"}}}
//
// The film listing is not paginated and carries full records under "result"
// (some deployments use "results"); [FilmListing.Items] accepts both.
package swapi
