// Package resolver turns the references of a person record into display
// values: the homeworld name, the species name and the film titles.
//
// Resolvers never fail past their boundary. Every Resolve returns a Result
// whose Value is always usable, carrying Sentinel in place of anything that
// could not be resolved, and whose Err records why. Callers decide what to
// do with the error (log it, count it); they never need to substitute
// values themselves.
//
// Fallback strategies when a person lists no references:
//   - Species: walk the species listing page by page and fetch each species
//     sequentially until one lists the person as a member.
//   - Films: list all films once and keep those whose characters include
//     the person.
//
// Film titles and species names are memoized in cache.ReferenceCache
// instances shared across requests.
package resolver
