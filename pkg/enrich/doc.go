// Package enrich assembles full person records from listing entries.
//
// For every entity the Orchestrator fetches the person detail and then runs
// the homeworld, species and film resolvers side by side. All entities of a
// call are processed concurrently; upstream pressure is bounded by the
// admission slots of the shared client, not here.
//
// The output always has one record per input entity, in input order. A
// failed detail fetch yields a record whose derived fields are all
// resolver.Sentinel; a failed resolver degrades only its own field.
package enrich
