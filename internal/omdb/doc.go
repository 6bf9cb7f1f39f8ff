// Package omdb provides the minimal OMDb API client used to resolve movie
// queries.
//
// It exposes the two call shapes the resolver needs: search-by-term, which
// returns lightweight matches, and fetch-by-id, which returns one enriched
// title. API-level failures are translated into the services error markers
// (no match, too many results, not found) and everything else surfaces as a
// transport failure. Options allow callers to supply custom HTTP clients, a
// request rate limiter, and a circuit breaker without modifying production code.
package omdb
