// Package resolver turns a free-text query into a capped ResultSet of enriched
// movie records.
//
// A resolution searches once, keeps the first movies.MaxResults matches in the
// order the API returned them, and enriches each match with a concurrent
// fetch-by-id batch, dropping the ones that fail. Short queries that overflow
// the API ("Too many results") run a fixed fallback chain: the identical search
// again, common title prefixes for single characters, then the three most
// recent calendar years. Every failure collapses to an empty ResultSet; Resolve
// never returns an error.
//
// CachingClient memoizes successful metadata responses in memory so repeated
// keystrokes and resets do not hit the network again.
package resolver
