// Package viewstate holds the filter/sort engine behind a card grid.
//
// A State keeps the full ResultSet of the latest resolution, an optional year
// filter and a sort mode. The derived view is always the full set filtered by
// year and then stably sorted; it is recomputed from scratch on every change so
// filters never compound. A State is owned by exactly one session or request
// and is not safe for concurrent use.
package viewstate
