// Package server exposes the browser rendering surface over HTTP.
//
// Every request builds its own view state from the resolver, so concurrent
// visitors never share filter or sort selections. Routes:
//
//	GET /             HTML card grid with search, year and sort controls
//	GET /api/movies   the same view as JSON (q, year, sort)
//	GET /api/years    year menu for a query
//	GET /healthz      liveness
//	GET /metrics      Prometheus exposition
package server
