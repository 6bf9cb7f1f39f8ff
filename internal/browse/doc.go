// Package browse drives one interactive browsing session.
//
// A Session owns a view state, a debounced search input and a renderer. Input
// is normalized, debounced and resolved in the background; the previous grid
// stays visible with a loading marker until the new ResultSet arrives. Year
// filter and sort changes re-render immediately. When several searches overlap,
// only the most recently submitted one updates the grid unless stale discarding
// is turned off.
package browse
