// Package main hosts the marquee CLI entrypoint and command graph.
//
// The Cobra command tree resolves movie queries against OMDb and presents them
// as card grids: one-shot searches, an interactive line-driven browser, and an
// HTTP surface for web browsers. Configuration resolution, logger setup, and
// resolver wiring live here so subcommands only deal with presentation.
package main
