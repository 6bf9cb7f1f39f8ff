package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/browse"
	"marquee/internal/render"
	"marquee/internal/viewstate"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var year int
	var sortFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Resolve a query once and print the card grid",
		Long: "Resolve a query once and print the card grid.\n\n" +
			"With no query the configured default query is shown.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := viewstate.ParseSortMode(sortFlag)
			if err != nil {
				return err
			}
			req := browse.ViewRequest{Query: strings.Join(args, " "), Sort: mode}
			if cmd.Flags().Changed("year") {
				req.Year = &year
			}

			r, cfg, _, err := ctx.newResolver()
			if err != nil {
				return err
			}
			frame := browse.BuildFrame(cmd.Context(), r, cfg.Browse.DefaultQuery, req, time.Now)
			if err := cmd.Context().Err(); err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, render.NewFrameJSON(frame))
			}
			out := cmd.OutOrStdout()
			_, err = fmt.Fprint(out, render.FormatFrame(frame, cfg.Browse.Columns, render.ShouldColorize(out)))
			return err
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Only show movies released in this year")
	cmd.Flags().StringVar(&sortFlag, "sort", "default", sortFlagUsage())
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func sortFlagUsage() string {
	names := make([]string, 0, len(viewstate.SortModes()))
	for _, mode := range viewstate.SortModes() {
		names = append(names, mode.String())
	}
	return "Sort order: " + strings.Join(names, ", ")
}
