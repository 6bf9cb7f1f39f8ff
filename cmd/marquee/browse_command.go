package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"marquee/internal/browse"
	"marquee/internal/render"
	"marquee/internal/viewstate"
)

const browseHelp = `Each input line is the current content of the search box; a blank line clears it.
Commands:
  :year N     show only movies from year N
  :year       show every year
  :sort MODE  default, alphabetical-az, alphabetical-za, newest-to-oldest, oldest-to-newest
  :home       clear the search and restore the default view
  :browse     focus the search box
  :quit       exit`

func newBrowseCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse movies interactively from standard input",
		Long:  "Browse movies interactively from standard input.\n\n" + browseHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cfg, logger, err := ctx.newResolver()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var renderer browse.Renderer = render.NewTerminal(out, cfg.Browse.Columns)
			if asJSON {
				renderer = render.NewJSON(out)
			}
			in := cmd.InOrStdin()
			if isTerminal(in) && !asJSON {
				fmt.Fprintln(cmd.ErrOrStderr(), browseHelp)
			}

			session := browse.NewSession(r, renderer, browse.Options{
				DefaultQuery: cfg.Browse.DefaultQuery,
				Debounce:     cfg.DebounceDelay(),
				KeepStale:    !cfg.Browse.DiscardStale,
				Logger:       logger,
				Now:          time.Now,
			})
			defer session.Close()

			runCtx := cmd.Context()
			session.Start(runCtx)
			session.Wait()

			scanner := bufio.NewScanner(in)
			for scanner.Scan() {
				if err := runCtx.Err(); err != nil {
					return err
				}
				line := scanner.Text()
				if !strings.HasPrefix(strings.TrimSpace(line), ":") {
					session.Input(runCtx, line)
					continue
				}
				// Commands act on the settled view of everything typed so far.
				session.Flush()
				session.Wait()
				quit, err := runBrowseCommand(runCtx, session, strings.TrimSpace(line))
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
				if quit {
					break
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			session.Flush()
			session.Wait()
			return runCtx.Err()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit one JSON document per settled frame")
	return cmd
}

func runBrowseCommand(ctx context.Context, session *browse.Session, line string) (bool, error) {
	fields := strings.Fields(strings.TrimPrefix(line, ":"))
	if len(fields) == 0 {
		return false, fmt.Errorf("empty command (try :quit)")
	}
	switch fields[0] {
	case "quit", "q", "exit":
		return true, nil
	case "year":
		if len(fields) == 1 {
			return false, session.SetYearFilter(nil)
		}
		y, err := strconv.Atoi(fields[1])
		if err != nil || y <= 0 {
			return false, fmt.Errorf("invalid year %q", fields[1])
		}
		return false, session.SetYearFilter(&y)
	case "sort":
		value := ""
		if len(fields) > 1 {
			value = fields[1]
		}
		mode, err := viewstate.ParseSortMode(value)
		if err != nil {
			return false, err
		}
		return false, session.SetSort(mode)
	case "home":
		session.Reset(ctx)
		session.Wait()
		return false, nil
	case "browse":
		return false, session.Focus()
	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
