// cmd/tools/matchctl/root.go
package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"delegation-workers/internal/common/logger"
	"delegation-workers/internal/matching"
)

// app carries the global flags shared by every subcommand.
type app struct {
	out       io.Writer
	outputFmt string
	now       string
	engine    *matching.Engine
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{
		out:    out,
		engine: matching.NewEngine(logger.NewNoOpLogger()),
	}

	root := &cobra.Command{
		Use:   "matchctl",
		Short: "Run the provider matching engine against local fixtures",
		Long: `matchctl scores, ranks and prices providers without Zeebe, Postgres or Redis.

Fixtures are TOML files holding a [criteria] table and [[candidates]] entries,
or [[items]] entries for evaluate.

Examples:
  matchctl match -f fixture.toml --now 2026-03-10T12:00:00Z
  matchctl assign -f fixture.toml --min-score 0.8
  matchctl price --service research --urgency low --experience junior --hours 4
  matchctl evaluate -f items.toml -o json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVarP(&a.outputFmt, "output", "o", "table", "output format (table, json)")
	root.PersistentFlags().StringVar(&a.now, "now", "", "scoring time as RFC3339 (default: fixture value or current time)")

	root.AddCommand(
		newMatchCmd(a),
		newAssignCmd(a),
		newPriceCmd(a),
		newEvaluateCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(a.out, "matchctl %s\n", Version)
			},
		},
	)
	return root
}

// scoringTime resolves --now, then the fixture's own time, then the wall clock.
func (a *app) scoringTime(fixtureNow *time.Time) (time.Time, error) {
	if a.now != "" {
		t, err := time.Parse(time.RFC3339, a.now)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --now: %w", err)
		}
		return t, nil
	}
	if fixtureNow != nil {
		return *fixtureNow, nil
	}
	return time.Now(), nil
}

func (a *app) wantJSON() (bool, error) {
	switch a.outputFmt {
	case "json":
		return true, nil
	case "table", "":
		return false, nil
	default:
		return false, fmt.Errorf("unknown output format: %s", a.outputFmt)
	}
}
