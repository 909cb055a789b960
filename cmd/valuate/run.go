package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"portfolio_backend/internal/feature/valuation/domain/entity"
	"portfolio_backend/internal/feature/valuation/transport/http/dto"
	"portfolio_backend/internal/shared/caldate"
)

type runCmd struct {
	date      string
	force     bool
	portfolio uint
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "recompute balances and prices up to a date" }
func (*runCmd) Usage() string {
	return `valuate run [-d <date>] [-force] [-p <portfolio id>]

  Reconciles every portfolio (or only -p) up to -d, which defaults to today
  in each portfolio's timezone. Prints one outcome per portfolio as JSON and
  exits non-zero when any portfolio failed.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Target date (YYYY-MM-DD). Defaults to today per portfolio.")
	f.BoolVar(&c.force, "force", false, "Refetch prices for every record, ignoring cached values.")
	f.UintVar(&c.portfolio, "p", 0, "Only this portfolio id.")
}

func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var target caldate.Date
	if c.date != "" {
		d, err := caldate.Parse(c.date)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error: invalid -d:", err)
			return subcommands.ExitUsageError
		}
		target = d
	}

	a, err := openApp(ctx, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	var outs []entity.Outcome
	if c.portfolio != 0 {
		o, err := a.Scheduler.Run(ctx, c.portfolio, target, c.force)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		outs = []entity.Outcome{o}
	} else {
		outs = a.Scheduler.RunAll(ctx, target, c.force)
	}
	return report(os.Stdout, outs)
}

// report prints outs and maps them to an exit status.
func report(w io.Writer, outs []entity.Outcome) subcommands.ExitStatus {
	items := make([]dto.OutcomeItem, 0, len(outs))
	failed := false
	for _, o := range outs {
		items = append(items, dto.OutcomeItem{
			RunID:       o.RunID,
			PortfolioID: o.PortfolioID,
			Target:      o.Target.API(),
			Status:      string(o.Status),
			Details:     o.Details,
			Checked:     o.Checked,
			Updated:     o.Updated,
			Failed:      o.Failed,
		})
		if o.Status == entity.StatusFailed {
			failed = true
		}
	}
	if err := writeJSON(w, dto.RunResponse{Outcomes: items}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if failed {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
