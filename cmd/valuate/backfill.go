package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"portfolio_backend/internal/feature/valuation/transport/http/dto"
	"portfolio_backend/internal/shared/caldate"
)

type backfillCmd struct {
	portfolio uint
	asset     uint
	start     string
	end       string
}

func (*backfillCmd) Name() string     { return "backfill" }
func (*backfillCmd) Synopsis() string { return "fetch a price history and write only what changed" }
func (*backfillCmd) Usage() string {
	return `valuate backfill -p <portfolio id> -a <asset id> -s <start> -e <end>

  Fetches daily prices of one asset for [start, end) in a single provider
  call, stores changed price points and reprices that asset's records.
`
}

func (c *backfillCmd) SetFlags(f *flag.FlagSet) {
	f.UintVar(&c.portfolio, "p", 0, "Portfolio id.")
	f.UintVar(&c.asset, "a", 0, "Asset id.")
	f.StringVar(&c.start, "s", "", "First day (YYYY-MM-DD), inclusive.")
	f.StringVar(&c.end, "e", "", "Last day (YYYY-MM-DD), exclusive.")
}

func (c *backfillCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.portfolio == 0 || c.asset == 0 {
		fmt.Fprintln(os.Stderr, "Error: -p and -a are required.")
		return subcommands.ExitUsageError
	}
	start, err := caldate.Parse(c.start)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: invalid -s:", err)
		return subcommands.ExitUsageError
	}
	end, err := caldate.Parse(c.end)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: invalid -e:", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	res, err := a.Scheduler.BackfillRange(ctx, c.portfolio, c.asset, start, end)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := writeJSON(os.Stdout, dto.BackfillResponse{
		Fetched:        res.Fetched,
		PricesWritten:  res.PricesWritten,
		RecordsWritten: res.RecordsWritten,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
