package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/etnz/fxgains"
	"github.com/etnz/fxgains/config"
	"github.com/etnz/fxgains/date"
	"github.com/etnz/fxgains/logger"
	"github.com/etnz/fxgains/oxr"
	"github.com/etnz/fxgains/ratestore"
	"github.com/etnz/fxgains/renderer"
	"github.com/google/subcommands"
)

// ratesCmd holds the flags for the 'rates' subcommand.
type ratesCmd struct {
	input    string
	broker   string
	currency string
	export   string
	list     bool
}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "fetch the exchange rates of the trade dates" }
func (*ratesCmd) Usage() string {
	return `fxg rates -i <export> [-broker <name>] [-c <currency>]
fxg rates -list
fxg rates -export <file> [-c <currency>]

  Fetches from openexchangerates.org the USD rates of every trade date of the
  broker export missing from the rate database, and stores them in a new batch.

  -list prints the batches in store, -export writes the stored rates to a CSV
  file that 'fxg reconcile -rates' can read.

  The openexchangerates.org app id is read from the OXR_APP_ID environment
  variable or the configuration.
`
}

func (c *ratesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "Broker export whose trade dates need a rate")
	f.StringVar(&c.broker, "broker", "", "Broker export format, defaults to the configuration")
	f.StringVar(&c.currency, "c", "", "Home currency, defaults to the configuration")
	f.StringVar(&c.export, "export", "", "Write the stored rates to this CSV file")
	f.BoolVar(&c.list, "list", false, "List the rate batches in store")
}

func (c *ratesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	currency := cmpOr(c.currency, cfg.Currency)

	store, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	switch {
	case c.list:
		fetches, err := store.Fetches(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing rate batches: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RenderFetches(renderer.NewFetches(fetches)))

	case c.export != "":
		rates, err := store.Snapshot(ctx, cfg.Lookback, currency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading rates: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := writeFile(c.export, func(w io.Writer) error { return fxgains.ExportRatesCSV(w, rates) }); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}

	default:
		update, err := c.update(ctx, cfg, store, currency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RenderRates(update))
	}
	return subcommands.ExitSuccess
}

// update fetches and stores the rates missing for the trade dates of the export.
func (c *ratesCmd) update(ctx context.Context, cfg *config.Config, store *ratestore.Store, currency string) (*renderer.RatesUpdate, error) {
	txs, err := readTransactions(c.input, cmpOr(c.broker, cfg.Broker))
	if err != nil {
		return nil, err
	}
	var days []date.Date
	for _, tx := range txs {
		days = append(days, tx.Date())
	}
	slices.SortFunc(days, date.Date.Compare)
	days = slices.Compact(days)

	missing, err := store.Missing(ctx, currency, days)
	if err != nil {
		return nil, err
	}

	var fetchID string
	if len(missing) > 0 {
		if cfg.OXR.AppID == "" {
			return nil, errors.New("missing openexchangerates.org app id, set " + config.EnvAppID)
		}
		client := oxr.New(cfg.OXR.AppID,
			oxr.WithBaseURL(cfg.OXR.BaseURL),
			oxr.WithDiskCache(cfg.OXR.CacheDir),
			oxr.WithRequestsPerSecond(cfg.OXR.RequestsPerSecond),
		)
		logger.L.Info("fetching rates", "currency", currency, "days", len(missing))
		h, err := client.Fetch(ctx, currency, missing)
		if err != nil {
			return nil, fmt.Errorf("cannot fetch %s rates: %w", currency, err)
		}
		if fetchID, err = store.Put(ctx, currency, h); err != nil {
			return nil, fmt.Errorf("cannot store %s rates: %w", currency, err)
		}
	}

	known, err := store.History(ctx, currency)
	if err != nil {
		return nil, err
	}
	return renderer.NewRatesUpdate(currency, fetchID, missing, known.Len()), nil
}
