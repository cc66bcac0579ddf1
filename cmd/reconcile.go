package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/fxgains"
	"github.com/etnz/fxgains/config"
	"github.com/etnz/fxgains/date"
	"github.com/etnz/fxgains/logger"
	"github.com/etnz/fxgains/renderer"
	"github.com/google/subcommands"
)

// reconcileCmd holds the flags for the 'reconcile' subcommand.
type reconcileCmd struct {
	input    string
	broker   string
	currency string
	year     int
	rates    string
	csv      string
	jsonl    string
	series   string
	daily    bool
	bySymbol bool
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "realized gains of a tax year in the home currency" }
func (*reconcileCmd) Usage() string {
	return `fxg reconcile -i <export> [-broker <name>] [-c <currency>] [-y <year>] [-rates <file>] [-csv <file>] [-series <file> [-daily]] [-jsonl <file>]

  Matches every sale of the broker export with its acquisitions (FIFO),
  converts both legs of each lot with the exchange rate of their own date and
  prints the realized gains of the year.

  Rates are read from the rate database, see 'fxg rates', or from a CSV file
  with columns Currency,Date,Rate with -rates.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "Broker export to read")
	f.StringVar(&c.broker, "broker", "", "Broker export format, defaults to the configuration")
	f.StringVar(&c.currency, "c", "", "Home currency, defaults to the configuration")
	f.IntVar(&c.year, "y", date.Today().Year()-1, "Tax year, 0 for every year")
	f.StringVar(&c.rates, "rates", "", "Read the exchange rates from this CSV file instead of the database")
	f.StringVar(&c.csv, "csv", "", "Write the lots to this CSV file")
	f.StringVar(&c.jsonl, "jsonl", "", "Write the lots to this JSONL file")
	f.StringVar(&c.series, "series", "", "Write the cumulative gain series to this CSV file")
	f.BoolVar(&c.daily, "daily", false, "Write one series row per day of the year instead of per sale date")
	f.BoolVar(&c.bySymbol, "by-symbol", false, "Sort the lots by symbol in the report")
}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.daily && c.year == 0 {
		fmt.Fprintln(os.Stderr, "-daily requires a tax year")
		return subcommands.ExitUsageError
	}

	report, err := c.reconcile(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := c.export(report); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	md := renderer.RenderReport(renderer.NewReport(report, c.bySymbol), renderer.ReportRenderOptions{BySymbol: c.bySymbol})
	printMarkdown(md)
	return subcommands.ExitSuccess
}

// reconcile reads the export and the rates, and runs the reconciliation.
func (c *reconcileCmd) reconcile(ctx context.Context, cfg *config.Config) (*fxgains.Report, error) {
	brokerName := cmpOr(c.broker, cfg.Broker)
	currency := cmpOr(c.currency, cfg.Currency)

	txs, err := readTransactions(c.input, brokerName)
	if err != nil {
		return nil, err
	}

	var rates *fxgains.Rates
	if c.rates != "" {
		rates, err = readRates(c.rates, cfg.Lookback)
	} else {
		rates, err = storedRates(ctx, cfg, currency)
	}
	if err != nil {
		return nil, err
	}

	opts := fxgains.Options{Currency: currency, Rates: rates}
	if c.year != 0 {
		opts.Year = date.Year(c.year)
	}
	report, err := fxgains.Reconcile(txs, opts)
	if err != nil {
		return nil, err
	}
	logger.L.Info("reconciled", "year", c.year, "currency", report.Currency, "lots", len(report.Lots))
	return report, nil
}

// readRates reads a rates CSV file.
func readRates(path string, lookback int) (*fxgains.Rates, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b := fxgains.NewRatesBuilder().Lookback(lookback)
	if err := fxgains.ImportRatesCSV(f, b); err != nil {
		return nil, fmt.Errorf("cannot read rates %q: %w", path, err)
	}
	return b.Build()
}

// storedRates loads the snapshot of currency from the rate database.
func storedRates(ctx context.Context, cfg *config.Config, currency string) (*fxgains.Rates, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Snapshot(ctx, cfg.Lookback, currency)
}

// export writes the requested files.
func (c *reconcileCmd) export(report *fxgains.Report) error {
	if c.csv != "" {
		if err := writeFile(c.csv, func(w io.Writer) error { return fxgains.ExportCSV(w, report.Lots) }); err != nil {
			return err
		}
	}
	if c.jsonl != "" {
		if err := writeFile(c.jsonl, func(w io.Writer) error { return fxgains.ExportJSONL(w, report.Lots) }); err != nil {
			return err
		}
	}
	if c.series != "" {
		series := report.Series
		if c.daily {
			series = series.Daily(date.Year(c.year))
		}
		if err := writeFile(c.series, func(w io.Writer) error { return fxgains.ExportSeriesCSV(w, series) }); err != nil {
			return err
		}
	}
	return nil
}

// writeFile creates path and writes its content with write.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("cannot write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.L.Info("written", "file", path)
	return nil
}

func cmpOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
