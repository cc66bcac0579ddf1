// Package cmd implements the fxg command line application.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/fxgains"
	"github.com/etnz/fxgains/broker"
	"github.com/etnz/fxgains/config"
	"github.com/etnz/fxgains/logger"
	"github.com/etnz/fxgains/ratestore"
	"github.com/etnz/fxgains/renderer"
	"github.com/google/subcommands"

	// registered brokers
	_ "github.com/etnz/fxgains/broker/firstrade"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reconcileCmd{}, "gains")
	c.Register(&assistCmd{}, "gains")

	c.Register(&ratesCmd{}, "rates")

	c.Register(&topicCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configPath = flag.String("config", config.DefaultPath(), "Path to the configuration file")
	database   = flag.String("db", "", "Path to the exchange rate database, overrides the configuration")
	logLevel   = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides the configuration")
)

// loadConfig loads the configuration, applies the global flags and initializes the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *database != "" {
		cfg.Database = *database
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger.Init(cfg.LogLevel)
	return cfg, nil
}

// openStore opens the rate database of the configuration.
func openStore(ctx context.Context, cfg *config.Config) (*ratestore.Store, error) {
	store, err := ratestore.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("cannot open rate database %q: %w", cfg.Database, err)
	}
	return store, nil
}

// readTransactions parses the broker export at path.
//
// Rows that cannot be read are logged and listed on stderr, the other rows are returned.
func readTransactions(path, brokerName string) ([]fxgains.Transaction, error) {
	if path == "" {
		return nil, errors.New("missing broker export, use -i <file>")
	}
	p, err := broker.Get(brokerName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	txs, err := p.Parse(f)
	if !broker.IsRecoverable(err) {
		return nil, fmt.Errorf("cannot read %s export %q: %w", p.Name(), path, err)
	}
	if rows := broker.ParseErrors(err); len(rows) > 0 {
		for _, e := range rows {
			logger.L.Warn("skipped row", "file", path, "row", e.Row, "column", e.Column, "error", e.Err)
		}
		fmt.Fprint(os.Stderr, renderer.SkippedRows(rows))
	}
	logger.L.Info("broker export read", "file", path, "broker", p.Name(), "transactions", len(txs))
	return txs, nil
}

// printMarkdown renders md for the terminal, or prints it as is if it cannot.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
