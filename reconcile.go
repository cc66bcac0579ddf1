package fxgains

import (
	"errors"
	"fmt"

	"github.com/etnz/fxgains/date"
)

// Options configures a reconciliation run.
type Options struct {
	// Year restricts the report to lots disposed within it. Zero means every lot.
	Year date.Range
	// Currency is the home currency the legs are converted to.
	Currency string
	// Rates is the pinned snapshot of exchange rates for the run.
	Rates RateProvider
}

// Reconcile matches txs, converts the lots disposed within opts.Year into
// opts.Currency and aggregates them into a Report.
//
// txs must contain the full history of the tickers, including acquisitions
// older than the tax year. Any matching or conversion failure fails the run.
func Reconcile(txs []Transaction, opts Options) (*Report, error) {
	if opts.Currency == "" {
		return nil, errors.New("missing target currency")
	}
	if opts.Rates == nil {
		return nil, errors.New("missing exchange rates")
	}

	matched, err := Match(txs, opts.Year)
	if err != nil {
		return nil, fmt.Errorf("cannot match lots: %w", err)
	}

	converted, err := Convert(matched, opts.Currency, opts.Rates)
	if err != nil {
		return nil, fmt.Errorf("cannot convert lots to %s: %w", opts.Currency, err)
	}

	report := Aggregate(converted)
	report.Year = opts.Year
	report.Currency = normalizeCurrency(opts.Currency)
	return report, nil
}
