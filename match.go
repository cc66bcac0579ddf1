package fxgains

import (
	"errors"
	"maps"
	"runtime"
	"slices"

	"github.com/etnz/fxgains/date"
	"golang.org/x/sync/errgroup"
)

// Match runs MatchTicker for every ticker in txs and returns the lots disposed
// within period. A zero period keeps every lot.
//
// Tickers are matched in parallel, each one owns its queue of open lots. The
// result is ordered by disposal date then ticker, whatever the order tickers
// complete in.
//
// If some tickers fail, the lots of the other tickers are returned along with
// an error joining every failure, in ticker order.
func Match(txs []Transaction, period date.Range) ([]MatchedLot, error) {
	byTicker := make(map[string][]Transaction)
	for _, tx := range txs {
		byTicker[tx.Ticker()] = append(byTicker[tx.Ticker()], tx)
	}
	tickers := slices.Sorted(maps.Keys(byTicker))

	results := make([][]MatchedLot, len(tickers))
	errs := make([]error, len(tickers))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, ticker := range tickers {
		g.Go(func() error {
			// failures are collected per ticker, so that all of them are reported.
			results[i], errs[i] = MatchTicker(ticker, byTicker[ticker])
			return nil
		})
	}
	_ = g.Wait()

	var matched []MatchedLot
	for _, lots := range results {
		for _, l := range lots {
			if period.IsZero() || period.Contains(l.Disposed) {
				matched = append(matched, l)
			}
		}
	}
	// tickers are already sorted, a stable sort keeps the FIFO order within a ticker.
	slices.SortStableFunc(matched, func(a, b MatchedLot) int { return a.Disposed.Compare(b.Disposed) })
	return matched, errors.Join(errs...)
}
