// Package fxgains reconciles US stock trades into realized gains reported in a
// home currency.
//
// The engine is a short pipeline of pure functions:
//   - Match pairs every sale with the oldest still-open acquisitions of the same
//     ticker (FIFO) and produces MatchedLot values denominated in USD.
//   - Convert turns each MatchedLot into a ConvertedLot, converting the cost
//     basis with the rate of the acquisition date and the proceeds with the
//     rate of the disposal date. The two legs are never converted with a single
//     rate.
//   - Aggregate folds converted lots into a Report: the per-lot table and the
//     running net gain series ordered by disposal date.
//
// Reconcile chains the three steps. Exchange rates are read from a Rates
// snapshot built before the run, so that a run never performs I/O and repeated
// runs on the same input produce identical results.
//
// Transactions come from broker exports through the parsers of the broker
// package; rates are fetched by the oxr package and cached by ratestore.
package fxgains
