package fxgains

import (
	"testing"

	"github.com/etnz/fxgains/date"
	"github.com/shopspring/decimal"
)

// usd is a helper for test to create usd money from const
func usd(v float64) Money { return M(v, USD) }

// jpy is a helper for test to create yen money from const
func jpy(v float64) Money { return M(v, "JPY") }

// d parses an ISO date or panics.
func d(s string) date.Date { return date.MustParse(s) }

// dec parses a decimal or panics.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// buy returns a buy transaction at 'row' without fees.
func buy(t *testing.T, row int, on, ticker string, quantity, price float64) Transaction {
	t.Helper()
	return buyWithFees(t, row, on, ticker, quantity, price, 0)
}

func buyWithFees(t *testing.T, row int, on, ticker string, quantity, price, fees float64) Transaction {
	t.Helper()
	tx, err := NewTransaction(row, ticker, Buy, d(on), Q(quantity), usd(price), usd(fees))
	if err != nil {
		t.Fatalf("NewTransaction() error = %v", err)
	}
	return tx
}

// sell returns a sell transaction at 'row' without fees.
func sell(t *testing.T, row int, on, ticker string, quantity, price float64) Transaction {
	t.Helper()
	return sellWithFees(t, row, on, ticker, quantity, price, 0)
}

func sellWithFees(t *testing.T, row int, on, ticker string, quantity, price, fees float64) Transaction {
	t.Helper()
	tx, err := NewTransaction(row, ticker, Sell, d(on), Q(quantity), usd(price), usd(fees))
	if err != nil {
		t.Fatalf("NewTransaction() error = %v", err)
	}
	return tx
}
