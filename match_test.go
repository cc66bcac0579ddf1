package fxgains

import (
	"errors"
	"testing"

	"github.com/etnz/fxgains/date"
)

func TestMatch(t *testing.T) {
	txs := []Transaction{
		buy(t, 1, "2021-05-01", "MSFT", 10, 200),
		buy(t, 2, "2022-03-01", "AAPL", 5, 150),
		sell(t, 3, "2022-12-30", "MSFT", 2, 250), // previous tax year
		sell(t, 4, "2023-06-01", "AAPL", 5, 180),
		sell(t, 5, "2023-02-01", "MSFT", 8, 260),
	}

	lots, err := Match(txs, date.Year(2023))
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	want := []struct {
		ticker   string
		disposed date.Date
		quantity Quantity
	}{
		{"MSFT", d("2023-02-01"), Q(8)},
		{"AAPL", d("2023-06-01"), Q(5)},
	}
	if len(lots) != len(want) {
		t.Fatalf("Match() returned %d lots want %d: %v", len(lots), len(want), lots)
	}
	for i, w := range want {
		if lots[i].Ticker != w.ticker || lots[i].Disposed != w.disposed || !lots[i].Quantity.Equal(w.quantity) {
			t.Errorf("lot[%d] = %s %s %v want %s %s %v", i, lots[i].Ticker, lots[i].Disposed, lots[i].Quantity, w.ticker, w.disposed, w.quantity)
		}
	}

	all, err := Match(txs, date.Range{})
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Match() without period returned %d lots want 3", len(all))
	}
}

func TestMatch_SameDayTickersOrdered(t *testing.T) {
	txs := []Transaction{
		buy(t, 1, "2022-01-01", "ZZZ", 1, 1),
		buy(t, 2, "2022-01-01", "AAA", 1, 1),
		sell(t, 3, "2023-01-01", "ZZZ", 1, 2),
		sell(t, 4, "2023-01-01", "AAA", 1, 2),
	}
	lots, err := Match(txs, date.Year(2023))
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(lots) != 2 || lots[0].Ticker != "AAA" || lots[1].Ticker != "ZZZ" {
		t.Errorf("Match() = %v want AAA then ZZZ", lots)
	}
}

func TestMatch_PartialFailure(t *testing.T) {
	txs := []Transaction{
		buy(t, 1, "2022-01-01", "GOOD", 10, 10),
		sell(t, 2, "2023-01-01", "GOOD", 10, 12),
		sell(t, 3, "2023-02-01", "SHORT", 5, 10),
		buy(t, 4, "2022-01-01", "LATE", 1, 10),
		sell(t, 5, "2023-03-01", "LATE", 2, 10),
	}
	lots, err := Match(txs, date.Year(2023))
	if !errors.Is(err, ErrInsufficientLots) {
		t.Fatalf("Match() error = %v want ErrInsufficientLots", err)
	}
	if len(lots) != 1 || lots[0].Ticker != "GOOD" {
		t.Errorf("Match() = %v want the GOOD lot only", lots)
	}

	// every failing ticker is reported
	var tickers []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ierr *InsufficientLotError
		if errors.As(e, &ierr) {
			tickers = append(tickers, ierr.Ticker)
		}
	}
	if len(tickers) != 2 || tickers[0] != "LATE" || tickers[1] != "SHORT" {
		t.Errorf("Match() failing tickers = %v want [LATE SHORT]", tickers)
	}
}
