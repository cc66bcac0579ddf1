package fxgains

import (
	"testing"

	"github.com/etnz/fxgains/date"
)

func jpyLot(ticker, disposed string, gain float64) ConvertedLot {
	return ConvertedLot{
		MatchedLot:    MatchedLot{Ticker: ticker, Quantity: Q(1), Acquired: d("2022-01-03"), Disposed: d(disposed), CostBasis: usd(0), Proceeds: usd(0)},
		Currency:      "JPY",
		ConvertedGain: jpy(gain),
		Gain:          usd(0),
	}
}

func TestAggregate(t *testing.T) {
	lots := []ConvertedLot{
		jpyLot("B", "2023-05-01", -300),
		jpyLot("A", "2023-02-01", 1000),
		jpyLot("C", "2023-05-01", 500),
	}
	r := Aggregate(lots)

	if r.Currency != "JPY" {
		t.Errorf("Currency = %q want JPY", r.Currency)
	}
	if len(r.Lots) != 3 || r.Lots[0].Ticker != "A" || r.Lots[1].Ticker != "B" || r.Lots[2].Ticker != "C" {
		t.Errorf("Lots are not ordered by disposal date: %v", r.Lots)
	}

	want := Series{
		{Date: d("2023-02-01"), Gain: jpy(1000), Cumulative: jpy(1000)},
		{Date: d("2023-05-01"), Gain: jpy(200), Cumulative: jpy(1200)},
	}
	if len(r.Series) != len(want) {
		t.Fatalf("Series = %v want %v", r.Series, want)
	}
	for i, w := range want {
		got := r.Series[i]
		if got.Date != w.Date || !got.Gain.Equal(w.Gain) || !got.Cumulative.Equal(w.Cumulative) {
			t.Errorf("Series[%d] = %v %v %v want %v %v %v", i, got.Date, got.Gain, got.Cumulative, w.Date, w.Gain, w.Cumulative)
		}
	}
	for i := 1; i < len(r.Series); i++ {
		if !r.Series[i-1].Date.Before(r.Series[i].Date) {
			t.Errorf("Series dates not strictly increasing at %d", i)
		}
	}
	if !r.Series.Last().Equal(r.Totals().ConvertedGain) {
		t.Errorf("Last() = %v want the total converted gain %v", r.Series.Last(), r.Totals().ConvertedGain)
	}
	if got := r.Tickers(); len(got) != 3 || got[0] != "A" || got[2] != "C" {
		t.Errorf("Tickers() = %v", got)
	}
}

func TestAggregate_Empty(t *testing.T) {
	r := Aggregate(nil)
	if len(r.Lots) != 0 || len(r.Series) != 0 {
		t.Errorf("Aggregate(nil) = %+v want an empty report", r)
	}
	if !r.Series.Last().IsZero() {
		t.Errorf("Last() = %v want zero", r.Series.Last())
	}
}

func TestSeries_Daily(t *testing.T) {
	s := Aggregate([]ConvertedLot{
		jpyLot("A", "2022-12-30", 50),
		jpyLot("A", "2023-01-02", 100),
		jpyLot("A", "2023-01-04", -30),
	}).Series

	daily := s.Daily(date.Range{From: d("2023-01-01"), To: d("2023-01-05")})
	want := []float64{50, 150, 150, 120, 120}
	if len(daily) != len(want) {
		t.Fatalf("Daily() returned %d points want %d", len(daily), len(want))
	}
	for i, w := range want {
		if daily[i].Date != d("2023-01-01").Add(i) {
			t.Errorf("Daily()[%d].Date = %v", i, daily[i].Date)
		}
		if !daily[i].Cumulative.Equal(jpy(w)) {
			t.Errorf("Daily()[%d].Cumulative = %v want %v", i, daily[i].Cumulative.Decimal(), w)
		}
	}
}

func TestSeries_DailyEmptyRange(t *testing.T) {
	s := Aggregate([]ConvertedLot{jpyLot("A", "2023-01-02", 100)}).Series

	tests := map[string]date.Range{
		"zero":     {},
		"inverted": {From: d("2023-01-05"), To: d("2023-01-01")},
	}
	for name, r := range tests {
		t.Run(name, func(t *testing.T) {
			if got := s.Daily(r); got != nil {
				t.Errorf("Daily(%v) = %v want nil", r, got)
			}
		})
	}
}
