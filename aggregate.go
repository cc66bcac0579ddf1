package fxgains

import (
	"slices"

	"github.com/etnz/fxgains/date"
)

// Point is the net converted gain realized on a day and the running total up to that day.
type Point struct {
	Date       date.Date `json:"date"`
	Gain       Money     `json:"gain"`
	Cumulative Money     `json:"cumulative"`
}

// Series is a chronological list of points, at most one per day.
type Series []Point

// Last returns the final running total, or zero for an empty series.
func (s Series) Last() Money {
	if len(s) == 0 {
		return Money{}
	}
	return s[len(s)-1].Cumulative
}

// Daily returns one point per day of r, carrying the running total over the
// days without disposal. Gains realized before r are part of the opening total.
// An empty or inverted range has no day.
func (s Series) Daily(r date.Range) Series {
	if r.IsZero() || r.From.After(r.To) {
		return nil
	}
	currency := ""
	if len(s) > 0 {
		currency = s[0].Gain.Currency()
	}
	opening := M(0, currency)
	gains := make(map[date.Date]Money, len(s))
	for _, p := range s {
		switch {
		case p.Date.Before(r.From):
			opening = opening.Add(p.Gain)
		case r.Contains(p.Date):
			gains[p.Date] = p.Gain
		}
	}

	daily := make(Series, 0, r.To.Sub(r.From)+1)
	cumulative := opening
	for day := range r.Days() {
		gain, ok := gains[day]
		if !ok {
			gain = M(0, currency)
		}
		cumulative = cumulative.Add(gain)
		daily = append(daily, Point{Date: day, Gain: gain, Cumulative: cumulative})
	}
	return daily
}

// Totals sums the legs of a set of lots.
type Totals struct {
	Quantity           Quantity `json:"quantity"`
	CostBasis          Money    `json:"cost_basis"`
	Proceeds           Money    `json:"proceeds"`
	Gain               Money    `json:"gain"`
	ConvertedCostBasis Money    `json:"converted_cost_basis"`
	ConvertedProceeds  Money    `json:"converted_proceeds"`
	ConvertedGain      Money    `json:"converted_gain"`
}

// Report is the result of a reconciliation run.
type Report struct {
	Year     date.Range     `json:"year"`
	Currency string         `json:"currency"`
	Lots     []ConvertedLot `json:"lots"`   // ordered by disposal date
	Series   Series         `json:"series"` // one point per disposal date
}

// Aggregate builds the report of lots: the per lot table ordered by disposal
// date, and the running net converted gain with one point per disposal date,
// lots disposed the same day being summed.
//
// It only depends on lots, it can be recomputed at will.
func Aggregate(lots []ConvertedLot) *Report {
	sorted := slices.Clone(lots)
	slices.SortStableFunc(sorted, func(a, b ConvertedLot) int { return a.Disposed.Compare(b.Disposed) })

	r := &Report{Lots: sorted}
	if len(sorted) > 0 {
		r.Currency = sorted[0].Currency
	}

	var cumulative Money
	for _, l := range sorted {
		cumulative = cumulative.Add(l.ConvertedGain)
		if n := len(r.Series); n > 0 && r.Series[n-1].Date == l.Disposed {
			last := &r.Series[n-1]
			last.Gain = last.Gain.Add(l.ConvertedGain)
			last.Cumulative = cumulative
			continue
		}
		r.Series = append(r.Series, Point{Date: l.Disposed, Gain: l.ConvertedGain, Cumulative: cumulative})
	}
	return r
}

// Totals returns the sums of all the lots in the report.
func (r *Report) Totals() Totals {
	t := Totals{
		CostBasis:          M(0, USD),
		Proceeds:           M(0, USD),
		Gain:               M(0, USD),
		ConvertedCostBasis: M(0, r.Currency),
		ConvertedProceeds:  M(0, r.Currency),
		ConvertedGain:      M(0, r.Currency),
	}
	for _, l := range r.Lots {
		t.Quantity = t.Quantity.Add(l.Quantity)
		t.CostBasis = t.CostBasis.Add(l.CostBasis)
		t.Proceeds = t.Proceeds.Add(l.Proceeds)
		t.Gain = t.Gain.Add(l.Gain)
		t.ConvertedCostBasis = t.ConvertedCostBasis.Add(l.ConvertedCostBasis)
		t.ConvertedProceeds = t.ConvertedProceeds.Add(l.ConvertedProceeds)
		t.ConvertedGain = t.ConvertedGain.Add(l.ConvertedGain)
	}
	return t
}

// Tickers returns the sorted list of tickers with a realized lot.
func (r *Report) Tickers() []string {
	var tickers []string
	for _, l := range r.Lots {
		if !slices.Contains(tickers, l.Ticker) {
			tickers = append(tickers, l.Ticker)
		}
	}
	slices.Sort(tickers)
	return tickers
}
