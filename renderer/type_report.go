package renderer

import (
	"cmp"
	"slices"

	"github.com/etnz/fxgains"
	"github.com/etnz/fxgains/date"
)

// Report is the printable view of a fxgains.Report, every value already formatted.
type Report struct {
	Period   string
	Currency string
	Totals   Totals
	Lots     []Lot
	Series   []Point
}

// Totals are the formatted sums of a report.
type Totals struct {
	CostBasis          string
	Proceeds           string
	Gain               string
	ConvertedCostBasis string
	ConvertedProceeds  string
	ConvertedGain      string
}

// Lot is a formatted row of the lots table.
type Lot struct {
	Symbol          string
	Quantity        string
	Acquired        string
	Cost            string
	AcquisitionRate string
	ConvertedCost   string
	Sold            string
	Sales           string
	DisposalRate    string
	ConvertedSales  string
	Gain            string
	ConvertedGain   string
}

// Point is a formatted row of the cumulative gain table.
type Point struct {
	Date       string
	Gain       string
	Cumulative string
}

// NewReport builds the view of r. When bySymbol is set, lots are ordered by
// symbol then date sold, the engine order is kept otherwise.
func NewReport(r *fxgains.Report, bySymbol bool) *Report {
	view := &Report{
		Period:   period(r.Year),
		Currency: r.Currency,
	}
	t := r.Totals()
	view.Totals = Totals{
		CostBasis:          t.CostBasis.String(),
		Proceeds:           t.Proceeds.String(),
		Gain:               t.Gain.SignedString(),
		ConvertedCostBasis: t.ConvertedCostBasis.String(),
		ConvertedProceeds:  t.ConvertedProceeds.String(),
		ConvertedGain:      t.ConvertedGain.SignedString(),
	}

	lots := slices.Clone(r.Lots)
	if bySymbol {
		slices.SortStableFunc(lots, func(a, b fxgains.ConvertedLot) int {
			return cmp.Or(cmp.Compare(a.Ticker, b.Ticker), a.Disposed.Compare(b.Disposed))
		})
	}
	for _, l := range lots {
		view.Lots = append(view.Lots, Lot{
			Symbol:          l.Ticker,
			Quantity:        l.Quantity.String(),
			Acquired:        l.Acquired.String(),
			Cost:            l.CostBasis.String(),
			AcquisitionRate: l.AcquisitionRate.String(),
			ConvertedCost:   l.ConvertedCostBasis.String(),
			Sold:            l.Disposed.String(),
			Sales:           l.Proceeds.String(),
			DisposalRate:    l.DisposalRate.String(),
			ConvertedSales:  l.ConvertedProceeds.String(),
			Gain:            l.Gain.SignedString(),
			ConvertedGain:   l.ConvertedGain.SignedString(),
		})
	}
	for _, p := range r.Series {
		view.Series = append(view.Series, Point{
			Date:       p.Date.String(),
			Gain:       p.Gain.SignedString(),
			Cumulative: p.Cumulative.String(),
		})
	}
	return view
}

func period(r date.Range) string {
	if r.IsZero() {
		return "of all years"
	}
	if r == date.Year(r.From.Year()) {
		return r.String()
	}
	return "from " + r.From.String() + " to " + r.To.String()
}

// RatesUpdate is the printable outcome of a rate update.
type RatesUpdate struct {
	Currency string
	FetchID  string
	Days     []string // fetched days
	Known    int      // rates in store after the update
}

// NewRatesUpdate builds the view of a rate update.
func NewRatesUpdate(currency, fetchID string, fetched []date.Date, known int) *RatesUpdate {
	u := &RatesUpdate{Currency: currency, FetchID: fetchID, Known: known}
	for _, d := range fetched {
		u.Days = append(u.Days, d.String())
	}
	return u
}
