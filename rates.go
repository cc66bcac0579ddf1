package fxgains

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/fxgains/date"
	"github.com/shopspring/decimal"
)

// DefaultLookback is the number of days a rate can be carried forward to cover
// weekends and holidays before it is considered unavailable.
const DefaultLookback = 10

// RateProvider gives the exchange rate of a currency against the USD on a day,
// as the number of units of currency for one USD.
type RateProvider interface {
	Rate(currency string, on date.Date) (decimal.Decimal, error)
}

// Rates is an immutable snapshot of exchange rates. It is safe for concurrent use.
//
// A lookup returns the rate of the day, or the latest rate recorded at most
// Lookback days before. USD always has a rate of 1.
type Rates struct {
	lookback int
	series   map[string]*date.History[decimal.Decimal]
}

var _ RateProvider = (*Rates)(nil)

// NewRates returns a snapshot of series. series are copied, later changes to them are not visible.
// Currencies with a nil history have no rate.
func NewRates(lookback int, series map[string]*date.History[decimal.Decimal]) (*Rates, error) {
	if lookback < 0 {
		return nil, fmt.Errorf("invalid negative lookback %d", lookback)
	}
	r := &Rates{lookback: lookback, series: make(map[string]*date.History[decimal.Decimal], len(series))}
	for cur, h := range series {
		if h == nil {
			continue
		}
		cur = normalizeCurrency(cur)
		for on, v := range h.Values() {
			if !v.IsPositive() {
				return nil, fmt.Errorf("invalid %s rate %v on %s: rates must be positive", cur, v, on)
			}
		}
		if prev, ok := r.series[cur]; ok {
			// same currency spelled differently, merge.
			for on, v := range h.Values() {
				prev.Append(on, v)
			}
			continue
		}
		r.series[cur] = h.Clone()
	}
	return r, nil
}

// Rate implements RateProvider.
func (r *Rates) Rate(currency string, on date.Date) (decimal.Decimal, error) {
	currency = normalizeCurrency(currency)
	if currency == USD {
		return decimal.NewFromInt(1), nil
	}
	h, ok := r.series[currency]
	if !ok {
		return decimal.Decimal{}, &RateUnavailableError{Currency: currency, Date: on, Lookback: r.lookback}
	}
	_, v, ok := h.ValueWithin(on, r.lookback)
	if !ok {
		return decimal.Decimal{}, &RateUnavailableError{Currency: currency, Date: on, Lookback: r.lookback}
	}
	return v, nil
}

// Lookback returns the number of days a rate is carried forward.
func (r *Rates) Lookback() int { return r.lookback }

// Currencies returns the sorted list of currencies in the snapshot.
func (r *Rates) Currencies() []string { return slices.Sorted(maps.Keys(r.series)) }

// Dates returns the days with a rate for currency, in chronological order.
func (r *Rates) Dates(currency string) []date.Date {
	if h, ok := r.series[normalizeCurrency(currency)]; ok {
		return h.Days()
	}
	return nil
}

// Len returns the number of days with a rate for currency.
func (r *Rates) Len(currency string) int {
	if h, ok := r.series[normalizeCurrency(currency)]; ok {
		return h.Len()
	}
	return 0
}

// RatesBuilder collects rates before freezing them into a Rates snapshot.
type RatesBuilder struct {
	lookback int
	series   map[string]*date.History[decimal.Decimal]
}

// NewRatesBuilder returns an empty builder using DefaultLookback.
func NewRatesBuilder() *RatesBuilder {
	return &RatesBuilder{lookback: DefaultLookback, series: make(map[string]*date.History[decimal.Decimal])}
}

// Lookback sets the lookback window in days.
func (b *RatesBuilder) Lookback(days int) *RatesBuilder {
	b.lookback = days
	return b
}

// Add records the rate of currency on a day. A later Add for the same day wins.
func (b *RatesBuilder) Add(currency string, on date.Date, rate decimal.Decimal) *RatesBuilder {
	currency = normalizeCurrency(currency)
	h, ok := b.series[currency]
	if !ok {
		h = new(date.History[decimal.Decimal])
		b.series[currency] = h
	}
	h.Append(on, rate)
	return b
}

// Build returns the immutable snapshot.
func (b *RatesBuilder) Build() (*Rates, error) { return NewRates(b.lookback, b.series) }

func normalizeCurrency(c string) string { return strings.ToUpper(strings.TrimSpace(c)) }
