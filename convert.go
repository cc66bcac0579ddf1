package fxgains

import (
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ConvertedLot is a MatchedLot with both legs converted into a target currency.
type ConvertedLot struct {
	MatchedLot
	Currency           string          `json:"currency"`
	AcquisitionRate    decimal.Decimal `json:"acquisition_rate"`
	DisposalRate       decimal.Decimal `json:"disposal_rate"`
	ConvertedCostBasis Money           `json:"converted_cost_basis"`
	ConvertedProceeds  Money           `json:"converted_proceeds"`
	ConvertedGain      Money           `json:"converted_gain"`
	Gain               Money           `json:"gain"` // USD
}

// convertParallelism bounds the number of concurrent lot conversions.
const convertParallelism = 8

// ConvertLot converts the cost basis of l with the rate of its acquisition
// date, and its proceeds with the rate of its disposal date. The converted gain
// is the difference of the converted legs.
//
// A missing rate on either leg fails the lot with a ConversionError naming that leg.
func ConvertLot(l MatchedLot, currency string, rates RateProvider) (ConvertedLot, error) {
	currency = normalizeCurrency(currency)
	acquisitionRate, err := rates.Rate(currency, l.Acquired)
	if err != nil {
		return ConvertedLot{}, &ConversionError{Ticker: l.Ticker, Leg: Acquisition, Date: l.Acquired, Quantity: l.Quantity, Err: err}
	}
	disposalRate, err := rates.Rate(currency, l.Disposed)
	if err != nil {
		return ConvertedLot{}, &ConversionError{Ticker: l.Ticker, Leg: Disposal, Date: l.Disposed, Quantity: l.Quantity, Err: err}
	}
	cost := l.CostBasis.Convert(acquisitionRate, currency)
	proceeds := l.Proceeds.Convert(disposalRate, currency)
	return ConvertedLot{
		MatchedLot:         l,
		Currency:           currency,
		AcquisitionRate:    acquisitionRate,
		DisposalRate:       disposalRate,
		ConvertedCostBasis: cost,
		ConvertedProceeds:  proceeds,
		ConvertedGain:      proceeds.Sub(cost),
		Gain:               l.Gain(),
	}, nil
}

// Convert converts every lot with ConvertLot. The result keeps the order of lots.
//
// Lookups are independent reads of rates, they run concurrently. When lots
// fail, the error joins every ConversionError in lot order and no lot is returned.
func Convert(lots []MatchedLot, currency string, rates RateProvider) ([]ConvertedLot, error) {
	converted := make([]ConvertedLot, len(lots))
	errs := make([]error, len(lots))

	var g errgroup.Group
	g.SetLimit(convertParallelism)
	for i, l := range lots {
		g.Go(func() error {
			converted[i], errs[i] = ConvertLot(l, currency, rates)
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return converted, nil
}
