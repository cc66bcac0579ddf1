package fxgains

import (
	"cmp"
	"math"
	"slices"

	"github.com/etnz/fxgains/date"
)

// MatchedLot is a quantity of shares sold, paired with the acquisition it came from.
//
// An acquisition partially consumed by several sales gives several MatchedLot.
type MatchedLot struct {
	Ticker    string    `json:"ticker"`
	Quantity  Quantity  `json:"quantity"`
	Acquired  date.Date `json:"acquired"`
	Disposed  date.Date `json:"disposed"`
	CostBasis Money     `json:"cost_basis"` // USD, acquisition fees included
	Proceeds  Money     `json:"proceeds"`   // USD, disposal fees deducted
	BuyRow    int       `json:"buy_row,omitempty"`
	SellRow   int       `json:"sell_row,omitempty"`
}

// Gain returns the realized gain in USD.
func (l MatchedLot) Gain() Money { return l.Proceeds.Sub(l.CostBasis) }

// lot represents the still open part of a single purchase of a security.
type lot struct {
	Date     date.Date
	Row      int
	Quantity Quantity // remaining quantity
	Price    Money    // per share
	Fees     Money    // acquisition fees not yet allocated to a sale
}

type lots []lot

// available returns the total quantity still held.
func (l lots) available() Quantity {
	var q Quantity
	for _, current := range l {
		q = q.Add(current.Quantity)
	}
	return q
}

// sell closes 'tx' quantity using the FIFO method.
//
// It returns the remaining open lots and one MatchedLot per consumed slice. Fees
// are prorated linearly on quantity, the last slice of a lot or of a sale
// takes what remains so that no fee is lost to rounding.
// 'l' is never modified.
func (l lots) sell(tx Transaction) (lots, []MatchedLot, error) {
	quantityToSell := tx.Quantity()
	if available := l.available(); available.LessThan(quantityToSell) {
		return l, nil, &InsufficientLotError{
			Ticker:    tx.Ticker(),
			Date:      tx.Date(),
			Row:       tx.Row(),
			Quantity:  quantityToSell,
			Available: available,
		}
	}

	remaining := slices.Clone(l)
	feesToAllocate := tx.Fees()
	var matched []MatchedLot

	for !quantityToSell.IsZero() {
		current := remaining[0]
		slice := current.Quantity.Min(quantityToSell)

		acquisitionFee := current.Fees
		if slice.LessThan(current.Quantity) {
			// Partial sale from this lot
			acquisitionFee = current.Fees.Mul(slice).Div(current.Quantity)
		}
		disposalFee := feesToAllocate
		if slice.LessThan(quantityToSell) {
			disposalFee = tx.Fees().Mul(slice).Div(tx.Quantity())
		}

		matched = append(matched, MatchedLot{
			Ticker:    tx.Ticker(),
			Quantity:  slice,
			Acquired:  current.Date,
			Disposed:  tx.Date(),
			CostBasis: current.Price.Mul(slice).Add(acquisitionFee),
			Proceeds:  tx.Price().Mul(slice).Sub(disposalFee),
			BuyRow:    current.Row,
			SellRow:   tx.Row(),
		})

		quantityToSell = quantityToSell.Sub(slice)
		feesToAllocate = feesToAllocate.Sub(disposalFee)
		current.Quantity = current.Quantity.Sub(slice)
		current.Fees = current.Fees.Sub(acquisitionFee)
		if current.Quantity.IsZero() {
			// Full sale of this lot
			remaining = remaining[1:]
		} else {
			remaining[0] = current
		}
	}
	return remaining, matched, nil
}

// chronological returns a copy of txs sorted by date. Transactions of the same
// day keep their file order, never reordered by price or side. Transactions
// without a row come after the rows of their day, in input order.
func chronological(txs []Transaction) []Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b Transaction) int {
		return cmp.Or(
			a.Date().Compare(b.Date()),
			cmp.Compare(rowKey(a), rowKey(b)),
		)
	})
	return sorted
}

// rowKey orders unnumbered transactions last.
func rowKey(tx Transaction) int {
	if tx.Row() <= 0 {
		return math.MaxInt
	}
	return tx.Row()
}

// MatchTicker matches every sale of ticker in txs against its prior
// acquisitions, oldest first. Transactions of other tickers are ignored.
//
// The whole history of the ticker is needed, not only the tax year: a sale can
// close a lot bought years before. It fails with an InsufficientLotError if a
// sale exceeds the quantity held at its date.
func MatchTicker(ticker string, txs []Transaction) ([]MatchedLot, error) {
	var open lots
	var result []MatchedLot
	for _, tx := range chronological(txs) {
		if tx.Ticker() != ticker {
			continue
		}
		switch tx.Action() {
		case Buy:
			open = append(open, lot{
				Date:     tx.Date(),
				Row:      tx.Row(),
				Quantity: tx.Quantity(),
				Price:    tx.Price(),
				Fees:     tx.Fees(),
			})
		case Sell:
			var matched []MatchedLot
			var err error
			open, matched, err = open.sell(tx)
			if err != nil {
				return nil, err
			}
			result = append(result, matched...)
		}
	}
	return result, nil
}
