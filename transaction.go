package fxgains

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/fxgains/date"
)

// Transaction is one buy or one sell of a single ticker, as parsed from a broker export.
//
// A Transaction is immutable: it is built by NewTransaction, which checks its
// invariants, and only exposes accessors.
type Transaction struct {
	row      int // 1-based row in the source file, 0 when unknown
	ticker   string
	action   Action
	on       date.Date
	quantity Quantity
	price    Money // per share, in USD
	fees     Money // in USD
}

// NewTransaction validates and returns a new Transaction.
//
// quantity must be positive, price and fees non negative and in USD (an empty currency is read as USD).
func NewTransaction(row int, ticker string, action Action, on date.Date, quantity Quantity, price, fees Money) (Transaction, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if price.cur == "" {
		price.cur = USD
	}
	if fees.cur == "" {
		fees.cur = USD
	}
	var errs []error
	if ticker == "" {
		errs = append(errs, errors.New("missing ticker"))
	}
	if action != Buy && action != Sell {
		errs = append(errs, fmt.Errorf("invalid action %d", action))
	}
	if on.IsZero() {
		errs = append(errs, errors.New("missing trade date"))
	}
	if !quantity.IsPositive() {
		errs = append(errs, fmt.Errorf("quantity must be positive, got %v", quantity))
	}
	if price.IsNegative() {
		errs = append(errs, fmt.Errorf("price must not be negative, got %v", price))
	}
	if fees.IsNegative() {
		errs = append(errs, fmt.Errorf("fees must not be negative, got %v", fees))
	}
	if price.cur != USD || fees.cur != USD {
		errs = append(errs, fmt.Errorf("price and fees must be in %s, got %s and %s", USD, price.cur, fees.cur))
	}
	if err := errors.Join(errs...); err != nil {
		return Transaction{}, err
	}
	return Transaction{
		row:      row,
		ticker:   ticker,
		action:   action,
		on:       on,
		quantity: quantity,
		price:    price,
		fees:     fees,
	}, nil
}

func (t Transaction) Row() int           { return t.row }
func (t Transaction) Ticker() string     { return t.ticker }
func (t Transaction) Action() Action     { return t.action }
func (t Transaction) Date() date.Date    { return t.on }
func (t Transaction) Quantity() Quantity { return t.quantity }
func (t Transaction) Price() Money       { return t.price }
func (t Transaction) Fees() Money        { return t.fees }

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %v %s @ %v", t.on, t.action, t.quantity, t.ticker, t.price)
}
