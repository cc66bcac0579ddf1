package fxgains

import (
	"errors"
	"fmt"

	"github.com/etnz/fxgains/date"
)

var (
	// ErrInsufficientLots is matched by InsufficientLotError.
	ErrInsufficientLots = errors.New("insufficient lots")
	// ErrRateUnavailable is matched by RateUnavailableError.
	ErrRateUnavailable = errors.New("rate unavailable")
)

// ParseError reports a single invalid row of a broker export. It is
// recoverable: the other rows of the export are still usable.
type ParseError struct {
	Row    int    // 1-based row in the file, header included
	Column string // empty when the row as a whole is invalid
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d: column %q: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InsufficientLotError reports a sale of more shares than were held at that
// date. It usually means a short sale or a missing import of a prior year.
type InsufficientLotError struct {
	Ticker    string
	Date      date.Date
	Row       int
	Quantity  Quantity // quantity sold
	Available Quantity // quantity held when the sale happened
}

func (e *InsufficientLotError) Error() string {
	where := ""
	if e.Row > 0 {
		where = fmt.Sprintf(" (row %d)", e.Row)
	}
	return fmt.Sprintf("%s: cannot sell %v shares on %s%s: only %v held, a prior acquisition is missing",
		e.Ticker, e.Quantity, e.Date, where, e.Available)
}

func (e *InsufficientLotError) Is(target error) bool { return target == ErrInsufficientLots }

// RateUnavailableError reports a missing exchange rate for a currency on a
// day and the preceding lookback window.
type RateUnavailableError struct {
	Currency string
	Date     date.Date
	Lookback int
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("no %s rate on %s nor in the %d previous days", e.Currency, e.Date, e.Lookback)
}

func (e *RateUnavailableError) Is(target error) bool { return target == ErrRateUnavailable }

// Leg identifies one side of a matched lot.
type Leg int

const (
	Acquisition Leg = iota
	Disposal
)

func (l Leg) String() string {
	switch l {
	case Acquisition:
		return "acquisition"
	case Disposal:
		return "disposal"
	default:
		return "unknown"
	}
}

// ConversionError reports a matched lot that could not be converted because
// the rate of one of its legs is missing.
type ConversionError struct {
	Ticker   string
	Leg      Leg
	Date     date.Date
	Quantity Quantity
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: cannot convert %s of %v shares on %s: %v", e.Ticker, e.Leg, e.Quantity, e.Date, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
