// Package firstrade reads the account history CSV exported by Firstrade.
//
// The export lists every account event. Only the Trade records with a BUY or
// SELL action are transactions, the others (dividends, interests, transfers)
// are skipped.
package firstrade

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/etnz/fxgains"
	"github.com/etnz/fxgains/broker"
	"github.com/etnz/fxgains/date"
	"github.com/hashicorp/go-multierror"
)

// Name is the name the parser is registered under.
const Name = "firstrade"

// columns of the export, looked up by name in the header.
const (
	colSymbol     = "Symbol"
	colQuantity   = "Quantity"
	colPrice      = "Price"
	colAction     = "Action"
	colTradeDate  = "TradeDate"
	colCommission = "Commission"
	colFee        = "Fee"
	colRecordType = "RecordType"
)

var required = []string{colSymbol, colQuantity, colPrice, colAction, colTradeDate, colCommission, colFee, colRecordType}

// date layouts found in exports, ISO first.
var layouts = []string{date.DateFormat, date.USFormat}

func init() { broker.Register(Parser{}) }

// Parser implements broker.Parser for Firstrade.
type Parser struct{}

func (Parser) Name() string { return Name }

// Parse implements broker.Parser.
func (p Parser) Parse(r io.Reader) ([]fxgains.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty firstrade export")
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read firstrade header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, c := range required {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("not a firstrade export: missing columns %s", strings.Join(missing, ", "))
	}

	var txs []fxgains.Transaction
	var errs *multierror.Error
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				errs = multierror.Append(errs, &fxgains.ParseError{Row: perr.StartLine, Err: err})
				continue
			}
			return nil, fmt.Errorf("cannot read firstrade export: %w", err)
		}
		// rows are physical lines, a quoted cell can span several of them.
		row, _ := cr.FieldPos(0)
		rec := line{row: row, index: index, cells: record}
		tx, ok, err := rec.transaction()
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if !ok {
			slog.Debug("skipping firstrade record", "row", row, "type", rec.get(colRecordType), "action", rec.get(colAction))
			continue
		}
		txs = append(txs, tx)
	}
	return txs, errs.ErrorOrNil()
}

// line is a data row with access to its cells by column name.
type line struct {
	row   int
	index map[string]int
	cells []string
}

func (r line) get(column string) string {
	i := r.index[column]
	if i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r line) fail(column string, err error) *fxgains.ParseError {
	return &fxgains.ParseError{Row: r.row, Column: column, Value: r.get(column), Err: err}
}

// transaction decodes the record. It returns false for records that are not trades.
func (r line) transaction() (fxgains.Transaction, bool, error) {
	if !strings.EqualFold(r.get(colRecordType), "Trade") {
		return fxgains.Transaction{}, false, nil
	}
	action, err := fxgains.ParseAction(r.get(colAction))
	if err != nil {
		return fxgains.Transaction{}, false, r.fail(colAction, err)
	}
	ticker := r.get(colSymbol)
	if ticker == "" {
		return fxgains.Transaction{}, false, r.fail(colSymbol, errors.New("missing symbol"))
	}
	on, err := date.ParseAny(r.get(colTradeDate), layouts...)
	if err != nil {
		return fxgains.Transaction{}, false, r.fail(colTradeDate, err)
	}
	quantity, err := fxgains.ParseQuantity(strings.ReplaceAll(r.get(colQuantity), ",", ""))
	if err != nil {
		return fxgains.Transaction{}, false, r.fail(colQuantity, err)
	}
	price, err := fxgains.ParseMoney(r.get(colPrice), fxgains.USD)
	if err != nil {
		return fxgains.Transaction{}, false, r.fail(colPrice, err)
	}
	commission, err := fxgains.ParseMoney(r.get(colCommission), fxgains.USD)
	if err != nil {
		return fxgains.Transaction{}, false, r.fail(colCommission, err)
	}
	fee, err := fxgains.ParseMoney(r.get(colFee), fxgains.USD)
	if err != nil {
		return fxgains.Transaction{}, false, r.fail(colFee, err)
	}

	// sells are exported with a negative quantity, fees with either sign.
	tx, err := fxgains.NewTransaction(r.row, ticker, action, on, quantity.Abs(), price.Abs(), commission.Abs().Add(fee.Abs()))
	if err != nil {
		return fxgains.Transaction{}, false, &fxgains.ParseError{Row: r.row, Err: err}
	}
	return tx, true, nil
}
