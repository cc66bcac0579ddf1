package fxgains

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/fxgains/date"
	"github.com/shopspring/decimal"
)

// this file contains the export formats of a Report: CSV tables for
// spreadsheets and JSONL for machines.

// lotsHeader are the columns of ExportCSV.
var lotsHeader = []string{
	"Symbol", "Quantity",
	"Date Acquired", "Cost", "Rate Acquired", "Converted Cost",
	"Date Sold", "Sales", "Rate Sold", "Converted Sales",
	"Gain&Loss USD", "Gain&Loss",
}

// ExportCSV writes one row per lot to w.
//
// Amounts are written with the number of decimals of their currency, rates with all their digits.
func ExportCSV(w io.Writer, lots []ConvertedLot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(lotsHeader); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}
	for _, l := range lots {
		record := []string{
			l.Ticker, l.Quantity.String(),
			l.Acquired.String(), l.CostBasis.Fixed(), l.AcquisitionRate.String(), l.ConvertedCostBasis.Fixed(),
			l.Disposed.String(), l.Proceeds.Fixed(), l.DisposalRate.String(), l.ConvertedProceeds.Fixed(),
			l.Gain.Fixed(), l.ConvertedGain.Fixed(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("cannot write CSV row for %s: %w", l.Ticker, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportSeriesCSV writes the running net gain series to w.
func ExportSeriesCSV(w io.Writer, s Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date Sold", "Gain&Loss", "Cumulative"}); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}
	for _, p := range s {
		if err := cw.Write([]string{p.Date.String(), p.Gain.Fixed(), p.Cumulative.Fixed()}); err != nil {
			return fmt.Errorf("cannot write CSV row for %s: %w", p.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportJSONL writes one JSON object per lot and per line to w, with exact amounts.
func ExportJSONL(w io.Writer, lots []ConvertedLot) error {
	for _, l := range lots {
		data, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("cannot marshal lot %s %s: %w", l.Ticker, l.Disposed, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("cannot write JSONL: %w", err)
		}
	}
	return nil
}

// ratesHeader are the columns of ImportRatesCSV and ExportRatesCSV.
var ratesHeader = []string{"Currency", "Date", "Rate"}

// ImportRatesCSV reads rates from a CSV with the columns Currency, Date and Rate, in any order,
// and adds them to b.
func ImportRatesCSV(r io.Reader, b *RatesBuilder) error {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("cannot read rates header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	idx := make([]int, len(ratesHeader))
	for i, name := range ratesHeader {
		j, ok := cols[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("invalid rates file: missing column %q", name)
		}
		idx[i] = j
	}

	for row := 2; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("cannot read rates row %d: %w", row, err)
		}
		cur, day, value := record[idx[0]], record[idx[1]], record[idx[2]]
		on, err := date.Parse(day)
		if err != nil {
			return fmt.Errorf("invalid date %q on rates row %d: %w", day, row, err)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid rate %q on rates row %d: %w", value, row, err)
		}
		b.Add(cur, on, rate)
	}
}

// ExportRatesCSV writes the rates of r in the format read by ImportRatesCSV.
func ExportRatesCSV(w io.Writer, r *Rates) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ratesHeader); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}
	for _, cur := range r.Currencies() {
		for on, v := range r.series[cur].Values() {
			if err := cw.Write([]string{cur, on.String(), v.String()}); err != nil {
				return fmt.Errorf("cannot write CSV row for %s %s: %w", cur, on, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
