package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/fxgains"
	"github.com/etnz/fxgains/date"
	"github.com/etnz/fxgains/ratestore"
	"github.com/shopspring/decimal"
)

func testReport(t *testing.T) *fxgains.Report {
	t.Helper()
	var txs []fxgains.Transaction
	add := func(row int, action fxgains.Action, on, ticker string, quantity, price float64) {
		tx, err := fxgains.NewTransaction(row, ticker, action, date.MustParse(on), fxgains.Q(quantity), fxgains.M(price, fxgains.USD), fxgains.M(0, fxgains.USD))
		if err != nil {
			t.Fatal(err)
		}
		txs = append(txs, tx)
	}
	add(1, fxgains.Buy, "2022-01-03", "XYZ", 10, 100)
	add(2, fxgains.Buy, "2022-01-03", "ZZZ", 1, 100)
	add(3, fxgains.Sell, "2023-02-01", "ZZZ", 1, 100)
	add(4, fxgains.Sell, "2023-03-01", "XYZ", 10, 120)

	rates, err := fxgains.NewRatesBuilder().
		Add("JPY", date.MustParse("2022-01-03"), decimal.NewFromInt(115)).
		Add("JPY", date.MustParse("2023-02-01"), decimal.NewFromInt(128)).
		Add("JPY", date.MustParse("2023-03-01"), decimal.NewFromInt(130)).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	r, err := fxgains.Reconcile(txs, fxgains.Options{Year: date.Year(2023), Currency: "JPY", Rates: rates})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRenderReport(t *testing.T) {
	got := RenderReport(NewReport(testReport(t), false), ReportRenderOptions{})

	for _, want := range []string{
		"# Realized Gains 2023 in JPY\n",
		"2 lots sold",
		"| Cost | $1,100.00 | ¥126,500 |\n",
		"| Sales | $1,300.00 | ¥168,800 |\n",
		"| **Gain & Loss** | **+$200.00** | **+¥42,300** |\n",
		"| XYZ | 10 | 2022-01-03 | $1,000.00 | 115 | ¥115,000 | 2023-03-01 | $1,200.00 | 130 | ¥156,000 | +¥41,000 |\n",
		"| ZZZ | 1 | 2022-01-03 | $100.00 | 115 | ¥11,500 | 2023-02-01 | $100.00 | 128 | ¥12,800 | +¥1,300 |\n",
		"| 2023-02-01 | +¥1,300 | ¥1,300 |\n",
		"| 2023-03-01 | +¥41,000 | ¥42,300 |\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderReport() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "error") {
		t.Errorf("RenderReport() failed:\n%s", got)
	}
	// engine order is by date sold
	if strings.Index(got, "| ZZZ |") > strings.Index(got, "| XYZ |") {
		t.Errorf("RenderReport() lots not ordered by date sold:\n%s", got)
	}
}

func TestRenderReport_Options(t *testing.T) {
	r := testReport(t)

	bySymbol := RenderReport(NewReport(r, true), ReportRenderOptions{SkipSeries: true})
	if strings.Index(bySymbol, "| XYZ |") > strings.Index(bySymbol, "| ZZZ |") {
		t.Errorf("RenderReport() lots not ordered by symbol:\n%s", bySymbol)
	}
	if strings.Contains(bySymbol, "## Cumulative") {
		t.Errorf("RenderReport() rendered a skipped series:\n%s", bySymbol)
	}

	noLots := RenderReport(NewReport(r, false), ReportRenderOptions{SkipLots: true})
	if strings.Contains(noLots, "## Lots") || !strings.Contains(noLots, "## Cumulative") {
		t.Errorf("RenderReport(SkipLots) =\n%s", noLots)
	}
}

func TestRenderReport_Empty(t *testing.T) {
	r := fxgains.Aggregate(nil)
	r.Currency = "JPY"
	got := RenderReport(NewReport(r, false), ReportRenderOptions{})
	if !strings.Contains(got, "# Realized Gains of all years in JPY") || !strings.Contains(got, "No sale in the period.") {
		t.Errorf("RenderReport() =\n%s", got)
	}
	if strings.Contains(got, "|") {
		t.Errorf("RenderReport() rendered a table for an empty report:\n%s", got)
	}
}

func TestRenderRates(t *testing.T) {
	got := RenderRates(NewRatesUpdate("JPY", "01H0000000000000000000000", []date.Date{date.MustParse("2023-01-02"), date.MustParse("2023-01-03")}, 12))
	want := "# JPY Rates\n\n2 rates fetched in batch `01H0000000000000000000000`, 12 rates in store.\n- 2023-01-02\n- 2023-01-03\n"
	if got != want {
		t.Errorf("RenderRates() =\n%q\nwant\n%q", got, want)
	}

	got = RenderRates(NewRatesUpdate("JPY", "", nil, 12))
	if !strings.Contains(got, "Every rate is already in store (12 rates).") {
		t.Errorf("RenderRates() =\n%s", got)
	}
}

func TestRenderFetches(t *testing.T) {
	created := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	got := RenderFetches(NewFetches([]ratestore.Fetch{{ID: "01H0000000000000000000000", Currency: "JPY", Created: created, Count: 2}}))
	want := "# Rate Batches\n\n| Batch | Currency | Fetched | Rates |\n|:---|:---|:---|---:|\n| `01H0000000000000000000000` | JPY | 2023-01-02 03:04:05 | 2 |\n"
	if got != want {
		t.Errorf("RenderFetches() =\n%q\nwant\n%q", got, want)
	}

	if got := RenderFetches(NewFetches(nil)); got != "# Rate Batches\n\nNo rates in store.\n" {
		t.Errorf("RenderFetches(nil) = %q", got)
	}
}

func TestSkippedRows(t *testing.T) {
	if got := SkippedRows(nil); got != "" {
		t.Errorf("SkippedRows(nil) = %q", got)
	}
	got := SkippedRows([]*fxgains.ParseError{{Row: 3, Column: "Price", Value: "abc", Err: errBad}})
	want := "## Skipped Rows\n\n- row 3: column \"Price\": invalid value \"abc\": bad\n"
	if got != want {
		t.Errorf("SkippedRows() = %q want %q", got, want)
	}
}

var errBad = errorString("bad")

type errorString string

func (e errorString) Error() string { return string(e) }
