package fxgains

import (
	"bytes"
	"errors"
	"testing"

	"github.com/etnz/fxgains/date"
)

func reconcileFixture(t *testing.T) ([]Transaction, *Rates) {
	t.Helper()
	txs := []Transaction{
		buyWithFees(t, 1, "2022-01-03", "XYZ", 100, 10, 1),
		buy(t, 2, "2022-06-01", "XYZ", 100, 12),
		buy(t, 3, "2023-01-05", "ABC", 10, 50),
		sellWithFees(t, 4, "2023-03-01", "XYZ", 150, 15, 2),
		sell(t, 5, "2023-03-01", "ABC", 4, 60),
		sell(t, 6, "2024-01-02", "ABC", 6, 70), // next year
	}
	rates := must(NewRatesBuilder().
		Add("JPY", d("2022-01-03"), dec("115.2")).
		Add("JPY", d("2022-06-01"), dec("129.9")).
		Add("JPY", d("2023-01-05"), dec("133.4")).
		Add("JPY", d("2023-03-01"), dec("136.1")).
		Build())
	return txs, rates
}

func TestReconcile(t *testing.T) {
	txs, rates := reconcileFixture(t)
	r, err := Reconcile(txs, Options{Year: date.Year(2023), Currency: "jpy", Rates: rates})
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if r.Currency != "JPY" || r.Year != date.Year(2023) {
		t.Errorf("Reconcile() = %s %s want JPY 2023", r.Currency, r.Year)
	}
	if len(r.Lots) != 3 {
		t.Fatalf("Reconcile() returned %d lots want 3", len(r.Lots))
	}
	if len(r.Series) != 1 {
		t.Fatalf("Reconcile() series = %v want a single point", r.Series)
	}

	var sum Money
	for _, l := range r.Lots {
		sum = sum.Add(l.ConvertedProceeds.Sub(l.ConvertedCostBasis))
	}
	if !r.Series.Last().Equal(sum) {
		t.Errorf("Last() = %v want the sum of the lots %v", r.Series.Last().Decimal(), sum.Decimal())
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	txs, rates := reconcileFixture(t)
	opts := Options{Year: date.Year(2023), Currency: "JPY", Rates: rates}

	export := func() []byte {
		r, err := Reconcile(txs, opts)
		if err != nil {
			t.Fatalf("Reconcile() error = %v", err)
		}
		var buf bytes.Buffer
		if err := ExportJSONL(&buf, r.Lots); err != nil {
			t.Fatalf("ExportJSONL() error = %v", err)
		}
		return buf.Bytes()
	}
	first := export()
	for i := 0; i < 5; i++ {
		if got := export(); !bytes.Equal(first, got) {
			t.Fatalf("run %d differs:\n%s\nwant\n%s", i, got, first)
		}
	}
}

func TestReconcile_Failures(t *testing.T) {
	txs, rates := reconcileFixture(t)

	if _, err := Reconcile(txs, Options{Year: date.Year(2023), Currency: "EUR", Rates: rates}); !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("Reconcile(EUR) error = %v want ErrRateUnavailable", err)
	}

	short := append([]Transaction{sell(t, 7, "2023-02-01", "NEW", 1, 1)}, txs...)
	if _, err := Reconcile(short, Options{Year: date.Year(2023), Currency: "JPY", Rates: rates}); !errors.Is(err, ErrInsufficientLots) {
		t.Errorf("Reconcile() error = %v want ErrInsufficientLots", err)
	}

	if _, err := Reconcile(txs, Options{Currency: "JPY"}); err == nil {
		t.Errorf("Reconcile() without rates succeeded")
	}
}
