package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/etnz/fxgains"
	"github.com/etnz/fxgains/date"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

func testReport(t *testing.T) *fxgains.Report {
	t.Helper()
	var txs []fxgains.Transaction
	for i, tx := range []struct {
		action fxgains.Action
		on     string
		ticker string
	}{
		{fxgains.Buy, "2022-01-03", "AAPL"},
		{fxgains.Buy, "2022-01-03", "MSFT"},
		{fxgains.Sell, "2023-03-01", "AAPL"},
		{fxgains.Sell, "2023-03-01", "MSFT"},
	} {
		price := fxgains.M(10*(i+1), fxgains.USD)
		v, err := fxgains.NewTransaction(i+1, tx.ticker, tx.action, date.MustParse(tx.on), fxgains.Q(1), price, fxgains.M(0, fxgains.USD))
		if err != nil {
			t.Fatal(err)
		}
		txs = append(txs, v)
	}
	rates, err := fxgains.NewRatesBuilder().
		Add("JPY", date.MustParse("2022-01-03"), decimal.NewFromInt(115)).
		Add("JPY", date.MustParse("2023-03-01"), decimal.NewFromInt(136)).
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

func call(t *testing.T, lib Library, name string, args map[string]any) map[string]any {
	t.Helper()
	resp := lib(context.Background(), &genai.FunctionCall{ID: "1", Name: name, Args: args})
	if resp.ID != "1" || resp.Name != name {
		t.Errorf("response %s/%s want 1/%s", resp.ID, resp.Name, name)
	}
	return resp.Response
}

func TestAccountantLibrary(t *testing.T) {
	a := NewAccountant(testReport(t))

	out := call(t, a.Library, "Lots", map[string]any{"symbol": "msft"})
	lots, _ := out["output"].(string)
	if !strings.Contains(lots, "| MSFT |") || strings.Contains(lots, "| AAPL |") {
		t.Errorf("Lots(msft) =\n%s", lots)
	}

	out = call(t, a.Library, "Series", nil)
	series, _ := out["output"].(string)
	if !strings.Contains(series, "## Cumulative") || strings.Contains(series, "## Lots") {
		t.Errorf("Series() =\n%s", series)
	}

	out = call(t, a.Library, "Lots", map[string]any{"symbol": 3})
	if _, ok := out["error"]; !ok {
		t.Errorf("Lots(3) = %v want an error", out)
	}

	out = call(t, a.Library, "Nope", nil)
	if _, ok := out["error"]; !ok {
		t.Errorf("Nope() = %v want an error", out)
	}

	out = call(t, a.Library, "Topic", map[string]any{"topic": "fifo"})
	if doc, _ := out["output"].(string); doc == "" {
		t.Errorf("Topic(fifo) = %v", out)
	}
}

func TestDeclarations(t *testing.T) {
	a := NewAccountant(testReport(t))
	f := newFacilitator(a)
	decls := f.Config.Tools[0].FunctionDeclarations
	if len(decls) != 1 || decls[0].Name != "Accountant" || decls[0].Parameters.Required[0] != "question" {
		t.Errorf("facilitator declarations = %+v", decls)
	}
}

func TestExpertCallWithoutChat(t *testing.T) {
	a := NewAccountant(testReport(t))

	resp := a.Call(context.Background(), "1", map[string]any{})
	if msg, _ := resp.Response["error"].(string); msg != "missing question" {
		t.Errorf("Call() without question = %v", resp.Response)
	}

	resp = a.Call(context.Background(), "2", map[string]any{"question": "gains?"})
	if msg, _ := resp.Response["error"].(string); !strings.Contains(msg, "not started") {
		t.Errorf("Call() on a stopped expert = %v", resp.Response)
	}
}

func TestAgentPrompts(t *testing.T) {
	var out strings.Builder
	a := New(&out, strings.NewReader("  second \n"), NewAccountant(testReport(t)))
	prompts := []string{" first "}

	if q, ok := a.next(&prompts); !ok || q != "first" {
		t.Errorf("next() = %q, %v, want first", q, ok)
	}
	if q, ok := a.next(&prompts); !ok || q != "second" {
		t.Errorf("next() = %q, %v, want second", q, ok)
	}
	if _, ok := a.next(&prompts); ok {
		t.Error("next() at the end of the input should fail")
	}
	if got := out.String(); got != "first\n" {
		t.Errorf("echoed prompts = %q, want %q", got, "first\n")
	}
}
