package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/fxgains"
	"github.com/etnz/fxgains/docs"
	"github.com/etnz/fxgains/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is preparing a tax return: the realized gains of US stock sales, converted
			in the home currency with the exchange rate of each trade date.
			Devise a plan of questions to ask to each experts and come up with the best response to the user's request.
			Never invent figures, every figure comes from an expert.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAccountant returns the expert in charge of report, a reconciliation report.
func NewAccountant(report *fxgains.Report) *Expert {
	lib := []Function{lotsFunc(report), seriesFunc(report), topicFunc()}

	return &Expert{
		Name: "Accountant",
		Description: `This is the Accountant. It is in charge of the user's realized gains report:
		every sold lot matched with its acquisition, both legs converted at their own date's rate,
		and the cumulative gain over the tax year.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an accountant in charge of the user's realized gains report.
				You know how to use the Tools to extract relevant information about the sold lots,
				the exchange rates used and the gains in USD and in the home currency.
				You are part of a team of experts, yours is everything about the report. They might ask
				you questions about it, pardon their approximative language and figure out what they meant.

				Use the available tools to get information about
				  - the lots sold, per symbol
				  - the cumulative gain over the year
				  - how lots are matched (FIFO) and converted
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function
type Func struct {
	// Declare this function
	Decl *genai.FunctionDeclaration
	// Call this function
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

// stringArg returns the optional string argument name.
func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q is not a string as expected but %T", name, v)
	}
	return strings.TrimSpace(s), nil
}

// filter returns a copy of report with the lots of ticker only, all of them if ticker is empty.
func filter(report *fxgains.Report, ticker string) *fxgains.Report {
	if ticker == "" {
		return report
	}
	var lots []fxgains.ConvertedLot
	for _, l := range report.Lots {
		if strings.EqualFold(l.Ticker, ticker) {
			lots = append(lots, l)
		}
	}
	filtered := fxgains.Aggregate(lots)
	filtered.Year, filtered.Currency = report.Year, report.Currency
	return filtered
}

func lotsFunc(report *fxgains.Report) *Func {
	const name = "Lots"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `Lots lists the lots sold in the tax year: symbol, quantity, acquisition and sale dates,
			cost and sales in USD, the exchange rate of each date and the converted amounts, plus the totals.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"symbol": {
						Type:        genai.TypeString,
						Description: fmt.Sprintf("Restrict the lots to this stock symbol, one of %s. All symbols by default.", strings.Join(report.Tickers(), ", ")),
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown report with the totals and a table of the lots ordered by symbol then date sold.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			symbol, err := stringArg(args, "symbol")
			if err != nil {
				return errorResponse(id, name, err)
			}
			view := renderer.NewReport(filter(report, symbol), true)
			return outputResponse(id, name, renderer.RenderReport(view, renderer.ReportRenderOptions{SkipSeries: true}))
		},
	}
}

func seriesFunc(report *fxgains.Report) *Func {
	const name = "Series"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: `Series returns the net gain realized on each sale date and the running total over the tax year, in the home currency.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"symbol": {
						Type:        genai.TypeString,
						Description: "Restrict the series to this stock symbol. All symbols by default.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of dates, gains and cumulative gains.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			symbol, err := stringArg(args, "symbol")
			if err != nil {
				return errorResponse(id, name, err)
			}
			view := renderer.NewReport(filter(report, symbol), false)
			return outputResponse(id, name, renderer.RenderReport(view, renderer.ReportRenderOptions{SkipLots: true}))
		},
	}
}

func topicFunc() *Func {
	const name = "Topic"
	topics, _ := docs.GetAllTopics()
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: `Topic returns the documentation of fxg about a topic, e.g. how lots are matched or converted.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"topic": {
						Type:        genai.TypeString,
						Description: "The topic, one of: " + strings.Join(topics, ", "),
						Enum:        topics,
					},
				},
				Required: []string{"topic"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The markdown documentation of the topic.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			topic, err := stringArg(args, "topic")
			if err != nil {
				return errorResponse(id, name, err)
			}
			doc, err := docs.GetTopic(topic)
			if err != nil {
				return errorResponse(id, name, err)
			}
			return outputResponse(id, name, doc)
		},
	}
}
