package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/fxgains/agent"
	"github.com/etnz/fxgains/logger"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct {
	reconcileCmd
}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "ask questions about the realized gains to the AI assistant"
}
func (*assistCmd) Usage() string {
	return `fxg assist -i <export> [-c <currency>] [-y <year>] [-rates <file>] [<question>...]

  Reconciles the broker export like 'fxg reconcile', then starts an interactive
  session with the AI assistant about the resulting report.

  The Gemini API key is read from the GEMINI_API_KEY environment variable.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "Broker export to read")
	f.StringVar(&c.broker, "broker", "", "Broker export format, defaults to the configuration")
	f.StringVar(&c.currency, "c", "", "Home currency, defaults to the configuration")
	f.IntVar(&c.year, "y", 0, "Tax year, 0 for every year")
	f.StringVar(&c.rates, "rates", "", "Read the exchange rates from this CSV file instead of the database")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	ctx = logger.WithContext(ctx, logger.L.With("command", c.Name()))
	report, err := c.reconcile(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	a := agent.New(os.Stdout, os.Stdin, agent.NewAccountant(report))
	a.Render = func(md string) string {
		out, err := glamour.Render(md, "auto")
		if err != nil {
			return md
		}
		return out
	}

	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}
	if err := a.Run(ctx, client, prompts...); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
