package cmd

import (
	"flag"
	"strings"

	"github.com/etnz/fxgains/broker"
	"github.com/etnz/fxgains/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the commands registered in c.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: predictors(flag.CommandLine),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, sub subcommands.Command) {
		f := flag.NewFlagSet(sub.Name(), flag.ContinueOnError)
		sub.SetFlags(f)
		root.Sub[sub.Name()] = &complete.Command{Flags: predictors(f)}
	})
	if topic, ok := root.Sub["topic"]; ok {
		if topics, err := docs.GetAllTopics(); err == nil {
			topic.Args = predict.Set(topics)
		}
	}
	return root
}

// predictors predicts the values of the flags of f from their name and type.
func predictors(f *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	f.VisitAll(func(fl *flag.Flag) {
		switch {
		case isBool(fl):
			flags[fl.Name] = predict.Nothing
		case fl.Name == "broker":
			flags[fl.Name] = predict.Set(broker.Names())
		case fl.Name == "log-level":
			flags[fl.Name] = predict.Set{"debug", "info", "warn", "error"}
		case fl.Name == "config":
			flags[fl.Name] = predict.Files("*.yaml")
		case fl.Name == "db":
			flags[fl.Name] = predict.Files("*.db")
		case strings.Contains(fl.Usage, "file") || strings.Contains(fl.Usage, "export"):
			flags[fl.Name] = predict.Files("*")
		default:
			flags[fl.Name] = predict.Something
		}
	})
	return flags
}

func isBool(fl *flag.Flag) bool {
	b, ok := fl.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
