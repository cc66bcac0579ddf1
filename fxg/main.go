// Command fxg computes the realized gains of US stock sales in the home currency.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/fxgains/cmd"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// handles the shell completion requests, returns otherwise.
	cmd.Completion(commander).Complete("fxg")

	flag.Parse()

	// Unknown subcommands are looked up as fxg-<subcommand> extensions.
	if name := flag.Arg(0); name != "" && !isCommand(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}

	os.Exit(int(commander.Execute(context.Background())))
}

func isCommand(c *subcommands.Commander, name string) (found bool) {
	c.VisitCommands(func(_ *subcommands.CommandGroup, sub subcommands.Command) {
		if sub.Name() == name {
			found = true
		}
	})
	return found
}
