package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/kourasync/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion.
func completion() *complete.Command {
	workers := map[string]complete.Predictor{"workers": predict.Nothing}
	sub := make(map[string]*complete.Command)
	for _, c := range cmd.Commands {
		sub[c.Name()] = &complete.Command{Flags: workers}
	}
	for _, name := range []string{"help", "flags", "commands"} {
		sub[name] = &complete.Command{}
	}
	return &complete.Command{
		Sub:   sub,
		Flags: map[string]complete.Predictor{"mapping-file": predict.Files("*.toml")},
	}
}

func main() {
	completion().Complete("ksync")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
