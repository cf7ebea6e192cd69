// Package cmd implements the ksync CLI application, synchronising Koura Wealth
// contributions into Ghostfolio.
package cmd

import (
	"flag"
	"fmt"

	"github.com/etnz/kourasync"
	"github.com/etnz/kourasync/config"
	"github.com/etnz/kourasync/ghostfolio"
	"github.com/etnz/kourasync/koura"
	"github.com/etnz/kourasync/logger"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Commands lists the subcommands of the application.
var Commands = []subcommands.Command{
	&operationCmd{
		name:     "sync",
		synopsis: "synchronise Koura contributions into Ghostfolio",
		usage: `ksync sync [-workers <n>]

  Reconstructs the Koura contributions of every configured account as
  Ghostfolio activities and imports the ones not recorded yet. Running it
  again imports nothing new.
`,
		op: kourasync.SyncKoura,
	},
	&operationCmd{
		name:     "activities",
		synopsis: "list the Ghostfolio activities of the accounts",
		usage:    "ksync activities\n\n  Prints the activities recorded in the Ghostfolio account of every configured account.\n",
		op:       kourasync.GetAllActs,
	},
	&operationCmd{
		name:     "delete",
		synopsis: "delete all the Ghostfolio activities of the accounts",
		usage:    "ksync delete\n\n  Deletes every activity of the Ghostfolio account of every configured account.\n",
		op:       kourasync.DeleteAllActs,
	},
	&operationCmd{
		name:     "prices",
		synopsis: "publish the latest Koura unit prices into Ghostfolio",
		usage:    "ksync prices\n\n  Records the latest unit price of every Koura fund as Ghostfolio market data.\n",
		op:       kourasync.UpdatePrices,
	},
	&operationCmd{
		name:     "assets",
		synopsis: "register the Koura funds as Ghostfolio assets",
		usage:    "ksync assets\n\n  Declares every mapped Koura fund as a MANUAL Ghostfolio asset.\n",
		op:       kourasync.CreateAssets,
	},
	&operationCmd{
		name:     "run",
		synopsis: "run the OPERATION configured for each account",
		usage:    "ksync run [-workers <n>]\n\n  Runs the operation of each account, as set by the OPERATION variable.\n",
	},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var mappingFile = flag.String("mapping-file", "", "Path to the symbol mapping TOML file (defaults to MAPPING_FILE)")

// app holds what a command needs to run operations.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	symbols *kourasync.Symbols
}

// newApp loads the configuration. If op is set, it replaces the operation of every account.
func newApp(op kourasync.Operation) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load configuration: %w", err)
	}
	if op != "" {
		for i := range cfg.Accounts {
			cfg.Accounts[i].Operation = op
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if *mappingFile != "" {
		cfg.MappingFile = *mappingFile
	}
	overrides, err := config.LoadSymbolMapping(cfg.MappingFile)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		logger:  logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty}),
		symbols: kourasync.NewSymbols(overrides),
	}, nil
}

// jobs returns one job per configured account.
func (a *app) jobs() []kourasync.Job {
	jobs := make([]kourasync.Job, 0, len(a.cfg.Accounts))
	for _, acc := range a.cfg.Accounts {
		log := a.logger.With().Str("account", acc.KouraAccountID).Logger()
		src := koura.NewClient(acc.KouraUsername, acc.KouraPassword,
			koura.WithBaseURL(a.cfg.KouraBaseURL),
			koura.WithUserTag(a.cfg.KouraUserTag),
			koura.WithTimeout(a.cfg.HTTPTimeout),
			koura.WithRateLimit(a.cfg.RateLimit),
			koura.WithLogger(log),
		)
		dst := ghostfolio.NewClient(acc.GhostHost, acc.GhostToken,
			ghostfolio.WithAccessKey(acc.GhostKey),
			ghostfolio.WithTimeout(a.cfg.HTTPTimeout),
			ghostfolio.WithRateLimit(a.cfg.RateLimit),
			ghostfolio.WithLogger(log),
		)
		jobs = append(jobs, kourasync.Job{
			Account:   acc.Account(a.cfg.CashSymbol),
			Operation: acc.Operation,
			Source:    src,
			Target:    dst,
		})
	}
	return jobs
}

// syncer returns the syncer running the jobs, with workers overriding the configuration if positive.
func (a *app) syncer(workers int) *kourasync.Syncer {
	if workers <= 0 {
		workers = a.cfg.Workers
	}
	return kourasync.NewSyncer(a.symbols, kourasync.WithLogger(a.logger), kourasync.WithWorkers(workers))
}
