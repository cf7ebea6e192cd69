package kourasync

import (
	"context"
	"fmt"

	"github.com/etnz/kourasync/date"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Job is an operation to run on an account, with the clients of that account.
type Job struct {
	Account   Account
	Operation Operation
	Source    Source
	Target    Target
}

// Syncer runs operations on accounts.
//
// Accounts share no state, so jobs of different accounts can run concurrently.
type Syncer struct {
	symbols *Symbols
	logger  zerolog.Logger
	workers int
	today   func() date.Date
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Syncer) { s.logger = logger }
}

// WithWorkers sets the maximum number of jobs running at once.
func WithWorkers(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithToday sets the clock giving the current day.
func WithToday(today func() date.Date) Option {
	return func(s *Syncer) { s.today = today }
}

// NewSyncer returns a Syncer mapping funds with symbols.
func NewSyncer(symbols *Symbols, opts ...Option) *Syncer {
	s := &Syncer{
		symbols: symbols,
		logger:  zerolog.Nop(),
		workers: 1,
		today:   date.Today,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run runs every job and reports their results in job order.
//
// A failing job never stops the others.
func (s *Syncer) Run(ctx context.Context, jobs []Job) Report {
	results := make([]Result, len(jobs))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = s.run(ctx, job)
			return nil
		})
	}
	_ = g.Wait() // jobs never return an error, it is in their result.
	return Report{Results: results}
}

// run runs a single job.
func (s *Syncer) run(ctx context.Context, job Job) Result {
	logger := s.logger.With().Str("account", job.Account.Source).Str("operation", string(job.Operation)).Logger()
	logger.Info().Msg("start")

	var (
		res Result
		err error
	)
	switch job.Operation {
	case SyncKoura:
		res, err = s.Sync(ctx, job.Account, job.Source, job.Target)
	case GetAllActs:
		res.Activities, err = s.Activities(ctx, job.Account, job.Target)
	case DeleteAllActs:
		res.Deleted, err = s.DeleteAll(ctx, job.Account, job.Target)
	case UpdatePrices:
		res.Created, err = s.PublishPrices(ctx, job.Account, job.Source, job.Target)
	case CreateAssets:
		res.Created, err = s.RegisterAssets(ctx, job.Account, job.Target)
	default:
		err = fmt.Errorf("unknown operation %q", job.Operation)
	}
	res.Account, res.Operation, res.Err = job.Account.Source, job.Operation, err

	if err != nil {
		logger.Error().Err(err).Str("kind", ErrorKind(err)).Msg("failed")
	} else {
		logger.Info().Int("created", res.Created).Int("skipped", res.Skipped).Int("deleted", res.Deleted).Msg("done")
	}
	return res
}

// Sync fetches the contributions of acc, reconciles them with the activities
// already recorded in the target and submits the new ones.
//
// Nothing is submitted if the reconciliation fails.
func (s *Syncer) Sync(ctx context.Context, acc Account, src Source, dst Target) (Result, error) {
	res := Result{Account: acc.Source, Operation: SyncKoura}
	accountID, err := dst.EnsureAccount(ctx, acc)
	if err != nil {
		return res, err
	}

	contributions, err := src.Contributions(ctx, acc.Source)
	if err != nil {
		return res, err
	}
	s.logger.Debug().Str("account", acc.Source).Int("contributions", len(contributions)).Msg("fetched contributions")

	in := Input{
		Account:       acc.Source,
		AccountID:     accountID,
		Currency:      acc.Currency,
		Mode:          acc.Mode,
		Today:         s.today(),
		Contributions: contributions,
		Symbols:       s.symbols,
		CashSymbol:    acc.CashSymbol,
	}
	switch acc.Mode {
	case Funds:
		in.Allocation, err = NewAllocationResolver(src, s.logger).AllocationFor(ctx, acc.Source, in.Today)
		if err != nil {
			return res, err
		}
		funds, err := src.Funds(ctx, acc.Source)
		if err != nil {
			return res, err
		}
		in.Prices = NewPriceBook(funds)
	case Cash:
		in.Balance, err = src.Balance(ctx, acc.Source)
		if err != nil {
			return res, err
		}
	}

	existing, err := dst.Activities(ctx, accountID)
	if err != nil {
		return res, err
	}

	plan, err := Reconcile(in, existing)
	if err != nil {
		return res, err
	}
	res.Skipped = plan.Skipped

	var imports []Activity
	for _, a := range plan.New {
		if a.Type != CashBalance {
			imports = append(imports, a)
		}
	}
	if len(imports) == 0 {
		s.logger.Info().Str("account", acc.Source).Msg("nothing new to sync")
	} else {
		if err := dst.Import(ctx, imports); err != nil {
			return res, err
		}
		res.Created = len(imports)
	}

	if balance, ok := plan.Balance(); ok {
		if err := dst.SetCashBalance(ctx, accountID, acc, balance.Quantity); err != nil {
			return res, err
		}
		res.Balance = &balance.Quantity
	}
	return res, nil
}

// Activities returns every activity recorded in the target account of acc.
func (s *Syncer) Activities(ctx context.Context, acc Account, dst Target) ([]Activity, error) {
	accountID, err := dst.EnsureAccount(ctx, acc)
	if err != nil {
		return nil, err
	}
	return dst.Activities(ctx, accountID)
}

// DeleteAll deletes every activity of the target account of acc and returns how many there were.
func (s *Syncer) DeleteAll(ctx context.Context, acc Account, dst Target) (int, error) {
	accountID, err := dst.EnsureAccount(ctx, acc)
	if err != nil {
		return 0, err
	}
	existing, err := dst.Activities(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if len(existing) == 0 {
		s.logger.Info().Str("account", acc.Source).Msg("no activities to delete")
		return 0, nil
	}
	if err := dst.DeleteActivities(ctx, accountID); err != nil {
		return 0, err
	}
	return len(existing), nil
}

// PublishPrices records the latest unit price of every fund of acc in the target.
//
// All funds are mapped before anything is published.
func (s *Syncer) PublishPrices(ctx context.Context, acc Account, src Source, dst Target) (int, error) {
	funds, err := src.Funds(ctx, acc.Source)
	if err != nil {
		return 0, err
	}
	symbols := make([]string, len(funds))
	for i, f := range funds {
		if symbols[i], err = s.symbols.Resolve(f.ID); err != nil {
			return 0, err
		}
	}
	book := NewPriceBook(funds)
	published := 0
	for i, f := range funds {
		price, ok := book.Latest(f.ID)
		if !ok {
			s.logger.Warn().Str("fund", f.ID).Msg("no unit price to publish")
			continue
		}
		if err := dst.UpdateMarketData(ctx, symbols[i], price.Date, price.Price); err != nil {
			return published, err
		}
		s.logger.Info().Str("symbol", symbols[i]).Stringer("date", price.Date).Str("price", price.Price.String()).Msg("published unit price")
		published++
	}
	return published, nil
}

// RegisterAssets declares every mapped fund as a user-priced asset of the target.
func (s *Syncer) RegisterAssets(ctx context.Context, acc Account, dst Target) (int, error) {
	registered := 0
	for _, fund := range s.symbols.Funds() {
		symbol, err := s.symbols.Resolve(fund)
		if err != nil {
			return registered, err
		}
		if err := dst.RegisterAsset(ctx, symbol, s.symbols.Name(fund), acc.Currency); err != nil {
			return registered, err
		}
		registered++
	}
	return registered, nil
}
