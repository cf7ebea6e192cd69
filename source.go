package kourasync

import (
	"context"

	"github.com/etnz/kourasync/date"
	"github.com/shopspring/decimal"
)

// Source is the managed-fund provider the contributions come from.
type Source interface {
	AllocationSource
	// Contributions returns every contribution of the account.
	Contributions(ctx context.Context, account string) ([]Contribution, error)
	// Funds returns the funds of the account with their price history.
	Funds(ctx context.Context, account string) ([]Fund, error)
	// Balance returns the current value of the account, in major units.
	Balance(ctx context.Context, account string) (decimal.Decimal, error)
}

// Target is the portfolio tracker the synthetic activities are recorded in.
//
// The target does not deduplicate: Import creates every activity it is given.
type Target interface {
	// EnsureAccount returns the id of the target account, creating it if needed.
	EnsureAccount(ctx context.Context, acc Account) (string, error)
	Activities(ctx context.Context, accountID string) ([]Activity, error)
	Import(ctx context.Context, activities []Activity) error
	DeleteActivities(ctx context.Context, accountID string) error
	// SetCashBalance overrides the cash balance of the account.
	SetCashBalance(ctx context.Context, accountID string, acc Account, balance decimal.Decimal) error
	// RegisterAsset declares a user-priced asset.
	RegisterAsset(ctx context.Context, symbol, name, currency string) error
	// UpdateMarketData records the price of a user-priced asset.
	UpdateMarketData(ctx context.Context, symbol string, on date.Date, price decimal.Decimal) error
}

// Account is the configuration of one synchronised account.
type Account struct {
	Source     string // source account id.
	Name       string // target account name.
	Currency   string
	PlatformID string
	Mode       Mode
	CashSymbol string // Cash mode symbol, defaults to the cash fund symbol.
}
