package kourasync

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/etnz/kourasync/date"
	"github.com/shopspring/decimal"
)

// Mode selects how contributions are represented in the target.
type Mode string

const (
	// Funds reconstructs per-fund BUY activities valued at historical unit prices.
	Funds Mode = "funds"
	// Cash posts contributions as INTEREST and asserts the source balance.
	Cash Mode = "cash"
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Funds, Cash:
		return m, nil
	default:
		return "", fmt.Errorf("unknown sync mode %q, want %q or %q", s, Funds, Cash)
	}
}

// Input holds everything the reconciliation of one account needs.
type Input struct {
	Account       string // source account id, part of the transaction ids.
	AccountID     string // target account id.
	Currency      string
	Mode          Mode
	Today         date.Date
	Contributions []Contribution
	Symbols       *Symbols

	// Funds mode.
	Allocation AllocationPolicy
	Prices     PriceBook

	// Cash mode.
	CashSymbol string          // defaults to the symbol of the cash fund.
	Balance    decimal.Decimal // current source balance, in major units.
}

// Plan is the outcome of a reconciliation.
type Plan struct {
	Candidates []Activity // every synthetic activity, in canonical order.
	New        []Activity // candidates not recorded in the target yet.
	Skipped    int        // candidates already recorded.
}

// Balance returns the CASH_BALANCE activity of the plan, if any.
func (p Plan) Balance() (Activity, bool) {
	for _, a := range p.New {
		if a.Type == CashBalance {
			return a, true
		}
	}
	return Activity{}, false
}

// Reconcile derives the synthetic activities of in and compares them with the
// activities already recorded in the target.
//
// It fails without any partial result if a fund cannot be mapped, priced or if
// a contribution cannot be split exactly.
func Reconcile(in Input, existing []Activity) (Plan, error) {
	var (
		candidates []Activity
		err        error
	)
	switch in.Mode {
	case Funds:
		candidates, err = reconstructFunds(in)
	case Cash:
		candidates, err = cashFlows(in)
	default:
		_, err = ParseMode(string(in.Mode))
	}
	if err != nil {
		return Plan{}, err
	}
	fresh, skipped := Diff(existing, candidates)
	return Plan{Candidates: candidates, New: fresh, Skipped: skipped}, nil
}

// compareActivities is the canonical order: date, then fund id.
func compareActivities(a, b Activity) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return cmp.Compare(a.FundID, b.FundID)
}

func reconstructFunds(in Input) ([]Activity, error) {
	weights := in.Allocation.Weights()
	if len(weights) == 0 {
		return nil, &InvalidAllocationError{Reason: "no funds in allocation"}
	}
	// Map every fund before emitting anything.
	symbols := make([]string, len(weights))
	for i, w := range weights {
		if !w.Weight.IsPositive() {
			continue
		}
		sym, err := in.Symbols.Resolve(w.FundID)
		if err != nil {
			return nil, err
		}
		symbols[i] = sym
	}

	contributions := slices.Clone(in.Contributions)
	SortContributions(contributions)

	var activities []Activity
	for _, c := range contributions {
		if c.Amount <= 0 {
			continue
		}
		parts, err := in.Allocation.Split(c.Amount)
		if err != nil {
			return nil, fmt.Errorf("contribution %s: %w", c.Key(), err)
		}
		for i, w := range weights {
			if parts[i] <= 0 {
				continue
			}
			price, err := in.Prices.PriceOn(w.FundID, c.Date)
			if err != nil {
				return nil, fmt.Errorf("contribution %s: %w", c.Key(), err)
			}
			id := transactionID(string(Funds), in.Account, c.Key(), w.FundID)
			text := fmt.Sprintf("%s contribution of %s, %s at %s from %s",
				c.Category, FormatMinor(parts[i], in.Currency), w.FundID, price.Price, price.Date)
			activities = append(activities, Activity{
				AccountID:  in.AccountID,
				FundID:     w.FundID,
				Symbol:     symbols[i],
				Date:       c.Date,
				Type:       Buy,
				Quantity:   FromMinor(parts[i], in.Currency).Div(price.Price),
				UnitPrice:  price.Price,
				Fee:        decimal.Zero,
				Currency:   in.Currency,
				DataSource: ManualDataSource,
				Comment:    comment(id, text),
			})
		}
	}
	slices.SortStableFunc(activities, compareActivities)
	return activities, nil
}

func cashFlows(in Input) ([]Activity, error) {
	symbol := in.CashSymbol
	if symbol == "" {
		sym, err := in.Symbols.Resolve(CashFund)
		if err != nil {
			return nil, err
		}
		symbol = sym
	}

	contributions := slices.Clone(in.Contributions)
	SortContributions(contributions)

	var activities []Activity
	for _, c := range contributions {
		if c.Amount <= 0 {
			continue
		}
		id := transactionID(string(Cash), in.Account, c.Key())
		activities = append(activities, Activity{
			AccountID:  in.AccountID,
			FundID:     CashFund,
			Symbol:     symbol,
			Date:       c.Date,
			Type:       Interest,
			Quantity:   FromMinor(c.Amount, in.Currency),
			UnitPrice:  decimal.NewFromInt(1),
			Fee:        decimal.Zero,
			Currency:   in.Currency,
			DataSource: ManualDataSource,
			Comment:    comment(id, fmt.Sprintf("%s contribution of %s", c.Category, FormatMinor(c.Amount, in.Currency))),
		})
	}
	activities = append(activities, Activity{
		AccountID:  in.AccountID,
		FundID:     CashFund,
		Symbol:     symbol,
		Date:       in.Today,
		Type:       CashBalance,
		Quantity:   in.Balance,
		UnitPrice:  decimal.NewFromInt(1),
		Fee:        decimal.Zero,
		Currency:   in.Currency,
		DataSource: ManualDataSource,
	})
	return activities, nil
}
