package kourasync

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/etnz/kourasync/date"
	"github.com/shopspring/decimal"
)

// D is a helper for test to create decimals from const.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// day is a helper for test to create dates from const.
func day(s string) date.Date { return date.MustParse(s) }

// policy is a helper for test to create a valid allocation policy.
func policy(weights map[string]string) AllocationPolicy {
	m := make(map[string]decimal.Decimal)
	for k, v := range weights {
		m[k] = D(v)
	}
	p, err := NewAllocationPolicy(m)
	if err != nil {
		panic(err)
	}
	return p
}

// history is a helper for test to create a price history from date/price pairs.
func history(points ...string) *date.History[decimal.Decimal] {
	h := new(date.History[decimal.Decimal])
	for i := 0; i+1 < len(points); i += 2 {
		h.Append(day(points[i]), D(points[i+1]))
	}
	return h
}

// fakeSource is an in-memory Source.
type fakeSource struct {
	contributions []Contribution
	allocation    AllocationPolicy
	funds         []Fund
	balance       decimal.Decimal
	err           error // returned by every call when set.
}

func (f *fakeSource) Contributions(context.Context, string) ([]Contribution, error) {
	return slices.Clone(f.contributions), f.err
}

func (f *fakeSource) Allocation(context.Context, string) (AllocationPolicy, error) {
	return f.allocation, f.err
}

func (f *fakeSource) Funds(context.Context, string) ([]Fund, error) {
	return slices.Clone(f.funds), f.err
}

func (f *fakeSource) Balance(context.Context, string) (decimal.Decimal, error) {
	return f.balance, f.err
}

// fakeTarget is an in-memory Target that never deduplicates.
type fakeTarget struct {
	mu         sync.Mutex
	accounts   map[string]string
	activities []Activity
	balances   map[string]decimal.Decimal
	assets     map[string]string
	prices     map[string]decimal.Decimal
	imports    int // number of Import calls.
	err        error
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		accounts: make(map[string]string),
		balances: make(map[string]decimal.Decimal),
		assets:   make(map[string]string),
		prices:   make(map[string]decimal.Decimal),
	}
}

func (f *fakeTarget) EnsureAccount(_ context.Context, acc Account) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	id, ok := f.accounts[acc.Name]
	if !ok {
		id = fmt.Sprintf("acc-%d", len(f.accounts)+1)
		f.accounts[acc.Name] = id
	}
	return id, nil
}

func (f *fakeTarget) Activities(_ context.Context, accountID string) ([]Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var acts []Activity
	for _, a := range f.activities {
		if a.AccountID == accountID {
			acts = append(acts, a)
		}
	}
	return acts, f.err
}

func (f *fakeTarget) Import(_ context.Context, activities []Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imports++
	for _, a := range activities {
		a.ID = fmt.Sprintf("act-%d", len(f.activities)+1)
		a.FundID = "" // the target does not know about source funds.
		f.activities = append(f.activities, a)
	}
	return nil
}

func (f *fakeTarget) DeleteActivities(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities = slices.DeleteFunc(f.activities, func(a Activity) bool { return a.AccountID == accountID })
	return nil
}

func (f *fakeTarget) SetCashBalance(_ context.Context, accountID string, _ Account, balance decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[accountID] = balance
	return nil
}

func (f *fakeTarget) RegisterAsset(_ context.Context, symbol, name, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assets[symbol] = name
	return nil
}

func (f *fakeTarget) UpdateMarketData(_ context.Context, symbol string, _ date.Date, price decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[symbol] = price
	return nil
}

// symbolsOf returns the sorted symbols of the recorded activities.
func (f *fakeTarget) symbolsOf() []string {
	set := make(map[string]bool)
	for _, a := range f.activities {
		set[a.Symbol] = true
	}
	return slices.Sorted(maps.Keys(set))
}
