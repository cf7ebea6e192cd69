package kourasync

import (
	"context"
	"errors"
	"testing"

	"github.com/etnz/kourasync/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSyncer() *Syncer {
	symbols := NewSymbols(map[string]string{"A": "SYM_A", "B": "SYM_B"})
	return NewSyncer(symbols, WithWorkers(4), WithToday(func() date.Date { return day("2024-03-31") }))
}

func newFundsSource() *fakeSource {
	return &fakeSource{
		contributions: []Contribution{
			{ID: "c1", Date: day("2024-01-15"), Amount: 10000, Category: Employee},
			{ID: "c2", Date: day("2024-02-01"), Amount: 5000, Category: Employer},
		},
		allocation: policy(map[string]string{"A": "0.6", "B": "0.4"}),
		funds: []Fund{
			{ID: "A", Prices: history("2024-01-15", "2.00", "2024-02-01", "2.10")},
			{ID: "B", Prices: history("2024-01-15", "1.50", "2024-02-01", "1.60")},
		},
		balance: D("160.25"),
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	s := newTestSyncer()
	src, dst := newFundsSource(), newFakeTarget()
	acc := Account{Source: "42", Name: "Koura Wealth", Currency: "NZD", Mode: Funds}

	res, err := s.Sync(context.Background(), acc, src, dst)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Created)
	assert.Equal(t, []string{"SYM_A", "SYM_B"}, dst.symbolsOf())

	res, err = s.Sync(context.Background(), acc, src, dst)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Equal(t, 4, res.Skipped)
	assert.Len(t, dst.activities, 4)
	assert.Equal(t, 1, dst.imports, "nothing should be imported the second time")
}

func TestSyncCash(t *testing.T) {
	s := newTestSyncer()
	src, dst := newFundsSource(), newFakeTarget()
	acc := Account{Source: "42", Name: "Koura Wealth", Currency: "NZD", Mode: Cash, CashSymbol: "MYCASH"}

	res, err := s.Sync(context.Background(), acc, src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	require.NotNil(t, res.Balance)
	assert.True(t, res.Balance.Equal(D("160.25")))
	assert.True(t, dst.balances["acc-1"].Equal(D("160.25")))
	for _, a := range dst.activities {
		assert.NotEqual(t, CashBalance, a.Type, "balances are never imported")
	}

	res, err = s.Sync(context.Background(), acc, src, dst)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	require.NotNil(t, res.Balance)
}

func TestSyncSubmitsNothingOnFailure(t *testing.T) {
	s := newTestSyncer()
	src, dst := newFundsSource(), newFakeTarget()
	src.allocation = policy(map[string]string{"A": "0.5", "999999": "0.5"})
	acc := Account{Source: "42", Name: "Koura Wealth", Currency: "NZD", Mode: Funds}

	_, err := s.Sync(context.Background(), acc, src, dst)
	assert.Equal(t, "UnmappedFundError", ErrorKind(err))
	assert.Empty(t, dst.activities)
	assert.Zero(t, dst.imports)
}

func TestRunIsolatesFailures(t *testing.T) {
	s := newTestSyncer()
	dst := newFakeTarget()
	broken := &fakeSource{err: &ExternalServiceError{Service: "koura", Op: "signin", StatusCode: 401, Err: errors.New("unauthorized")}}
	jobs := []Job{
		{Account: Account{Source: "1", Name: "First", Currency: "NZD", Mode: Funds}, Operation: SyncKoura, Source: newFundsSource(), Target: dst},
		{Account: Account{Source: "2", Name: "Second", Currency: "NZD", Mode: Funds}, Operation: SyncKoura, Source: broken, Target: dst},
		{Account: Account{Source: "3", Name: "Third", Currency: "NZD", Mode: Cash}, Operation: SyncKoura, Source: newFundsSource(), Target: dst},
	}

	report := s.Run(context.Background(), jobs)
	require.Len(t, report.Results, 3)
	assert.False(t, report.OK())

	assert.NoError(t, report.Results[0].Err)
	assert.Equal(t, 4, report.Results[0].Created)
	assert.Equal(t, "ExternalServiceError", ErrorKind(report.Results[1].Err))
	assert.NoError(t, report.Results[2].Err)
	assert.Equal(t, 2, report.Results[2].Created)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "2", failed[0].Account)
}

func TestRunOperations(t *testing.T) {
	s := newTestSyncer()
	src, dst := newFundsSource(), newFakeTarget()
	acc := Account{Source: "42", Name: "Koura Wealth", Currency: "NZD", Mode: Funds}
	run := func(op Operation) Result {
		report := s.Run(context.Background(), []Job{{Account: acc, Operation: op, Source: src, Target: dst}})
		require.Len(t, report.Results, 1)
		require.NoError(t, report.Results[0].Err)
		return report.Results[0]
	}

	assert.Equal(t, 4, run(SyncKoura).Created)
	assert.Len(t, run(GetAllActs).Activities, 4)
	assert.Equal(t, 4, run(DeleteAllActs).Deleted)
	assert.Empty(t, dst.activities)
	assert.Zero(t, run(DeleteAllActs).Deleted)

	assert.Equal(t, 2, run(UpdatePrices).Created)
	assert.True(t, dst.prices["SYM_A"].Equal(D("2.10")))
	assert.True(t, dst.prices["SYM_B"].Equal(D("1.60")))

	assert.Equal(t, len(DefaultSymbols)+2, run(CreateAssets).Created)
	assert.Equal(t, "Koura Cash Fund", dst.assets["GF_KOURACASH"])
	assert.Equal(t, "SYM_A", dst.assets["SYM_A"])

	report := s.Run(context.Background(), []Job{{Account: acc, Operation: "NOPE", Source: src, Target: dst}})
	assert.Error(t, report.Results[0].Err)
}

func TestPublishPricesMapsFirst(t *testing.T) {
	s := newTestSyncer()
	src, dst := newFundsSource(), newFakeTarget()
	src.funds = append(src.funds, Fund{ID: "999999", Prices: history("2024-01-01", "1")})

	_, err := s.PublishPrices(context.Background(), Account{Source: "42"}, src, dst)
	var unmapped *UnmappedFundError
	require.ErrorAs(t, err, &unmapped)
	assert.Empty(t, dst.prices)
}

func TestPublishPricesSkipsUnpricedFunds(t *testing.T) {
	s := newTestSyncer()
	src, dst := newFundsSource(), newFakeTarget()
	src.funds[1].Prices = nil

	n, err := s.PublishPrices(context.Background(), Account{Source: "42"}, src, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, map[string]decimal.Decimal{"SYM_A": D("2.10")}, dst.prices)
}
