package kourasync

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/etnz/kourasync/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// allocationTolerance is how far the weights of a policy may sum from 1.
var allocationTolerance = decimal.New(1, -4)

// Weight is the share of new contributions invested in a fund.
type Weight struct {
	FundID string
	Weight decimal.Decimal // between 0 and 1.
}

// AllocationPolicy is the split of new contributions across funds.
//
// Weights are ordered by fund id and sum to 1 within a 0.0001 tolerance.
type AllocationPolicy struct {
	weights []Weight
}

// NewAllocationPolicy builds a validated policy from fund weights.
//
// Weights can be fractions (summing to 1) or percentages (summing to 100), the
// latter are normalised. Zero weights are kept but never receive any amount.
func NewAllocationPolicy(weights map[string]decimal.Decimal) (AllocationPolicy, error) {
	sum := decimal.Zero
	for fund, w := range weights {
		if w.IsNegative() {
			return AllocationPolicy{}, &InvalidAllocationError{Reason: fmt.Sprintf("fund %q has a negative weight %s", fund, w)}
		}
		sum = sum.Add(w)
	}

	hundred := decimal.NewFromInt(100)
	scale := decimal.NewFromInt(1)
	if sum.Sub(hundred).Abs().LessThanOrEqual(allocationTolerance.Mul(hundred)) {
		scale = hundred
	}

	var p AllocationPolicy
	total := decimal.Zero
	for fund, w := range weights {
		w = w.Div(scale)
		if w.GreaterThan(decimal.NewFromInt(1)) {
			return AllocationPolicy{}, &InvalidAllocationError{Sum: sum, Reason: fmt.Sprintf("fund %q has a weight above 100%%", fund)}
		}
		p.weights = append(p.weights, Weight{FundID: fund, Weight: w})
		total = total.Add(w)
	}
	if total.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(allocationTolerance) {
		return AllocationPolicy{}, &InvalidAllocationError{Sum: total, Reason: "weights must sum to 1"}
	}
	slices.SortFunc(p.weights, func(a, b Weight) int { return cmp.Compare(a.FundID, b.FundID) })
	return p, nil
}

// Weights returns the fund weights ordered by fund id.
func (p AllocationPolicy) Weights() []Weight { return slices.Clone(p.weights) }

// IsZero reports whether the policy has no funds.
func (p AllocationPolicy) IsZero() bool { return len(p.weights) == 0 }

// residualOrder returns the fund indexes by decreasing weight, ties broken by
// the smallest fund id. Rounding residuals go to the first one.
func (p AllocationPolicy) residualOrder() []int {
	order := make([]int, len(p.weights))
	for i := range order {
		order[i] = i
	}
	// weights are sorted by fund id, a stable sort keeps the smallest id first on ties.
	slices.SortStableFunc(order, func(a, b int) int { return p.weights[b].Weight.Cmp(p.weights[a].Weight) })
	return order
}

// Split divides amount (in minor units) across the funds of the policy.
//
// Parts are aligned with Weights(). Each part is round(amount * weight), and the
// rounding residual goes to the largest-weight fund so that parts sum to amount
// exactly. A negative residual larger than that part spills over the next
// largest weights.
func (p AllocationPolicy) Split(amount int64) ([]int64, error) {
	if p.IsZero() {
		return nil, &InvalidAllocationError{Reason: "no funds in allocation"}
	}
	parts := make([]int64, len(p.weights))
	var sum int64
	for i, w := range p.weights {
		parts[i] = decimal.NewFromInt(amount).Mul(w.Weight).Round(0).IntPart()
		sum += parts[i]
	}
	residual := amount - sum
	for _, i := range p.residualOrder() {
		if residual >= 0 {
			parts[i] += residual
			residual = 0
			break
		}
		take := min(parts[i], -residual)
		parts[i] -= take
		residual += take
	}

	sum = 0
	negative := false
	for _, part := range parts {
		negative = negative || part < 0
		sum += part
	}
	if negative || sum != amount {
		return nil, &ConservationViolationError{Amount: amount, Sum: sum}
	}
	return parts, nil
}

// AllocationSource fetches the allocation policy currently in effect for an account.
type AllocationSource interface {
	Allocation(ctx context.Context, account string) (AllocationPolicy, error)
}

// AllocationResolver returns the allocation policy in effect for an account at a date.
//
// Historical allocation changes are not known from the source: the policy
// fetched first is used for every date. A resolver is meant to serve one run and
// is not safe for concurrent use.
type AllocationResolver struct {
	source   AllocationSource
	logger   zerolog.Logger
	policies map[string]AllocationPolicy
}

// NewAllocationResolver returns a resolver fetching policies from source.
func NewAllocationResolver(source AllocationSource, logger zerolog.Logger) *AllocationResolver {
	return &AllocationResolver{source: source, logger: logger, policies: make(map[string]AllocationPolicy)}
}

// AllocationFor returns the allocation policy of account as of asOf.
func (r *AllocationResolver) AllocationFor(ctx context.Context, account string, asOf date.Date) (AllocationPolicy, error) {
	if p, ok := r.policies[account]; ok {
		return p, nil
	}
	p, err := r.source.Allocation(ctx, account)
	if err != nil {
		return AllocationPolicy{}, err
	}
	if p.IsZero() {
		return AllocationPolicy{}, &InvalidAllocationError{Reason: "no funds in allocation"}
	}
	r.logger.Info().
		Str("account", account).
		Stringer("as_of", asOf).
		Int("funds", len(p.weights)).
		Msg("using the current allocation for all contributions")
	r.policies[account] = p
	return p, nil
}
