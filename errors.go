package kourasync

import (
	"errors"
	"fmt"

	"github.com/etnz/kourasync/date"
	"github.com/shopspring/decimal"
)

// UnmappedFundError is returned when a fund has no target symbol.
type UnmappedFundError struct {
	FundID string
}

func (e *UnmappedFundError) Error() string {
	return fmt.Sprintf("fund %q has no symbol mapping", e.FundID)
}

// InvalidAllocationError is returned when an allocation policy is not a valid split of 100%.
type InvalidAllocationError struct {
	Sum    decimal.Decimal
	Reason string
}

func (e *InvalidAllocationError) Error() string {
	return fmt.Sprintf("invalid allocation (sum of weights %s): %s", e.Sum.String(), e.Reason)
}

// NoPriceDataError is returned when a fund has no unit price on or before a date.
type NoPriceDataError struct {
	FundID string
	Date   date.Date
}

func (e *NoPriceDataError) Error() string {
	return fmt.Sprintf("no unit price for fund %q on or before %s", e.FundID, e.Date)
}

// ConservationViolationError is returned when the split of a contribution does
// not add up to the contribution amount.
type ConservationViolationError struct {
	Amount int64 // contribution amount, in minor units
	Sum    int64 // sum of the split, in minor units
}

func (e *ConservationViolationError) Error() string {
	return fmt.Sprintf("conservation violated: split sums to %d minor units, want %d", e.Sum, e.Amount)
}

// ExternalServiceError reports a failure of a remote service: transport,
// authentication, unexpected status or malformed payload.
type ExternalServiceError struct {
	Service    string // "koura" or "ghostfolio"
	Op         string // what was attempted
	StatusCode int    // HTTP status, 0 if the request did not complete
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: status %d: %v", e.Service, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// ErrorKind returns the name of the error kind found in err's chain.
// It returns "Error" for anything outside the taxonomy and "" for nil.
func ErrorKind(err error) string {
	var (
		unmapped     *UnmappedFundError
		allocation   *InvalidAllocationError
		price        *NoPriceDataError
		conservation *ConservationViolationError
		external     *ExternalServiceError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unmapped):
		return "UnmappedFundError"
	case errors.As(err, &allocation):
		return "InvalidAllocationError"
	case errors.As(err, &price):
		return "NoPriceDataError"
	case errors.As(err, &conservation):
		return "ConservationViolationError"
	case errors.As(err, &external):
		return "ExternalServiceError"
	default:
		return "Error"
	}
}
