package kourasync

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Operation is an action run on an account.
type Operation string

const (
	SyncKoura     Operation = "SYNCKOURA"
	GetAllActs    Operation = "GET_ALL_ACTS"
	DeleteAllActs Operation = "DELETE_ALL_ACTS"
	UpdatePrices  Operation = "UPDATE_PRICES"
	CreateAssets  Operation = "CREATE_ASSETS"
)

// Operations lists every known operation.
var Operations = []Operation{SyncKoura, GetAllActs, DeleteAllActs, UpdatePrices, CreateAssets}

// ParseOperation parses an operation name, case insensitively.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Operations {
		if op == known {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// Result is the outcome of one operation on one account.
type Result struct {
	Account    string
	Operation  Operation
	Created    int              // activities imported, assets registered or prices updated.
	Skipped    int              // candidates already recorded.
	Deleted    int              // activities deleted.
	Balance    *decimal.Decimal // cash balance set, if any.
	Activities []Activity       // GET_ALL_ACTS listing.
	Err        error
}

// Report collects the results of a run, in job order.
type Report struct {
	Results []Result
}

// Failed returns the results in error.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// OK reports whether every operation succeeded.
func (r Report) OK() bool { return len(r.Failed()) == 0 }
