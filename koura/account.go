package koura

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/kourasync"
	"github.com/shopspring/decimal"
)

// allocationFunds maps the allocation fields of the account details to fund ids.
var allocationFunds = map[string]string{
	"cash":            "810001",
	"fixedInterest":   "810002",
	"nzEquities":      "810003",
	"usEquities":      "810004",
	"eafeEquities":    "810005",
	"emEquities":      "810006",
	"crypto":          "810007",
	"cleanEnergy":     "810008",
	"property":        "810009",
	"strategicGrowth": "810010",
}

// Code is an identifier the API sends either as a number or as a string.
type Code string

func (c *Code) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid code %s: %w", data, err)
	}
	*c = Code(n.String())
	return nil
}

// AccountSummary is an account of the signed in client.
type AccountSummary struct {
	ID      Code            `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// Accounts lists the accounts of the signed in client.
func (c *Client) Accounts(ctx context.Context) ([]AccountSummary, error) {
	var accounts []AccountSummary
	if err := c.get(ctx, "accounts", "/api/clients/accounts", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Details returns the raw details of account.
func (c *Client) Details(ctx context.Context, account string) (map[string]any, error) {
	var details map[string]any
	if err := c.get(ctx, "account details", "/api/clients/account/"+url.PathEscape(account), &details); err != nil {
		return nil, err
	}
	return details, nil
}

// number converts a decoded JSON value into a decimal.
func number(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(n, "%")))
	default:
		return decimal.Zero, fmt.Errorf("not a number: %v", v)
	}
}

// lookup evaluates path on obj and returns the first result, if any.
func lookup(path string, obj any) (any, bool) {
	v, err := jsonpath.Get(path, obj)
	if err != nil {
		return nil, false
	}
	// jsonpath may return a list of one answer, or the answer itself.
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil, false
		}
		v = list[0]
	}
	return v, v != nil
}

// parseAllocation extracts the allocation policy from account details.
func parseAllocation(details map[string]any) (kourasync.AllocationPolicy, error) {
	obj, ok := lookup("$.allocation", details)
	if !ok {
		obj = details
	}
	fields, ok := obj.(map[string]any)
	if !ok {
		return kourasync.AllocationPolicy{}, fail("allocation", 0, fmt.Errorf("allocation is not an object: %v", obj))
	}
	weights := make(map[string]decimal.Decimal)
	for field, fund := range allocationFunds {
		v, ok := fields[field]
		if !ok || v == nil {
			continue
		}
		w, err := number(v)
		if err != nil {
			return kourasync.AllocationPolicy{}, fail("allocation", 0, fmt.Errorf("field %q: %w", field, err))
		}
		weights[fund] = w
	}
	return kourasync.NewAllocationPolicy(weights)
}

// Allocation returns the allocation of new contributions currently in effect for account.
func (c *Client) Allocation(ctx context.Context, account string) (kourasync.AllocationPolicy, error) {
	details, err := c.Details(ctx, account)
	if err != nil {
		return kourasync.AllocationPolicy{}, err
	}
	return parseAllocation(details)
}

// Balance returns the current value of account: the balance of its details,
// or the sum of its fund values if there is none.
func (c *Client) Balance(ctx context.Context, account string) (decimal.Decimal, error) {
	details, err := c.Details(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}
	if v, ok := lookup("$.balance", details); ok {
		balance, err := number(v)
		if err != nil {
			return decimal.Zero, fail("balance", 0, err)
		}
		return balance, nil
	}

	funds, err := c.Funds(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero
	for _, f := range funds {
		balance = balance.Add(f.Value)
	}
	c.logger.Debug().Str("account", account).Str("balance", balance.String()).Msg("balance computed from fund values")
	return balance, nil
}
