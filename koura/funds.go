package koura

import (
	"context"
	"fmt"
	"net/url"

	"github.com/etnz/kourasync"
	"github.com/etnz/kourasync/date"
	"github.com/shopspring/decimal"
)

// fund is a fund of the portfolio, as sent by the API.
type fund struct {
	FundID    Code                       `json:"fundId"`
	Code      Code                       `json:"code"`
	Name      string                     `json:"name"`
	Units     decimal.Decimal            `json:"units"`
	Value     decimal.Decimal            `json:"value"`
	Valuation map[string]decimal.Decimal `json:"valuation"` // unit price by YYYY-MM-DD.
}

func (f fund) id() string {
	if f.FundID != "" {
		return string(f.FundID)
	}
	return string(f.Code)
}

// convert returns the fund with its price history.
func (f fund) convert() (kourasync.Fund, error) {
	prices := new(date.History[decimal.Decimal])
	for day, price := range f.Valuation {
		d, err := date.Parse(day)
		if err != nil {
			return kourasync.Fund{}, fmt.Errorf("fund %s: invalid valuation date: %w", f.id(), err)
		}
		prices.Append(d, price)
	}
	return kourasync.Fund{
		ID:     f.id(),
		Name:   f.Name,
		Units:  f.Units,
		Value:  f.Value,
		Prices: prices,
	}, nil
}

// Funds returns the funds held in account, with their unit price history.
func (c *Client) Funds(ctx context.Context, account string) ([]kourasync.Fund, error) {
	var payload []fund
	if err := c.get(ctx, "portfolio funds", "/api/clients/account/"+url.PathEscape(account)+"/portfolio/funds", &payload); err != nil {
		return nil, err
	}
	funds := make([]kourasync.Fund, 0, len(payload))
	for _, p := range payload {
		if p.id() == "" {
			return nil, fail("portfolio funds", 0, fmt.Errorf("fund %q has no id", p.Name))
		}
		f, err := p.convert()
		if err != nil {
			return nil, fail("portfolio funds", 0, err)
		}
		funds = append(funds, f)
	}
	return funds, nil
}
