package ghostfolio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"

	"github.com/etnz/kourasync"
	"github.com/etnz/kourasync/date"
	"github.com/shopspring/decimal"
)

// chunkSize is the maximum number of activities per import request.
const chunkSize = 10

// number returns d as a JSON number: decimals marshal as strings, the API wants numbers.
func number(d decimal.Decimal) json.Number { return json.Number(d.String()) }

// order is an activity as listed by the API.
type order struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"accountId"`
	Date          date.Date       `json:"date"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Fee           decimal.Decimal `json:"fee"`
	Currency      string          `json:"currency"`
	Comment       *string         `json:"comment"`
	Symbol        string          `json:"symbol"`
	SymbolProfile *struct {
		Symbol     string `json:"symbol"`
		Name       string `json:"name"`
		Currency   string `json:"currency"`
		DataSource string `json:"dataSource"`
	} `json:"SymbolProfile"`
}

func (o order) activity() kourasync.Activity {
	a := kourasync.Activity{
		ID:        o.ID,
		AccountID: o.AccountID,
		Symbol:    o.Symbol,
		Date:      o.Date,
		Type:      kourasync.ActivityType(o.Type),
		Quantity:  o.Quantity,
		UnitPrice: o.UnitPrice,
		Fee:       o.Fee,
		Currency:  o.Currency,
	}
	if o.Comment != nil {
		a.Comment = *o.Comment
	}
	if p := o.SymbolProfile; p != nil {
		if p.Symbol != "" {
			a.Symbol = p.Symbol
		}
		a.Name, a.DataSource = p.Name, p.DataSource
		if a.Currency == "" {
			a.Currency = p.Currency
		}
	}
	return a
}

// Activities lists the activities of an account.
func (c *Client) Activities(ctx context.Context, accountID string) ([]kourasync.Activity, error) {
	var resp struct {
		Activities []order `json:"activities"`
	}
	if err := c.call(ctx, "list activities", http.MethodGet, "/api/v1/order?accounts="+url.QueryEscape(accountID), nil, &resp); err != nil {
		return nil, err
	}
	activities := make([]kourasync.Activity, 0, len(resp.Activities))
	for _, o := range resp.Activities {
		a := o.activity()
		if a.Symbol == "" {
			c.logger.Warn().Str("id", o.ID).Msg("activity without symbol")
		}
		activities = append(activities, a)
	}
	return activities, nil
}

// importActivity is an activity in an import request.
type importActivity struct {
	AccountID  string      `json:"accountId"`
	Comment    string      `json:"comment,omitempty"`
	Currency   string      `json:"currency"`
	DataSource string      `json:"dataSource"`
	Date       date.Date   `json:"date"`
	Fee        json.Number `json:"fee"`
	Quantity   json.Number `json:"quantity"`
	Symbol     string      `json:"symbol"`
	Type       string      `json:"type"`
	UnitPrice  json.Number `json:"unitPrice"`
}

func newImportActivity(a kourasync.Activity) importActivity {
	return importActivity{
		AccountID:  a.AccountID,
		Comment:    a.Comment,
		Currency:   a.Currency,
		DataSource: a.DataSource,
		Date:       a.Date,
		Fee:        number(a.Fee),
		Quantity:   number(a.Quantity),
		Symbol:     a.Symbol,
		Type:       string(a.Type),
		UnitPrice:  number(a.UnitPrice),
	}
}

// Import creates activities, sorted by date, in chunks of 10.
//
// Chunks already imported stay imported if a later one fails.
func (c *Client) Import(ctx context.Context, activities []kourasync.Activity) error {
	acts := make([]importActivity, 0, len(activities))
	for _, a := range activities {
		acts = append(acts, newImportActivity(a))
	}
	slices.SortStableFunc(acts, func(a, b importActivity) int { return a.Date.Compare(b.Date) })

	for chunk := range slices.Chunk(acts, chunkSize) {
		body := struct {
			Activities []importActivity `json:"activities"`
		}{chunk}
		if err := c.call(ctx, "import activities", http.MethodPost, "/api/v1/import", body, nil, http.StatusCreated); err != nil {
			return err
		}
		c.logger.Info().Int("activities", len(chunk)).Msg("imported activities")
	}
	return nil
}

// DeleteActivities deletes every activity of an account.
func (c *Client) DeleteActivities(ctx context.Context, accountID string) error {
	return c.call(ctx, "delete activities", http.MethodDelete, "/api/v1/order?accounts="+url.QueryEscape(accountID), nil, nil)
}
