package koura

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/etnz/kourasync"
	"github.com/etnz/kourasync/date"
	"github.com/shopspring/decimal"
)

const pageSize = 100

// Currency is the currency of Koura accounts.
const Currency = "NZD"

// Transaction is a transaction of an account, as sent by the API.
type Transaction struct {
	ID            Code            `json:"id"`
	Date          string          `json:"date"`
	EffectiveDate string          `json:"effectiveDate"`
	Type          string          `json:"type"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
}

// day returns the effective date of the transaction.
func (t Transaction) day() (date.Date, error) {
	if t.EffectiveDate != "" {
		return date.Parse(t.EffectiveDate)
	}
	return date.Parse(t.Date)
}

// excluded are the words of transactions that are not contributions.
var excluded = []string{"fee", "tax", "withdrawal", "switch"}

// IsContribution reports whether t is a deposit into the account.
func (t Transaction) IsContribution() bool {
	if !t.Amount.IsPositive() {
		return false
	}
	label := strings.ToLower(t.Type + " " + t.Description)
	for _, word := range excluded {
		if strings.Contains(label, word) {
			return false
		}
	}
	return true
}

// Transactions returns every transaction of account, reading all pages.
func (c *Client) Transactions(ctx context.Context, account string) ([]Transaction, error) {
	var all []Transaction
	for page := 1; ; page++ {
		var resp struct {
			Transactions []Transaction `json:"transactions"`
			TotalCount   int           `json:"totalCount"`
		}
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("pageSize", strconv.Itoa(pageSize))
		path := "/api/clients/account/" + url.PathEscape(account) + "/transactions?" + q.Encode()
		if err := c.get(ctx, "transactions", path, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Transactions...)
		if len(resp.Transactions) == 0 || len(all) >= resp.TotalCount {
			return all, nil
		}
	}
}

// Contributions returns the contributions of account, amounts in cents.
func (c *Client) Contributions(ctx context.Context, account string) ([]kourasync.Contribution, error) {
	transactions, err := c.Transactions(ctx, account)
	if err != nil {
		return nil, err
	}
	var contributions []kourasync.Contribution
	for _, t := range transactions {
		if !t.IsContribution() {
			continue
		}
		day, err := t.day()
		if err != nil {
			return nil, fail("transactions", 0, fmt.Errorf("transaction %s: %w", t.ID, err))
		}
		amount, err := kourasync.ToMinor(t.Amount, Currency)
		if err != nil {
			return nil, fail("transactions", 0, fmt.Errorf("transaction %s: %w", t.ID, err))
		}
		label := t.Type
		if label == "" {
			label = t.Description
		}
		contributions = append(contributions, kourasync.Contribution{
			ID:       string(t.ID),
			Date:     day,
			Amount:   amount,
			Category: kourasync.ParseCategory(label),
		})
	}
	c.logger.Debug().Str("account", account).Int("transactions", len(transactions)).Int("contributions", len(contributions)).Msg("read transactions")
	return contributions, nil
}
