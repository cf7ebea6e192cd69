package ghostfolio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/etnz/kourasync"
	"github.com/shopspring/decimal"
)

// Account is a Ghostfolio account.
type Account struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	PlatformID string          `json:"platformId"`
}

// accountBody is the payload of account creation and update.
type accountBody struct {
	ID         string      `json:"id,omitempty"`
	Balance    json.Number `json:"balance"`
	Currency   string      `json:"currency"`
	IsExcluded bool        `json:"isExcluded"`
	Name       string      `json:"name"`
	PlatformID *string     `json:"platformId"`
}

func newAccountBody(acc kourasync.Account, balance decimal.Decimal) accountBody {
	body := accountBody{Balance: number(balance), Currency: acc.Currency, Name: acc.Name}
	if acc.PlatformID != "" {
		body.PlatformID = &acc.PlatformID
	}
	return body
}

// Accounts lists the accounts of the user.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var resp struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.call(ctx, "list accounts", http.MethodGet, "/api/v1/account", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

// EnsureAccount returns the id of the account named acc.Name, creating it if
// it does not exist. Ids are remembered for the lifetime of the client.
func (c *Client) EnsureAccount(ctx context.Context, acc kourasync.Account) (string, error) {
	c.mu.Lock()
	id, ok := c.accounts[acc.Name]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	accounts, err := c.Accounts(ctx)
	if err != nil {
		return "", err
	}
	for _, a := range accounts {
		if a.Name == acc.Name {
			id = a.ID
			break
		}
	}
	if id == "" {
		var created Account
		if err := c.call(ctx, "create account", http.MethodPost, "/api/v1/account", newAccountBody(acc, decimal.Zero), &created, http.StatusCreated, http.StatusOK); err != nil {
			return "", err
		}
		if created.ID == "" {
			return "", fail("create account", 0, errors.New("no id in response"))
		}
		id = created.ID
		c.logger.Info().Str("account", acc.Name).Str("id", id).Msg("created account")
	}

	c.mu.Lock()
	c.accounts[acc.Name] = id
	c.mu.Unlock()
	return id, nil
}

// SetCashBalance overrides the cash balance of the account.
func (c *Client) SetCashBalance(ctx context.Context, accountID string, acc kourasync.Account, balance decimal.Decimal) error {
	body := newAccountBody(acc, balance)
	body.ID = accountID
	if err := c.call(ctx, "set balance", http.MethodPut, "/api/v1/account/"+url.PathEscape(accountID), body, nil); err != nil {
		return err
	}
	c.logger.Info().Str("account", acc.Name).Str("balance", balance.String()).Msg("updated cash balance")
	return nil
}
