package ghostfolio

import (
	"context"
	"net/http"
	"net/url"

	"github.com/etnz/kourasync"
	"github.com/etnz/kourasync/date"
	"github.com/shopspring/decimal"
)

func profilePath(symbol string) string {
	return "/api/v1/admin/profile-data/" + kourasync.ManualDataSource + "/" + url.PathEscape(symbol)
}

// RegisterAsset declares a MANUAL asset and sets its profile.
func (c *Client) RegisterAsset(ctx context.Context, symbol, name, currency string) error {
	path := profilePath(symbol)
	if err := c.call(ctx, "create asset", http.MethodPost, path, nil, nil, http.StatusOK, http.StatusCreated); err != nil {
		return err
	}
	profile := map[string]string{
		"assetClass":    "EQUITY",
		"assetSubClass": "MUTUALFUND",
		"currency":      currency,
		"name":          name,
	}
	if err := c.call(ctx, "update asset", http.MethodPatch, path, profile, nil, http.StatusOK, http.StatusCreated); err != nil {
		return err
	}
	c.logger.Info().Str("symbol", symbol).Str("name", name).Msg("registered asset")
	return nil
}

// UpdateMarketData records the price of a MANUAL asset on a day.
func (c *Client) UpdateMarketData(ctx context.Context, symbol string, on date.Date, price decimal.Decimal) error {
	body := map[string]any{
		"marketData": map[date.Date]any{on: number(price)},
	}
	return c.call(ctx, "update market data", http.MethodPatch, profilePath(symbol), body, nil, http.StatusOK, http.StatusCreated)
}
