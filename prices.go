package kourasync

import (
	"github.com/etnz/kourasync/date"
	"github.com/shopspring/decimal"
)

// UnitPrice is the price of one unit of a fund on a date.
type UnitPrice struct {
	FundID string
	Date   date.Date // the day the price was published, possibly before the requested day.
	Price  decimal.Decimal
}

// Fund is a fund of the source account: its current holding and its price history.
type Fund struct {
	ID     string
	Name   string
	Units  decimal.Decimal
	Value  decimal.Decimal // in major units of the account currency.
	Prices *date.History[decimal.Decimal]
}

// PriceBook resolves historical unit prices of funds.
type PriceBook map[string]*date.History[decimal.Decimal]

// NewPriceBook indexes the price histories of funds.
func NewPriceBook(funds []Fund) PriceBook {
	book := make(PriceBook, len(funds))
	for _, f := range funds {
		if f.Prices != nil {
			book[f.ID] = f.Prices
		}
	}
	return book
}

// PriceOn returns the unit price of fundID on day, or the most recent one before
// it on non-trading days. A price after day is never used.
func (b PriceBook) PriceOn(fundID string, day date.Date) (UnitPrice, error) {
	h, ok := b[fundID]
	if !ok {
		return UnitPrice{}, &NoPriceDataError{FundID: fundID, Date: day}
	}
	on, price, ok := h.ValueAsOf(day)
	if !ok || !price.IsPositive() {
		return UnitPrice{}, &NoPriceDataError{FundID: fundID, Date: day}
	}
	return UnitPrice{FundID: fundID, Date: on, Price: price}, nil
}

// Latest returns the most recent unit price of fundID.
func (b PriceBook) Latest(fundID string) (UnitPrice, bool) {
	h, ok := b[fundID]
	if !ok || h.Len() == 0 {
		return UnitPrice{}, false
	}
	on, price := h.Latest()
	return UnitPrice{FundID: fundID, Date: on, Price: price}, true
}
