package kourasync

import (
	"strings"

	"github.com/etnz/kourasync/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActivityType is the type of a target activity.
type ActivityType string

const (
	Buy         ActivityType = "BUY"
	Interest    ActivityType = "INTEREST"
	CashBalance ActivityType = "CASH_BALANCE" // sets the account cash balance, never imported as an activity.
)

// QuantityPrecision is the number of decimal places quantities are compared with.
const QuantityPrecision = 4

// ManualDataSource is the Ghostfolio data source of user-priced assets.
const ManualDataSource = "MANUAL"

// Activity is a transaction record of the target system.
//
// Synthetic activities are derived on every run and only persisted by
// submitting them to the target.
type Activity struct {
	ID         string // target id, only for recorded activities.
	AccountID  string
	FundID     string // source fund, only for synthetic activities.
	Symbol     string
	Name       string // asset name, only for recorded activities.
	Date       date.Date
	Type       ActivityType
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	Fee        decimal.Decimal
	Currency   string
	DataSource string
	Comment    string
}

// Value returns quantity times unit price.
func (a Activity) Value() decimal.Decimal { return a.Quantity.Mul(a.UnitPrice) }

const transactionIDKey = "transactionId="

// TransactionID returns the transaction id recorded in the activity comment, if any.
func (a Activity) TransactionID() string {
	_, after, found := strings.Cut(a.Comment, transactionIDKey)
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(after, "|")
	return strings.TrimSpace(id)
}

// Fingerprint identifies an activity independently of its target id.
type Fingerprint struct {
	Date     date.Date
	Symbol   string
	Type     ActivityType
	Quantity string // absolute quantity rounded to QuantityPrecision.
}

// Fingerprint returns the fingerprint of a.
func (a Activity) Fingerprint() Fingerprint {
	return Fingerprint{
		Date:     a.Date,
		Symbol:   a.Symbol,
		Type:     a.Type,
		Quantity: a.Quantity.Abs().StringFixed(QuantityPrecision),
	}
}

// namespace of the synthetic transaction ids.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/etnz/kourasync"))

// transactionID derives a stable id from the parts identifying a synthetic activity.
func transactionID(parts ...string) string {
	return uuid.NewSHA1(namespace, []byte(strings.Join(parts, "|"))).String()
}

// comment formats an activity comment carrying a transaction id.
func comment(id, text string) string { return transactionIDKey + id + "|" + text }
