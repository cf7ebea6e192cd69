package kourasync

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/kourasync/date"
)

// Category classifies a contribution.
type Category string

const (
	Employee  Category = "employee"
	Employer  Category = "employer"
	Voluntary Category = "voluntary"
	Other     Category = "other"
)

// ParseCategory classifies a free-form transaction label as reported by the
// provider, e.g. "Employer Contribution" or "Member voluntary contribution".
func ParseCategory(label string) Category {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "employer"):
		return Employer
	case strings.Contains(l, "voluntary"):
		return Voluntary
	case strings.Contains(l, "employee"), strings.Contains(l, "member"):
		return Employee
	default:
		return Other
	}
}

// Contribution is a cash deposit into the source account.
type Contribution struct {
	ID       string    // provider-assigned id, possibly empty.
	Date     date.Date // effective date.
	Amount   int64     // in minor units of the account currency.
	Category Category
}

// Key returns the identity of the contribution within its account: the
// provider id when there is one, otherwise its (date, category, amount).
func (c Contribution) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return fmt.Sprintf("%s/%s/%d", c.Date, c.Category, c.Amount)
}

// compareContributions orders contributions chronologically, then by identity.
func compareContributions(a, b Contribution) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Category, b.Category); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Amount, b.Amount); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortContributions sorts contributions in their canonical order, in place.
func SortContributions(cs []Contribution) { slices.SortStableFunc(cs, compareContributions) }
