package kourasync

import (
	"maps"
	"slices"
)

// CashFund is the Koura fund id of the cash fund.
const CashFund = "810001"

// DefaultSymbols maps Koura fund ids to the Ghostfolio symbols of the MANUAL
// assets registered for them.
var DefaultSymbols = map[string]string{
	"810001": "GF_KOURACASH",
	"810002": "GF_KOURAFI",
	"810003": "GF_KOURANZEQ",
	"810004": "GF_KOURAUSEQ",
	"810005": "GF_KOURAROWEQ",
	"810006": "GF_KOURAEMEQ",
	"810007": "GF_KOURABTC",
	"810008": "GF_KOURACLEAN",
	"810009": "GF_KOURAPROP",
	"810010": "GF_KOURASTRAT",
}

// FundNames are the display names of the Koura funds.
var FundNames = map[string]string{
	"810001": "Koura Cash Fund",
	"810002": "Koura Fixed Interest Fund",
	"810003": "Koura NZ Equities Fund",
	"810004": "Koura US Equities Fund",
	"810005": "Koura Rest of World Equities Fund",
	"810006": "Koura Emerging Markets Equities Fund",
	"810007": "Koura Bitcoin Fund",
	"810008": "Koura Clean Energy Fund",
	"810009": "Koura Property Fund",
	"810010": "Koura Strategic Growth Fund",
}

// Symbols maps fund ids to target symbols: user overrides first, then the defaults.
type Symbols struct {
	defaults  map[string]string
	overrides map[string]string
}

// NewSymbols returns the default table with overrides merged on top. Overrides can be nil.
func NewSymbols(overrides map[string]string) *Symbols {
	return &Symbols{defaults: maps.Clone(DefaultSymbols), overrides: maps.Clone(overrides)}
}

// Resolve returns the symbol of fundID.
func (s *Symbols) Resolve(fundID string) (string, error) {
	if sym, ok := s.overrides[fundID]; ok && sym != "" {
		return sym, nil
	}
	if sym, ok := s.defaults[fundID]; ok && sym != "" {
		return sym, nil
	}
	return "", &UnmappedFundError{FundID: fundID}
}

// Funds returns every mapped fund id, sorted.
func (s *Symbols) Funds() []string {
	ids := slices.Collect(maps.Keys(s.defaults))
	for id := range s.overrides {
		if _, ok := s.defaults[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Name returns a display name for fundID, falling back to its symbol.
func (s *Symbols) Name(fundID string) string {
	if name, ok := FundNames[fundID]; ok {
		return name
	}
	sym, _ := s.Resolve(fundID)
	return sym
}
