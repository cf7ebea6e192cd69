package kourasync

// Diff returns the candidates that are not recorded in existing yet, in their
// original order, and the number of skipped candidates.
//
// A candidate is recorded if an existing activity carries its transaction id,
// or, failing that, if an unmatched existing activity has the same fingerprint.
// Fingerprints are matched as a multiset: n identical existing activities
// account for at most n identical candidates.
//
// CASH_BALANCE candidates are always returned: re-asserting a balance is idempotent.
func Diff(existing, candidates []Activity) (fresh []Activity, skipped int) {
	byID := make(map[string]Fingerprint)
	counts := make(map[Fingerprint]int)
	for _, a := range existing {
		fp := a.Fingerprint()
		counts[fp]++
		if id := a.TransactionID(); id != "" {
			byID[id] = fp
		}
	}

	// Transaction ids first, so that a fingerprint match never consumes an
	// existing activity that is claimed by id.
	matched := make([]bool, len(candidates))
	for i, c := range candidates {
		id := c.TransactionID()
		fp, ok := byID[id]
		if c.Type == CashBalance || id == "" || !ok {
			continue
		}
		delete(byID, id)
		counts[fp]--
		matched[i] = true
	}

	for i, c := range candidates {
		switch {
		case c.Type == CashBalance:
			fresh = append(fresh, c)
		case matched[i]:
			skipped++
		case counts[c.Fingerprint()] > 0:
			counts[c.Fingerprint()]--
			skipped++
		default:
			fresh = append(fresh, c)
		}
	}
	return fresh, skipped
}
