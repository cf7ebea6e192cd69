// Package kourasync reconciles the contribution history of a Koura Wealth
// managed-fund account with a Ghostfolio account.
//
// Ghostfolio cannot price Koura funds by itself, so the package derives a
// synthetic transaction history that approximates the Koura account value over
// time. Two reconstruction modes are available:
//   - Funds: every contribution is split across the funds of the account
//     allocation policy and each part becomes a BUY of fund units, valued at the
//     historical unit price of the contribution date.
//   - Cash: every contribution becomes an INTEREST posting on a cash symbol, and
//     a final CASH_BALANCE asserts the current Koura balance.
//
// The reconciliation engine (Reconcile) is a pure function: it never performs
// I/O. The Syncer drives it for each configured account, fetching data from a
// Source (Koura) and submitting the new activities to a Target (Ghostfolio).
//
// Every activity carries a deterministic transaction id, and candidates are
// compared against the activities already recorded in the target, so that
// running the sync repeatedly never creates duplicates.
package kourasync
