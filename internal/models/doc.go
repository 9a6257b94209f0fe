// Package models defines the ledger records of splitledger.
//
// # Records
//
//   - Expense: money fronted by one user and shared through per-participant Splits
//   - Settlement: a direct payment from one user to another that reduces a balance
//   - Group: a named set of members that scopes expenses and settlements
//   - User: a registered account, the identity behind every user id
//
// Records are immutable once stored, except for deletion. Balances are never
// persisted: they are derived from these records on every read by the
// calculator package.
//
// # Money
//
// All amounts are shopspring/decimal values. They are persisted as TEXT and
// travel over the wire as JSON strings, so no float rounding happens between
// storage and the ledger engine.
//
// # Relationships
//
// Records reference each other by id strings, never by pointer. An empty
// GroupID marks an individual (non-group) record shared directly between users.
package models
