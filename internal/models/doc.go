// Package models defines the core domain records for Splitpot.
//
// # Records
//
//   - User: a registered participant with a display name
//   - Group: a named set of members sharing expenses
//   - Expense: a payment made by one member on behalf of several
//   - Activity: an append-only journal entry for a group
//   - Settlement: a proposed payment that reduces outstanding debt
//
// # Amounts
//
// All amounts are signed 64-bit integers in the smallest currency unit.
// Expense splitting never produces fractions: integer division assigns
// the remainder one unit at a time to the first participants in listed
// order, so shares always sum exactly to the expense amount.
//
// # Balances
//
// A balance is kept per (group, account). Negative means the account
// owes the group, positive means the group owes the account. Within a
// group, balances across all members always sum to zero.
//
// # Relationships
//
// Records reference each other by ID (group ids, account ids), never by
// pointer, so they can be persisted and reloaded independently.
package models
