// Package models defines the core domain models for Splitzer.
//
// # Model Overview
//
//   - User: registered or invited ("ghost") account
//   - Group, GroupMember: shared expense contexts with a membership lifecycle
//   - Expense, Split: the ledger; splits are the source of truth for balances
//   - Balance: derived per-(pair, context, currency) net amount
//   - FriendBalance: derived aggregate per pair across all contexts
//   - Activity: denormalized event log for activity feeds
//
// # Design Principles
//
//  1. The expense ledger is ground truth. Balance and FriendBalance rows are
//     always fully re-derivable from non-deleted expenses and their splits.
//  2. Expenses are never edited or hard-deleted: mutations are append
//     (AddExpense, SettleUp) or soft-delete (DeleteExpense). Splits belong to
//     their expense and are never mutated independently.
//  3. Pair-keyed rows store the symmetric "balance between A and B" relation
//     once, under canonical ordering (user1 < user2). Readers flip the sign
//     when the queried user is user2.
//  4. A GroupID of "" means the non-group context: a direct expense between
//     individuals outside any group.
package models
