package models

// Balance is the derived net amount between a canonical user pair within a
// single context (one group, or the non-group context) for one currency.
// Amount is what user2 owes user1: positive means user2 -> user1, negative
// means user1 -> user2. There is at most one row per (pair, context,
// currency); rows whose net rounds to zero are deleted rather than stored.
type Balance struct {
	User1    string
	User2    string
	GroupID  string // "" = the non-group context
	Currency string
	Amount   float64

	// UpdatedAt is the Unix timestamp of the last recompute that wrote this
	// row.
	UpdatedAt int64
}

// FriendBalance is the derived aggregate for a canonical pair: the sum of
// that pair's Balance amounts across every context and currency, collapsed
// into a single number tagged with one primary currency.
//
// The sum is a raw numeric addition across currency codes with no
// conversion, so it is only meaningful when a single currency is in play.
// Per-currency views read Balance rows instead; this field is advisory.
type FriendBalance struct {
	User1       string
	User2       string
	TotalAmount float64

	// Currency is the primary display currency: the currency of the first
	// context balance with a nonzero amount.
	Currency string

	// LastActivityAt is the Unix timestamp of the last mutation touching
	// this pair.
	LastActivityAt int64
}
