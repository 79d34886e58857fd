package models

// SplitMethod tags how an expense's owed amounts were produced.
type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitExact      SplitMethod = "exact"
	SplitPercentage SplitMethod = "percentage"
	SplitShares     SplitMethod = "shares"
)

// Expense represents a single monetary event: a real-world payment shared by
// one or more users, or a synthetic settlement. Expenses are soft-deleted,
// never edited in place.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group context, or "" for a direct non-group expense.
	GroupID string

	// PaidBy is the designated payer shown in summaries. With multiple
	// payers this is the primary one; actual paid amounts live on the splits.
	PaidBy string

	// Description is the human-readable label (e.g. "Dinner at Luigi's").
	Description string

	// TotalAmount is the full expense amount in Currency.
	TotalAmount float64

	// Currency is the ISO-4217-like currency code. Amounts are tracked
	// strictly per code and never converted.
	Currency string

	// Category is an optional expense category tag.
	Category string

	// Date is the Unix timestamp of the logical transaction date, which can
	// differ from CreatedAt (a backfilled receipt, for instance).
	Date int64

	// CreatedBy is the user who recorded the expense.
	CreatedBy string

	// SplitMethod records which split strategy produced the owed amounts.
	SplitMethod SplitMethod

	// IsSettlement is true only for the synthetic expense written by a
	// settle-up payment.
	IsSettlement bool

	// IsMultiPayer, PayerCount and SplitCount are denormalized from the
	// splits at write time so list views need not re-scan split rows.
	IsMultiPayer bool
	PayerCount   int
	SplitCount   int

	// Notes is optional free-form text.
	Notes string

	// IsDeleted marks a soft-deleted expense. Deleted expenses keep their
	// split rows but are excluded from every balance computation.
	IsDeleted bool
	DeletedBy string
	DeletedAt int64

	// CreatedAt is the Unix timestamp when the record was written.
	CreatedAt int64

	// Splits holds the expense's split rows when the store loaded them
	// alongside the expense. Nil on lookups that fetch the expense alone.
	Splits []Split
}

// Split is one user's stake in an expense: how much they actually paid out
// and what their fair share of the total is. A user appears in an expense's
// splits if they paid, owe, or both.
type Split struct {
	ExpenseID string
	UserID    string

	// PaidAmount is what this user physically paid toward the total.
	PaidAmount float64

	// OwedAmount is this user's share of the total.
	OwedAmount float64
}

// Net is this user's net contribution on the expense: positive means net
// lender, negative net borrower, zero fully matched.
func (s Split) Net() float64 {
	return s.PaidAmount - s.OwedAmount
}
