package models

// ActivityType classifies an activity feed event.
type ActivityType string

const (
	ActivityExpenseAdded   ActivityType = "expense_added"
	ActivityExpenseDeleted ActivityType = "expense_deleted"
	ActivitySettlement     ActivityType = "settlement"
	ActivityMemberAdded    ActivityType = "member_added"
	ActivityMemberRemoved  ActivityType = "member_removed"
	ActivityGroupCreated   ActivityType = "group_created"
	ActivityGroupUpdated   ActivityType = "group_updated"
)

// ActivityMetadata carries denormalized display fields so the feed can render
// without extra lookups. Unused fields stay zero.
type ActivityMetadata struct {
	Description      string  `json:"description,omitempty"`
	TotalAmount      float64 `json:"total_amount,omitempty"`
	Currency         string  `json:"currency,omitempty"`
	PaidByName       string  `json:"paid_by_name,omitempty"`
	PaidByUserID     string  `json:"paid_by_user_id,omitempty"`
	PayerCount       int     `json:"payer_count,omitempty"`
	SplitCount       int     `json:"split_count,omitempty"`
	MemberName       string  `json:"member_name,omitempty"`
	MemberUserID     string  `json:"member_user_id,omitempty"`
	SettlementToName string  `json:"settlement_to_name,omitempty"`
	SettlementToID   string  `json:"settlement_to_user_id,omitempty"`
}

// SplitSummary is one participant's net position on the activity's expense,
// positive when they owe.
type SplitSummary struct {
	UserID string  `json:"user_id"`
	Amount float64 `json:"amount"`
}

// Activity is one append-only event in the user-facing history. Writing an
// activity is best-effort: a failed write never rolls back the mutation it
// describes.
type Activity struct {
	ID              string
	Type            ActivityType
	ActorID         string
	GroupID         string // "" for non-group events
	ExpenseID       string
	InvolvedUserIDs []string
	Metadata        ActivityMetadata
	SplitSummary    []SplitSummary
	CreatedAt       int64
}
