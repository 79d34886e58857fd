package models

// GroupType is an optional classification for a group.
type GroupType string

const (
	GroupTrip   GroupType = "trip"
	GroupHome   GroupType = "home"
	GroupCouple GroupType = "couple"
	GroupOther  GroupType = "other"
)

// Group represents a shared context for splitting expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g. "Goa Trip", "Flat 4B").
	Name string

	// CreatedBy is the user ID of the creator.
	CreatedBy string

	// DefaultCurrency is the group's default currency code for new expenses.
	DefaultCurrency string

	// SimplifyDebts is a persisted preference. It is carried on the group
	// but no settlement planning acts on it.
	SimplifyDebts bool

	// Type is an optional group classification. Empty when unset.
	Type GroupType

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// MemberRole is a group member's permission level.
type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// MemberStatus is a group membership's lifecycle state. Members are never
// removed from the table; leaving sets the status to "left".
type MemberStatus string

const (
	MemberInvited MemberStatus = "invited"
	MemberJoined  MemberStatus = "joined"
	MemberLeft    MemberStatus = "left"
)

// GroupMember links a user to a group with role and lifecycle status.
type GroupMember struct {
	GroupID   string
	UserID    string
	Role      MemberRole
	Status    MemberStatus
	InvitedBy string

	// JoinedAt is the Unix timestamp when the member joined, zero while
	// still invited.
	JoinedAt int64
}

// IsActive reports whether the membership still counts: invited and joined
// members participate in balances and authorization, left members do not.
func (m *GroupMember) IsActive() bool {
	return m.Status != MemberLeft
}
