package models

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus is the lifecycle state of a user account.
type UserStatus string

const (
	// UserActive is a user who has registered and can sign in.
	UserActive UserStatus = "active"

	// UserInvited is a "ghost" user created when someone adds them to a
	// group or expense by name/email/phone before they ever sign up.
	UserInvited UserStatus = "invited"
)

// User represents a registered or invited user account.
type User struct {
	// ID is the unique identifier for the user (UUID format). It is the
	// opaque identifier the balance engine keys pairs on.
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique when set). Empty for ghost
	// users invited by name or phone only.
	Email string

	// Phone is an optional phone number, used to match invited members to
	// existing accounts.
	Phone string

	// PasswordHash is the bcrypt hash of the user's password. Empty for
	// invited users who have not registered yet.
	PasswordHash string

	// DefaultCurrency is the ISO-4217-like currency code used for display
	// defaults (e.g. "USD"). Never used for conversion.
	DefaultCurrency string

	// Status is active or invited.
	Status UserStatus

	// InvitedBy is the user ID that created this ghost account, if any.
	InvitedBy string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser creates an active user with a fresh ID and timestamps.
func NewUser(email, name, passwordHash string) *User {
	return &User{
		ID:              uuid.New().String(),
		Name:            name,
		Email:           email,
		PasswordHash:    passwordHash,
		DefaultCurrency: "USD",
		Status:          UserActive,
		CreatedAt:       time.Now().Unix(),
	}
}
