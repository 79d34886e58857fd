// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/igokul95/splitzer/internal/models"
)

// ErrNotFound is returned when a referenced record does not exist.
// Implementations wrap it so callers can match with errors.Is.
var ErrNotFound = errors.New("not found")

// BalanceKey identifies one derived balance row: a canonical pair in one
// context for one currency.
type BalanceKey struct {
	User1    string
	User2    string
	GroupID  string // "" = non-group context
	Currency string
}

// PairContext identifies a canonical pair within one context, across all
// currencies. The maintenance recompute iterates these.
type PairContext struct {
	User1   string
	User2   string
	GroupID string
}

// UserStore persists user accounts, including invited ghost users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// UpdateUser rewrites a user's mutable fields. Used when a ghost
	// account is claimed at registration.
	UpdateUser(ctx context.Context, user *models.User) error

	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// GroupStore persists groups and their membership lifecycle. Memberships are
// never deleted; leaving sets the status to "left".
type GroupStore interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, groupID string) error

	AddGroupMember(ctx context.Context, member *models.GroupMember) error
	GetGroupMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error)
	ListGroupMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error)
	ListUserMemberships(ctx context.Context, userID string) ([]*models.GroupMember, error)
	UpdateMemberStatus(ctx context.Context, groupID, userID string, status models.MemberStatus) error
}

// ExpenseStore persists the ledger: expenses and their splits. An expense and
// its splits are written in a single transaction, and splits are never
// touched afterwards; deletion is the parent expense's soft-delete flag.
type ExpenseStore interface {
	// CreateExpense persists the expense and its splits atomically,
	// assigning ID and CreatedAt when unset.
	CreateExpense(ctx context.Context, expense *models.Expense, splits []models.Split) error

	// GetExpense retrieves an expense (deleted or not) without splits.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// GetExpenseSplits retrieves all splits of one expense.
	GetExpenseSplits(ctx context.Context, expenseID string) ([]models.Split, error)

	// MarkExpenseDeleted sets the soft-delete flag, actor and timestamp.
	MarkExpenseDeleted(ctx context.Context, expenseID, deletedBy string, deletedAt int64) error

	// ListGroupExpenses returns all non-deleted expenses of a group, splits
	// attached, newest date first.
	ListGroupExpenses(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListNonGroupExpensesBetween returns all non-deleted expenses with no
	// group where both users hold a split, splits attached. Implemented as
	// a scan-and-join over user1's splits.
	ListNonGroupExpensesBetween(ctx context.Context, user1, user2 string) ([]*models.Expense, error)

	// ListSharedExpenses returns all non-deleted expenses, in any context,
	// where both users hold a split, splits attached, newest date first.
	ListSharedExpenses(ctx context.Context, user1, user2 string) ([]*models.Expense, error)

	// ListActiveExpenses returns every non-deleted expense with splits
	// attached. Used by the full-ledger recompute.
	ListActiveExpenses(ctx context.Context) ([]*models.Expense, error)
}

// BalanceStore persists the derived balance rows the engine maintains.
type BalanceStore interface {
	// UpsertBalance writes the single row for (pair, context, currency).
	UpsertBalance(ctx context.Context, b *models.Balance) error

	// DeleteBalance removes one derived row. Missing rows are not an error.
	DeleteBalance(ctx context.Context, key BalanceKey) error

	// ListContextBalances returns the per-currency rows for a pair within
	// one context.
	ListContextBalances(ctx context.Context, user1, user2, groupID string) ([]*models.Balance, error)

	// ListPairBalances returns every row for a pair across all contexts.
	ListPairBalances(ctx context.Context, user1, user2 string) ([]*models.Balance, error)

	// ListUserBalances returns every row where the user appears on either
	// side.
	ListUserBalances(ctx context.Context, userID string) ([]*models.Balance, error)

	// ListGroupBalances returns every row within one group.
	ListGroupBalances(ctx context.Context, groupID string) ([]*models.Balance, error)

	// ListBalanceContexts returns the distinct (pair, context) combinations
	// that currently have rows.
	ListBalanceContexts(ctx context.Context) ([]PairContext, error)

	// UpsertFriendBalance writes the single aggregate row for a pair.
	UpsertFriendBalance(ctx context.Context, fb *models.FriendBalance) error

	// GetFriendBalance returns the aggregate row for a pair, or ErrNotFound.
	GetFriendBalance(ctx context.Context, user1, user2 string) (*models.FriendBalance, error)

	// ListUserFriendBalances returns every aggregate row where the user
	// appears on either side.
	ListUserFriendBalances(ctx context.Context, userID string) ([]*models.FriendBalance, error)
}

// ActivityStore appends and reads the user-facing event log.
type ActivityStore interface {
	CreateActivity(ctx context.Context, activity *models.Activity) error
	ListGroupActivities(ctx context.Context, groupID string, limit int) ([]*models.Activity, error)
	ListActorActivities(ctx context.Context, actorID string, limit int) ([]*models.Activity, error)
}

// Store is the full persistence interface. This abstraction allows swapping
// storage backends (SQLite, PostgreSQL, etc.) without changing the service
// layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	BalanceStore
	ActivityStore

	// Close releases any resources held by the store.
	Close() error
}
