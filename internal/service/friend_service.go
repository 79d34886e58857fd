package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/igokul95/splitzer/internal/calculator"
	"github.com/igokul95/splitzer/internal/models"
	"github.com/igokul95/splitzer/internal/storage"
)

// friendVisibilityWindow keeps a fully settled friend visible for a while
// after the last mutation touching the pair, so a freshly settled debt does
// not vanish from the list mid-conversation.
const friendVisibilityWindow = 7 * 24 * time.Hour

// FriendService answers "who do I owe, who owes me" across every context.
type FriendService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewFriendService creates a new FriendService.
func NewFriendService(store storage.Store, logger *slog.Logger) *FriendService {
	return &FriendService{store: store, logger: logger}
}

// CurrencyTotal is the viewer's position against one friend in one currency.
// Exactly one of YouOwe / YouAreOwed is nonzero per row.
type CurrencyTotal struct {
	Currency   string
	YouOwe     float64
	YouAreOwed float64
}

// GroupBalance is one friend's balance against the viewer inside one group.
type GroupBalance struct {
	GroupID   string
	GroupName string
	Currency  string

	// Amount is what the friend owes the viewer in this group, negative
	// when the viewer owes them.
	Amount float64
}

// Friend is one row of the friends list.
type Friend struct {
	UserID string
	Name   string

	// NetAmount is the raw cross-currency aggregate from the viewer's
	// perspective. Advisory only; per-currency truth is in Totals.
	NetAmount float64
	Currency  string

	Totals         []CurrencyTotal
	Groups         []GroupBalance
	LastActivityAt int64
}

// FriendsResult splits the friends list into the rows worth showing and the
// settled, inactive remainder.
type FriendsResult struct {
	Visible []*Friend
	Hidden  []*Friend
}

// GetFriends builds the viewer's friends list: everyone they share a
// friend-balance row with, unioned with active co-members of their groups.
// A friend with no outstanding balance and no activity within the
// visibility window lands in Hidden.
func (s *FriendService) GetFriends(ctx context.Context, viewerID string) (*FriendsResult, error) {
	friendIDs := make(map[string]struct{})

	aggregates, err := s.store.ListUserFriendBalances(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend balances: %w", err)
	}
	aggByFriend := make(map[string]*models.FriendBalance, len(aggregates))
	for _, fb := range aggregates {
		other := fb.User2
		if viewerID == fb.User2 {
			other = fb.User1
		}
		friendIDs[other] = struct{}{}
		aggByFriend[other] = fb
	}

	memberships, err := s.store.ListUserMemberships(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	for _, membership := range memberships {
		if !membership.IsActive() {
			continue
		}
		members, err := s.store.ListGroupMembers(ctx, membership.GroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to list group members: %w", err)
		}
		for _, m := range members {
			if m.UserID != viewerID && m.IsActive() {
				friendIDs[m.UserID] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(friendIDs))
	for id := range friendIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load friend users: %w", err)
	}

	groupNames := make(map[string]string)
	result := &FriendsResult{}
	now := time.Now()
	for _, friendID := range ids {
		friend, err := s.buildFriend(ctx, viewerID, friendID, aggByFriend[friendID], groupNames)
		if err != nil {
			return nil, err
		}
		if u, ok := users[friendID]; ok {
			friend.Name = u.Name
		}

		settled := len(friend.Totals) == 0
		stale := friend.LastActivityAt == 0 ||
			now.Sub(time.Unix(friend.LastActivityAt, 0)) > friendVisibilityWindow
		if settled && stale {
			result.Hidden = append(result.Hidden, friend)
		} else {
			result.Visible = append(result.Visible, friend)
		}
	}
	return result, nil
}

// buildFriend assembles one friends-list row from the pair's balance rows.
func (s *FriendService) buildFriend(ctx context.Context, viewerID, friendID string, agg *models.FriendBalance, groupNames map[string]string) (*Friend, error) {
	friend := &Friend{UserID: friendID}

	if agg != nil {
		friend.Currency = agg.Currency
		friend.LastActivityAt = agg.LastActivityAt
		friend.NetAmount = agg.TotalAmount
		if viewerID == agg.User2 {
			friend.NetAmount = -agg.TotalAmount
		}
	}

	u1, u2 := calculator.CanonicalPair(viewerID, friendID)
	rows, err := s.store.ListPairBalances(ctx, u1, u2)
	if err != nil {
		return nil, fmt.Errorf("failed to list pair balances: %w", err)
	}

	totals := make(map[string]*CurrencyTotal)
	for _, row := range rows {
		_, amount := viewerPerspective(row, viewerID)
		if math.Abs(amount) < settledThreshold {
			continue
		}

		total, ok := totals[row.Currency]
		if !ok {
			total = &CurrencyTotal{Currency: row.Currency}
			totals[row.Currency] = total
		}
		if amount > 0 {
			total.YouAreOwed += amount
		} else {
			total.YouOwe += -amount
		}

		if row.GroupID != "" {
			name, ok := groupNames[row.GroupID]
			if !ok {
				if group, err := s.store.GetGroup(ctx, row.GroupID); err == nil {
					name = group.Name
				}
				groupNames[row.GroupID] = name
			}
			friend.Groups = append(friend.Groups, GroupBalance{
				GroupID:   row.GroupID,
				GroupName: name,
				Currency:  row.Currency,
				Amount:    amount,
			})
		}
	}

	currencies := make([]string, 0, len(totals))
	for c := range totals {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	for _, c := range currencies {
		total := totals[c]
		total.YouOwe = calculator.Round2(total.YouOwe)
		total.YouAreOwed = calculator.Round2(total.YouAreOwed)
		friend.Totals = append(friend.Totals, *total)
	}
	return friend, nil
}

// FriendDetail is the drill-down view for one friend: the overall position
// plus the shared expense history.
type FriendDetail struct {
	Friend *Friend

	// SharedExpenses is every non-deleted expense, in any context, where
	// both the viewer and the friend hold splits. Newest first.
	SharedExpenses []*ExpenseDetail
}

// GetFriendDetail returns the viewer's full position against one friend.
func (s *FriendService) GetFriendDetail(ctx context.Context, viewerID, friendID string) (*FriendDetail, error) {
	if friendID == viewerID {
		return nil, validationf("cannot view yourself as a friend")
	}

	u1, u2 := calculator.CanonicalPair(viewerID, friendID)
	var agg *models.FriendBalance
	if fb, err := s.store.GetFriendBalance(ctx, u1, u2); err == nil {
		agg = fb
	}

	friend, err := s.buildFriend(ctx, viewerID, friendID, agg, make(map[string]string))
	if err != nil {
		return nil, err
	}
	if u, err := s.store.GetUserByID(ctx, friendID); err == nil {
		friend.Name = u.Name
	}

	expenses, err := s.store.ListSharedExpenses(ctx, u1, u2)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared expenses: %w", err)
	}
	details := make([]*ExpenseDetail, len(expenses))
	for i, expense := range expenses {
		net, involvement := classifyViewer(expense, viewerID)
		details[i] = &ExpenseDetail{Expense: expense, ViewerNet: net, Involvement: involvement}
	}

	return &FriendDetail{Friend: friend, SharedExpenses: details}, nil
}
