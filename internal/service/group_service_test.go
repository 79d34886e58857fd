package service

import (
	"context"
	"errors"
	"testing"

	"github.com/igokul95/splitzer/internal/calculator"
	"github.com/igokul95/splitzer/internal/models"
)

func TestCreateGroupWithGhostMembers(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.createUser(t, "user-a", "Alice")
	ts.createUser(t, "user-b", "Bob")

	group, err := ts.groups.CreateGroup(ctx, "user-a", CreateGroupInput{
		Name:            "Goa Trip",
		DefaultCurrency: "INR",
		Type:            models.GroupTrip,
		Members: []MemberInput{
			{Email: "user-b@example.com"}, // existing account, matched by email
			{Name: "Charlie"},             // no account yet
		},
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	members, err := ts.store.ListGroupMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListGroupMembers failed: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("Expected 3 members, got %d", len(members))
	}

	var creator, bob *models.GroupMember
	var ghostID string
	for _, m := range members {
		switch m.UserID {
		case "user-a":
			creator = m
		case "user-b":
			bob = m
		default:
			ghostID = m.UserID
		}
	}
	if creator == nil || creator.Role != models.RoleAdmin || creator.Status != models.MemberJoined {
		t.Errorf("Unexpected creator membership: %+v", creator)
	}
	if bob == nil || bob.Status != models.MemberInvited {
		t.Errorf("Unexpected matched membership: %+v", bob)
	}

	ghost, err := ts.store.GetUserByID(ctx, ghostID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if ghost.Status != models.UserInvited || ghost.Name != "Charlie" || ghost.InvitedBy != "user-a" {
		t.Errorf("Unexpected ghost user: %+v", ghost)
	}
}

func TestLeaveGroupRequiresSettledBalances(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.createUser(t, "user-a", "Alice")
	ts.createUser(t, "user-b", "Bob")

	group, err := ts.groups.CreateGroup(ctx, "user-a", CreateGroupInput{
		Name:            "Flat",
		DefaultCurrency: "USD",
		Members:         []MemberInput{{Email: "user-b@example.com"}},
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	_, err = ts.expenses.AddExpense(ctx, "user-a", AddExpenseInput{
		GroupID:     group.ID,
		Description: "Rent",
		TotalAmount: 100,
		Currency:    "USD",
		Method:      models.SplitEqual,
		PaidBy:      "user-a",
		Participants: []calculator.Participant{
			{UserID: "user-a", Included: true},
			{UserID: "user-b", Included: true},
		},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	t.Run("blocked while owing", func(t *testing.T) {
		err := ts.groups.LeaveGroup(ctx, "user-b", group.ID)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Expected ErrValidation, got %v", err)
		}
	})

	t.Run("allowed after settling", func(t *testing.T) {
		_, err := ts.expenses.SettleUp(ctx, "user-b", SettleUpInput{
			ToUserID: "user-a",
			Amount:   50,
			Currency: "USD",
			GroupID:  group.ID,
		})
		if err != nil {
			t.Fatalf("SettleUp failed: %v", err)
		}

		if err := ts.groups.LeaveGroup(ctx, "user-b", group.ID); err != nil {
			t.Fatalf("LeaveGroup failed: %v", err)
		}

		member, err := ts.store.GetGroupMember(ctx, group.ID, "user-b")
		if err != nil {
			t.Fatalf("GetGroupMember failed: %v", err)
		}
		if member.Status != models.MemberLeft {
			t.Errorf("Expected left status, got %s", member.Status)
		}
	})

	t.Run("left member cannot add expenses", func(t *testing.T) {
		_, err := ts.expenses.AddExpense(ctx, "user-b", AddExpenseInput{
			GroupID:      group.ID,
			Description:  "Late",
			TotalAmount:  10,
			Currency:     "USD",
			Method:       models.SplitEqual,
			PaidBy:       "user-b",
			Participants: []calculator.Participant{{UserID: "user-b", Included: true}},
		})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})
}

func TestRemoveMember(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.createUser(t, "user-a", "Alice")
	ts.createUser(t, "user-b", "Bob")

	group, err := ts.groups.CreateGroup(ctx, "user-a", CreateGroupInput{
		Name:            "Flat",
		DefaultCurrency: "USD",
		Members:         []MemberInput{{Email: "user-b@example.com"}},
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("non-admin cannot remove", func(t *testing.T) {
		err := ts.groups.RemoveMember(ctx, "user-b", group.ID, "user-a")
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("admin cannot remove self", func(t *testing.T) {
		err := ts.groups.RemoveMember(ctx, "user-a", group.ID, "user-a")
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Expected ErrValidation, got %v", err)
		}
	})

	t.Run("admin removes settled member", func(t *testing.T) {
		if err := ts.groups.RemoveMember(ctx, "user-a", group.ID, "user-b"); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		member, err := ts.store.GetGroupMember(ctx, group.ID, "user-b")
		if err != nil {
			t.Fatalf("GetGroupMember failed: %v", err)
		}
		if member.Status != models.MemberLeft {
			t.Errorf("Expected left status, got %s", member.Status)
		}
	})
}

func TestDeleteGroup(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.createUser(t, "user-a", "Alice")
	ts.createUser(t, "user-b", "Bob")

	group, err := ts.groups.CreateGroup(ctx, "user-a", CreateGroupInput{
		Name:            "Flat",
		DefaultCurrency: "USD",
		Members:         []MemberInput{{Email: "user-b@example.com"}},
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	_, err = ts.expenses.AddExpense(ctx, "user-a", AddExpenseInput{
		GroupID:     group.ID,
		Description: "Rent",
		TotalAmount: 100,
		Currency:    "USD",
		Method:      models.SplitEqual,
		PaidBy:      "user-a",
		Participants: []calculator.Participant{
			{UserID: "user-a", Included: true},
			{UserID: "user-b", Included: true},
		},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	t.Run("blocked while unsettled", func(t *testing.T) {
		err := ts.groups.DeleteGroup(ctx, "user-a", group.ID)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Expected ErrValidation, got %v", err)
		}
	})

	t.Run("allowed after settling", func(t *testing.T) {
		_, err := ts.expenses.SettleUp(ctx, "user-b", SettleUpInput{
			ToUserID: "user-a",
			Amount:   50,
			Currency: "USD",
			GroupID:  group.ID,
		})
		if err != nil {
			t.Fatalf("SettleUp failed: %v", err)
		}

		if err := ts.groups.DeleteGroup(ctx, "user-a", group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}

		rows, err := ts.store.ListGroupBalances(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListGroupBalances failed: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("Expected group balances swept, got %+v", rows)
		}
	})
}

func TestGetMyGroups(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	ts.createUser(t, "user-a", "Alice")
	ts.createUser(t, "user-b", "Bob")

	group, err := ts.groups.CreateGroup(ctx, "user-a", CreateGroupInput{
		Name:            "Flat",
		DefaultCurrency: "USD",
		Members:         []MemberInput{{Email: "user-b@example.com"}},
	})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	_, err = ts.expenses.AddExpense(ctx, "user-a", AddExpenseInput{
		GroupID:     group.ID,
		Description: "Rent",
		TotalAmount: 100,
		Currency:    "USD",
		Method:      models.SplitEqual,
		PaidBy:      "user-a",
		Participants: []calculator.Participant{
			{UserID: "user-a", Included: true},
			{UserID: "user-b", Included: true},
		},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	summaries, err := ts.groups.GetMyGroups(ctx, "user-a")
	if err != nil {
		t.Fatalf("GetMyGroups failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(summaries))
	}
	summary := summaries[0]
	if summary.YourNet["USD"] != 50 {
		t.Errorf("Expected viewer net of 50, got %v", summary.YourNet)
	}
	if len(summary.Members) != 1 || summary.Members[0].UserID != "user-b" || summary.Members[0].Amount != 50 {
		t.Errorf("Unexpected member breakdown: %+v", summary.Members)
	}
	if summary.Members[0].Name != "Bob" {
		t.Errorf("Expected member name resolved, got %q", summary.Members[0].Name)
	}

	// From the debtor's side the sign flips.
	summaries, err = ts.groups.GetMyGroups(ctx, "user-b")
	if err != nil {
		t.Fatalf("GetMyGroups failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].YourNet["USD"] != -50 {
		t.Errorf("Expected viewer net of -50, got %+v", summaries)
	}
}
