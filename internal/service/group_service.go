package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/igokul95/splitzer/internal/models"
	"github.com/igokul95/splitzer/internal/storage"
)

// structuralThreshold is the cutoff for "effectively settled" when changing
// group structure: leaving, removing a member or deleting a group is blocked
// while any relevant balance exceeds it. Slightly looser than the display
// threshold so lingering rounding dust never traps a member.
const structuralThreshold = 0.01

// GroupService manages groups and their membership lifecycle.
type GroupService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewGroupService creates a new GroupService.
func NewGroupService(store storage.Store, logger *slog.Logger) *GroupService {
	return &GroupService{store: store, logger: logger}
}

// MemberInput identifies a person to add to a group. An existing account is
// matched by email, then phone; otherwise a ghost user is created under Name
// so the member can be split against before they ever sign up.
type MemberInput struct {
	Name  string
	Email string
	Phone string
}

// CreateGroupInput carries a new group's settings and initial members.
type CreateGroupInput struct {
	Name            string
	DefaultCurrency string
	Type            models.GroupType
	SimplifyDebts   bool
	Members         []MemberInput
}

// CreateGroup creates a group with the actor as a joined admin and the given
// members invited. Members without an existing account become ghost users.
func (s *GroupService) CreateGroup(ctx context.Context, actorID string, in CreateGroupInput) (*models.Group, error) {
	if in.Name == "" {
		return nil, validationf("group name is required")
	}
	if in.DefaultCurrency == "" {
		return nil, validationf("default currency is required")
	}

	group := &models.Group{
		Name:            in.Name,
		CreatedBy:       actorID,
		DefaultCurrency: in.DefaultCurrency,
		SimplifyDebts:   in.SimplifyDebts,
		Type:            in.Type,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	creator := &models.GroupMember{
		GroupID: group.ID,
		UserID:  actorID,
		Role:    models.RoleAdmin,
		Status:  models.MemberJoined,
	}
	if err := s.store.AddGroupMember(ctx, creator); err != nil {
		return nil, fmt.Errorf("failed to add group creator: %w", err)
	}

	for _, m := range in.Members {
		user, err := s.resolveOrCreateUser(ctx, actorID, m)
		if err != nil {
			return nil, err
		}
		if user.ID == actorID {
			continue
		}
		member := &models.GroupMember{
			GroupID:   group.ID,
			UserID:    user.ID,
			Role:      models.RoleMember,
			Status:    models.MemberInvited,
			InvitedBy: actorID,
		}
		if err := s.store.AddGroupMember(ctx, member); err != nil {
			return nil, fmt.Errorf("failed to add group member: %w", err)
		}
	}

	s.recordGroupActivity(ctx, models.ActivityGroupCreated, actorID, group.ID, models.ActivityMetadata{
		Description: group.Name,
	})
	return group, nil
}

// GetGroup returns a group the viewer belongs to, in any membership state.
func (s *GroupService) GetGroup(ctx context.Context, viewerID, groupID string) (*models.Group, error) {
	if _, err := s.store.GetGroupMember(ctx, groupID, viewerID); err != nil {
		return nil, forbiddenf("user %s is not a member of group %s", viewerID, groupID)
	}
	return s.store.GetGroup(ctx, groupID)
}

// GroupMemberInfo is a membership row joined with the member's display data.
type GroupMemberInfo struct {
	Member *models.GroupMember
	Name   string
	Email  string
}

// GetGroupMembers lists a group's members with names, left members included.
func (s *GroupService) GetGroupMembers(ctx context.Context, viewerID, groupID string) ([]*GroupMemberInfo, error) {
	if _, err := s.store.GetGroupMember(ctx, groupID, viewerID); err != nil {
		return nil, forbiddenf("user %s is not a member of group %s", viewerID, groupID)
	}

	members, err := s.store.ListGroupMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load member users: %w", err)
	}

	infos := make([]*GroupMemberInfo, len(members))
	for i, m := range members {
		info := &GroupMemberInfo{Member: m}
		if u, ok := users[m.UserID]; ok {
			info.Name = u.Name
			info.Email = u.Email
		}
		infos[i] = info
	}
	return infos, nil
}

// MemberBalance is one co-member's net against the viewer in one currency,
// positive when they owe the viewer.
type MemberBalance struct {
	UserID   string
	Name     string
	Currency string
	Amount   float64
}

// GroupSummary is a group with the viewer's position in it.
type GroupSummary struct {
	Group *models.Group

	// YourNet is the viewer's net per currency across the group, positive
	// when the viewer is owed.
	YourNet map[string]float64

	// Members breaks the viewer's position down by co-member and currency.
	// Pairs the viewer has no balance with are omitted.
	Members []MemberBalance
}

// GetMyGroups returns every group the viewer has not left, with the viewer's
// net position and per-member breakdown.
func (s *GroupService) GetMyGroups(ctx context.Context, viewerID string) ([]*GroupSummary, error) {
	memberships, err := s.store.ListUserMemberships(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	var summaries []*GroupSummary
	for _, membership := range memberships {
		if !membership.IsActive() {
			continue
		}
		group, err := s.store.GetGroup(ctx, membership.GroupID)
		if err != nil {
			return nil, err
		}

		rows, err := s.store.ListGroupBalances(ctx, group.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list group balances: %w", err)
		}

		summary := &GroupSummary{Group: group, YourNet: make(map[string]float64)}
		var otherIDs []string
		for _, row := range rows {
			other, amount := viewerPerspective(row, viewerID)
			if other == "" {
				continue
			}
			summary.YourNet[row.Currency] += amount
			summary.Members = append(summary.Members, MemberBalance{
				UserID:   other,
				Currency: row.Currency,
				Amount:   amount,
			})
			otherIDs = append(otherIDs, other)
		}

		users, err := s.store.GetUsersByIDs(ctx, otherIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load users: %w", err)
		}
		for i := range summary.Members {
			if u, ok := users[summary.Members[i].UserID]; ok {
				summary.Members[i].Name = u.Name
			}
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// UpdateGroup changes a group's settings. Admin only. The simplifyDebts
// preference is persisted but nothing acts on it.
func (s *GroupService) UpdateGroup(ctx context.Context, actorID string, group *models.Group) error {
	if err := s.requireAdmin(ctx, group.ID, actorID); err != nil {
		return err
	}
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return err
	}
	s.recordGroupActivity(ctx, models.ActivityGroupUpdated, actorID, group.ID, models.ActivityMetadata{
		Description: group.Name,
	})
	return nil
}

// AddMember invites a person into a group. Any active member can add; the
// person is matched to an existing account or created as a ghost.
func (s *GroupService) AddMember(ctx context.Context, actorID, groupID string, in MemberInput) (*models.GroupMember, error) {
	actor, err := s.store.GetGroupMember(ctx, groupID, actorID)
	if err != nil || !actor.IsActive() {
		return nil, forbiddenf("user %s is not an active member of group %s", actorID, groupID)
	}

	user, err := s.resolveOrCreateUser(ctx, actorID, in)
	if err != nil {
		return nil, err
	}

	if existing, err := s.store.GetGroupMember(ctx, groupID, user.ID); err == nil {
		if existing.IsActive() {
			return nil, validationf("user %s is already a member", user.ID)
		}
		// Rejoin a previously left member.
		if err := s.store.UpdateMemberStatus(ctx, groupID, user.ID, models.MemberInvited); err != nil {
			return nil, fmt.Errorf("failed to re-invite member: %w", err)
		}
		existing.Status = models.MemberInvited
		s.recordMemberActivity(ctx, models.ActivityMemberAdded, actorID, groupID, user)
		return existing, nil
	}

	member := &models.GroupMember{
		GroupID:   groupID,
		UserID:    user.ID,
		Role:      models.RoleMember,
		Status:    models.MemberInvited,
		InvitedBy: actorID,
	}
	if err := s.store.AddGroupMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	s.recordMemberActivity(ctx, models.ActivityMemberAdded, actorID, groupID, user)
	return member, nil
}

// RemoveMember marks another member as left. Admin only, never self (admins
// leave like everyone else), and only when the target's group balances are
// all settled.
func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, userID string) error {
	if userID == actorID {
		return validationf("use leave to remove yourself")
	}
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}
	if err := s.requireSettledInGroup(ctx, groupID, userID); err != nil {
		return err
	}

	if err := s.store.UpdateMemberStatus(ctx, groupID, userID, models.MemberLeft); err != nil {
		return err
	}
	if user, err := s.store.GetUserByID(ctx, userID); err == nil {
		s.recordMemberActivity(ctx, models.ActivityMemberRemoved, actorID, groupID, user)
	}
	return nil
}

// LeaveGroup marks the actor's own membership as left, allowed only when
// their group balances are all settled. The membership row and the member's
// expense history stay.
func (s *GroupService) LeaveGroup(ctx context.Context, actorID, groupID string) error {
	member, err := s.store.GetGroupMember(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !member.IsActive() {
		return validationf("user %s has already left group %s", actorID, groupID)
	}
	if err := s.requireSettledInGroup(ctx, groupID, actorID); err != nil {
		return err
	}

	if err := s.store.UpdateMemberStatus(ctx, groupID, actorID, models.MemberLeft); err != nil {
		return err
	}
	if user, err := s.store.GetUserByID(ctx, actorID); err == nil {
		s.recordMemberActivity(ctx, models.ActivityMemberRemoved, actorID, groupID, user)
	}
	return nil
}

// DeleteGroup removes a group entirely. Admin only, and only when every
// balance in the group is settled. Memberships cascade; the group's derived
// balance rows (all within the structural threshold by now) are swept.
func (s *GroupService) DeleteGroup(ctx context.Context, actorID, groupID string) error {
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}

	rows, err := s.store.ListGroupBalances(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to list group balances: %w", err)
	}
	for _, row := range rows {
		if math.Abs(row.Amount) > structuralThreshold {
			return validationf("group has unsettled balances")
		}
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	for _, row := range rows {
		err := s.store.DeleteBalance(ctx, storage.BalanceKey{
			User1:    row.User1,
			User2:    row.User2,
			GroupID:  groupID,
			Currency: row.Currency,
		})
		if err != nil {
			return fmt.Errorf("failed to sweep group balance: %w", err)
		}
	}
	return nil
}

// requireAdmin checks the actor is an active admin of the group.
func (s *GroupService) requireAdmin(ctx context.Context, groupID, userID string) error {
	member, err := s.store.GetGroupMember(ctx, groupID, userID)
	if err != nil {
		return forbiddenf("user %s is not a member of group %s", userID, groupID)
	}
	if !member.IsActive() || member.Role != models.RoleAdmin {
		return forbiddenf("user %s is not an admin of group %s", userID, groupID)
	}
	return nil
}

// requireSettledInGroup checks every group balance involving the user is
// within the structural threshold.
func (s *GroupService) requireSettledInGroup(ctx context.Context, groupID, userID string) error {
	rows, err := s.store.ListGroupBalances(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to list group balances: %w", err)
	}
	for _, row := range rows {
		if row.User1 != userID && row.User2 != userID {
			continue
		}
		if math.Abs(row.Amount) > structuralThreshold {
			return validationf("user %s has unsettled balances in group %s", userID, groupID)
		}
	}
	return nil
}

// resolveOrCreateUser matches a member input to an existing account by
// email, then phone, and otherwise creates a ghost user that can hold
// balances before registering.
func (s *GroupService) resolveOrCreateUser(ctx context.Context, actorID string, in MemberInput) (*models.User, error) {
	if in.Email != "" {
		if user, err := s.store.GetUserByEmail(ctx, in.Email); err == nil {
			return user, nil
		}
	}
	if in.Phone != "" {
		if user, err := s.store.GetUserByPhone(ctx, in.Phone); err == nil {
			return user, nil
		}
	}
	if in.Name == "" {
		return nil, validationf("member needs a name, email or phone")
	}

	ghost := models.NewUser(in.Email, in.Name, "")
	ghost.Phone = in.Phone
	ghost.Status = models.UserInvited
	ghost.InvitedBy = actorID
	if err := s.store.CreateUser(ctx, ghost); err != nil {
		return nil, fmt.Errorf("failed to create invited user: %w", err)
	}
	return ghost, nil
}

// viewerPerspective reorients a balance row to the viewer: it returns the
// other user and the amount they owe the viewer (negative when the viewer
// owes them), or "" when the viewer is not on the row.
func viewerPerspective(row *models.Balance, viewerID string) (other string, amount float64) {
	switch viewerID {
	case row.User1:
		return row.User2, row.Amount
	case row.User2:
		return row.User1, -row.Amount
	default:
		return "", 0
	}
}

func (s *GroupService) recordGroupActivity(ctx context.Context, typ models.ActivityType, actorID, groupID string, metadata models.ActivityMetadata) {
	activity := &models.Activity{
		Type:     typ,
		ActorID:  actorID,
		GroupID:  groupID,
		Metadata: metadata,
	}
	if err := s.store.CreateActivity(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity", "type", typ, "group_id", groupID, "error", err)
	}
}

func (s *GroupService) recordMemberActivity(ctx context.Context, typ models.ActivityType, actorID, groupID string, user *models.User) {
	activity := &models.Activity{
		Type:            typ,
		ActorID:         actorID,
		GroupID:         groupID,
		InvolvedUserIDs: []string{user.ID},
		Metadata: models.ActivityMetadata{
			MemberName:   user.Name,
			MemberUserID: user.ID,
		},
	}
	if err := s.store.CreateActivity(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity", "type", typ, "group_id", groupID, "error", err)
	}
}
