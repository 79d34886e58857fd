package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/igokul95/splitzer/internal/models"
	"github.com/igokul95/splitzer/internal/storage"
)

// CreateGroup persists a new group, assigning ID and CreatedAt when unset.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO groups (id, name, created_by, default_currency, simplify_debts, type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.CreatedBy, group.DefaultCurrency,
		boolToInt(group.SimplifyDebts), string(group.Type), group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var simplify int
	var groupType string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_by, default_currency, simplify_debts, type, created_at
		 FROM groups WHERE id = ?`, groupID,
	).Scan(&group.ID, &group.Name, &group.CreatedBy, &group.DefaultCurrency,
		&simplify, &groupType, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.SimplifyDebts = simplify != 0
	group.Type = models.GroupType(groupType)
	return group, nil
}

// UpdateGroup updates a group's settings.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE groups SET name = ?, default_currency = ?, simplify_debts = ?, type = ? WHERE id = ?`,
		group.Name, group.DefaultCurrency, boolToInt(group.SimplifyDebts),
		string(group.Type), group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteGroup removes the group row. Membership rows cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return nil
}

// AddGroupMember inserts a membership row.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, member *models.GroupMember) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role, status, invited_by, joined_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		member.GroupID, member.UserID, string(member.Role), string(member.Status),
		member.InvitedBy, member.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

const memberColumns = "group_id, user_id, role, status, invited_by, joined_at"

func scanMember(row interface{ Scan(...any) error }) (*models.GroupMember, error) {
	m := &models.GroupMember{}
	var role, status string
	err := row.Scan(&m.GroupID, &m.UserID, &role, &status, &m.InvitedBy, &m.JoinedAt)
	if err != nil {
		return nil, err
	}
	m.Role = models.MemberRole(role)
	m.Status = models.MemberStatus(status)
	return m, nil
}

// GetGroupMember retrieves one membership row.
func (s *SQLiteStore) GetGroupMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("membership %s/%s: %w", groupID, userID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group member: %w", err)
	}
	return m, nil
}

// ListGroupMembers retrieves all membership rows of a group, including left
// members.
func (s *SQLiteStore) ListGroupMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM group_members WHERE group_id = ?", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	defer rows.Close()

	var members []*models.GroupMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}

// ListUserMemberships retrieves all membership rows of a user across groups,
// including ones they left.
func (s *SQLiteStore) ListUserMemberships(ctx context.Context, userID string) ([]*models.GroupMember, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM group_members WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user memberships: %w", err)
	}
	defer rows.Close()

	var members []*models.GroupMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}
	return members, nil
}

// UpdateMemberStatus transitions a membership's lifecycle status. Joining
// also stamps joined_at.
func (s *SQLiteStore) UpdateMemberStatus(ctx context.Context, groupID, userID string, status models.MemberStatus) error {
	var res sql.Result
	var err error
	if status == models.MemberJoined {
		res, err = s.db.ExecContext(ctx,
			"UPDATE group_members SET status = ?, joined_at = ? WHERE group_id = ? AND user_id = ?",
			string(status), time.Now().Unix(), groupID, userID)
	} else {
		res, err = s.db.ExecContext(ctx,
			"UPDATE group_members SET status = ? WHERE group_id = ? AND user_id = ?",
			string(status), groupID, userID)
	}
	if err != nil {
		return fmt.Errorf("failed to update member status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update member status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("membership %s/%s: %w", groupID, userID, storage.ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
