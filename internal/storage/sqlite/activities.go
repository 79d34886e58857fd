package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/igokul95/splitzer/internal/models"
)

// CreateActivity appends a feed event. ID and CreatedAt are assigned here if
// unset. Structured fields are stored as JSON text; SplitSummary stays the
// empty string when absent so the feed can skip decoding it.
func (s *SQLiteStore) CreateActivity(ctx context.Context, a *models.Activity) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().Unix()
	}

	involved, err := json.Marshal(a.InvolvedUserIDs)
	if err != nil {
		return fmt.Errorf("failed to encode involved users: %w", err)
	}
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode activity metadata: %w", err)
	}
	summary := ""
	if len(a.SplitSummary) > 0 {
		raw, err := json.Marshal(a.SplitSummary)
		if err != nil {
			return fmt.Errorf("failed to encode split summary: %w", err)
		}
		summary = string(raw)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO activities (id, type, actor_id, group_id, expense_id, involved_user_ids, metadata, split_summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Type), a.ActorID, a.GroupID, a.ExpenseID,
		string(involved), string(metadata), summary, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryActivities(ctx context.Context, query string, args ...any) ([]*models.Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		a := &models.Activity{}
		var typ, involved, metadata, summary string
		if err := rows.Scan(&a.ID, &typ, &a.ActorID, &a.GroupID, &a.ExpenseID,
			&involved, &metadata, &summary, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Type = models.ActivityType(typ)
		if err := json.Unmarshal([]byte(involved), &a.InvolvedUserIDs); err != nil {
			return nil, fmt.Errorf("failed to decode involved users: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &a.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode activity metadata: %w", err)
		}
		if summary != "" {
			if err := json.Unmarshal([]byte(summary), &a.SplitSummary); err != nil {
				return nil, fmt.Errorf("failed to decode split summary: %w", err)
			}
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}
	return activities, nil
}

const activityColumns = "id, type, actor_id, group_id, expense_id, involved_user_ids, metadata, split_summary, created_at"

// ListGroupActivities returns a group's feed, newest first.
func (s *SQLiteStore) ListGroupActivities(ctx context.Context, groupID string, limit int) ([]*models.Activity, error) {
	return s.queryActivities(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE group_id = ? ORDER BY created_at DESC LIMIT ?",
		groupID, limit)
}

// ListActorActivities returns events where the user is the actor or is among
// the involved users, newest first. Involvement is matched against the JSON
// array text with a quoted LIKE; user IDs are UUIDs so false positives cannot
// occur.
func (s *SQLiteStore) ListActorActivities(ctx context.Context, userID string, limit int) ([]*models.Activity, error) {
	return s.queryActivities(ctx,
		"SELECT "+activityColumns+` FROM activities
		 WHERE actor_id = ? OR involved_user_ids LIKE ?
		 ORDER BY created_at DESC LIMIT ?`,
		userID, `%"`+userID+`"%`, limit)
}
