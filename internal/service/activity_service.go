package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/igokul95/splitzer/internal/models"
	"github.com/igokul95/splitzer/internal/storage"
)

const (
	// perFeedLimit caps how many events each source feed contributes
	// before the merge.
	perFeedLimit = 50

	// activityCap caps the merged feed.
	activityCap = 100
)

// ActivityService assembles the user-facing history feed.
type ActivityService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewActivityService creates a new ActivityService.
func NewActivityService(store storage.Store, logger *slog.Logger) *ActivityService {
	return &ActivityService{store: store, logger: logger}
}

// GetMyActivities merges the feeds of every group the viewer belongs to
// (groups they left included, so history survives leaving) with the events
// they acted in or were involved in, deduplicates, and returns the newest
// events up to the cap.
func (s *ActivityService) GetMyActivities(ctx context.Context, viewerID string) ([]*models.Activity, error) {
	seen := make(map[string]struct{})
	var merged []*models.Activity

	memberships, err := s.store.ListUserMemberships(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	for _, membership := range memberships {
		feed, err := s.store.ListGroupActivities(ctx, membership.GroupID, perFeedLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to list group activities: %w", err)
		}
		for _, a := range feed {
			if _, ok := seen[a.ID]; ok {
				continue
			}
			seen[a.ID] = struct{}{}
			merged = append(merged, a)
		}
	}

	personal, err := s.store.ListActorActivities(ctx, viewerID, perFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list actor activities: %w", err)
	}
	for _, a := range personal {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		merged = append(merged, a)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt > merged[j].CreatedAt
	})
	if len(merged) > activityCap {
		merged = merged[:activityCap]
	}
	return merged, nil
}
