package service

import (
	"context"
	"fmt"
	"strings"

	"unichat-backend/internal/domain"
)

// GroupService enforces the group lifecycle rules: the creator is always a
// member, only the creator mutates the group, and deletion cascades.
type GroupService struct {
	groups domain.GroupRepository
	notifs *NotificationService
	dir    *UserDirectory
}

func NewGroupService(groups domain.GroupRepository, notifs *NotificationService, dir *UserDirectory) *GroupService {
	return &GroupService{groups: groups, notifs: notifs, dir: dir}
}

type GroupCreateInput struct {
	Name        string
	Description string
	IsPrivate   bool
	MemberIDs   []int64
}

// Create makes a group with the creator as its first member. Duplicate
// member IDs collapse; every added member gets an added_to_group
// notification.
func (s *GroupService) Create(ctx context.Context, creatorID int64, in GroupCreateInput) (*domain.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", domain.ErrInvalidInput)
	}

	memberIDs := make([]int64, 0, len(in.MemberIDs)+1)
	seen := map[int64]struct{}{creatorID: {}}
	memberIDs = append(memberIDs, creatorID)
	for _, id := range in.MemberIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		memberIDs = append(memberIDs, id)
	}

	g := &domain.Group{
		Name:        name,
		Description: in.Description,
		CreatorID:   creatorID,
		IsPrivate:   in.IsPrivate,
	}
	if err := s.groups.Create(ctx, g, memberIDs); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	creatorName := s.dir.DisplayName(ctx, creatorID)
	for _, uid := range memberIDs {
		if uid == creatorID {
			continue
		}
		s.notifs.NotifyAddedToGroup(ctx, uid, g, creatorName)
	}
	return g, nil
}

// Get returns the group; only members may see it.
func (s *GroupService) Get(ctx context.Context, groupID, userID int64) (*domain.Group, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !member {
		return nil, fmt.Errorf("%w: not a member of this group", domain.ErrForbidden)
	}
	return g, nil
}

// ListForUser returns the groups the user belongs to.
func (s *GroupService) ListForUser(ctx context.Context, userID int64) ([]*domain.Group, error) {
	groups, err := s.groups.ListForMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	if groups == nil {
		groups = []*domain.Group{}
	}
	return groups, nil
}

// ListMembers returns the group roster; members only.
func (s *GroupService) ListMembers(ctx context.Context, groupID, userID int64) ([]*domain.User, error) {
	if _, err := s.Get(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.groups.ListMembers(ctx, groupID)
}

type GroupUpdateInput struct {
	Name        string
	Description string
	IsPrivate   bool
}

// Update edits group metadata; creator only.
func (s *GroupService) Update(ctx context.Context, groupID, userID int64, in GroupUpdateInput) (*domain.Group, error) {
	g, err := s.requireCreator(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", domain.ErrInvalidInput)
	}
	g.Name = name
	g.Description = in.Description
	g.IsPrivate = in.IsPrivate
	if err := s.groups.Update(ctx, g); err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return g, nil
}

// Delete removes the group, its roster and all of its messages; creator
// only.
func (s *GroupService) Delete(ctx context.Context, groupID, userID int64) error {
	if _, err := s.requireCreator(ctx, groupID, userID); err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, groupID); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

// AddMember adds one user to the roster; creator only, Conflict when the
// user is already a member.
func (s *GroupService) AddMember(ctx context.Context, groupID, callerID, userID int64) error {
	g, err := s.requireCreator(ctx, groupID, callerID)
	if err != nil {
		return err
	}
	if err := s.groups.AddMember(ctx, groupID, userID); err != nil {
		return err
	}
	s.notifs.NotifyAddedToGroup(ctx, userID, g, s.dir.DisplayName(ctx, callerID))
	return nil
}

// RemoveMember removes a user from the roster. Allowed for the creator or
// for the member removing themself; the creator can never be removed.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, callerID, userID int64) error {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if g.IsCreator(userID) {
		return fmt.Errorf("%w: the group creator cannot be removed", domain.ErrInvalidInput)
	}
	if !g.IsCreator(callerID) && callerID != userID {
		return fmt.Errorf("%w: only the creator can remove other members", domain.ErrForbidden)
	}
	return s.groups.RemoveMember(ctx, groupID, userID)
}

// Leave removes the caller from the roster. The creator cannot leave their
// own group; they must delete it (or transfer it) instead.
func (s *GroupService) Leave(ctx context.Context, groupID, userID int64) error {
	return s.RemoveMember(ctx, groupID, userID, userID)
}

func (s *GroupService) requireCreator(ctx context.Context, groupID, userID int64) (*domain.Group, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.IsCreator(userID) {
		return nil, fmt.Errorf("%w: only the group creator can do that", domain.ErrForbidden)
	}
	return g, nil
}
