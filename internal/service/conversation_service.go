package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"unichat-backend/internal/domain"
)

// ConversationService derives the per-user conversation list from the
// direct and group message logs. Conversations are views, never stored.
type ConversationService struct {
	users    domain.UserRepository
	directs  domain.DirectMessageRepository
	groups   domain.GroupRepository
	groupMsg domain.GroupMessageRepository
	dir      *UserDirectory
}

func NewConversationService(
	users domain.UserRepository,
	directs domain.DirectMessageRepository,
	groups domain.GroupRepository,
	groupMsg domain.GroupMessageRepository,
	dir *UserDirectory,
) *ConversationService {
	return &ConversationService{
		users:    users,
		directs:  directs,
		groups:   groups,
		groupMsg: groupMsg,
		dir:      dir,
	}
}

// Member is a redacted participant in a conversation summary.
type Member struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// Conversation is one entry of the aggregated list.
type Conversation struct {
	ID          string                  `json:"id"`
	Kind        domain.ConversationKind `json:"kind"`
	Name        string                  `json:"name"`
	Members     []Member                `json:"members"`
	LastMessage string                  `json:"last_message,omitempty"`
	UnreadCount int                     `json:"unread_count"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// Message is one history entry with its sender name resolved.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	IsRead     bool      `json:"is_read"`
}

func redact(u *domain.User) Member {
	return Member{ID: u.ID, Name: u.FullName(), Username: u.Username, Role: u.Role}
}

// ListConversations merges the caller's direct pairs and group memberships
// into one list sorted by last activity, newest first. Groups appear even
// before their first message; their timestamp falls back to the group's
// creation time, which sorts a fresh empty group after any conversation
// with real traffic at the same instant.
func (s *ConversationService) ListConversations(ctx context.Context, userID int64) ([]Conversation, error) {
	me, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	latest, err := s.directs.ListLatestPerCounterpart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list direct conversations: %w", err)
	}

	convs := make([]Conversation, 0, len(latest))
	for _, m := range latest {
		counterpartID := m.SenderID
		if counterpartID == userID {
			counterpartID = m.ReceiverID
		}
		counterpart, err := s.users.GetByID(ctx, counterpartID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// counterpart deleted; their side of the log is gone too
				continue
			}
			return nil, err
		}
		unread, err := s.directs.CountUnread(ctx, userID, counterpartID)
		if err != nil {
			return nil, fmt.Errorf("count unread: %w", err)
		}
		convs = append(convs, Conversation{
			ID:          domain.DirectConversationID(userID, counterpartID),
			Kind:        domain.ConversationDirect,
			Name:        counterpart.FullName(),
			Members:     []Member{redact(me), redact(counterpart)},
			LastMessage: m.Body,
			UnreadCount: unread,
			UpdatedAt:   m.CreatedAt,
		})
	}

	groups, err := s.groups.ListForMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	for _, g := range groups {
		members, err := s.groups.ListMembers(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("list group members: %w", err)
		}
		redacted := make([]Member, 0, len(members))
		for _, u := range members {
			redacted = append(redacted, redact(u))
		}

		conv := Conversation{
			ID:        domain.GroupConversationID(g.ID),
			Kind:      domain.ConversationGroup,
			Name:      g.Name,
			Members:   redacted,
			UpdatedAt: g.CreatedAt,
		}
		last, err := s.groupMsg.LatestForGroup(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("latest group message: %w", err)
		}
		if last != nil {
			conv.LastMessage = last.Body
			conv.UpdatedAt = last.CreatedAt
		}
		unread, err := s.groupMsg.CountUnread(ctx, g.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("count group unread: %w", err)
		}
		conv.UnreadCount = unread
		convs = append(convs, conv)
	}

	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}

// Authorize parses a conversation ID and checks that the caller may read
// it: an encoded participant for direct pairs, a current member for groups.
func (s *ConversationService) Authorize(ctx context.Context, conversationID string, userID int64) (domain.ConversationRef, error) {
	ref, err := domain.ParseConversationID(conversationID)
	if err != nil {
		return domain.ConversationRef{}, err
	}

	switch ref.Kind {
	case domain.ConversationDirect:
		if !ref.Includes(userID) {
			return domain.ConversationRef{}, fmt.Errorf("%w: not a participant of this conversation", domain.ErrForbidden)
		}
	case domain.ConversationGroup:
		if _, err := s.groups.GetByID(ctx, ref.GroupID); err != nil {
			return domain.ConversationRef{}, err
		}
		member, err := s.groups.IsMember(ctx, ref.GroupID, userID)
		if err != nil {
			return domain.ConversationRef{}, fmt.Errorf("check membership: %w", err)
		}
		if !member {
			return domain.ConversationRef{}, fmt.Errorf("%w: not a member of this group", domain.ErrForbidden)
		}
	}
	return ref, nil
}

// GetMessages returns the ascending history of a conversation with sender
// names resolved. An empty history is an empty slice.
func (s *ConversationService) GetMessages(ctx context.Context, conversationID string, userID int64) ([]Message, error) {
	ref, err := s.Authorize(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string)
	senderName := func(id int64) string {
		if name, ok := names[id]; ok {
			return name
		}
		name := s.dir.DisplayName(ctx, id)
		names[id] = name
		return name
	}

	out := []Message{}
	switch ref.Kind {
	case domain.ConversationDirect:
		msgs, err := s.directs.ListBetween(ctx, ref.UserA, ref.UserB)
		if err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		for _, m := range msgs {
			out = append(out, Message{
				ID:         m.ID,
				SenderID:   m.SenderID,
				SenderName: senderName(m.SenderID),
				Body:       m.Body,
				CreatedAt:  m.CreatedAt,
				IsRead:     m.ReadAt != nil,
			})
		}
	case domain.ConversationGroup:
		msgs, err := s.groupMsg.ListForGroup(ctx, ref.GroupID)
		if err != nil {
			return nil, fmt.Errorf("list group messages: %w", err)
		}
		for _, m := range msgs {
			out = append(out, Message{
				ID:         m.ID,
				SenderID:   m.SenderID,
				SenderName: senderName(m.SenderID),
				Body:       m.Body,
				CreatedAt:  m.CreatedAt,
			})
		}
	}
	return out, nil
}
