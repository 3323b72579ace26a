package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"unichat-backend/internal/domain"
)

// MessageService handles message ingestion: persist, fan out notifications,
// publish real-time events.
type MessageService struct {
	directs  domain.DirectMessageRepository
	groupMsg domain.GroupMessageRepository
	groups   domain.GroupRepository
	convs    *ConversationService
	notifs   *NotificationService
	dir      *UserDirectory
	bcast    Broadcaster
}

func NewMessageService(
	directs domain.DirectMessageRepository,
	groupMsg domain.GroupMessageRepository,
	groups domain.GroupRepository,
	convs *ConversationService,
	notifs *NotificationService,
	dir *UserDirectory,
	bcast Broadcaster,
) *MessageService {
	return &MessageService{
		directs:  directs,
		groupMsg: groupMsg,
		groups:   groups,
		convs:    convs,
		notifs:   notifs,
		dir:      dir,
		bcast:    bcast,
	}
}

// SendResult reports what a send actually did. The message is always
// persisted when err is nil; the notification counters expose partial
// fan-out ("sent k of n") instead of hiding it.
type SendResult struct {
	Message             Message `json:"message"`
	ConversationID      string  `json:"conversation_id"`
	NotificationsSent   int     `json:"notifications_sent"`
	NotificationsWanted int     `json:"notifications_wanted"`
}

// Send validates, persists and fans out one message. The write is the
// transaction boundary: notification or broadcast failures are logged and
// counted, never rolled back.
func (s *MessageService) Send(ctx context.Context, conversationID string, senderID int64, body string) (*SendResult, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: message body is required", domain.ErrInvalidInput)
	}

	ref, err := s.convs.Authorize(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	senderName := s.dir.DisplayName(ctx, senderID)

	res := &SendResult{ConversationID: ref.ID()}
	switch ref.Kind {
	case domain.ConversationDirect:
		m := &domain.DirectMessage{
			SenderID:   senderID,
			ReceiverID: ref.Counterpart(senderID),
			Body:       body,
		}
		if err := s.directs.Create(ctx, m); err != nil {
			return nil, fmt.Errorf("create message: %w", err)
		}
		res.Message = Message{
			ID:         m.ID,
			SenderID:   m.SenderID,
			SenderName: senderName,
			Body:       m.Body,
			CreatedAt:  m.CreatedAt,
		}
		res.NotificationsWanted = 1
		msg := fmt.Sprintf("New message from %s", senderName)
		if _, err := s.notifs.Create(ctx, m.ReceiverID, domain.NotifMessage, msg, domain.RelatedDM(m.ID)); err != nil {
			log.Printf("notify receiver %d: %v", m.ReceiverID, err)
		} else {
			res.NotificationsSent++
		}

	case domain.ConversationGroup:
		m := &domain.GroupMessage{
			GroupID:  ref.GroupID,
			SenderID: senderID,
			Body:     body,
		}
		if err := s.groupMsg.Create(ctx, m); err != nil {
			return nil, fmt.Errorf("create group message: %w", err)
		}
		res.Message = Message{
			ID:         m.ID,
			SenderID:   m.SenderID,
			SenderName: senderName,
			Body:       m.Body,
			CreatedAt:  m.CreatedAt,
		}

		memberIDs, err := s.groups.ListMemberIDs(ctx, ref.GroupID)
		if err != nil {
			log.Printf("list members of group %d: %v", ref.GroupID, err)
			memberIDs = nil
		}
		group, _ := s.groups.GetByID(ctx, ref.GroupID)
		groupName := conversationID
		if group != nil {
			groupName = group.Name
		}
		msg := fmt.Sprintf("New message from %s in %q", senderName, groupName)
		for _, uid := range memberIDs {
			if uid == senderID {
				continue
			}
			res.NotificationsWanted++
			if _, err := s.notifs.Create(ctx, uid, domain.NotifMessage, msg, domain.RelatedGM(m.ID)); err != nil {
				log.Printf("notify group member %d: %v", uid, err)
				continue
			}
			res.NotificationsSent++
		}
	}

	s.bcast.ToRoom(res.ConversationID, map[string]any{
		"type":            "new-message",
		"conversation_id": res.ConversationID,
		"message":         res.Message,
	})
	return res, nil
}

// MarkConversationRead records the caller's read receipt for everything
// currently in the conversation. Idempotent.
func (s *MessageService) MarkConversationRead(ctx context.Context, conversationID string, userID int64) error {
	ref, err := s.convs.Authorize(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	switch ref.Kind {
	case domain.ConversationDirect:
		if err := s.directs.MarkRead(ctx, userID, ref.Counterpart(userID)); err != nil {
			return fmt.Errorf("mark read: %w", err)
		}
	case domain.ConversationGroup:
		if err := s.groupMsg.MarkAllRead(ctx, ref.GroupID, userID); err != nil {
			return fmt.Errorf("mark group read: %w", err)
		}
	}

	s.bcast.ToRoom(ref.ID(), map[string]any{
		"type":            "messages-read",
		"conversation_id": ref.ID(),
		"user_id":         userID,
	})
	return nil
}

// ToggleLike flips the caller's like on a message. The first like notifies
// the message author; unliking is silent.
func (s *MessageService) ToggleLike(ctx context.Context, conversationID string, messageID, userID int64) (bool, error) {
	ref, err := s.convs.Authorize(ctx, conversationID, userID)
	if err != nil {
		return false, err
	}

	var (
		liked    bool
		authorID int64
		related  domain.RelatedEntity
	)
	switch ref.Kind {
	case domain.ConversationDirect:
		m, err := s.directs.GetByID(ctx, messageID)
		if err != nil {
			return false, err
		}
		if !ref.Includes(m.SenderID) || !ref.Includes(m.ReceiverID) {
			return false, fmt.Errorf("%w: message is not part of this conversation", domain.ErrNotFound)
		}
		liked, err = s.directs.ToggleLike(ctx, messageID, userID)
		if err != nil {
			return false, fmt.Errorf("toggle like: %w", err)
		}
		authorID = m.SenderID
		related = domain.RelatedDM(messageID)
	case domain.ConversationGroup:
		m, err := s.groupMsg.GetByID(ctx, messageID)
		if err != nil {
			return false, err
		}
		if m.GroupID != ref.GroupID {
			return false, fmt.Errorf("%w: message is not part of this conversation", domain.ErrNotFound)
		}
		liked, err = s.groupMsg.ToggleLike(ctx, messageID, userID)
		if err != nil {
			return false, fmt.Errorf("toggle like: %w", err)
		}
		authorID = m.SenderID
		related = domain.RelatedGM(messageID)
	}

	if liked && authorID != userID {
		msg := fmt.Sprintf("%s liked your message", s.dir.DisplayName(ctx, userID))
		if _, err := s.notifs.Create(ctx, authorID, domain.NotifLike, msg, related); err != nil {
			log.Printf("notify like to %d: %v", authorID, err)
		}
	}

	s.bcast.ToRoom(ref.ID(), map[string]any{
		"type":            "message-liked",
		"conversation_id": ref.ID(),
		"message_id":      messageID,
		"user_id":         userID,
		"liked":           liked,
	})
	return liked, nil
}

// Recipients returns the user IDs that should receive personal-channel
// events for a conversation (everyone but the sender).
func (s *MessageService) Recipients(ctx context.Context, ref domain.ConversationRef, senderID int64) []int64 {
	switch ref.Kind {
	case domain.ConversationDirect:
		return []int64{ref.Counterpart(senderID)}
	case domain.ConversationGroup:
		memberIDs, err := s.groups.ListMemberIDs(ctx, ref.GroupID)
		if err != nil {
			return nil
		}
		var out []int64
		for _, uid := range memberIDs {
			if uid != senderID {
				out = append(out, uid)
			}
		}
		return out
	}
	return nil
}
