package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"unichat-backend/internal/domain"
)

// NotificationService owns the per-user notification mailbox and every
// fan-out that fills it.
type NotificationService struct {
	notifs domain.NotificationRepository
	users  domain.UserRepository
	bcast  Broadcaster

	// When true, Create rejects recipients that do not resolve to an
	// existing user instead of writing the row blindly.
	validateRecipients bool
}

func NewNotificationService(
	notifs domain.NotificationRepository,
	users domain.UserRepository,
	bcast Broadcaster,
	validateRecipients bool,
) *NotificationService {
	return &NotificationService{
		notifs:             notifs,
		users:              users,
		bcast:              bcast,
		validateRecipients: validateRecipients,
	}
}

// Create writes one notification and pushes it to the recipient's personal
// channel.
func (s *NotificationService) Create(
	ctx context.Context,
	recipientID int64,
	typ domain.NotificationType,
	message string,
	related domain.RelatedEntity,
) (*domain.Notification, error) {
	if recipientID <= 0 {
		return nil, fmt.Errorf("%w: recipient id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: notification message is required", domain.ErrInvalidInput)
	}
	if s.validateRecipients {
		if _, err := s.users.GetByID(ctx, recipientID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: notification recipient %d", domain.ErrNotFound, recipientID)
			}
			return nil, err
		}
	}

	n := &domain.Notification{
		UserID:  recipientID,
		Type:    typ,
		Message: message,
		Related: related,
	}
	if err := s.notifs.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.bcast.ToUsers([]int64{recipientID}, map[string]any{
		"type":         "new-notification",
		"notification": n,
	})
	return n, nil
}

// List returns the user's mailbox, newest first. An empty mailbox is an
// empty slice, not an error.
func (s *NotificationService) List(ctx context.Context, userID int64) ([]*domain.Notification, error) {
	notifs, err := s.notifs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if notifs == nil {
		notifs = []*domain.Notification{}
	}
	return notifs, nil
}

// MarkRead flips one notification's read flag. Repeating is a no-op; an
// unknown id is NotFound.
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	found, err := s.notifs.MarkRead(ctx, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: notification %s", domain.ErrNotFound, id)
	}
	return nil
}

// MarkAllRead flips every unread notification of the user and returns how
// many changed (zero on repeat).
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.notifs.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return n, nil
}

// CountUnread returns the user's unread badge count.
func (s *NotificationService) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return s.notifs.CountUnread(ctx, userID)
}

// NotifyCoursePeers tells every existing user sharing one of the new
// user's course offerings that a peer signed up. Best-effort: a failed
// peer write is logged and skipped.
func (s *NotificationService) NotifyCoursePeers(ctx context.Context, newUser *domain.User) {
	seen := make(map[int64]struct{})
	for _, c := range newUser.Courses {
		peers, err := s.users.FindCoursePeers(ctx, newUser.ID, c)
		if err != nil {
			log.Printf("notify course peers (%s): %v", c.Course, err)
			continue
		}
		for _, peer := range peers {
			if _, dup := seen[peer.ID]; dup {
				continue
			}
			seen[peer.ID] = struct{}{}
			msg := fmt.Sprintf("%s also enrolled in %s (%s %d)",
				newUser.FullName(), c.Course, c.Semester, c.Year)
			if _, err := s.Create(ctx, peer.ID, domain.NotifCoursePeer, msg, domain.RelatedToUser(newUser.ID)); err != nil {
				log.Printf("notify course peer %d: %v", peer.ID, err)
			}
		}
	}
}

// Announce writes one announcement notification per user and broadcasts it
// to every connected client. Returns how many mailboxes were written.
func (s *NotificationService) Announce(ctx context.Context, message string) (int, error) {
	if strings.TrimSpace(message) == "" {
		return 0, fmt.Errorf("%w: announcement message is required", domain.ErrInvalidInput)
	}
	ids, err := s.users.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	sent := 0
	for _, id := range ids {
		n := &domain.Notification{
			UserID:  id,
			Type:    domain.NotifAnnouncement,
			Message: message,
		}
		if err := s.notifs.Create(ctx, n); err != nil {
			log.Printf("announce to %d: %v", id, err)
			continue
		}
		sent++
	}

	s.bcast.All(map[string]any{
		"type":    "announcement",
		"message": message,
	})
	return sent, nil
}

// NotifyAddedToGroup tells a user they were added to a group.
func (s *NotificationService) NotifyAddedToGroup(ctx context.Context, userID int64, group *domain.Group, byName string) {
	msg := fmt.Sprintf("%s added you to the group %q", byName, group.Name)
	if _, err := s.Create(ctx, userID, domain.NotifAddedToGroup, msg, domain.RelatedToGroup(group.ID)); err != nil {
		log.Printf("notify added to group %d: %v", group.ID, err)
	}
}
