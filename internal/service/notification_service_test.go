package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"unichat-backend/internal/domain"
	"unichat-backend/internal/service"
)

func TestNotificationCreate(t *testing.T) {
	t.Run("NoRecipientValidationByDefault", func(t *testing.T) {
		users := new(MockUserRepo)
		notifs := new(MockNotificationRepo)
		svc := service.NewNotificationService(notifs, users, service.NopBroadcaster{}, false)

		notifs.On("Create", mock.Anything, mock.Anything).Return(nil)

		// recipient 999 does not exist; the write still goes through
		n, err := svc.Create(context.Background(), 999, domain.NotifAnnouncement, "hello", domain.RelatedEntity{})
		require.NoError(t, err)
		assert.Equal(t, int64(999), n.UserID)
		users.AssertNotCalled(t, "GetByID")
	})

	t.Run("ValidationToggleRejectsGhosts", func(t *testing.T) {
		users := new(MockUserRepo)
		notifs := new(MockNotificationRepo)
		svc := service.NewNotificationService(notifs, users, service.NopBroadcaster{}, true)

		users.On("GetByID", mock.Anything, int64(999)).Return(nil, domain.ErrNotFound)

		_, err := svc.Create(context.Background(), 999, domain.NotifAnnouncement, "hello", domain.RelatedEntity{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		notifs.AssertNotCalled(t, "Create")
	})

	t.Run("BlankMessageRejected", func(t *testing.T) {
		svc := service.NewNotificationService(new(MockNotificationRepo), new(MockUserRepo), service.NopBroadcaster{}, false)
		_, err := svc.Create(context.Background(), 1, domain.NotifMessage, "  ", domain.RelatedEntity{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestNotificationMarkRead(t *testing.T) {
	users := new(MockUserRepo)
	notifs := new(MockNotificationRepo)
	svc := service.NewNotificationService(notifs, users, service.NopBroadcaster{}, false)

	t.Run("UnknownIDNotFound", func(t *testing.T) {
		id := uuid.New()
		notifs.On("MarkRead", mock.Anything, id).Return(false, nil).Once()

		err := svc.MarkRead(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("RepeatIsNoOp", func(t *testing.T) {
		id := uuid.New()
		notifs.On("MarkRead", mock.Anything, id).Return(true, nil).Twice()

		assert.NoError(t, svc.MarkRead(context.Background(), id))
		assert.NoError(t, svc.MarkRead(context.Background(), id))
	})

	t.Run("MarkAllReadReturnsCount", func(t *testing.T) {
		notifs.On("MarkAllRead", mock.Anything, int64(1)).Return(int64(4), nil).Once()
		notifs.On("MarkAllRead", mock.Anything, int64(1)).Return(int64(0), nil).Once()

		n, err := svc.MarkAllRead(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)

		n, err = svc.MarkAllRead(context.Background(), 1)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestAnnounce(t *testing.T) {
	users := new(MockUserRepo)
	notifs := new(MockNotificationRepo)
	svc := service.NewNotificationService(notifs, users, service.NopBroadcaster{}, false)

	t.Run("OnePerUser", func(t *testing.T) {
		users.On("ListIDs", mock.Anything).Return([]int64{1, 2, 3}, nil).Once()
		notifs.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Type == domain.NotifAnnouncement && n.Message == "maintenance tonight"
		})).Return(nil).Times(3)

		sent, err := svc.Announce(context.Background(), "maintenance tonight")
		require.NoError(t, err)
		assert.Equal(t, 3, sent)
		notifs.AssertExpectations(t)
	})

	t.Run("PartialFailureCounted", func(t *testing.T) {
		users.On("ListIDs", mock.Anything).Return([]int64{1, 2}, nil).Once()
		notifs.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == 1
		})).Return(nil).Once()
		notifs.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == 2
		})).Return(assert.AnError).Once()

		sent, err := svc.Announce(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
	})

	t.Run("BlankRejected", func(t *testing.T) {
		_, err := svc.Announce(context.Background(), " ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
