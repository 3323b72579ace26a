package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"unichat-backend/internal/domain"
	"unichat-backend/internal/service"
)

type messageFixture struct {
	users    *MockUserRepo
	directs  *MockDirectMessageRepo
	groupMsg *MockGroupMessageRepo
	groups   *MockGroupRepo
	notifs   *MockNotificationRepo
	svc      *service.MessageService
}

func newMessageFixture() *messageFixture {
	f := &messageFixture{
		users:    new(MockUserRepo),
		directs:  new(MockDirectMessageRepo),
		groupMsg: new(MockGroupMessageRepo),
		groups:   new(MockGroupRepo),
		notifs:   new(MockNotificationRepo),
	}
	dir := service.NewUserDirectory(f.users)
	notifSvc := service.NewNotificationService(f.notifs, f.users, service.NopBroadcaster{}, false)
	convSvc := service.NewConversationService(f.users, f.directs, f.groups, f.groupMsg, dir)
	f.svc = service.NewMessageService(f.directs, f.groupMsg, f.groups, convSvc, notifSvc, dir, service.NopBroadcaster{})
	return f
}

func TestSendDirect(t *testing.T) {
	t.Run("PersistsAndNotifiesReceiver", func(t *testing.T) {
		f := newMessageFixture()
		f.users.On("GetByID", mock.Anything, int64(3)).Return(&domain.User{ID: 3, FirstName: "Ada"}, nil)
		f.directs.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.DirectMessage) bool {
			return m.SenderID == 3 && m.ReceiverID == 7 && m.Body == "hello"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.DirectMessage).ID = 101
		}).Return(nil)
		f.notifs.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == 7 && n.Type == domain.NotifMessage && n.Related == domain.RelatedDM(101)
		})).Return(nil)

		res, err := f.svc.Send(context.Background(), "direct_3_7", 3, "  hello  ")
		require.NoError(t, err)
		assert.Equal(t, "hello", res.Message.Body)
		assert.Equal(t, "direct_3_7", res.ConversationID)
		assert.Equal(t, 1, res.NotificationsWanted)
		assert.Equal(t, 1, res.NotificationsSent)
	})

	t.Run("BlankBodyRejected", func(t *testing.T) {
		f := newMessageFixture()
		_, err := f.svc.Send(context.Background(), "direct_3_7", 3, "   ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		f.directs.AssertNotCalled(t, "Create")
	})

	t.Run("NonParticipantForbiddenWithoutSideEffects", func(t *testing.T) {
		f := newMessageFixture()
		_, err := f.svc.Send(context.Background(), "direct_3_7", 5, "hi")
		assert.ErrorIs(t, err, domain.ErrForbidden)
		f.directs.AssertNotCalled(t, "Create")
		f.notifs.AssertNotCalled(t, "Create")
	})

	t.Run("NotificationFailureDoesNotFailSend", func(t *testing.T) {
		f := newMessageFixture()
		f.users.On("GetByID", mock.Anything, int64(3)).Return(&domain.User{ID: 3, FirstName: "Ada"}, nil)
		f.directs.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.notifs.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

		res, err := f.svc.Send(context.Background(), "direct_3_7", 3, "hello")
		require.NoError(t, err)
		assert.Equal(t, 1, res.NotificationsWanted)
		assert.Equal(t, 0, res.NotificationsSent)
	})
}

func TestSendGroup(t *testing.T) {
	group := &domain.Group{ID: 42, Name: "Study", CreatorID: 1, MemberIDs: []int64{1, 2, 3}}

	t.Run("FanOutExcludesSender", func(t *testing.T) {
		f := newMessageFixture()
		f.groups.On("GetByID", mock.Anything, int64(42)).Return(group, nil)
		f.groups.On("IsMember", mock.Anything, int64(42), int64(1)).Return(true, nil)
		f.groups.On("ListMemberIDs", mock.Anything, int64(42)).Return([]int64{1, 2, 3}, nil)
		f.users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, FirstName: "Ada"}, nil)
		f.groupMsg.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.GroupMessage).ID = 500
		}).Return(nil)
		for _, uid := range []int64{2, 3} {
			f.notifs.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
				return n.Type == domain.NotifMessage && n.Related == domain.RelatedGM(500)
			})).Return(nil).Once()
			_ = uid
		}

		res, err := f.svc.Send(context.Background(), "42", 1, "hi all")
		require.NoError(t, err)
		assert.Equal(t, 2, res.NotificationsWanted)
		assert.Equal(t, 2, res.NotificationsSent)
		f.notifs.AssertExpectations(t)
	})

	t.Run("PartialFanOutObservable", func(t *testing.T) {
		f := newMessageFixture()
		f.groups.On("GetByID", mock.Anything, int64(42)).Return(group, nil)
		f.groups.On("IsMember", mock.Anything, int64(42), int64(1)).Return(true, nil)
		f.groups.On("ListMemberIDs", mock.Anything, int64(42)).Return([]int64{1, 2, 3}, nil)
		f.users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, FirstName: "Ada"}, nil)
		f.groupMsg.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.notifs.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == 2
		})).Return(nil)
		f.notifs.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == 3
		})).Return(assert.AnError)

		res, err := f.svc.Send(context.Background(), "42", 1, "hi all")
		require.NoError(t, err)
		assert.Equal(t, 2, res.NotificationsWanted)
		assert.Equal(t, 1, res.NotificationsSent)
	})

	t.Run("NonMemberForbidden", func(t *testing.T) {
		f := newMessageFixture()
		f.groups.On("GetByID", mock.Anything, int64(42)).Return(group, nil)
		f.groups.On("IsMember", mock.Anything, int64(42), int64(9)).Return(false, nil)

		_, err := f.svc.Send(context.Background(), "42", 9, "hi")
		assert.ErrorIs(t, err, domain.ErrForbidden)
		f.groupMsg.AssertNotCalled(t, "Create")
	})
}

func TestMarkConversationRead(t *testing.T) {
	f := newMessageFixture()
	f.directs.On("MarkRead", mock.Anything, int64(3), int64(7)).Return(nil)

	err := f.svc.MarkConversationRead(context.Background(), "direct_3_7", 3)
	require.NoError(t, err)
	f.directs.AssertCalled(t, "MarkRead", mock.Anything, int64(3), int64(7))
}

func TestToggleLike(t *testing.T) {
	t.Run("FirstLikeNotifiesAuthor", func(t *testing.T) {
		f := newMessageFixture()
		msg := &domain.DirectMessage{ID: 101, SenderID: 7, ReceiverID: 3}
		f.directs.On("GetByID", mock.Anything, int64(101)).Return(msg, nil)
		f.directs.On("ToggleLike", mock.Anything, int64(101), int64(3)).Return(true, nil)
		f.users.On("GetByID", mock.Anything, int64(3)).Return(&domain.User{ID: 3, FirstName: "Ada"}, nil)
		f.notifs.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == 7 && n.Type == domain.NotifLike
		})).Return(nil)

		liked, err := f.svc.ToggleLike(context.Background(), "direct_3_7", 101, 3)
		require.NoError(t, err)
		assert.True(t, liked)
		f.notifs.AssertExpectations(t)
	})

	t.Run("UnlikeIsSilent", func(t *testing.T) {
		f := newMessageFixture()
		msg := &domain.DirectMessage{ID: 101, SenderID: 7, ReceiverID: 3}
		f.directs.On("GetByID", mock.Anything, int64(101)).Return(msg, nil)
		f.directs.On("ToggleLike", mock.Anything, int64(101), int64(3)).Return(false, nil)

		liked, err := f.svc.ToggleLike(context.Background(), "direct_3_7", 101, 3)
		require.NoError(t, err)
		assert.False(t, liked)
		f.notifs.AssertNotCalled(t, "Create")
	})

	t.Run("ForeignMessageNotFound", func(t *testing.T) {
		f := newMessageFixture()
		// message belongs to a different pair
		msg := &domain.DirectMessage{ID: 200, SenderID: 8, ReceiverID: 9}
		f.directs.On("GetByID", mock.Anything, int64(200)).Return(msg, nil)

		_, err := f.svc.ToggleLike(context.Background(), "direct_3_7", 200, 3)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
