package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"unichat-backend/internal/domain"
	"unichat-backend/internal/service"
)

type convFixture struct {
	users    *MockUserRepo
	directs  *MockDirectMessageRepo
	groupMsg *MockGroupMessageRepo
	groups   *MockGroupRepo
	svc      *service.ConversationService
}

func newConvFixture() *convFixture {
	f := &convFixture{
		users:    new(MockUserRepo),
		directs:  new(MockDirectMessageRepo),
		groupMsg: new(MockGroupMessageRepo),
		groups:   new(MockGroupRepo),
	}
	dir := service.NewUserDirectory(f.users)
	f.svc = service.NewConversationService(f.users, f.directs, f.groups, f.groupMsg, dir)
	return f
}

var (
	ada   = &domain.User{ID: 1, FirstName: "Ada", LastName: "Lovelace", Username: "ada"}
	grace = &domain.User{ID: 2, FirstName: "Grace", LastName: "Hopper", Username: "grace"}
)

func TestListConversations(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("MergesDirectAndGroupByActivity", func(t *testing.T) {
		f := newConvFixture()
		f.users.On("GetByID", mock.Anything, int64(1)).Return(ada, nil)
		f.users.On("GetByID", mock.Anything, int64(2)).Return(grace, nil)
		f.directs.On("ListLatestPerCounterpart", mock.Anything, int64(1)).Return([]*domain.DirectMessage{
			{ID: 10, SenderID: 2, ReceiverID: 1, Body: "hi", CreatedAt: base.Add(time.Hour)},
		}, nil)
		f.directs.On("CountUnread", mock.Anything, int64(1), int64(2)).Return(3, nil)

		group := &domain.Group{ID: 42, Name: "Study", CreatorID: 1, CreatedAt: base}
		f.groups.On("ListForMember", mock.Anything, int64(1)).Return([]*domain.Group{group}, nil)
		f.groups.On("ListMembers", mock.Anything, int64(42)).Return([]*domain.User{ada, grace}, nil)
		f.groupMsg.On("LatestForGroup", mock.Anything, int64(42)).Return(
			&domain.GroupMessage{ID: 7, GroupID: 42, SenderID: 2, Body: "meeting", CreatedAt: base.Add(2 * time.Hour)}, nil)
		f.groupMsg.On("CountUnread", mock.Anything, int64(42), int64(1)).Return(1, nil)

		convs, err := f.svc.ListConversations(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, convs, 2)
		// group is more recent, sorts first
		assert.Equal(t, "42", convs[0].ID)
		assert.Equal(t, "meeting", convs[0].LastMessage)
		assert.Equal(t, "direct_1_2", convs[1].ID)
		assert.Equal(t, "Grace Hopper", convs[1].Name)
		assert.Equal(t, 3, convs[1].UnreadCount)
	})

	t.Run("EmptyGroupStillListed", func(t *testing.T) {
		f := newConvFixture()
		f.users.On("GetByID", mock.Anything, int64(1)).Return(ada, nil)
		f.directs.On("ListLatestPerCounterpart", mock.Anything, int64(1)).Return(nil, nil)

		group := &domain.Group{ID: 42, Name: "Fresh", CreatorID: 1, CreatedAt: base}
		f.groups.On("ListForMember", mock.Anything, int64(1)).Return([]*domain.Group{group}, nil)
		f.groups.On("ListMembers", mock.Anything, int64(42)).Return([]*domain.User{ada}, nil)
		f.groupMsg.On("LatestForGroup", mock.Anything, int64(42)).Return(nil, nil)
		f.groupMsg.On("CountUnread", mock.Anything, int64(42), int64(1)).Return(0, nil)

		convs, err := f.svc.ListConversations(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, convs, 1)
		assert.Equal(t, "42", convs[0].ID)
		assert.Empty(t, convs[0].LastMessage)
		// falls back to group creation time
		assert.Equal(t, base, convs[0].UpdatedAt)
	})

	t.Run("MembersAreRedacted", func(t *testing.T) {
		f := newConvFixture()
		secret := &domain.User{ID: 2, FirstName: "Grace", Username: "grace", HashedPassword: "$2a$hash"}
		f.users.On("GetByID", mock.Anything, int64(1)).Return(ada, nil)
		f.users.On("GetByID", mock.Anything, int64(2)).Return(secret, nil)
		f.directs.On("ListLatestPerCounterpart", mock.Anything, int64(1)).Return([]*domain.DirectMessage{
			{ID: 10, SenderID: 1, ReceiverID: 2, Body: "hi", CreatedAt: base},
		}, nil)
		f.directs.On("CountUnread", mock.Anything, int64(1), int64(2)).Return(0, nil)
		f.groups.On("ListForMember", mock.Anything, int64(1)).Return(nil, nil)

		convs, err := f.svc.ListConversations(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, convs, 1)
		require.Len(t, convs[0].Members, 2)
		for _, m := range convs[0].Members {
			assert.NotEmpty(t, m.Name)
		}
	})

	t.Run("UnknownUserNotFound", func(t *testing.T) {
		f := newConvFixture()
		f.users.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)

		_, err := f.svc.ListConversations(context.Background(), 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGetMessages(t *testing.T) {
	t.Run("ResolvesSenderNames", func(t *testing.T) {
		f := newConvFixture()
		f.users.On("GetByID", mock.Anything, int64(1)).Return(ada, nil)
		f.users.On("GetByID", mock.Anything, int64(2)).Return(grace, nil)
		f.directs.On("ListBetween", mock.Anything, int64(1), int64(2)).Return([]*domain.DirectMessage{
			{ID: 1, SenderID: 1, ReceiverID: 2, Body: "hi"},
			{ID: 2, SenderID: 2, ReceiverID: 1, Body: "hello"},
		}, nil)

		msgs, err := f.svc.GetMessages(context.Background(), "direct_1_2", 1)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "Ada Lovelace", msgs[0].SenderName)
		assert.Equal(t, "Grace Hopper", msgs[1].SenderName)
	})

	t.Run("DeletedSenderGetsPlaceholder", func(t *testing.T) {
		f := newConvFixture()
		f.users.On("GetByID", mock.Anything, int64(1)).Return(ada, nil)
		f.users.On("GetByID", mock.Anything, int64(2)).Return(nil, domain.ErrNotFound)
		f.directs.On("ListBetween", mock.Anything, int64(1), int64(2)).Return([]*domain.DirectMessage{
			{ID: 1, SenderID: 2, ReceiverID: 1, Body: "gone"},
		}, nil)

		msgs, err := f.svc.GetMessages(context.Background(), "direct_1_2", 1)
		require.NoError(t, err)
		assert.Equal(t, "Unknown user", msgs[0].SenderName)
	})

	t.Run("EmptyHistoryIsEmptySlice", func(t *testing.T) {
		f := newConvFixture()
		f.directs.On("ListBetween", mock.Anything, int64(1), int64(2)).Return(nil, nil)

		msgs, err := f.svc.GetMessages(context.Background(), "direct_1_2", 1)
		require.NoError(t, err)
		assert.NotNil(t, msgs)
		assert.Empty(t, msgs)
	})

	t.Run("NonParticipantForbidden", func(t *testing.T) {
		f := newConvFixture()
		_, err := f.svc.GetMessages(context.Background(), "direct_1_2", 9)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("NonMemberGroupForbidden", func(t *testing.T) {
		f := newConvFixture()
		f.groups.On("GetByID", mock.Anything, int64(42)).Return(&domain.Group{ID: 42}, nil)
		f.groups.On("IsMember", mock.Anything, int64(42), int64(9)).Return(false, nil)

		_, err := f.svc.GetMessages(context.Background(), "42", 9)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("UnknownGroupNotFound", func(t *testing.T) {
		f := newConvFixture()
		f.groups.On("GetByID", mock.Anything, int64(404)).Return(nil, domain.ErrNotFound)

		_, err := f.svc.GetMessages(context.Background(), "404", 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("MalformedIDInvalid", func(t *testing.T) {
		f := newConvFixture()
		_, err := f.svc.GetMessages(context.Background(), "direct_x_y", 1)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
