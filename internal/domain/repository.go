package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserFilter narrows admin user listings. Nil fields match everything.
type UserFilter struct {
	Role     *Role
	Approved *bool
	Search   string
	Offset   int
	Limit    int
}

// UserRepository defines persistence operations for users and their course
// enrollments.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, f UserFilter) ([]*User, error)
	ListIDs(ctx context.Context) ([]int64, error)
	ListPendingApproval(ctx context.Context) ([]*User, error)
	Search(ctx context.Context, query string, limit int) ([]*User, error)
	SetApproval(ctx context.Context, id int64, approved bool) error
	UpdateProfile(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error

	ListEnrollments(ctx context.Context, userID int64) ([]CourseEnrollment, error)
	FindCoursePeers(ctx context.Context, userID int64, c CourseEnrollment) ([]*User, error)
}

// DirectMessageRepository defines persistence operations for the pairwise
// message log.
type DirectMessageRepository interface {
	Create(ctx context.Context, m *DirectMessage) error
	GetByID(ctx context.Context, id int64) (*DirectMessage, error)
	ListBetween(ctx context.Context, a, b int64) ([]*DirectMessage, error)
	// ListLatestPerCounterpart returns, for every user the given user has
	// exchanged at least one message with, the single most recent message of
	// that pair, newest pair first.
	ListLatestPerCounterpart(ctx context.Context, userID int64) ([]*DirectMessage, error)
	CountUnread(ctx context.Context, userID, counterpartID int64) (int, error)
	MarkRead(ctx context.Context, userID, counterpartID int64) error
	ToggleLike(ctx context.Context, messageID, userID int64) (liked bool, err error)
}

// GroupMessageRepository defines persistence operations for the group
// message log.
type GroupMessageRepository interface {
	Create(ctx context.Context, m *GroupMessage) error
	GetByID(ctx context.Context, id int64) (*GroupMessage, error)
	ListForGroup(ctx context.Context, groupID int64) ([]*GroupMessage, error)
	// LatestForGroup returns the most recent message of the group, or nil if
	// the group has no messages yet.
	LatestForGroup(ctx context.Context, groupID int64) (*GroupMessage, error)
	CountUnread(ctx context.Context, groupID, userID int64) (int, error)
	MarkAllRead(ctx context.Context, groupID, userID int64) error
	ToggleLike(ctx context.Context, messageID, userID int64) (liked bool, err error)
}

// GroupRepository defines persistence operations for groups and their
// membership rosters.
type GroupRepository interface {
	Create(ctx context.Context, g *Group, memberIDs []int64) error
	GetByID(ctx context.Context, id int64) (*Group, error)
	ListForMember(ctx context.Context, userID int64) ([]*Group, error)
	Update(ctx context.Context, g *Group) error
	// Delete removes the group, its membership roster and all of its
	// messages.
	Delete(ctx context.Context, id int64) error
	AddMember(ctx context.Context, groupID, userID int64) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	ListMemberIDs(ctx context.Context, groupID int64) ([]int64, error)
	ListMembers(ctx context.Context, groupID int64) ([]*User, error)
}

// NotificationRepository defines persistence operations for the per-user
// notification mailbox.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListByUser(ctx context.Context, userID int64) ([]*Notification, error)
	// MarkRead flips the read flag; it reports whether the notification
	// exists at all (flipping an already-read one is a no-op, not an error).
	MarkRead(ctx context.Context, id uuid.UUID) (found bool, err error)
	// MarkAllRead flips every unread notification of the user and returns
	// how many rows changed.
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
}
