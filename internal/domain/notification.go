package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType tags what produced a notification.
type NotificationType string

const (
	NotifMessage      NotificationType = "message"
	NotifCoursePeer   NotificationType = "course_peer"
	NotifAnnouncement NotificationType = "announcement"
	NotifLike         NotificationType = "like"
	NotifAddedToGroup NotificationType = "added_to_group"
)

// RelatedKind names which entity a notification's related reference
// resolves against.
type RelatedKind string

const (
	RelatedNone          RelatedKind = ""
	RelatedDirectMessage RelatedKind = "direct_message"
	RelatedGroupMessage  RelatedKind = "group_message"
	RelatedUser          RelatedKind = "user"
	RelatedGroup         RelatedKind = "group"
)

// RelatedEntity is a tagged reference to the entity that triggered a
// notification. The zero value means "no related entity".
type RelatedEntity struct {
	Kind RelatedKind `db:"related_kind" json:"kind,omitempty"`
	ID   int64       `db:"related_id" json:"id,omitempty"`
}

// RelatedDM references a direct message.
func RelatedDM(id int64) RelatedEntity { return RelatedEntity{Kind: RelatedDirectMessage, ID: id} }

// RelatedGM references a group message.
func RelatedGM(id int64) RelatedEntity { return RelatedEntity{Kind: RelatedGroupMessage, ID: id} }

// RelatedToUser references a user.
func RelatedToUser(id int64) RelatedEntity { return RelatedEntity{Kind: RelatedUser, ID: id} }

// RelatedToGroup references a group.
func RelatedToGroup(id int64) RelatedEntity { return RelatedEntity{Kind: RelatedGroup, ID: id} }

// Notification is one entry in a recipient's mailbox. Created only as a
// side effect of other mutations (or an admin announcement); never updated
// except the read flag.
type Notification struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	UserID    int64            `db:"user_id" json:"user_id"`
	Type      NotificationType `db:"type" json:"type"`
	Message   string           `db:"message" json:"message"`
	Related   RelatedEntity    `db:"-" json:"related,omitempty"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
