package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ConversationKind distinguishes the two conversation shapes.
type ConversationKind string

const (
	ConversationDirect ConversationKind = "direct"
	ConversationGroup  ConversationKind = "group"
)

const directIDPrefix = "direct_"

// ConversationRef is a parsed conversation identifier: either a direct pair
// or a group. Conversations are derived views, never persisted.
type ConversationRef struct {
	Kind ConversationKind

	// Direct pair, normalized so UserA < UserB.
	UserA, UserB int64

	GroupID int64
}

// DirectConversationID builds the shared room name for a user pair. The two
// IDs are ordered numerically so both participants derive the same
// identifier no matter who asks.
func DirectConversationID(a, b int64) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s%d_%d", directIDPrefix, a, b)
}

// GroupConversationID builds the room name for a group: the bare group ID.
func GroupConversationID(groupID int64) string {
	return strconv.FormatInt(groupID, 10)
}

// ID renders the canonical conversation identifier for the reference.
func (c ConversationRef) ID() string {
	if c.Kind == ConversationDirect {
		return DirectConversationID(c.UserA, c.UserB)
	}
	return GroupConversationID(c.GroupID)
}

// Includes reports whether userID is one of the encoded direct participants.
// Only meaningful for direct references.
func (c ConversationRef) Includes(userID int64) bool {
	return c.UserA == userID || c.UserB == userID
}

// Counterpart returns the other participant of a direct reference.
func (c ConversationRef) Counterpart(userID int64) int64 {
	if c.UserA == userID {
		return c.UserB
	}
	return c.UserA
}

// ParseConversationID parses a conversation identifier in one of its two
// shapes: a tagged direct-pair id ("direct_<lo>_<hi>") or a bare group id.
func ParseConversationID(s string) (ConversationRef, error) {
	if rest, ok := strings.CutPrefix(s, directIDPrefix); ok {
		lo, hi, found := strings.Cut(rest, "_")
		if !found {
			return ConversationRef{}, fmt.Errorf("%w: malformed direct conversation id %q", ErrInvalidInput, s)
		}
		a, err := strconv.ParseInt(lo, 10, 64)
		if err != nil {
			return ConversationRef{}, fmt.Errorf("%w: malformed direct conversation id %q", ErrInvalidInput, s)
		}
		b, err := strconv.ParseInt(hi, 10, 64)
		if err != nil {
			return ConversationRef{}, fmt.Errorf("%w: malformed direct conversation id %q", ErrInvalidInput, s)
		}
		if a == b {
			return ConversationRef{}, fmt.Errorf("%w: direct conversation needs two distinct users", ErrInvalidInput)
		}
		if b < a {
			a, b = b, a
		}
		return ConversationRef{Kind: ConversationDirect, UserA: a, UserB: b}, nil
	}

	groupID, err := strconv.ParseInt(s, 10, 64)
	if err != nil || groupID <= 0 {
		return ConversationRef{}, fmt.Errorf("%w: invalid conversation id %q", ErrInvalidInput, s)
	}
	return ConversationRef{Kind: ConversationGroup, GroupID: groupID}, nil
}
