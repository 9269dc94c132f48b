package domain

import (
	"time"

	"github.com/google/uuid"
)

// FriendRequest is the payload of a pending friend request ledger entry.
type FriendRequest struct {
	From    Identity
	Message string
}

// GroupKind is the flavor of group chat an invite points at.
type GroupKind uint8

const (
	GroupText GroupKind = iota
	GroupAV
	GroupUnknown
)

// Label renders the kind the way it is shown in invite notifications.
func (k GroupKind) Label() string {
	switch k {
	case GroupText:
		return "a text-only group chat"
	case GroupAV:
		return "an audio/video group chat"
	default:
		return "a group chat of unknown type"
	}
}

// GroupInvite is the payload of a pending group invite ledger entry.
// Data is the opaque invite cookie required to join; FriendNumber is the
// inviting friend's session handle, kept so the join command can be issued
// while the session lasts.
type GroupInvite struct {
	From         Identity
	FriendNumber uint32
	Kind         GroupKind
	Data         []byte
}

// MessageKind distinguishes normal messages from /me style actions.
type MessageKind int

const (
	MessageNormal MessageKind = iota
	MessageAction
)

// QueuedMessage is one outbound message buffered while its recipient is
// unreachable. Messages are delivered strictly in arrival order.
type QueuedMessage struct {
	ID       uuid.UUID
	Kind     MessageKind
	Text     string
	QueuedAt time.Time
}
