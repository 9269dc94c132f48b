// Package event defines the variant type for everything the protocol
// engine can report. Each callback of the engine maps to exactly one
// struct here; the dispatcher routes on the concrete type.
//
// Payload slices are owned by the engine and only valid until the handler
// returns. Handlers copy what they keep.
package event

import "toxbridge/domain"

type Kind string

const (
	SelfConnectionStatusKind   Kind = "SELF_CONNECTION_STATUS"
	FriendMessageKind          Kind = "FRIEND_MESSAGE"
	FriendConnectionStatusKind Kind = "FRIEND_CONNECTION_STATUS"
	FriendNameKind             Kind = "FRIEND_NAME"
	FriendStatusMessageKind    Kind = "FRIEND_STATUS_MESSAGE"
	FriendUserStatusKind       Kind = "FRIEND_USER_STATUS"
	FriendRequestKind          Kind = "FRIEND_REQUEST"
	GroupMessageKind           Kind = "GROUP_MESSAGE"
	GroupInviteKind            Kind = "GROUP_INVITE"
	GroupPeerChangeKind        Kind = "GROUP_PEER_CHANGE"
	GroupTitleKind             Kind = "GROUP_TITLE"
)

type Event interface {
	Kind() Kind
}

// ConnectionStatus is the transport state of a peer or of the own session.
// The protocol reports three states; collapsing TCP and UDP to a boolean
// happens only at the visibility boundary, never here.
type ConnectionStatus int

const (
	ConnectionNone ConnectionStatus = iota
	ConnectionTCP
	ConnectionUDP
)

func (s ConnectionStatus) Online() bool { return s != ConnectionNone }

type SelfConnectionStatus struct {
	Status ConnectionStatus
}

func (SelfConnectionStatus) Kind() Kind { return SelfConnectionStatusKind }

type FriendMessage struct {
	FriendNumber uint32
	MessageKind  domain.MessageKind
	Payload      []byte
}

func (FriendMessage) Kind() Kind { return FriendMessageKind }

type FriendConnectionStatus struct {
	FriendNumber uint32
	Status       ConnectionStatus
}

func (FriendConnectionStatus) Kind() Kind { return FriendConnectionStatusKind }

type FriendName struct {
	FriendNumber uint32
	Name         []byte
}

func (FriendName) Kind() Kind { return FriendNameKind }

type FriendStatusMessage struct {
	FriendNumber uint32
	Message      []byte
}

func (FriendStatusMessage) Kind() Kind { return FriendStatusMessageKind }

// UserStatus is the away/busy flag a friend advertises.
type UserStatus int

const (
	UserStatusNone UserStatus = iota
	UserStatusAway
	UserStatusBusy
)

type FriendUserStatus struct {
	FriendNumber uint32
	Status       UserStatus
}

func (FriendUserStatus) Kind() Kind { return FriendUserStatusKind }

type FriendRequest struct {
	PublicKey domain.Identity
	Payload   []byte
}

func (FriendRequest) Kind() Kind { return FriendRequestKind }

type GroupMessage struct {
	GroupNumber uint32
	PeerNumber  uint32
	MessageKind domain.MessageKind
	Payload     []byte
}

func (GroupMessage) Kind() Kind { return GroupMessageKind }

type GroupInvite struct {
	FriendNumber uint32
	GroupKind    domain.GroupKind
	Data         []byte
}

func (GroupInvite) Kind() Kind { return GroupInviteKind }

// PeerChange enumerates group membership transitions.
type PeerChange int

const (
	PeerAdded PeerChange = iota
	PeerRemoved
	PeerRenamed
)

type GroupPeerChange struct {
	GroupNumber uint32
	PeerNumber  uint32
	Change      PeerChange
}

func (GroupPeerChange) Kind() Kind { return GroupPeerChangeKind }

// GroupTitle carries a topic change. HasPeer is false when the protocol
// could not attribute the change to a member; the title still applies.
type GroupTitle struct {
	GroupNumber uint32
	PeerNumber  uint32
	HasPeer     bool
	Title       []byte
}

func (GroupTitle) Kind() Kind { return GroupTitleKind }
