//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"toxbridge/domain"
	"toxbridge/domain/event"
	"toxbridge/ledger"
)

// ProtocolEngine is the boundary to the underlying p2p protocol library.
// It is an opaque event source and command sink: Iterate pumps the network
// once and returns whatever callbacks fired, commands are fail-fast and
// classified via the errors package. The engine owns connection bootstrap,
// encryption and the DHT; none of that leaks into this module.
type ProtocolEngine interface {
	// Iterate performs one network pump step. It returns the events that
	// fired during the step, in protocol order, and the interval to wait
	// before the next step.
	Iterate() ([]event.Event, time.Duration)

	SelfConnectionStatus() event.ConnectionStatus
	SelfFriendList() []uint32

	FriendName(friendNumber uint32) (string, error)
	FriendStatusMessage(friendNumber uint32) (string, error)
	FriendPublicKey(friendNumber uint32) (domain.Identity, error)
	FriendByPublicKey(id domain.Identity) (uint32, error)
	FriendSendMessage(friendNumber uint32, kind domain.MessageKind, text string) error
	// FriendAdd registers a peer that already sent us a request, so no
	// request message goes out. Returns the new friend number.
	FriendAdd(id domain.Identity) (uint32, error)

	GroupPeerName(groupNumber, peerNumber uint32) (string, error)
	GroupPeerPublicKey(groupNumber, peerNumber uint32) (domain.Identity, error)
	// GroupJoin accepts an invite using its opaque cookie. Returns the new
	// group number.
	GroupJoin(friendNumber uint32, inviteData []byte) (uint32, error)

	// Close releases the engine handle. Must be called last during profile
	// shutdown, after the pump has stopped.
	Close() error
}

// Severity mirrors the host UI's message prefixes.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityJoin    Severity = "join"
	SeverityQuit    Severity = "quit"
	SeverityNetwork Severity = "network"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Target names the buffer a notification lands in. Profile=true addresses
// the profile-level buffer regardless of the other fields.
type Target struct {
	Profile bool
	Kind    domain.ChatKind
	Handle  uint32
}

func ProfileTarget() Target { return Target{Profile: true} }

func ChatTarget(c *domain.Chat) Target {
	return Target{Kind: c.Kind, Handle: c.Handle}
}

// Notifier is the UI sink. Nick mutations are keyed by display name
// because that is all the host UI knows; the stable identity never
// crosses this boundary.
type Notifier interface {
	Notify(target Target, severity Severity, text string)
	Message(target Target, from string, kind domain.MessageKind, text string)
	NickAdd(target Target, name string, visible bool)
	NickRemove(target Target, name string)
	NickSetVisible(target Target, name string, visible bool)
}

// LedgerStore persists pending requests across session restarts. Entries
// are keyed by their uuid, not by reference number, because references are
// only session-stable. A failing store never invalidates in-memory state.
type LedgerStore interface {
	SaveFriendRequest(e *ledger.Entry[domain.FriendRequest]) error
	DeleteFriendRequest(id string) error
	LoadFriendRequests() ([]*ledger.Entry[domain.FriendRequest], error)

	SaveGroupInvite(e *ledger.Entry[domain.GroupInvite]) error
	DeleteGroupInvite(id string) error
	LoadGroupInvites() ([]*ledger.Entry[domain.GroupInvite], error)
}

type WorkerName string

// Worker doesn't protect itself; the supervisor owns restarts.
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// for logging and supervision, avoiding manual naming in the interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
