package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"toxbridge/contract"
	"toxbridge/domain"
	"toxbridge/domain/event"
	"toxbridge/errors"
	"toxbridge/ledger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeFriend struct {
	id     domain.Identity
	name   string
	online bool
}

type fakePeer struct {
	id   domain.Identity
	name string
}

// fakeEngine is a scriptable protocol engine. Failures are injected per
// call site through the fail* maps.
type fakeEngine struct {
	friends map[uint32]*fakeFriend
	peers   map[[2]uint32]*fakePeer

	sent        []string
	failSendFor int // fail the first n sends with a transient error

	failKeyLookup  bool
	failNameLookup bool
	failPeerKey    bool

	nextFriendNumber uint32
	nextGroupNumber  uint32
	closed           bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		friends: make(map[uint32]*fakeFriend),
		peers:   make(map[[2]uint32]*fakePeer),
	}
}

func (f *fakeEngine) addFriend(fn uint32, name string, fill byte) domain.Identity {
	var id domain.Identity
	for i := range id {
		id[i] = fill
	}
	f.friends[fn] = &fakeFriend{id: id, name: name}
	return id
}

func (f *fakeEngine) addPeer(gn, pn uint32, name string, fill byte) domain.Identity {
	var id domain.Identity
	for i := range id {
		id[i] = fill
	}
	f.peers[[2]uint32{gn, pn}] = &fakePeer{id: id, name: name}
	return id
}

func (f *fakeEngine) Iterate() ([]event.Event, time.Duration) {
	return nil, 50 * time.Millisecond
}

func (f *fakeEngine) SelfConnectionStatus() event.ConnectionStatus {
	return event.ConnectionUDP
}

func (f *fakeEngine) SelfFriendList() []uint32 {
	out := make([]uint32, 0, len(f.friends))
	for fn := range f.friends {
		out = append(out, fn)
	}
	return out
}

func (f *fakeEngine) FriendName(fn uint32) (string, error) {
	if f.failNameLookup {
		return "", errors.Engine(errors.ClassUnknownTarget, fmt.Errorf("name lookup disabled"))
	}
	fr, ok := f.friends[fn]
	if !ok {
		return "", errors.Engine(errors.ClassUnknownTarget, fmt.Errorf("no friend %d", fn))
	}
	return fr.name, nil
}

func (f *fakeEngine) FriendStatusMessage(fn uint32) (string, error) { return "", nil }

func (f *fakeEngine) FriendPublicKey(fn uint32) (domain.Identity, error) {
	if f.failKeyLookup {
		return domain.Identity{}, errors.Engine(errors.ClassUnknownTarget, fmt.Errorf("key lookup disabled"))
	}
	fr, ok := f.friends[fn]
	if !ok {
		return domain.Identity{}, errors.Engine(errors.ClassUnknownTarget, fmt.Errorf("no friend %d", fn))
	}
	return fr.id, nil
}

func (f *fakeEngine) FriendByPublicKey(id domain.Identity) (uint32, error) {
	for fn, fr := range f.friends {
		if fr.id == id {
			return fn, nil
		}
	}
	return 0, errors.Engine(errors.ClassUnknownTarget, fmt.Errorf("unknown key"))
}

func (f *fakeEngine) FriendSendMessage(fn uint32, _ domain.MessageKind, text string) error {
	if f.failSendFor > 0 {
		f.failSendFor--
		return errors.Engine(errors.ClassTransient, fmt.Errorf("send refused"))
	}
	if _, ok := f.friends[fn]; !ok {
		return errors.Engine(errors.ClassUnknownTarget, fmt.Errorf("no friend %d", fn))
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeEngine) FriendAdd(id domain.Identity) (uint32, error) {
	fn := f.nextFriendNumber + 100
	f.nextFriendNumber++
	f.friends[fn] = &fakeFriend{id: id}
	return fn, nil
}

func (f *fakeEngine) GroupPeerName(gn, pn uint32) (string, error) {
	p, ok := f.peers[[2]uint32{gn, pn}]
	if !ok {
		return "", errors.Engine(errors.ClassUnknownTarget, fmt.Errorf("no peer %d/%d", gn, pn))
	}
	return p.name, nil
}

func (f *fakeEngine) GroupPeerPublicKey(gn, pn uint32) (domain.Identity, error) {
	if f.failPeerKey {
		return domain.Identity{}, errors.Engine(errors.ClassUnknownTarget, fmt.Errorf("peer key lookup disabled"))
	}
	p, ok := f.peers[[2]uint32{gn, pn}]
	if !ok {
		return domain.Identity{}, errors.Engine(errors.ClassUnknownTarget, fmt.Errorf("no peer %d/%d", gn, pn))
	}
	return p.id, nil
}

func (f *fakeEngine) GroupJoin(fn uint32, data []byte) (uint32, error) {
	gn := f.nextGroupNumber + 10
	f.nextGroupNumber++
	return gn, nil
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

type notification struct {
	target   contract.Target
	severity contract.Severity
	text     string
}

type nickOp struct {
	op      string // add, remove, visible
	target  contract.Target
	name    string
	visible bool
}

// fakeNotifier records everything crossing the UI boundary.
type fakeNotifier struct {
	notes    []notification
	messages []notification
	nickOps  []nickOp
}

func (n *fakeNotifier) Notify(target contract.Target, severity contract.Severity, text string) {
	n.notes = append(n.notes, notification{target, severity, text})
}

func (n *fakeNotifier) Message(target contract.Target, from string, _ domain.MessageKind, text string) {
	n.messages = append(n.messages, notification{target: target, text: from + ": " + text})
}

func (n *fakeNotifier) NickAdd(target contract.Target, name string, visible bool) {
	n.nickOps = append(n.nickOps, nickOp{"add", target, name, visible})
}

func (n *fakeNotifier) NickRemove(target contract.Target, name string) {
	n.nickOps = append(n.nickOps, nickOp{op: "remove", target: target, name: name})
}

func (n *fakeNotifier) NickSetVisible(target contract.Target, name string, visible bool) {
	n.nickOps = append(n.nickOps, nickOp{"visible", target, name, visible})
}

func (n *fakeNotifier) bySeverity(s contract.Severity) []notification {
	var out []notification
	for _, note := range n.notes {
		if note.severity == s {
			out = append(out, note)
		}
	}
	return out
}

func (n *fakeNotifier) reset() {
	n.notes = nil
	n.messages = nil
	n.nickOps = nil
}

// fakeStore is an in-memory LedgerStore with injectable write failures.
type fakeStore struct {
	requests map[string]*ledger.Entry[domain.FriendRequest]
	invites  map[string]*ledger.Entry[domain.GroupInvite]
	failSave bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: make(map[string]*ledger.Entry[domain.FriendRequest]),
		invites:  make(map[string]*ledger.Entry[domain.GroupInvite]),
	}
}

func (s *fakeStore) SaveFriendRequest(e *ledger.Entry[domain.FriendRequest]) error {
	if s.failSave {
		return fmt.Errorf("disk full")
	}
	s.requests[e.ID.String()] = e
	return nil
}

func (s *fakeStore) DeleteFriendRequest(id string) error {
	delete(s.requests, id)
	return nil
}

func (s *fakeStore) LoadFriendRequests() ([]*ledger.Entry[domain.FriendRequest], error) {
	var out []*ledger.Entry[domain.FriendRequest]
	for _, e := range s.requests {
		out = append(out, e)
	}
	return out, nil
}

func (s *fakeStore) SaveGroupInvite(e *ledger.Entry[domain.GroupInvite]) error {
	if s.failSave {
		return fmt.Errorf("disk full")
	}
	s.invites[e.ID.String()] = e
	return nil
}

func (s *fakeStore) DeleteGroupInvite(id string) error {
	delete(s.invites, id)
	return nil
}

func (s *fakeStore) LoadGroupInvites() ([]*ledger.Entry[domain.GroupInvite], error) {
	var out []*ledger.Entry[domain.GroupInvite]
	for _, e := range s.invites {
		out = append(out, e)
	}
	return out, nil
}

func newTestProfile(engine *fakeEngine) (*Profile, *fakeNotifier) {
	notifier := &fakeNotifier{}
	p := NewProfile(testLogger(), engine, notifier, nil, DefaultOptions())
	return p, notifier
}
