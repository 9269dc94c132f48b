// Package runtime keeps the derived conversational state of one protocol
// session in sync with the event stream the engine produces. It owns no
// polling loop; the pump worker drives it and every handler runs to
// completion before the next event is processed.
package runtime

import (
	"fmt"
	"log/slog"
	"sync"

	"toxbridge/contract"
	"toxbridge/domain"
	"toxbridge/errors"
	"toxbridge/ledger"
	"toxbridge/queue"
)

// Options tune per-profile behavior. The zero value is not usable; use
// DefaultOptions as a base.
type Options struct {
	// ShortIDLength is how many hex characters of the public key stand in
	// for a missing name.
	ShortIDLength int
	// MaxFriendRequests / MaxGroupInvites cap the outstanding ledgers.
	MaxFriendRequests int
	MaxGroupInvites   int
	// QueueLimit caps each peer's offline queue; 0 means unbounded, which
	// is accepted as a known resource risk.
	QueueLimit int
}

func DefaultOptions() Options {
	return Options{
		ShortIDLength:     8,
		MaxFriendRequests: 128,
		MaxGroupInvites:   64,
		QueueLimit:        0,
	}
}

// Profile is one active protocol session and everything derived from it:
// the friend roster, lazily created chats, the pending-request ledgers
// and the offline message queue.
//
// All mutable state is confined behind one mutex; event dispatch and user
// commands take it for their full duration, which gives the per-profile
// exclusive section the concurrency model asks for.
type Profile struct {
	mu   sync.Mutex
	log  *slog.Logger
	opts Options

	engine contract.ProtocolEngine
	notify contract.Notifier
	store  contract.LedgerStore // nil disables persistence

	roster      map[domain.Identity]*domain.Participant
	friendChats map[domain.Identity]*domain.Chat
	groupChats  map[uint32]*domain.Chat

	requests *ledger.Ledger[domain.FriendRequest]
	invites  *ledger.Ledger[domain.GroupInvite]
	outbox   *queue.Queue

	online bool
}

func NewProfile(log *slog.Logger, engine contract.ProtocolEngine, notify contract.Notifier,
	store contract.LedgerStore, opts Options) *Profile {
	return &Profile{
		log:         log,
		opts:        opts,
		engine:      engine,
		notify:      notify,
		store:       store,
		roster:      make(map[domain.Identity]*domain.Participant),
		friendChats: make(map[domain.Identity]*domain.Chat),
		groupChats:  make(map[uint32]*domain.Chat),
		requests:    ledger.New[domain.FriendRequest](opts.MaxFriendRequests),
		invites:     ledger.New[domain.GroupInvite](opts.MaxGroupInvites),
		outbox:      queue.New(opts.QueueLimit),
	}
}

// Load seeds the roster from the engine's friend list and restores the
// pending ledgers from the store. Call once, before the pump starts.
func (p *Profile) Load() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, fn := range p.engine.SelfFriendList() {
		id, err := p.engine.FriendPublicKey(fn)
		if err != nil {
			p.log.Warn(fmt.Sprintf("Skipping friend %d: %v", fn, err))
			continue
		}
		p.ensureFriend(id, fn)
	}

	if p.store == nil {
		return
	}
	reqs, err := p.store.LoadFriendRequests()
	if err != nil {
		p.log.Warn(fmt.Sprintf("Loading friend requests failed: %v", err))
	}
	for _, e := range reqs {
		if !p.requests.Restore(e) {
			p.log.Warn(fmt.Sprintf("Dropping persisted friend request %s: ledger slot taken", e.ID))
		}
	}
	invs, err := p.store.LoadGroupInvites()
	if err != nil {
		p.log.Warn(fmt.Sprintf("Loading group invites failed: %v", err))
	}
	for _, e := range invs {
		if !p.invites.Restore(e) {
			p.log.Warn(fmt.Sprintf("Dropping persisted group invite %s: ledger slot taken", e.ID))
		}
	}
}

// ensureFriend returns the roster entry for id, creating it invisible
// with a collision-free display name when the friend is new.
func (p *Profile) ensureFriend(id domain.Identity, friendNumber uint32) *domain.Participant {
	if part, ok := p.roster[id]; ok {
		return part
	}
	name := p.uniqueName(id, p.resolveFriendName(friendNumber))
	part := &domain.Participant{Identity: id, Name: name, Visible: false}
	p.roster[id] = part
	p.notify.NickAdd(contract.ProfileTarget(), name, false)
	return part
}

// friendChat returns the 1:1 chat for id, creating it when create is set.
func (p *Profile) friendChat(id domain.Identity, friendNumber uint32, create bool) *domain.Chat {
	if c, ok := p.friendChats[id]; ok {
		return c
	}
	if !create {
		return nil
	}
	c := domain.NewChat(domain.ChatFriend, friendNumber)
	if part, ok := p.roster[id]; ok {
		c.AddParticipant(&domain.Participant{Identity: id, Name: part.Name, Visible: part.Visible})
	}
	p.friendChats[id] = c
	return c
}

// groupChat returns the chat for a session group number, creating it when
// create is set. Group chats are keyed by handle because membership is
// only meaningful within the session; participants inside are still keyed
// by identity.
func (p *Profile) groupChat(groupNumber uint32, create bool) *domain.Chat {
	if c, ok := p.groupChats[groupNumber]; ok {
		return c
	}
	if !create {
		return nil
	}
	c := domain.NewChat(domain.ChatGroup, groupNumber)
	p.groupChats[groupNumber] = c
	return c
}

// Chats snapshots every conversation known to the session.
func (p *Profile) Chats() []*domain.Chat {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*domain.Chat, 0, len(p.friendChats)+len(p.groupChats))
	for _, c := range p.friendChats {
		out = append(out, c)
	}
	for _, c := range p.groupChats {
		out = append(out, c)
	}
	return out
}

// Online reports the collapsed self connection state.
func (p *Profile) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

// Close tears the profile down. The pump must already be stopped so no
// event can fire into a half-released session: persist what is pending,
// then hand the engine handle back.
func (p *Profile) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store != nil {
		for _, e := range p.requests.Entries() {
			if err := p.store.SaveFriendRequest(e); err != nil {
				p.log.Warn(fmt.Sprintf("Persisting friend request %d failed: %v", e.Ref, err))
			}
		}
		for _, e := range p.invites.Entries() {
			if err := p.store.SaveGroupInvite(e); err != nil {
				p.log.Warn(fmt.Sprintf("Persisting group invite %d failed: %v", e.Ref, err))
			}
		}
	}
	if err := p.engine.Close(); err != nil {
		return fmt.Errorf("releasing engine: %w", err)
	}
	return nil
}

// persistRequest saves a new ledger entry, reporting the failure without
// touching in-memory state. The distinct message matters: a full ledger
// and a failed save are different problems for the user.
func (p *Profile) persistRequest(e *ledger.Entry[domain.FriendRequest]) {
	if p.store == nil {
		return
	}
	if err := p.store.SaveFriendRequest(e); err != nil {
		p.log.Warn(fmt.Sprintf("%v: %v", errors.ErrPersistenceFailed, err))
		p.notify.Notify(contract.ProfileTarget(), contract.SeverityError,
			"Failed to save friend request; it will not survive a restart")
	}
}

func (p *Profile) persistInvite(e *ledger.Entry[domain.GroupInvite]) {
	if p.store == nil {
		return
	}
	if err := p.store.SaveGroupInvite(e); err != nil {
		p.log.Warn(fmt.Sprintf("%v: %v", errors.ErrPersistenceFailed, err))
		p.notify.Notify(contract.ProfileTarget(), contract.SeverityError,
			"Failed to save group invite; it will not survive a restart")
	}
}

func (p *Profile) forgetRequest(e *ledger.Entry[domain.FriendRequest]) {
	if p.store == nil {
		return
	}
	if err := p.store.DeleteFriendRequest(e.ID.String()); err != nil {
		p.log.Warn(fmt.Sprintf("Deleting friend request %s failed: %v", e.ID, err))
	}
}

func (p *Profile) forgetInvite(e *ledger.Entry[domain.GroupInvite]) {
	if p.store == nil {
		return
	}
	if err := p.store.DeleteGroupInvite(e.ID.String()); err != nil {
		p.log.Warn(fmt.Sprintf("Deleting group invite %s failed: %v", e.ID, err))
	}
}
