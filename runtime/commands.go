package runtime

import (
	"fmt"

	"toxbridge/contract"
	"toxbridge/domain"
	"toxbridge/errors"
	"toxbridge/ledger"
)

// SendFriendMessage delivers text to a friend, or buffers it while the
// friend is unreachable. Buffered messages go out in order on the next
// reconnect.
func (p *Profile) SendFriendMessage(id domain.Identity, kind domain.MessageKind, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	part, known := p.roster[id]
	if !known {
		return fmt.Errorf("no friend with key %s", id.ShortHex(p.opts.ShortIDLength))
	}
	if !part.Visible {
		p.enqueueLocked(id, part.Name, kind, text)
		return nil
	}

	friendNumber, err := p.engine.FriendByPublicKey(id)
	if err != nil {
		p.enqueueLocked(id, part.Name, kind, text)
		return nil
	}
	if err := p.engine.FriendSendMessage(friendNumber, kind, text); err != nil {
		if errors.Transient(err) {
			p.enqueueLocked(id, part.Name, kind, text)
			return nil
		}
		p.notify.Notify(contract.ProfileTarget(), contract.SeverityError,
			fmt.Sprintf("Failed to send message to %s: %v", part.Name, err))
		return err
	}
	return nil
}

func (p *Profile) enqueueLocked(id domain.Identity, name string, kind domain.MessageKind, text string) {
	_, evicted := p.outbox.Enqueue(id, kind, text)
	p.notify.Notify(contract.ProfileTarget(), contract.SeverityInfo,
		fmt.Sprintf("Message to %s queued until they come online", name))
	if evicted != nil {
		p.notify.Notify(contract.ProfileTarget(), contract.SeverityWarning,
			fmt.Sprintf("Offline queue for %s is full; dropped oldest queued message", name))
	}
}

// AcceptFriendRequest resolves a ledger entry by adding the requester as
// a friend. The entry is only removed once the engine accepted the
// command, so a failed accept can be retried with the same reference.
func (p *Profile) AcceptFriendRequest(ref int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, err := p.requests.Get(ref)
	if err != nil {
		return err
	}
	friendNumber, err := p.engine.FriendAdd(entry.Payload.From)
	if err != nil {
		p.notify.Notify(contract.ProfileTarget(), contract.SeverityError,
			fmt.Sprintf("Failed to accept friend request %d: %v", ref, err))
		return err
	}
	if _, err := p.requests.Resolve(ref); err != nil {
		return err
	}
	p.forgetRequest(entry)
	part := p.ensureFriend(entry.Payload.From, friendNumber)
	p.notify.Notify(contract.ProfileTarget(), contract.SeverityInfo,
		fmt.Sprintf("Added %s as a friend", part.Name))
	return nil
}

// DeclineFriendRequest drops a pending request and reclaims its ref.
func (p *Profile) DeclineFriendRequest(ref int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, err := p.requests.Resolve(ref)
	if err != nil {
		return err
	}
	p.forgetRequest(entry)
	return nil
}

// JoinGroupInvite accepts a pending invite using its stored cookie.
func (p *Profile) JoinGroupInvite(ref int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, err := p.invites.Get(ref)
	if err != nil {
		return err
	}
	groupNumber, err := p.engine.GroupJoin(entry.Payload.FriendNumber, entry.Payload.Data)
	if err != nil {
		p.notify.Notify(contract.ProfileTarget(), contract.SeverityError,
			fmt.Sprintf("Failed to join group chat %d: %v", ref, err))
		return err
	}
	if _, err := p.invites.Resolve(ref); err != nil {
		return err
	}
	p.forgetInvite(entry)
	chat := p.groupChat(groupNumber, true)
	p.notify.Notify(contract.ChatTarget(chat), contract.SeverityInfo, "Joined group chat")
	return nil
}

// DeclineGroupInvite drops a pending invite and reclaims its ref.
func (p *Profile) DeclineGroupInvite(ref int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, err := p.invites.Resolve(ref)
	if err != nil {
		return err
	}
	p.forgetInvite(entry)
	return nil
}

// FriendRequests lists outstanding requests ordered by reference.
func (p *Profile) FriendRequests() []*ledger.Entry[domain.FriendRequest] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests.Entries()
}

// GroupInvites lists outstanding invites ordered by reference.
func (p *Profile) GroupInvites() []*ledger.Entry[domain.GroupInvite] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.invites.Entries()
}

// Friends snapshots the profile roster.
func (p *Profile) Friends() []*domain.Participant {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*domain.Participant, 0, len(p.roster))
	for _, part := range p.roster {
		out = append(out, part)
	}
	return out
}

// QueuedFor reports how many messages are buffered for a friend.
func (p *Profile) QueuedFor(id domain.Identity) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outbox.Len(id)
}
