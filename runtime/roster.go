package runtime

import (
	"fmt"

	"toxbridge/contract"
	"toxbridge/domain"
	"toxbridge/domain/event"
	"toxbridge/errors"
)

// handleFriendConnectionStatus flips the friend's visibility on real
// transitions only. The protocol re-announces unchanged states and also
// switches between its TCP and UDP variants; neither may trigger a second
// notification or a second queue flush.
func (p *Profile) handleFriendConnectionStatus(e event.FriendConnectionStatus) {
	id, err := p.engine.FriendPublicKey(e.FriendNumber)
	if err != nil {
		p.log.Warn(fmt.Sprintf("%v: friend %d: %v", errors.ErrProtocolQuery, e.FriendNumber, err))
		return
	}
	part := p.ensureFriend(id, e.FriendNumber)
	online := e.Status.Online()
	if online == part.Visible {
		return
	}
	part.Visible = online
	if chat := p.friendChat(id, e.FriendNumber, false); chat != nil {
		if cp := chat.Participant(id); cp != nil {
			cp.Visible = online
		}
	}
	p.notify.NickSetVisible(contract.ProfileTarget(), part.Name, online)
	if online {
		p.notify.Notify(contract.ProfileTarget(), contract.SeverityJoin,
			fmt.Sprintf("%s just came online.", part.Name))
		p.flushOutbox(id, e.FriendNumber, part.Name)
	} else {
		p.notify.Notify(contract.ProfileTarget(), contract.SeverityQuit,
			fmt.Sprintf("%s just went offline.", part.Name))
	}
}

// flushOutbox delivers the offline queue for a freshly reconnected
// friend, strictly in arrival order. Called exactly once per reconnect
// transition; undelivered entries stay queued for the next one.
func (p *Profile) flushOutbox(id domain.Identity, friendNumber uint32, name string) {
	delivered, err := p.outbox.Flush(id, func(m *domain.QueuedMessage) error {
		return p.engine.FriendSendMessage(friendNumber, m.Kind, m.Text)
	})
	if delivered > 0 {
		p.notify.Notify(contract.ProfileTarget(), contract.SeverityInfo,
			fmt.Sprintf("Sent %d queued message(s) to %s", delivered, name))
	}
	if err != nil {
		p.log.Warn(fmt.Sprintf("Flushing queue for %s stopped: %v", id.ShortHex(p.opts.ShortIDLength), err))
		p.notify.Notify(contract.ProfileTarget(), contract.SeverityWarning,
			fmt.Sprintf("%d message(s) for %s still queued: %v", p.outbox.Len(id), name, err))
	}
}

// handleFriendName applies a rename in place, preserving visibility. The
// protocol re-announces unchanged names, so an identical name is a strict
// no-op: no mutation, no notification.
func (p *Profile) handleFriendName(e event.FriendName) {
	id, err := p.engine.FriendPublicKey(e.FriendNumber)
	if err != nil {
		p.log.Warn(fmt.Sprintf("%v: friend %d: %v", errors.ErrProtocolQuery, e.FriendNumber, err))
		return
	}
	part := p.ensureFriend(id, e.FriendNumber)
	raw := clampText(e.Name, domain.MaxNameLength)
	if raw == "" {
		raw = p.shortFriendID(e.FriendNumber)
	}
	name := p.uniqueName(id, raw)
	if name == part.Name {
		return
	}
	old := part.Name
	part.Name = name

	p.notify.NickRemove(contract.ProfileTarget(), old)
	p.notify.NickAdd(contract.ProfileTarget(), name, part.Visible)

	if chat := p.friendChat(id, e.FriendNumber, false); chat != nil {
		chat.Rename(id, name)
		chat.QueueRefresh()
		p.notify.Notify(contract.ChatTarget(chat), contract.SeverityNetwork,
			fmt.Sprintf("%s is now known as %s", old, name))
	}
	p.notify.Notify(contract.ProfileTarget(), contract.SeverityNetwork,
		fmt.Sprintf("%s is now known as %s", old, name))
}

// handleFriendRefresh covers status-message and user-status changes: the
// chat metadata goes stale, nothing else moves.
func (p *Profile) handleFriendRefresh(friendNumber uint32) {
	id, err := p.engine.FriendPublicKey(friendNumber)
	if err != nil {
		return
	}
	if chat := p.friendChat(id, friendNumber, false); chat != nil {
		chat.QueueRefresh()
	}
}

// handleGroupPeerChange keeps a group's participant set converged with
// the engine's peer list. The stable public key is resolved before any
// mutation; peer numbers are never stored. When resolution fails the
// membership mutation is skipped but the textual notification still goes
// out with whatever name is available.
func (p *Profile) handleGroupPeerChange(e event.GroupPeerChange) {
	chat := p.groupChat(e.GroupNumber, true)
	target := contract.ChatTarget(chat)
	name := p.resolveGroupPeerName(e.GroupNumber, e.PeerNumber)

	id, err := p.engine.GroupPeerPublicKey(e.GroupNumber, e.PeerNumber)
	if err != nil {
		p.log.Warn(fmt.Sprintf("%v: group %d peer %d: %v",
			errors.ErrPeerResolution, e.GroupNumber, e.PeerNumber, err))
		switch e.Change {
		case event.PeerAdded:
			p.notify.Notify(target, contract.SeverityJoin,
				fmt.Sprintf("%s just joined the group chat", name))
		case event.PeerRemoved:
			p.notify.Notify(target, contract.SeverityQuit,
				fmt.Sprintf("%s just left the group chat", name))
		case event.PeerRenamed:
			p.notify.Notify(target, contract.SeverityNetwork,
				fmt.Sprintf("%s changed their name", name))
		}
		return
	}

	switch e.Change {
	case event.PeerAdded:
		chat.AddParticipant(&domain.Participant{Identity: id, Name: name, Visible: true})
		p.notify.NickAdd(target, name, true)
		p.notify.Notify(target, contract.SeverityJoin,
			fmt.Sprintf("%s just joined the group chat", name))

	case event.PeerRemoved:
		prev := name
		if part := chat.RemoveParticipant(id); part != nil {
			// The engine may have forgotten the peer already; the roster
			// record still knows the outgoing display name.
			prev = part.Name
			p.notify.NickRemove(target, prev)
		}
		p.notify.Notify(target, contract.SeverityQuit,
			fmt.Sprintf("%s just left the group chat", prev))

	case event.PeerRenamed:
		if chat.Participant(id) == nil {
			// First sighting of this peer; treat like a join.
			chat.AddParticipant(&domain.Participant{Identity: id, Name: name, Visible: true})
			p.notify.NickAdd(target, name, true)
			p.notify.Notify(target, contract.SeverityJoin,
				fmt.Sprintf("%s just joined the group chat", name))
			return
		}
		old, changed := chat.Rename(id, name)
		if !changed {
			return
		}
		part := chat.Participant(id)
		p.notify.NickRemove(target, old)
		p.notify.NickAdd(target, name, part.Visible)
		p.notify.Notify(target, contract.SeverityNetwork,
			fmt.Sprintf("%s is now known as %s", old, name))
	}
}

// handleGroupTitle applies a topic change and queues a metadata refresh.
// Attribution only happens when the protocol knows which member changed
// it; an anonymous change still applies.
func (p *Profile) handleGroupTitle(e event.GroupTitle) {
	chat := p.groupChat(e.GroupNumber, true)
	chat.Title = clampText(e.Title, domain.MaxNameLength)
	chat.QueueRefresh()
	if !e.HasPeer {
		return
	}
	p.notify.Notify(contract.ChatTarget(chat), contract.SeverityNetwork,
		fmt.Sprintf("%s has changed the topic to %q",
			p.resolveGroupPeerName(e.GroupNumber, e.PeerNumber), chat.Title))
}
