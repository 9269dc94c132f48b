package runtime

import (
	"bytes"
	stderrors "errors"
	"fmt"

	"toxbridge/contract"
	"toxbridge/domain"
	"toxbridge/domain/event"
	"toxbridge/errors"
)

// Dispatch routes one protocol event to the state it affects and emits
// the user-facing notifications. It is synchronous and runs under the
// profile's exclusive section: a handler finishes completely, including
// notifications, before the next event for this profile is processed.
//
// Failures inside a handler are recovered locally and become
// notifications; none of them may terminate dispatch.
func (p *Profile) Dispatch(ev event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := ev.(type) {
	case event.SelfConnectionStatus:
		p.handleSelfConnectionStatus(e)
	case event.FriendMessage:
		p.handleFriendMessage(e)
	case event.FriendConnectionStatus:
		p.handleFriendConnectionStatus(e)
	case event.FriendName:
		p.handleFriendName(e)
	case event.FriendStatusMessage:
		p.handleFriendRefresh(e.FriendNumber)
	case event.FriendUserStatus:
		p.handleFriendRefresh(e.FriendNumber)
	case event.FriendRequest:
		p.handleFriendRequest(e)
	case event.GroupMessage:
		p.handleGroupMessage(e)
	case event.GroupInvite:
		p.handleGroupInvite(e)
	case event.GroupPeerChange:
		p.handleGroupPeerChange(e)
	case event.GroupTitle:
		p.handleGroupTitle(e)
	default:
		p.log.Warn(fmt.Sprintf("Dropping event of unknown kind %q", ev.Kind()))
	}
}

// clampText copies an engine-owned payload into an owned string, bounded
// by max and cut at the first NUL. The engine reuses its buffers after
// the callback returns, so nothing may retain the slice itself.
func clampText(b []byte, max int) string {
	if len(b) > max {
		b = b[:max]
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func (p *Profile) handleSelfConnectionStatus(e event.SelfConnectionStatus) {
	online := e.Status.Online()
	if online == p.online {
		return
	}
	p.online = online
	if online {
		p.notify.Notify(contract.ProfileTarget(), contract.SeverityNetwork, "Connected to the network")
	} else {
		p.notify.Notify(contract.ProfileTarget(), contract.SeverityNetwork, "Disconnected from the network")
	}
}

func (p *Profile) handleFriendMessage(e event.FriendMessage) {
	text := clampText(e.Payload, domain.MaxMessageLength)
	id, err := p.engine.FriendPublicKey(e.FriendNumber)
	if err != nil {
		// No stable key, no chat to file this under. Show the message at
		// the profile level rather than dropping it.
		p.log.Warn(fmt.Sprintf("%v: friend %d: %v", errors.ErrProtocolQuery, e.FriendNumber, err))
		p.notify.Message(contract.ProfileTarget(), p.resolveFriendName(e.FriendNumber), e.MessageKind, text)
		return
	}
	p.ensureFriend(id, e.FriendNumber)
	chat := p.friendChat(id, e.FriendNumber, true)
	p.notify.Message(contract.ChatTarget(chat), p.roster[id].Name, e.MessageKind, text)
}

func (p *Profile) handleFriendRequest(e event.FriendRequest) {
	message := clampText(e.Payload, domain.MaxMessageLength)
	entry, err := p.requests.Add(e.PublicKey, domain.FriendRequest{From: e.PublicKey, Message: message})
	if err != nil {
		// Never drop the request silently; the user decides what to do
		// about a full ledger.
		p.notify.Notify(contract.ProfileTarget(), contract.SeverityWarning,
			"Received a friend request, but your friend request list is full!")
		return
	}
	p.notify.Notify(contract.ProfileTarget(), contract.SeverityNetwork,
		fmt.Sprintf("Received a friend request from %s with message %q; accept it with \"/friend accept %d\"",
			e.PublicKey.Hex(), message, entry.Ref))
	p.persistRequest(entry)
}

func (p *Profile) handleGroupInvite(e event.GroupInvite) {
	friendName := p.resolveFriendName(e.FriendNumber)
	from, err := p.engine.FriendPublicKey(e.FriendNumber)
	if err != nil {
		from = domain.Identity{}
	}
	invite := domain.GroupInvite{
		From:         from,
		FriendNumber: e.FriendNumber,
		Kind:         e.GroupKind,
		Data:         append([]byte(nil), e.Data...),
	}
	entry, err := p.invites.Add(from, invite)
	if err != nil {
		if stderrors.Is(err, errors.ErrLedgerFull) {
			p.notify.Notify(contract.ProfileTarget(), contract.SeverityWarning,
				fmt.Sprintf("Received a group chat invite from %s, but your invite list is full!", friendName))
			return
		}
		p.notify.Notify(contract.ProfileTarget(), contract.SeverityError,
			fmt.Sprintf("Received a group chat invite from %s, but failed to process it; try again", friendName))
		return
	}
	p.notify.Notify(contract.ProfileTarget(), contract.SeverityNetwork,
		fmt.Sprintf("Received %s invite from %s; join with \"/group join %d\"",
			e.GroupKind.Label(), friendName, entry.Ref))
	p.persistInvite(entry)
}

func (p *Profile) handleGroupMessage(e event.GroupMessage) {
	chat := p.groupChat(e.GroupNumber, true)
	text := clampText(e.Payload, domain.MaxMessageLength)
	p.notify.Message(contract.ChatTarget(chat), p.resolveGroupPeerName(e.GroupNumber, e.PeerNumber), e.MessageKind, text)
}
