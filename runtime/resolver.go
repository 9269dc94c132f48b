package runtime

import "toxbridge/domain"

// unknownPeer is what a group peer renders as when the engine cannot
// resolve its name. A visible placeholder beats a silently dropped event.
const unknownPeer = "<unknown>"

// resolveFriendName returns the friend's protocol-reported name, falling
// back to a short hex prefix of its public key when the name is missing
// or the query fails. Never empty.
func (p *Profile) resolveFriendName(friendNumber uint32) string {
	name, err := p.engine.FriendName(friendNumber)
	if err == nil && name != "" {
		return name
	}
	return p.shortFriendID(friendNumber)
}

// shortFriendID renders the configured number of hex characters of the
// friend's key. A failed key lookup degrades to the all-zero key, so the
// result still has the expected shape.
func (p *Profile) shortFriendID(friendNumber uint32) string {
	id, err := p.engine.FriendPublicKey(friendNumber)
	if err != nil {
		id = domain.Identity{}
	}
	return id.ShortHex(p.opts.ShortIDLength)
}

// resolveGroupPeerName returns a group member's current name, or the
// placeholder when the engine cannot answer.
func (p *Profile) resolveGroupPeerName(groupNumber, peerNumber uint32) string {
	name, err := p.engine.GroupPeerName(groupNumber, peerNumber)
	if err != nil || name == "" {
		return unknownPeer
	}
	return name
}

// uniqueName derives a display name for id that collides with no other
// name in the profile roster, appending underscores until the candidate
// is free. Pure over current roster state and bounded by the roster size,
// so it always terminates.
func (p *Profile) uniqueName(id domain.Identity, base string) string {
	candidate := base
	for i := 0; i <= len(p.roster); i++ {
		if !p.nameTaken(id, candidate) {
			return candidate
		}
		candidate += "_"
	}
	return candidate
}

func (p *Profile) nameTaken(id domain.Identity, name string) bool {
	for other, part := range p.roster {
		if other != id && part.Name == name {
			return true
		}
	}
	return false
}
