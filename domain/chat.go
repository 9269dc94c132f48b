package domain

// ChatKind discriminates one-to-one friend conversations from group chats.
type ChatKind int

const (
	ChatFriend ChatKind = iota
	ChatGroup
)

// Chat is one conversation buffer. It is created lazily on the first event
// that references it and lives for the rest of the session; the protocol
// handle (friend or group number) is only meaningful for this session.
type Chat struct {
	Kind         ChatKind
	Handle       uint32
	Title        string
	NeedsRefresh bool

	participants map[Identity]*Participant
}

func NewChat(kind ChatKind, handle uint32) *Chat {
	return &Chat{
		Kind:         kind,
		Handle:       handle,
		participants: make(map[Identity]*Participant),
	}
}

// Participant returns the entry for id, or nil if the peer is not a member.
func (c *Chat) Participant(id Identity) *Participant {
	return c.participants[id]
}

// AddParticipant inserts or replaces the entry for p.Identity.
func (c *Chat) AddParticipant(p *Participant) {
	c.participants[p.Identity] = p
}

// RemoveParticipant deletes the entry for id and returns it, or nil if the
// peer was not a member. Callers that need the outgoing display name for a
// notification must read it from the returned entry.
func (c *Chat) RemoveParticipant(id Identity) *Participant {
	p := c.participants[id]
	delete(c.participants, id)
	return p
}

// Rename updates the display name in place, preserving visibility.
// It reports whether the name actually changed; an unchanged name is a
// no-op so re-announced names do not produce notification storms.
func (c *Chat) Rename(id Identity, name string) (old string, changed bool) {
	p := c.participants[id]
	if p == nil || p.Name == name {
		return "", false
	}
	old = p.Name
	p.Name = name
	return old, true
}

// Participants returns the current membership. The slice is a copy; map
// iteration order is not significant.
func (c *Chat) Participants() []*Participant {
	out := make([]*Participant, 0, len(c.participants))
	for _, p := range c.participants {
		out = append(out, p)
	}
	return out
}

// QueueRefresh marks the chat metadata as stale. The host UI picks the
// flag up on its next render pass and clears it with ClearRefresh.
func (c *Chat) QueueRefresh() { c.NeedsRefresh = true }

func (c *Chat) ClearRefresh() { c.NeedsRefresh = false }
