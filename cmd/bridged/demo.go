package main

import (
	"fmt"
	"time"

	"toxbridge/domain"
	"toxbridge/domain/event"
	"toxbridge/errors"
)

// demoEngine stands in for a real protocol binding so the full pipeline
// (pump, dispatch, ledger, queue, notifications) is runnable end to end.
// It replays a short scripted session: a friend request arrives, a friend
// comes online, chats, renames itself and drops off again.
type demoEngine struct {
	step    int
	friends map[uint32]*demoFriend
}

type demoFriend struct {
	id     domain.Identity
	name   string
	online bool
}

func newDemoEngine() *demoEngine {
	return &demoEngine{
		friends: map[uint32]*demoFriend{
			0: {id: demoIdentity(0x41), name: "sora"},
		},
	}
}

func demoIdentity(b byte) domain.Identity {
	var id domain.Identity
	for i := range id {
		id[i] = b
	}
	return id
}

const demoInterval = 500 * time.Millisecond

func (d *demoEngine) Iterate() ([]event.Event, time.Duration) {
	d.step++
	switch d.step {
	case 2:
		return []event.Event{event.FriendRequest{
			PublicKey: demoIdentity(0x7F),
			Payload:   []byte("Hi, it's me"),
		}}, demoInterval
	case 4:
		d.friends[0].online = true
		return []event.Event{event.FriendConnectionStatus{
			FriendNumber: 0, Status: event.ConnectionUDP,
		}}, demoInterval
	case 6:
		return []event.Event{event.FriendMessage{
			FriendNumber: 0,
			MessageKind:  domain.MessageNormal,
			Payload:      []byte("hello from the demo engine"),
		}}, demoInterval
	case 8:
		d.friends[0].name = "sora_v2"
		return []event.Event{event.FriendName{
			FriendNumber: 0, Name: []byte("sora_v2"),
		}}, demoInterval
	case 10:
		d.friends[0].online = false
		return []event.Event{event.FriendConnectionStatus{
			FriendNumber: 0, Status: event.ConnectionNone,
		}}, demoInterval
	}
	return nil, demoInterval
}

func (d *demoEngine) SelfConnectionStatus() event.ConnectionStatus {
	if d.step >= 1 {
		return event.ConnectionUDP
	}
	return event.ConnectionNone
}

func (d *demoEngine) SelfFriendList() []uint32 { return []uint32{0} }

func (d *demoEngine) friend(friendNumber uint32) (*demoFriend, error) {
	f, ok := d.friends[friendNumber]
	if !ok {
		return nil, errors.Engine(errors.ClassUnknownTarget,
			fmt.Errorf("no friend %d", friendNumber))
	}
	return f, nil
}

func (d *demoEngine) FriendName(friendNumber uint32) (string, error) {
	f, err := d.friend(friendNumber)
	if err != nil {
		return "", err
	}
	return f.name, nil
}

func (d *demoEngine) FriendStatusMessage(friendNumber uint32) (string, error) {
	if _, err := d.friend(friendNumber); err != nil {
		return "", err
	}
	return "", nil
}

func (d *demoEngine) FriendPublicKey(friendNumber uint32) (domain.Identity, error) {
	f, err := d.friend(friendNumber)
	if err != nil {
		return domain.Identity{}, err
	}
	return f.id, nil
}

func (d *demoEngine) FriendByPublicKey(id domain.Identity) (uint32, error) {
	for fn, f := range d.friends {
		if f.id == id {
			return fn, nil
		}
	}
	return 0, errors.Engine(errors.ClassUnknownTarget, fmt.Errorf("unknown key"))
}

func (d *demoEngine) FriendSendMessage(friendNumber uint32, _ domain.MessageKind, _ string) error {
	f, err := d.friend(friendNumber)
	if err != nil {
		return err
	}
	if !f.online {
		return errors.Engine(errors.ClassTransient, fmt.Errorf("friend offline"))
	}
	return nil
}

func (d *demoEngine) FriendAdd(id domain.Identity) (uint32, error) {
	fn := uint32(len(d.friends))
	d.friends[fn] = &demoFriend{id: id, name: ""}
	return fn, nil
}

func (d *demoEngine) GroupPeerName(_, _ uint32) (string, error) {
	return "", errors.Engine(errors.ClassUnknownTarget, fmt.Errorf("no groups in demo"))
}

func (d *demoEngine) GroupPeerPublicKey(_, _ uint32) (domain.Identity, error) {
	return domain.Identity{}, errors.Engine(errors.ClassUnknownTarget, fmt.Errorf("no groups in demo"))
}

func (d *demoEngine) GroupJoin(_ uint32, _ []byte) (uint32, error) {
	return 0, errors.Engine(errors.ClassPermanent, fmt.Errorf("no groups in demo"))
}

func (d *demoEngine) Close() error { return nil }
