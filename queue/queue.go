// Package queue buffers outbound messages for unreachable peers.
//
// Growth is unbounded by default; that is a documented resource risk, not
// a silent cap. A limit can be configured, in which case the oldest entry
// is evicted and returned so the caller can warn the user.
package queue

import (
	"time"

	"github.com/google/uuid"

	"toxbridge/domain"
)

// Queue holds per-identity FIFO queues of undelivered messages.
// It is not safe for concurrent use; the owning profile serializes access.
type Queue struct {
	limit  int // 0 means unbounded
	queues map[domain.Identity][]*domain.QueuedMessage
}

func New(limit int) *Queue {
	return &Queue{limit: limit, queues: make(map[domain.Identity][]*domain.QueuedMessage)}
}

// Enqueue appends a message for id and returns it. When a limit is set and
// reached, the oldest entry is evicted and returned in evicted; the caller
// must surface the loss.
func (q *Queue) Enqueue(id domain.Identity, kind domain.MessageKind, text string) (msg, evicted *domain.QueuedMessage) {
	msg = &domain.QueuedMessage{
		ID:       uuid.New(),
		Kind:     kind,
		Text:     text,
		QueuedAt: time.Now(),
	}
	pending := q.queues[id]
	if q.limit > 0 && len(pending) >= q.limit {
		evicted = pending[0]
		pending = pending[1:]
	}
	q.queues[id] = append(pending, msg)
	return msg, evicted
}

// Send hands one queued message to the protocol engine.
type Send func(m *domain.QueuedMessage) error

// Flush delivers id's queue strictly in arrival order. Each entry is
// removed only after send returned nil; on the first failure the entry and
// everything behind it stay queued for the next reconnect, and the error
// is returned. Entries enqueued while a flush is in progress land behind
// the in-flight ones and are picked up by the same loop.
func (q *Queue) Flush(id domain.Identity, send Send) (delivered int, err error) {
	for {
		pending := q.queues[id]
		if len(pending) == 0 {
			delete(q.queues, id)
			return delivered, nil
		}
		head := pending[0]
		if err = send(head); err != nil {
			return delivered, err
		}
		q.queues[id] = q.queues[id][1:]
		delivered++
	}
}

// Len reports how many messages are pending for id.
func (q *Queue) Len(id domain.Identity) int {
	return len(q.queues[id])
}

// Pending lists queued messages for id in delivery order, without
// removing them.
func (q *Queue) Pending(id domain.Identity) []*domain.QueuedMessage {
	pending := q.queues[id]
	out := make([]*domain.QueuedMessage, len(pending))
	copy(out, pending)
	return out
}
