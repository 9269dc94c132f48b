// Package ledger implements the reference-numbered list backing pending
// friend requests and group invites. References are small integers shown
// to the user ("/friend accept 2"); they stay stable while the entry is
// outstanding and are reclaimed only after the entry is resolved.
package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"toxbridge/domain"
	"toxbridge/errors"
)

// Entry is one outstanding request awaiting a user decision.
type Entry[T any] struct {
	// Ref is the session-stable reference number the user types.
	Ref int
	// ID keys the entry in the persistence collaborator, where refs would
	// collide across restarts.
	ID         uuid.UUID
	From       domain.Identity
	Payload    T
	ReceivedAt time.Time
}

// Ledger holds outstanding entries indexed by reference number.
// It is not safe for concurrent use; the owning profile serializes access.
type Ledger[T any] struct {
	max     int
	entries map[int]*Entry[T]
}

// New returns a ledger capped at max outstanding entries.
func New[T any](max int) *Ledger[T] {
	return &Ledger[T]{max: max, entries: make(map[int]*Entry[T])}
}

// Add appends a new entry under the lowest unused reference number.
// It returns errors.ErrLedgerFull when the cap is reached; the caller owns
// telling the user, the request must not vanish silently.
func (l *Ledger[T]) Add(from domain.Identity, payload T) (*Entry[T], error) {
	if len(l.entries) >= l.max {
		return nil, errors.ErrLedgerFull
	}
	ref := 0
	for {
		if _, taken := l.entries[ref]; !taken {
			break
		}
		ref++
	}
	e := &Entry[T]{
		Ref:        ref,
		ID:         uuid.New(),
		From:       from,
		Payload:    payload,
		ReceivedAt: time.Now(),
	}
	l.entries[ref] = e
	return e, nil
}

// Resolve removes the entry named by ref and reclaims its number.
// errors.ErrUnknownRef when ref is not outstanding.
func (l *Ledger[T]) Resolve(ref int) (*Entry[T], error) {
	e, ok := l.entries[ref]
	if !ok {
		return nil, errors.ErrUnknownRef
	}
	delete(l.entries, ref)
	return e, nil
}

// Get returns the outstanding entry for ref without resolving it.
func (l *Ledger[T]) Get(ref int) (*Entry[T], error) {
	e, ok := l.entries[ref]
	if !ok {
		return nil, errors.ErrUnknownRef
	}
	return e, nil
}

// Restore re-inserts a persisted entry under its original reference,
// used when reloading pending requests at session start. Entries past the
// cap or with a taken reference are dropped and reported false.
func (l *Ledger[T]) Restore(e *Entry[T]) bool {
	if len(l.entries) >= l.max {
		return false
	}
	if _, taken := l.entries[e.Ref]; taken {
		return false
	}
	l.entries[e.Ref] = e
	return true
}

// Entries lists outstanding entries ordered by reference number.
func (l *Ledger[T]) Entries() []*Entry[T] {
	out := make([]*Entry[T], 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out
}

func (l *Ledger[T]) Len() int { return len(l.entries) }
