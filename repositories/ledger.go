//go:generate go run go.uber.org/mock/mockgen -source=ledger.go -destination=../mocks/mock_ledger_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"toxbridge/domain"
	"toxbridge/ledger"
)

// Key prefixes. Entries are keyed by uuid because ledger reference
// numbers are only stable within a session.
const (
	friendRequestPrefix = "freq:"
	groupInvitePrefix   = "ginv:"
)

// LedgerRepository persists pending friend requests and group invites in
// BadgerDB so they survive a session restart. Values are JSON; the data
// is tiny and only read back by this module.
type LedgerRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewLedgerRepository(db *badger.DB, log *slog.Logger) *LedgerRepository {
	return &LedgerRepository{db: db, log: log}
}

type diskRequest struct {
	Ref        int       `json:"ref"`
	ID         uuid.UUID `json:"id"`
	From       string    `json:"from"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}

type diskInvite struct {
	Ref          int       `json:"ref"`
	ID           uuid.UUID `json:"id"`
	From         string    `json:"from"`
	FriendNumber uint32    `json:"friend_number"`
	Kind         uint8     `json:"kind"`
	Data         []byte    `json:"data"`
	ReceivedAt   time.Time `json:"received_at"`
}

func (r *LedgerRepository) SaveFriendRequest(e *ledger.Entry[domain.FriendRequest]) error {
	return r.put(friendRequestPrefix+e.ID.String(), diskRequest{
		Ref:        e.Ref,
		ID:         e.ID,
		From:       e.From.Hex(),
		Message:    e.Payload.Message,
		ReceivedAt: e.ReceivedAt,
	})
}

func (r *LedgerRepository) DeleteFriendRequest(id string) error {
	return r.delete(friendRequestPrefix + id)
}

func (r *LedgerRepository) LoadFriendRequests() ([]*ledger.Entry[domain.FriendRequest], error) {
	var disk []diskRequest
	if err := r.scan(friendRequestPrefix, func(value []byte) error {
		var d diskRequest
		if err := json.Unmarshal(value, &d); err != nil {
			return err
		}
		disk = append(disk, d)
		return nil
	}); err != nil {
		return nil, err
	}
	return lo.Map(disk, func(d diskRequest, _ int) *ledger.Entry[domain.FriendRequest] {
		from := r.parseIdentity(d.From)
		return &ledger.Entry[domain.FriendRequest]{
			Ref:        d.Ref,
			ID:         d.ID,
			From:       from,
			Payload:    domain.FriendRequest{From: from, Message: d.Message},
			ReceivedAt: d.ReceivedAt,
		}
	}), nil
}

func (r *LedgerRepository) SaveGroupInvite(e *ledger.Entry[domain.GroupInvite]) error {
	return r.put(groupInvitePrefix+e.ID.String(), diskInvite{
		Ref:          e.Ref,
		ID:           e.ID,
		From:         e.From.Hex(),
		FriendNumber: e.Payload.FriendNumber,
		Kind:         uint8(e.Payload.Kind),
		Data:         e.Payload.Data,
		ReceivedAt:   e.ReceivedAt,
	})
}

func (r *LedgerRepository) DeleteGroupInvite(id string) error {
	return r.delete(groupInvitePrefix + id)
}

func (r *LedgerRepository) LoadGroupInvites() ([]*ledger.Entry[domain.GroupInvite], error) {
	var disk []diskInvite
	if err := r.scan(groupInvitePrefix, func(value []byte) error {
		var d diskInvite
		if err := json.Unmarshal(value, &d); err != nil {
			return err
		}
		disk = append(disk, d)
		return nil
	}); err != nil {
		return nil, err
	}
	return lo.Map(disk, func(d diskInvite, _ int) *ledger.Entry[domain.GroupInvite] {
		from := r.parseIdentity(d.From)
		return &ledger.Entry[domain.GroupInvite]{
			Ref:  d.Ref,
			ID:   d.ID,
			From: from,
			Payload: domain.GroupInvite{
				From:         from,
				FriendNumber: d.FriendNumber,
				Kind:         domain.GroupKind(d.Kind),
				Data:         d.Data,
			},
			ReceivedAt: d.ReceivedAt,
		}
	}), nil
}

// parseIdentity tolerates corrupt keys on disk: a zero identity is the
// documented placeholder and keeps the entry resolvable.
func (r *LedgerRepository) parseIdentity(s string) domain.Identity {
	id, err := domain.ParseIdentity(s)
	if err != nil {
		r.log.Warn(fmt.Sprintf("Corrupt identity in ledger store: %v", err))
		return domain.Identity{}
	}
	return id
}

func (r *LedgerRepository) put(key string, v any) error {
	bytes, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

func (r *LedgerRepository) delete(key string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// scan walks every value under prefix in key order.
func (r *LedgerRepository) scan(prefix string, visit func(value []byte) error) error {
	return r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(prefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if err := it.Item().Value(visit); err != nil {
				return err
			}
		}
		return nil
	})
}
