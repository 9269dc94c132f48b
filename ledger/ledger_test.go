package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"toxbridge/domain"
	"toxbridge/errors"
)

func id(b byte) domain.Identity {
	var out domain.Identity
	out[0] = b
	return out
}

func TestAdd_AssignsDistinctLowestRefs(t *testing.T) {
	l := New[domain.FriendRequest](10)

	seen := map[int]bool{}
	for i := 0; i < 5; i++ {
		e, err := l.Add(id(byte(i)), domain.FriendRequest{Message: "hi"})
		require.NoError(t, err)
		require.GreaterOrEqual(t, e.Ref, 0)
		require.False(t, seen[e.Ref])
		seen[e.Ref] = true
	}
	require.Len(t, seen, 5)
}

func TestResolve_ReclaimsLowestRef(t *testing.T) {
	l := New[domain.FriendRequest](10)
	for i := 0; i < 3; i++ {
		_, err := l.Add(id(byte(i)), domain.FriendRequest{})
		require.NoError(t, err)
	}

	_, err := l.Resolve(0)
	require.NoError(t, err)

	e, err := l.Add(id(9), domain.FriendRequest{})
	require.NoError(t, err)
	require.Equal(t, 0, e.Ref, "the reclaimed lowest number is reused")
}

func TestResolve_UnknownRef(t *testing.T) {
	l := New[domain.FriendRequest](10)
	e, err := l.Add(id(1), domain.FriendRequest{})
	require.NoError(t, err)

	_, err = l.Resolve(e.Ref)
	require.NoError(t, err)

	_, err = l.Resolve(e.Ref)
	require.ErrorIs(t, err, errors.ErrUnknownRef, "already-resolved ref")
	_, err = l.Resolve(42)
	require.ErrorIs(t, err, errors.ErrUnknownRef, "invented ref")
}

func TestAdd_LedgerFull(t *testing.T) {
	l := New[domain.FriendRequest](2)
	for i := 0; i < 2; i++ {
		_, err := l.Add(id(byte(i)), domain.FriendRequest{})
		require.NoError(t, err)
	}

	_, err := l.Add(id(9), domain.FriendRequest{})
	require.ErrorIs(t, err, errors.ErrLedgerFull)
	require.Equal(t, 2, l.Len())
}

func TestRefsNeverReusedWhileOutstanding(t *testing.T) {
	l := New[domain.FriendRequest](10)
	first, err := l.Add(id(1), domain.FriendRequest{})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		e, err := l.Add(id(byte(10+i)), domain.FriendRequest{})
		require.NoError(t, err)
		require.NotEqual(t, first.Ref, e.Ref)
	}
}

func TestEntries_OrderedByRef(t *testing.T) {
	l := New[domain.FriendRequest](10)
	for i := 0; i < 4; i++ {
		_, err := l.Add(id(byte(i)), domain.FriendRequest{})
		require.NoError(t, err)
	}
	_, err := l.Resolve(1)
	require.NoError(t, err)

	entries := l.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, []int{0, 2, 3}, []int{entries[0].Ref, entries[1].Ref, entries[2].Ref})
}

func TestRestore_KeepsRefsStable(t *testing.T) {
	l := New[domain.FriendRequest](10)
	e, err := l.Add(id(1), domain.FriendRequest{Message: "hello"})
	require.NoError(t, err)

	fresh := New[domain.FriendRequest](10)
	require.True(t, fresh.Restore(e))
	require.False(t, fresh.Restore(e), "taken slot is refused")

	got, err := fresh.Get(e.Ref)
	require.NoError(t, err)
	require.Equal(t, "hello", got.Payload.Message)

	// A later Add skips the restored slot.
	next, err := fresh.Add(id(2), domain.FriendRequest{})
	require.NoError(t, err)
	require.NotEqual(t, e.Ref, next.Ref)
}
