package dialog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "jan-server/services/dialog-api/internal/domain/dialog"
)

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppingClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestStore(t *testing.T) (*MemoryStore, *steppingClock) {
	t.Helper()
	clock := &steppingClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewMemoryStoreWithClock(clock.Now), clock
}

func createDialog(t *testing.T, store *MemoryStore, a, b domain.UserID) *domain.Dialog {
	t.Helper()
	d := &domain.Dialog{ParticipantA: a, ParticipantB: b}
	require.NoError(t, store.Dialogs().Create(context.Background(), d))
	return d
}

func TestMemoryCreateRejectsDuplicatePair(t *testing.T) {
	store, _ := newTestStore(t)
	createDialog(t, store, "alice", "bob")

	err := store.Dialogs().Create(context.Background(), &domain.Dialog{ParticipantA: "alice", ParticipantB: "bob"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDialogConflict))
}

func TestMemoryAppendNeverGoesBackwards(t *testing.T) {
	store, clock := newTestStore(t)
	d := createDialog(t, store, "alice", "bob")
	messages := store.Messages()
	ctx := context.Background()

	first, err := messages.Append(ctx, d.ID, "alice", "one")
	require.NoError(t, err)

	clock.Set(clock.Now().Add(-time.Hour))
	second, err := messages.Append(ctx, d.ID, "bob", "two")
	require.NoError(t, err)

	assert.False(t, second.CreatedAt.Before(first.CreatedAt))
	assert.True(t, first.Before(*second))

	ordered, err := messages.ListOrdered(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, first.ID, ordered[0].ID)
	assert.Equal(t, second.ID, ordered[1].ID)
}

func TestMemoryAppendRejectsOutsider(t *testing.T) {
	store, _ := newTestStore(t)
	d := createDialog(t, store, "alice", "bob")

	_, err := store.Messages().Append(context.Background(), d.ID, "mallory", "hi")
	assert.True(t, errors.Is(err, domain.ErrNotParticipant))

	_, err = store.Messages().Append(context.Background(), 999, "alice", "hi")
	assert.True(t, errors.Is(err, domain.ErrDialogNotFound))
}

func TestMemoryMarkReadUpToIsMonotonic(t *testing.T) {
	store, clock := newTestStore(t)
	d := createDialog(t, store, "alice", "bob")
	messages := store.Messages()
	ctx := context.Background()

	var sent []*domain.Message
	for i := 0; i < 4; i++ {
		clock.Set(clock.Now().Add(time.Second))
		m, err := messages.Append(ctx, d.ID, "alice", "msg")
		require.NoError(t, err)
		sent = append(sent, m)
	}

	updated, err := messages.MarkReadUpTo(ctx, d.ID, sent[1])
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	updated, err = messages.MarkReadUpTo(ctx, d.ID, sent[1])
	require.NoError(t, err)
	assert.Zero(t, updated)

	ordered, err := messages.ListOrdered(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, ordered[0].IsRead)
	assert.True(t, ordered[1].IsRead)
	assert.False(t, ordered[2].IsRead)
	assert.False(t, ordered[3].IsRead)
}

func TestMemoryActivityMatchesMessages(t *testing.T) {
	store, clock := newTestStore(t)
	d := createDialog(t, store, "alice", "bob")
	ctx := context.Background()

	_, err := store.Messages().Append(ctx, d.ID, "alice", "hi")
	require.NoError(t, err)
	clock.Set(clock.Now().Add(time.Minute))
	last, err := store.Messages().Append(ctx, d.ID, "bob", "hey")
	require.NoError(t, err)

	loaded, err := store.Dialogs().FindByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.LastReceivedAt("alice"))
	assert.True(t, loaded.LastReceivedAt("alice").Equal(last.CreatedAt))
	assert.True(t, loaded.LastSentAt("alice").Before(last.CreatedAt))
}

func TestMemoryFavorites(t *testing.T) {
	store, _ := newTestStore(t)
	d := createDialog(t, store, "alice", "bob")
	dialogs := store.Dialogs()
	ctx := context.Background()

	added, err := dialogs.AddFavorite(ctx, d.ID, "alice")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = dialogs.AddFavorite(ctx, d.ID, "alice")
	require.NoError(t, err)
	assert.False(t, added)

	ok, err := dialogs.IsFavorite(ctx, d.ID, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := dialogs.RemoveFavorite(ctx, d.ID, "alice")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = dialogs.RemoveFavorite(ctx, d.ID, "alice")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMemoryListForUserPagesNewestFirst(t *testing.T) {
	store, clock := newTestStore(t)
	ab := createDialog(t, store, "alice", "bob")
	ac := createDialog(t, store, "alice", "carol")
	bc := createDialog(t, store, "bob", "carol")
	ctx := context.Background()

	for _, step := range []struct {
		dialog *domain.Dialog
		sender domain.UserID
	}{{ab, "alice"}, {bc, "bob"}, {ac, "carol"}, {ab, "bob"}} {
		clock.Set(clock.Now().Add(time.Second))
		_, err := store.Messages().Append(ctx, step.dialog.ID, step.sender, "x")
		require.NoError(t, err)
	}

	page, total, err := store.Messages().ListForUser(ctx, "alice", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, ab.ID, page[0].DialogID)
	assert.Equal(t, ac.ID, page[1].DialogID)

	rest, _, err := store.Messages().ListForUser(ctx, "alice", 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)

	empty, _, err := store.Messages().ListForUser(ctx, "alice", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryHonoursCancelledContext(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Dialogs().Create(ctx, &domain.Dialog{ParticipantA: "alice", ParticipantB: "bob"})
	assert.ErrorIs(t, err, context.Canceled)

	dialogs, err := store.Dialogs().ListForUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, dialogs)
}
