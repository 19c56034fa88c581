package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuemby/coordinator/pkg/storage"
	"github.com/cuemby/coordinator/pkg/types"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	calls int
	err   error
}

func (f *fakePublisher) Publish(ctx context.Context, ev *types.Event) error {
	f.calls++
	return f.err
}

func TestJournalAppendPersistsAndPublishes(t *testing.T) {
	store := storage.NewMemoryStore()
	broker := NewBroker()
	pub := &fakePublisher{}
	j := NewJournal(store, broker, pub)

	sub := j.Subscribe()
	defer j.Unsubscribe(sub)

	releaseID := "RE_00000001"
	ev := &types.Event{ID: "EV_00000001", Type: types.EventInfo, Message: "hello", ReleaseID: &releaseID}
	require.NoError(t, j.Append(context.Background(), ev))
	require.Equal(t, 1, pub.calls)

	stored, err := store.ListEventsByRelease(context.Background(), releaseID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, ev.ID, stored[0].ID)

	select {
	case got := <-sub:
		require.Equal(t, ev.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("expected broadcast event, got none")
	}
}

func TestJournalAppendSwallowsPublishError(t *testing.T) {
	store := storage.NewMemoryStore()
	j := NewJournal(store, NewBroker(), &fakePublisher{err: errors.New("boom")})

	ev := &types.Event{ID: "EV_00000002", Type: types.EventInfo, Message: "still persisted"}
	require.NoError(t, j.Append(context.Background(), ev))
}

func TestNopPublisher(t *testing.T) {
	require.NoError(t, NopPublisher{}.Publish(context.Background(), &types.Event{}))
}
