package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/coordinator/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestReleaseNotesSummarizesJournaledEvents(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, &fakeClient{})

	release := &types.Release{ID: "RE_1", Name: "q3-cohort", Description: "quarterly cohort release", Tags: []string{"cohort"}, State: types.ReleaseWaiting, CreatedAt: time.Now()}
	require.NoError(t, store.CreateRelease(ctx, release))

	releaseID := release.ID
	require.NoError(t, store.CreateEvent(ctx, &types.Event{ID: "EV_1", Type: types.EventInfo, Message: "release created", ReleaseID: &releaseID, CreatedAt: time.Now()}))

	notes, err := svc.ReleaseNotes(ctx, release.ID)
	require.NoError(t, err)
	require.Equal(t, "q3-cohort", notes.Name)
	require.Equal(t, []string{"cohort"}, notes.Tags)
	require.Equal(t, []string{"release created"}, notes.Summary)
}
