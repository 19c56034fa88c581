package jobs_test

import (
	"context"
	"testing"

	"github.com/cuemby/coordinator/pkg/jobs"
	"github.com/stretchr/testify/require"
)

type recordingHandlers struct{ gotReleaseID string }

func (h *recordingHandlers) InitRelease(ctx context.Context, releaseID string) error {
	h.gotReleaseID = releaseID
	return nil
}
func (h *recordingHandlers) PublishRelease(ctx context.Context, releaseID string) error { return nil }
func (h *recordingHandlers) CancelRelease(ctx context.Context, releaseID string) error  { return nil }
func (h *recordingHandlers) StatusPoll(ctx context.Context, taskID string) error        { return nil }
func (h *recordingHandlers) HealthCheck(ctx context.Context, taskServiceID string) error {
	return nil
}

func TestMemoryDispatcherInvokesHandler(t *testing.T) {
	h := &recordingHandlers{}
	d := jobs.NewMemoryDispatcher(h)

	require.NoError(t, d.InitRelease(context.Background(), "RE_00000001"))
	require.Equal(t, "RE_00000001", h.gotReleaseID)
	require.Equal(t, []string{"init_release:RE_00000001"}, d.Calls)
}

func TestMemoryDispatcherRecordsWithoutHandlers(t *testing.T) {
	d := jobs.NewMemoryDispatcher(nil)
	require.NoError(t, d.StatusPoll(context.Background(), "TA_00000001"))
	require.Equal(t, []string{"status_poll:TA_00000001"}, d.Calls)
}
