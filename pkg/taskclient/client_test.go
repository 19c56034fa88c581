package taskclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cuemby/coordinator/pkg/taskclient"
	"github.com/stretchr/testify/require"
)

func TestClientStatus(t *testing.T) {
	var gotBody taskclient.CommandRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tasks", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(taskclient.StatusReply{State: "staged", Progress: 100})
	}))
	defer server.Close()

	c := taskclient.New(server.URL)
	reply, err := c.Status(context.Background(), "TA_1", "RE_1")
	require.NoError(t, err)
	require.Equal(t, "staged", reply.State)
	require.Equal(t, 100, reply.Progress)
	require.Equal(t, "get_status", gotBody.Action)
	require.Equal(t, "TA_1", gotBody.TaskID)
}

func TestClientCommand(t *testing.T) {
	var gotBody taskclient.CommandRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tasks", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	c := taskclient.New(server.URL)
	err := c.Command(context.Background(), taskclient.CommandRequest{TaskID: "TA_1", ReleaseID: "RE_1", Action: "initialize"})
	require.NoError(t, err)
	require.Equal(t, "initialize", gotBody.Action)
}

func TestClientCommandErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := taskclient.New(server.URL)
	err := c.Command(context.Background(), taskclient.CommandRequest{TaskID: "TA_1", ReleaseID: "RE_1", Action: "start"})
	require.Error(t, err)
}
