// Package taskclient implements the outbound half of the task-service
// protocol: POST <url>/tasks both to command a phase transition and, with
// the get_status action, to poll progress. The GET <url>/status liveness
// probe lives in pkg/health, not here. The bounded-timeout http.Client pattern
// follows warren's pkg/health HTTPChecker.
package taskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout is the outbound call budget spec §5 calls for.
const DefaultTimeout = 15 * time.Second

// Client speaks the task-service HTTP protocol against one base URL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New builds a Client bounded by DefaultTimeout.
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: DefaultTimeout}}
}

// StatusReply is the task service's report of its own progress, per spec
// §4.5: the POST /tasks response may optionally contain state and
// progress; both are the zero value when omitted.
type StatusReply struct {
	State    string `json:"state"`
	Progress int    `json:"progress"`
}

// Status sends the get_status action over the same POST <base>/tasks
// endpoint Command uses (spec §4.5: "All remote calls to task services
// use POST <service.url>/tasks"). It is distinct from the Health
// Monitor's GET <base>/status liveness probe (spec §4.2), which carries
// no task-specific payload.
func (c *Client) Status(ctx context.Context, taskID, releaseID string) (*StatusReply, error) {
	body, err := json.Marshal(CommandRequest{TaskID: taskID, ReleaseID: releaseID, Action: "get_status"})
	if err != nil {
		return nil, fmt.Errorf("taskclient: marshal status request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/tasks", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("taskclient: build status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("taskclient: status request to %s: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("taskclient: status request to %s returned %d", c.BaseURL, resp.StatusCode)
	}

	var reply StatusReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("taskclient: decode status reply: %w", err)
	}
	return &reply, nil
}

// CommandRequest is the body POSTed to <base>/tasks to drive a task
// through a phase (spec §5's task-service protocol).
type CommandRequest struct {
	TaskID    string `json:"task_id"`
	ReleaseID string `json:"release_id"`
	Action    string `json:"action"`
}

// Command calls POST <base>/tasks with the given action. A non-2xx
// response or a transport failure is returned as an error — callers on
// the fan-out path treat any error here as a reason to cancel the whole
// release (spec §4.4 Scenario discussion).
func (c *Client) Command(ctx context.Context, req CommandRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("taskclient: marshal command: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/tasks", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("taskclient: build command request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return fmt.Errorf("taskclient: command request to %s: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("taskclient: command request to %s returned %d", c.BaseURL, resp.StatusCode)
	}
	return nil
}
