package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cuemby/coordinator/pkg/log"
)

// streamEvents serves a live activity feed over Server-Sent Events: every
// Event appended to the journal (spec §4.6) is pushed to each connected
// client as it happens, independent of the release or task it belongs to.
func (a *API) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := a.journal.Subscribe()
	defer a.journal.Unsubscribe(sub)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				log.Logger.Error().Err(err).Msg("httpapi: failed to marshal event for stream")
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
