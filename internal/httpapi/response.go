package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/cuemby/coordinator/pkg/cerrors"
	"github.com/cuemby/coordinator/pkg/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Logger.Error().Err(err).Msg("httpapi: failed to encode response")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps the cerrors taxonomy onto HTTP status codes so handlers
// never have to repeat the switch themselves.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case cerrors.Is(err, cerrors.KindValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case cerrors.Is(err, cerrors.KindInvalidTransition):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case cerrors.Is(err, cerrors.KindNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	default:
		log.Logger.Error().Err(err).Msg("httpapi: unhandled error")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
