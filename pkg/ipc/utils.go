package ipc

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/odvcencio/webdriverd/pkg/errors"
	"github.com/odvcencio/webdriverd/pkg/wire"
)

// wireResponse is the JSON body of every protocol response.
type wireResponse struct {
	SessionID any `json:"sessionId"`
	Status    int `json:"status"`
	Value     any `json:"value"`
}

// httpStatus maps a wire status to the HTTP status of its response.
func httpStatus(status int) int {
	switch status {
	case apperrors.StatusSuccess:
		return http.StatusOK
	case apperrors.StatusNoSuchElement, apperrors.StatusNoSuchFrame,
		apperrors.StatusStaleElement, apperrors.StatusNoSuchWindow:
		return http.StatusNotFound
	case apperrors.StatusUnknownCommand, apperrors.StatusNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeResponse(w http.ResponseWriter, sessionID string, resp wire.Response) {
	writeWire(w, httpStatus(resp.Status), sessionID, resp)
}

// respondError reports a request that never reached a session, keeping the wire body
// shape but with its own HTTP status.
func respondError(w http.ResponseWriter, sessionID string, status int, err error) {
	writeWire(w, status, sessionID, wire.ErrorResponse(apperrors.StatusCode(err), apperrors.Message(err)))
}

func writeWire(w http.ResponseWriter, status int, sessionID string, resp wire.Response) {
	body := wireResponse{Status: resp.Status, Value: resp.Value}
	if sessionID != "" {
		body.SessionID = sessionID
	}
	respondJSON(w, status, body)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
