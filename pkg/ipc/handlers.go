package ipc

import (
	"fmt"
	"maps"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/odvcencio/webdriverd/pkg/driver"
	apperrors "github.com/odvcencio/webdriverd/pkg/errors"
	"github.com/odvcencio/webdriverd/pkg/session"
	"github.com/odvcencio/webdriverd/pkg/wire"
)

// initialURLCapability lets a client pick the page a new session starts on.
const initialURLCapability = "webdriverd:initialUrl"

type newSessionRequest struct {
	DesiredCapabilities  map[string]any `json:"desiredCapabilities"`
	RequiredCapabilities map[string]any `json:"requiredCapabilities"`
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var payload newSessionRequest
	if status, err := decodeJSONBody(w, r, &payload, s.cfg.MaxBodyBytes, true); err != nil {
		respondError(w, "", status, err)
		return
	}
	opts, err := sessionOptions(payload)
	if err != nil {
		respondError(w, "", http.StatusBadRequest, err)
		return
	}
	id, err := s.sessions.Create(r.Context(), opts)
	if err != nil {
		s.logger.Warn("session not created", zap.Error(err))
		writeResponse(w, "", wire.ErrorResponse(apperrors.StatusCode(err), apperrors.Message(err)))
		return
	}
	resp := s.sessions.Dispatch(r.Context(), id, wire.NewCommand(wire.CommandGetSessionCapabilities, nil, nil))
	writeResponse(w, id, resp)
}

// sessionOptions merges required over desired capabilities and extracts the values the
// manager interprets itself.
func sessionOptions(req newSessionRequest) (session.Options, error) {
	caps := make(map[string]any, len(req.DesiredCapabilities)+len(req.RequiredCapabilities))
	maps.Copy(caps, req.DesiredCapabilities)
	maps.Copy(caps, req.RequiredCapabilities)

	var opts session.Options
	if raw, ok := caps[initialURLCapability]; ok {
		target, ok := raw.(string)
		if !ok {
			return opts, fmt.Errorf("capability %s must be a string", initialURLCapability)
		}
		opts.InitialURL = target
		delete(caps, initialURLCapability)
	}
	if raw, ok := caps["timeouts"]; ok {
		values, ok := raw.(map[string]any)
		if !ok {
			return opts, fmt.Errorf("capability timeouts must be an object")
		}
		timeouts, err := parseTimeouts(wire.Params(values))
		if err != nil {
			return opts, err
		}
		opts.Timeouts = timeouts
		delete(caps, "timeouts")
	}
	opts.Capabilities = caps
	return opts, nil
}

func parseTimeouts(params wire.Params) (driver.Timeouts, error) {
	var t driver.Timeouts
	fields := []struct {
		name string
		dst  *time.Duration
	}{
		{"implicit", &t.ImplicitWait},
		{"script", &t.Script},
		{"pageLoad", &t.PageLoad},
	}
	for _, f := range fields {
		if !params.Has(f.name) {
			continue
		}
		d, err := params.Duration(f.name)
		if err != nil {
			return t, fmt.Errorf("timeouts: %w", err)
		}
		*f.dst = d
	}
	return t, nil
}

// commandHandler dispatches code with the request's path parameters and JSON body.
func (s *Server) commandHandler(code wire.CommandCode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionId")
		params, status, err := readParams(w, r, s.cfg.MaxBodyBytes)
		if err != nil {
			respondError(w, id, status, err)
			return
		}
		resp := s.sessions.Dispatch(r.Context(), id, wire.NewCommand(code, locatorParams(r), params))
		writeResponse(w, id, resp)
	}
}

func (s *Server) handleUnknownCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	writeResponse(w, id, wire.ErrorResponse(apperrors.StatusUnknownCommand,
		fmt.Sprintf("unknown command: %s %s", r.Method, r.URL.Path)))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, limit := s.sessions.Count(), s.sessions.MaxSessions()
	writeResponse(w, "", wire.Response{Value: map[string]any{
		"ready":       limit <= 0 || count < limit,
		"sessions":    count,
		"maxSessions": limit,
		"uptime":      time.Since(s.started).Round(time.Second).String(),
		"build":       map[string]string{"version": s.cfg.Version},
	}})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, "", wire.Response{Value: s.sessions.List()})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}
