package ipc

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/odvcencio/webdriverd/pkg/wire"
)

// commandRoute binds a method and a path below /session/{sessionId} to a command.
type commandRoute struct {
	method  string
	pattern string
	code    wire.CommandCode
}

var commandRoutes = []commandRoute{
	{http.MethodGet, "/", wire.CommandGetSessionCapabilities},
	{http.MethodDelete, "/", wire.CommandQuit},

	{http.MethodPost, "/url", wire.CommandGet},
	{http.MethodGet, "/url", wire.CommandGetCurrentURL},
	{http.MethodPost, "/back", wire.CommandGoBack},
	{http.MethodPost, "/forward", wire.CommandGoForward},
	{http.MethodPost, "/refresh", wire.CommandRefresh},
	{http.MethodGet, "/title", wire.CommandGetTitle},
	{http.MethodGet, "/source", wire.CommandGetPageSource},
	{http.MethodPost, "/execute", wire.CommandExecuteScript},

	{http.MethodPost, "/timeouts", wire.CommandSetTimeouts},
	{http.MethodPost, "/timeouts/implicit_wait", wire.CommandImplicitlyWait},
	{http.MethodPost, "/timeouts/async_script", wire.CommandSetScriptTimeout},

	{http.MethodPost, "/element", wire.CommandFindElement},
	{http.MethodPost, "/elements", wire.CommandFindElements},
	{http.MethodPost, "/element/{id}/element", wire.CommandFindChildElement},
	{http.MethodPost, "/element/{id}/elements", wire.CommandFindChildElements},
	{http.MethodGet, "/element/{id}/text", wire.CommandGetElementText},
	{http.MethodGet, "/element/{id}/name", wire.CommandGetElementTagName},
	{http.MethodGet, "/element/{id}/attribute/{name}", wire.CommandGetElementAttribute},
	{http.MethodGet, "/element/{id}/displayed", wire.CommandIsElementDisplayed},
	{http.MethodGet, "/element/{id}/enabled", wire.CommandIsElementEnabled},
	{http.MethodPost, "/element/{id}/click", wire.CommandClickElement},
	{http.MethodPost, "/element_cache/clear", wire.CommandClearElementCache},

	{http.MethodGet, "/window_handle", wire.CommandGetCurrentWindowHandle},
	{http.MethodGet, "/window_handles", wire.CommandGetWindowHandles},
	{http.MethodPost, "/window", wire.CommandSwitchToWindow},
	{http.MethodDelete, "/window", wire.CommandCloseWindow},

	{http.MethodPost, "/accept_alert", wire.CommandAcceptAlert},
	{http.MethodPost, "/dismiss_alert", wire.CommandDismissAlert},
	{http.MethodGet, "/alert_text", wire.CommandGetAlertText},
	{http.MethodPost, "/moveto", wire.CommandMouseMoveTo},
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/status", s.handleStatus)
	r.Get("/sessions", s.handleListSessions)
	r.Get("/events", s.handleEvents)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/session", func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)
		r.Post("/", s.handleNewSession)
		r.Route("/{sessionId}", func(r chi.Router) {
			for _, route := range commandRoutes {
				r.Method(route.method, route.pattern, s.commandHandler(route.code))
			}
			r.NotFound(s.handleUnknownCommand)
			r.MethodNotAllowed(s.handleUnknownCommand)
		})
	})
	return r
}

// locatorParams collects the path parameters other than the session id.
func locatorParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	out := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if key == "sessionId" || key == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		out[key] = rctx.URLParams.Values[i]
	}
	return out
}
