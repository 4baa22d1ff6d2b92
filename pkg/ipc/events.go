package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/odvcencio/webdriverd/pkg/telemetry"
)

const (
	wsPingInterval = 20 * time.Second
	wsPingTimeout  = 5 * time.Second
	wsWriteTimeout = 15 * time.Second
)

type wsConn interface {
	Write(ctx context.Context, msgType websocket.MessageType, data []byte) error
	Close(status websocket.StatusCode, reason string) error
}

// eventClient forwards telemetry events to one WebSocket connection.
type eventClient struct {
	conn   wsConn
	events <-chan telemetry.Event
	filter func(telemetry.Event) bool
}

func (c *eventClient) writeLoop(ctx context.Context) error {
	for {
		select {
		case event, ok := <-c.events:
			if !ok {
				return nil
			}
			if c.filter != nil && !c.filter(event) {
				continue
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err = c.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// eventFilter selects events by session id and by type prefix. Empty values match all.
func eventFilter(sessionID, typePrefix string) func(telemetry.Event) bool {
	if sessionID == "" && typePrefix == "" {
		return nil
	}
	return func(event telemetry.Event) bool {
		if sessionID != "" && event.SessionID != sessionID {
			return false
		}
		return strings.HasPrefix(string(event.Type), typePrefix)
	}
}

// handleEvents streams telemetry events over a WebSocket. The "session" and "type" query
// parameters narrow the stream.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.telemetry == nil {
		respondError(w, "", http.StatusServiceUnavailable, errors.New("event stream disabled"))
		return
	}
	if !s.streams.TryAcquire(1) {
		respondError(w, "", http.StatusServiceUnavailable, errors.New("too many event stream clients"))
		return
	}
	defer s.streams.Release(1)

	// Subscribe before the handshake completes so no event published after the client
	// connects is missed.
	events, unsubscribe := s.telemetry.Subscribe()
	defer unsubscribe()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
	if err != nil {
		s.logger.Warn("event stream accept failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxWSReadBytesEventStream)
	metricEventStreams.Inc()
	defer metricEventStreams.Dec()

	query := r.URL.Query()
	client := &eventClient{
		conn:   conn,
		events: events,
		filter: eventFilter(query.Get("session"), query.Get("type")),
	}

	ctx := conn.CloseRead(r.Context())
	startWSPing(ctx, conn)

	if err := client.writeLoop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Debug("event stream closed", zap.Error(err))
	}
	_ = conn.Close(websocket.StatusNormalClosure, "closing")
}

func startWSPing(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pingCtx, cancel := context.WithTimeout(ctx, wsPingTimeout)
				_ = conn.Ping(pingCtx)
				cancel()
			}
		}
	}()
}
