package browser

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/odvcencio/webdriverd/pkg/telemetry"
)

// Metrics tracks automation target counters for one session.
type Metrics struct {
	// Window counts
	WindowsOpened atomic.Int64
	WindowsClosed atomic.Int64
	ActiveWindows atomic.Int64

	NavigationsStarted atomic.Int64
	DocumentsCompleted atomic.Int64
	DialogsOpened      atomic.Int64

	// Script evaluations
	ScriptCount        atomic.Int64
	ScriptFailureCount atomic.Int64
	ScriptLatencySum   atomic.Int64 // nanoseconds sum for averaging

	// Telemetry integration
	mu        sync.RWMutex
	hub       *telemetry.Hub
	sessionID string
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// EnableTelemetry wires the metrics collector to a telemetry hub.
func (m *Metrics) EnableTelemetry(hub *telemetry.Hub, sessionID string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.hub = hub
	m.sessionID = sessionID
	m.mu.Unlock()
}

// RecordWindowOpened counts a registered window.
func (m *Metrics) RecordWindowOpened(handle, url string) {
	if m == nil {
		return
	}
	m.WindowsOpened.Add(1)
	m.ActiveWindows.Add(1)
	m.publishEvent(telemetry.EventWindowOpened, handle, map[string]any{"url": url})
}

// RecordWindowClosed counts an unregistered window.
func (m *Metrics) RecordWindowClosed(handle string) {
	if m == nil {
		return
	}
	m.WindowsClosed.Add(1)
	m.ActiveWindows.Add(-1)
	m.publishEvent(telemetry.EventWindowClosed, handle, nil)
}

// RecordEvent counts navigation and dialog notifications.
func (m *Metrics) RecordEvent(handle string, ev Event) {
	if m == nil {
		return
	}
	switch ev.Kind {
	case EventNavigateStart:
		m.NavigationsStarted.Add(1)
		m.publishEvent(telemetry.EventNavigationStarted, handle, map[string]any{
			"url":       ev.URL,
			"top_level": ev.TopLevel(),
		})
	case EventDocumentComplete:
		m.DocumentsCompleted.Add(1)
	case EventDialogOpened:
		m.DialogsOpened.Add(1)
		m.publishEvent(telemetry.EventDialogOpened, handle, map[string]any{"message": ev.Message})
	}
}

// RecordScript tracks one script evaluation.
func (m *Metrics) RecordScript(success bool, latency time.Duration) {
	if m == nil {
		return
	}
	m.ScriptCount.Add(1)
	m.ScriptLatencySum.Add(latency.Nanoseconds())
	if !success {
		m.ScriptFailureCount.Add(1)
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	avgLatency := time.Duration(0)
	count := m.ScriptCount.Load()
	if count > 0 {
		avgLatency = time.Duration(m.ScriptLatencySum.Load() / count)
	}
	return MetricsSnapshot{
		WindowsOpened:        m.WindowsOpened.Load(),
		WindowsClosed:        m.WindowsClosed.Load(),
		ActiveWindows:        m.ActiveWindows.Load(),
		NavigationsStarted:   m.NavigationsStarted.Load(),
		DocumentsCompleted:   m.DocumentsCompleted.Load(),
		DialogsOpened:        m.DialogsOpened.Load(),
		ScriptCount:          count,
		ScriptFailureCount:   m.ScriptFailureCount.Load(),
		AverageScriptLatency: avgLatency,
	}
}

func (m *Metrics) publishEvent(eventType telemetry.EventType, window string, data map[string]any) {
	m.mu.RLock()
	hub := m.hub
	sessionID := m.sessionID
	m.mu.RUnlock()
	if hub == nil {
		return
	}
	hub.Publish(telemetry.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		SessionID: sessionID,
		Window:    window,
		Data:      data,
	})
}

// MetricsSnapshot is a point-in-time copy of target metrics.
type MetricsSnapshot struct {
	WindowsOpened        int64         `json:"windowsOpened"`
	WindowsClosed        int64         `json:"windowsClosed"`
	ActiveWindows        int64         `json:"activeWindows"`
	NavigationsStarted   int64         `json:"navigationsStarted"`
	DocumentsCompleted   int64         `json:"documentsCompleted"`
	DialogsOpened        int64         `json:"dialogsOpened"`
	ScriptCount          int64         `json:"scriptCount"`
	ScriptFailureCount   int64         `json:"scriptFailureCount"`
	AverageScriptLatency time.Duration `json:"averageScriptLatency"`
}
