// Package session owns the set of live driver sessions. Each session runs on its own
// mailbox worker; the manager creates them, routes commands to them and tears them down.
package session

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/webdriverd/pkg/browser"
	"github.com/odvcencio/webdriverd/pkg/driver"
	apperrors "github.com/odvcencio/webdriverd/pkg/errors"
	"github.com/odvcencio/webdriverd/pkg/logging"
	"github.com/odvcencio/webdriverd/pkg/mailbox"
	"github.com/odvcencio/webdriverd/pkg/observability"
	"github.com/odvcencio/webdriverd/pkg/telemetry"
	"github.com/odvcencio/webdriverd/pkg/wire"
)

const (
	defaultReapInterval = time.Minute

	reasonQuit       = "quit"
	reasonDestroyed  = "destroyed"
	reasonInvalid    = "invalid"
	reasonIdle       = "idle"
	reasonWorkerDied = "worker_died"
	reasonShutdown   = "shutdown"
)

// Config configures a Manager.
type Config struct {
	Launcher browser.Launcher
	Table    *driver.Table
	Hub      *telemetry.Hub

	// MaxSessions caps live sessions; zero means unlimited.
	MaxSessions int
	// IdleTimeout reaps sessions without commands for this long; zero disables.
	IdleTimeout  time.Duration
	ReapInterval time.Duration

	PollInterval  time.Duration
	ResponsePoll  time.Duration
	MaxFrameDepth int
	InitialURL    string
	Timeouts      driver.Timeouts
	Capabilities  map[string]any

	// JournalDir enables per-session JSONL journals.
	JournalDir   string
	JournalLevel logging.Level

	Logger *zap.Logger
}

// Options are the per-session values supplied by the client at creation.
type Options struct {
	InitialURL   string
	Timeouts     driver.Timeouts
	Capabilities map[string]any
}

// Info summarizes a live session.
type Info struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
	Windows    int       `json:"windows"`
	Busy       bool      `json:"busy"`
}

type entry struct {
	id         string
	mailbox    *mailbox.Mailbox
	journal    *logging.Journal
	createdAt  time.Time
	lastActive atomic.Int64
	inFlight   atomic.Int32
}

func (e *entry) touch() {
	e.lastActive.Store(time.Now().UnixNano())
}

func (e *entry) info() Info {
	return Info{
		ID:         e.id,
		CreatedAt:  e.createdAt,
		LastActive: time.Unix(0, e.lastActive.Load()),
		Windows:    e.mailbox.Session().WindowCount(),
		Busy:       e.inFlight.Load() > 0,
	}
}

// Manager tracks live sessions.
type Manager struct {
	cfg    Config
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*entry
	creating int
	closed   bool

	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a manager. Call Start to run the idle reaper.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = defaultReapInterval
	}
	return &Manager{
		cfg:      cfg,
		logger:   logger.Named("session"),
		sessions: make(map[string]*entry),
		stop:     make(chan struct{}),
	}
}

// Start runs the reaper until ctx is done or Close is called.
func (m *Manager) Start(ctx context.Context) {
	go m.reapLoop(ctx)
}

// Create launches a target on a new worker and waits for its first page to load.
func (m *Manager) Create(ctx context.Context, opts Options) (string, error) {
	if m.cfg.Launcher == nil {
		return "", apperrors.New(apperrors.ErrCodeWorkerStartFailure, "no automation target configured")
	}
	if err := m.reserve(); err != nil {
		return "", err
	}
	defer m.release()

	id := GenerateSessionID("")
	ctx, span := observability.StartSpan(ctx, "session.create",
		trace.WithAttributes(observability.AttrSessionID.String(id)))
	defer span.End()

	journal, err := m.openJournal(id)
	if err != nil {
		m.logger.Warn("journal unavailable", zap.String("session", id), zap.Error(err))
	}

	metrics := browser.NewMetrics()
	metrics.EnableTelemetry(m.cfg.Hub, id)
	sessCfg := m.sessionConfig(id, opts, metrics)
	initialURL := firstNonEmpty(opts.InitialURL, m.cfg.InitialURL)

	mb, err := mailbox.Start(mailbox.Config{
		Table: m.cfg.Table,
		Init: func(loop browser.EventLoop) (*driver.Session, error) {
			sessCfg.Loop = loop
			sess := driver.NewSession(sessCfg)
			win, err := m.cfg.Launcher.Launch(ctx, browser.LaunchOptions{
				InitialURL: initialURL,
				Loop:       loop,
				Events:     sess.HandleEvent,
			})
			if err != nil {
				return nil, err
			}
			sess.Attach(win)
			return sess, nil
		},
		Teardown:     (*driver.Session).CloseAll,
		ResponsePoll: m.cfg.ResponsePoll,
		Logger:       m.logger.With(zap.String("session", id)),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "worker start failed")
		_ = journal.Close()
		return "", err
	}

	if resp := mb.Submit(ctx, wire.NewCommand(wire.CommandNoop, nil, nil)); !resp.OK() {
		mb.Shutdown()
		_ = journal.Close()
		err := apperrors.New(apperrors.ErrCodeWorkerStartFailure, "initial page did not load: "+resp.Message())
		span.RecordError(err)
		span.SetStatus(codes.Error, "initial load failed")
		return "", err
	}

	e := &entry{id: id, mailbox: mb, journal: journal, createdAt: time.Now()}
	e.touch()

	m.mu.Lock()
	m.sessions[id] = e
	m.mu.Unlock()
	metricActiveSessions.Inc()

	go m.watch(e)

	_ = journal.Lifecycle(string(telemetry.EventSessionCreated), "session created", map[string]any{"url": initialURL})
	m.publish(telemetry.EventSessionCreated, id, "", nil)
	m.logger.Info("session created", zap.String("session", id), zap.String("url", initialURL))
	return id, nil
}

func (m *Manager) reserve() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return apperrors.New(apperrors.ErrCodeWorkerStartFailure, "session manager is closed")
	}
	if m.cfg.MaxSessions > 0 && len(m.sessions)+m.creating >= m.cfg.MaxSessions {
		return apperrors.Newf(apperrors.ErrCodeWorkerStartFailure, "session limit reached (%d)", m.cfg.MaxSessions)
	}
	m.creating++
	return nil
}

func (m *Manager) release() {
	m.mu.Lock()
	m.creating--
	m.mu.Unlock()
}

func (m *Manager) openJournal(id string) (*logging.Journal, error) {
	if m.cfg.JournalDir == "" {
		return nil, nil
	}
	journal, err := logging.OpenJournal(m.cfg.JournalDir, id)
	if err != nil {
		return nil, err
	}
	if m.cfg.JournalLevel != "" {
		journal.SetMinLevel(m.cfg.JournalLevel)
	}
	return journal, nil
}

func (m *Manager) sessionConfig(id string, opts Options, metrics *browser.Metrics) driver.Config {
	timeouts := m.cfg.Timeouts
	if opts.Timeouts.ImplicitWait > 0 {
		timeouts.ImplicitWait = opts.Timeouts.ImplicitWait
	}
	if opts.Timeouts.Script > 0 {
		timeouts.Script = opts.Timeouts.Script
	}
	if opts.Timeouts.PageLoad > 0 {
		timeouts.PageLoad = opts.Timeouts.PageLoad
	}

	caps := make(map[string]any, len(m.cfg.Capabilities)+len(opts.Capabilities))
	maps.Copy(caps, opts.Capabilities)
	maps.Copy(caps, m.cfg.Capabilities)

	hub := m.cfg.Hub
	return driver.Config{
		ID:            id,
		Timeouts:      timeouts,
		Capabilities:  caps,
		PollInterval:  m.cfg.PollInterval,
		MaxFrameDepth: m.cfg.MaxFrameDepth,
		PollObserver: func(settled bool) {
			observeNavigationPoll(settled)
			if settled {
				hub.Publish(telemetry.Event{Type: telemetry.EventNavigationSettled, SessionID: id})
			}
		},
		Metrics: metrics,
		Logger:  m.logger,
	}
}

// Dispatch runs cmd on the session's worker. Sessions that quit or became invalid while
// running the command are removed before Dispatch returns.
func (m *Manager) Dispatch(ctx context.Context, id string, cmd wire.Command) wire.Response {
	e, ok := m.lookup(id)
	if !ok {
		return wire.ErrorResponse(apperrors.StatusNoSuchSession, "no such session: "+id)
	}
	name := cmd.Code().String()
	logger := m.logger.With(zap.String("session", id), zap.String("command", name))

	ctx, span := observability.StartSpan(ctx, "command."+name, trace.WithAttributes(
		observability.AttrSessionID.String(id),
		observability.AttrCommand.String(name),
		observability.AttrCommandCode.Int(int(cmd.Code())),
	))
	defer span.End()

	m.publish(telemetry.EventCommandStarted, id, name, nil)
	e.inFlight.Add(1)
	started := time.Now()
	resp := e.mailbox.Submit(ctx, cmd)
	elapsed := time.Since(started)
	e.inFlight.Add(-1)
	e.touch()

	span.SetAttributes(observability.AttrStatusCode.Int(resp.Status))
	metricCommands.WithLabelValues(name, strconv.Itoa(resp.Status)).Inc()
	metricCommandLatency.WithLabelValues(name).Observe(elapsed.Seconds())
	if resp.OK() {
		m.publish(telemetry.EventCommandCompleted, id, name, map[string]any{"elapsed_ms": elapsed.Milliseconds()})
		logger.Debug("command completed", zap.Duration("elapsed", elapsed))
	} else {
		span.SetStatus(codes.Error, resp.Message())
		m.publish(telemetry.EventCommandFailed, id, name, map[string]any{
			"status":  resp.Status,
			"message": resp.Message(),
		})
		logger.Debug("command failed", zap.Int("status", resp.Status), zap.String("message", resp.Message()))
	}
	if err := e.journal.Command(name, resp.Status, resp.Message(), elapsed); err != nil {
		logger.Warn("journal write failed", zap.Error(err))
	}

	sess := e.mailbox.Session()
	select {
	case <-e.mailbox.Done():
		m.remove(id, reasonWorkerDied)
		return resp
	default:
	}
	switch {
	case sess.QuitRequested():
		m.remove(id, reasonQuit)
	case sess.Invalid():
		m.remove(id, reasonInvalid)
	}
	return resp
}

// Destroy shuts a session down.
func (m *Manager) Destroy(id string) error {
	if !m.remove(id, reasonDestroyed) {
		return apperrors.New(apperrors.ErrCodeNoSuchSession, "no such session: "+id)
	}
	return nil
}

// Get returns a live session's summary.
func (m *Manager) Get(id string) (Info, bool) {
	e, ok := m.lookup(id)
	if !ok {
		return Info{}, false
	}
	return e.info(), true
}

// List returns the live sessions ordered by creation.
func (m *Manager) List() []Info {
	m.mu.RLock()
	infos := make([]Info, 0, len(m.sessions))
	for _, e := range m.sessions {
		infos = append(infos, e.info())
	}
	m.mu.RUnlock()
	slices.SortFunc(infos, func(a, b Info) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return infos
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// MaxSessions returns the session cap, zero when unlimited.
func (m *Manager) MaxSessions() int {
	return m.cfg.MaxSessions
}

// Close stops the reaper and shuts every session down concurrently. New sessions are
// refused afterwards.
func (m *Manager) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	m.closed = true
	ids := slices.Collect(maps.Keys(m.sessions))
	m.mu.Unlock()

	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			m.remove(id, reasonShutdown)
			return nil
		})
	}
	return g.Wait()
}

func (m *Manager) lookup(id string) (*entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	return e, ok
}

// remove takes the session out of the map and shuts its worker down. It reports whether
// this call removed it.
func (m *Manager) remove(id, reason string) bool {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}

	e.mailbox.Shutdown()
	metricActiveSessions.Dec()
	metricSessionsClosed.WithLabelValues(reason).Inc()

	eventType := telemetry.EventSessionDestroyed
	switch reason {
	case reasonInvalid:
		eventType = telemetry.EventSessionInvalid
	case reasonIdle:
		eventType = telemetry.EventSessionReaped
	case reasonWorkerDied:
		eventType = telemetry.EventWorkerDied
	}
	m.publish(eventType, id, "", map[string]any{"reason": reason})
	_ = e.journal.Lifecycle(string(eventType), "session removed", map[string]any{"reason": reason})
	if err := e.journal.Close(); err != nil {
		m.logger.Warn("journal close failed", zap.String("session", id), zap.Error(err))
	}
	m.logger.Info("session removed", zap.String("session", id), zap.String("reason", reason))
	return true
}

// watch removes the session if its worker exits on its own.
func (m *Manager) watch(e *entry) {
	<-e.mailbox.Done()
	if m.remove(e.id, reasonWorkerDied) {
		m.logger.Error("session worker died", zap.String("session", e.id))
	}
}

func (m *Manager) reapLoop(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case <-ticker.C:
			m.reap(time.Now())
		}
	}
}

// reap removes invalid sessions and, when an idle timeout is set, sessions idle past it.
// Sessions with a command in flight are never reaped.
func (m *Manager) reap(now time.Time) {
	type candidate struct {
		id     string
		reason string
	}
	var toRemove []candidate

	m.mu.RLock()
	for id, e := range m.sessions {
		if e.inFlight.Load() > 0 {
			continue
		}
		switch {
		case e.mailbox.Session().Invalid():
			toRemove = append(toRemove, candidate{id, reasonInvalid})
		case m.cfg.IdleTimeout > 0 && now.Sub(time.Unix(0, e.lastActive.Load())) > m.cfg.IdleTimeout:
			toRemove = append(toRemove, candidate{id, reasonIdle})
		}
	}
	m.mu.RUnlock()

	for _, c := range toRemove {
		m.remove(c.id, c.reason)
	}
}

func (m *Manager) publish(eventType telemetry.EventType, id, command string, data map[string]any) {
	m.cfg.Hub.Publish(telemetry.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		SessionID: id,
		Command:   command,
		Data:      data,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
