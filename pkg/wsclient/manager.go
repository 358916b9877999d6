// Package wsclient owns the lifecycle of one logical connection to the
// suggestion server: connect, send, receive, reconnect with backoff, and a
// bounded outbound queue for messages sent while the socket is not open.
package wsclient

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"citation-engine-be/internal/pkg/logger"
	"citation-engine-be/pkg/protocol"
	"citation-engine-be/pkg/textctx"

	"github.com/google/uuid"
)

// Config holds the connection parameters. Changing them on a live manager
// goes through UpdateConfig, which closes the old transport before opening
// a new one.
type Config struct {
	// URL of the suggestion websocket endpoint.
	URL string
	// Token identifies the user; appended as the `token` query parameter.
	Token string

	HandshakeTimeout  time.Duration
	HeartbeatInterval time.Duration
	PongTimeout       time.Duration
	RequestTimeout    time.Duration
	BackoffFloor      time.Duration
	BackoffCap        time.Duration
	QueueCapacity     int
}

func (c *Config) withDefaults() {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 5 * time.Second
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 20 * time.Second
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = 10 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.BackoffFloor <= 0 {
		c.BackoffFloor = 500 * time.Millisecond
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = 30 * time.Second
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = 10
	}
}

type SuggestionsListener func(protocol.SuggestionsMessage)
type StateListener func(ConnectionState)
type ErrorListener func(protocol.ErrorMessage)

// Manager is the client-side connection manager. All mutable state lives
// behind one mutex; the generation counter ensures at most one connect is
// in flight and that goroutines belonging to a superseded transport cannot
// touch current state.
type Manager struct {
	dialer Dialer
	log    logger.ILogger

	// writeMu serializes writes to the transport; heartbeats and sends
	// share the socket.
	writeMu sync.Mutex

	mu              sync.Mutex
	cfg             Config
	state           ConnectionState
	lastErr         error
	transport       Transport
	generation      uint64
	explicitClose   bool
	queue           [][]byte
	backoffAttempt  int
	latestRequestId string
	pending         map[string]*time.Timer
	lastPingAt      time.Time
	lastPongAt      time.Time
	reconnectTimer  *time.Timer

	suggestionListeners []SuggestionsListener
	stateListeners      []StateListener
	errorListeners      []ErrorListener
}

func NewManager(cfg Config, log logger.ILogger) *Manager {
	cfg.withDefaults()
	return NewManagerWithDialer(cfg, &WebsocketDialer{HandshakeTimeout: cfg.HandshakeTimeout}, log)
}

func NewManagerWithDialer(cfg Config, dialer Dialer, log logger.ILogger) *Manager {
	cfg.withDefaults()
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Manager{
		dialer:  dialer,
		log:     log,
		cfg:     cfg,
		state:   StateIdle,
		pending: make(map[string]*time.Timer),
	}
}

// State returns the current connection state.
func (m *Manager) State() ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsOpen reports whether the transport handshake has completed. Derived
// solely from the state machine; never true while connecting.
func (m *Manager) IsOpen() bool {
	return m.State() == StateOpen
}

// LastError returns the reason for the most recent close, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) RegisterSuggestionsListener(fn SuggestionsListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suggestionListeners = append(m.suggestionListeners, fn)
}

func (m *Manager) RegisterConnectionStateListener(fn StateListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateListeners = append(m.stateListeners, fn)
}

func (m *Manager) RegisterErrorListener(fn ErrorListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorListeners = append(m.errorListeners, fn)
}

// Connect starts an asynchronous connect. Completion is observed through
// the state listeners, not through this call returning.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.state == StateConnecting || m.state == StateOpen {
		m.mu.Unlock()
		return
	}
	m.explicitClose = false
	m.stopReconnectTimerLocked()
	gen := m.nextGenerationLocked()
	notify := m.setStateLocked(StateConnecting, nil)
	m.mu.Unlock()
	notify()

	go m.runConnect(gen)
}

// Disconnect closes the connection and suppresses automatic reconnects
// until Connect is called again. Queued messages are discarded.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.explicitClose = true
	m.stopReconnectTimerLocked()
	m.nextGenerationLocked()
	t := m.transport
	m.transport = nil
	m.queue = nil
	var notifyClosing func()
	if t != nil {
		notifyClosing = m.setStateLocked(StateClosing, nil)
	}
	m.mu.Unlock()

	if notifyClosing != nil {
		notifyClosing()
		t.Close()
	}

	m.mu.Lock()
	notify := m.setStateLocked(StateClosed, nil)
	m.mu.Unlock()
	notify()
}

// UpdateConfig replaces the connection parameters. If the connection is
// open, the old transport is fully closed and its close confirmed before a
// new connect starts; two live sockets for the same identity are never
// allowed to race.
func (m *Manager) UpdateConfig(cfg Config) {
	cfg.withDefaults()

	m.mu.Lock()
	m.cfg = cfg
	wasOpen := m.state == StateOpen || m.state == StateConnecting
	if !wasOpen {
		m.mu.Unlock()
		return
	}
	m.nextGenerationLocked() // invalidate the old transport's goroutines
	t := m.transport
	m.transport = nil
	notifyClosing := m.setStateLocked(StateClosing, nil)
	m.mu.Unlock()
	notifyClosing()

	if t != nil {
		t.Close() // synchronous close confirmation before reopening
	}

	m.mu.Lock()
	notifyClosed := m.setStateLocked(StateClosed, nil)
	gen := m.nextGenerationLocked()
	notifyConnecting := m.setStateLocked(StateConnecting, nil)
	m.mu.Unlock()
	notifyClosed()
	notifyConnecting()

	go m.runConnect(gen)
}

// Send transmits immediately when open, otherwise enqueues into the bounded
// queue. When the queue is full the oldest entry is dropped: newest intent
// wins.
func (m *Manager) Send(data []byte) {
	m.mu.Lock()
	if m.state == StateOpen && m.transport != nil {
		t := m.transport
		gen := m.generation
		m.mu.Unlock()
		if err := m.write(t, data); err != nil {
			m.log.Warn("ConnectionManager", "Write failed, closing transport", map[string]interface{}{"error": err.Error()})
			m.handleTransportError(gen, err)
			m.enqueue(data)
		}
		return
	}
	m.enqueueLocked(data)
	m.mu.Unlock()
}

func (m *Manager) enqueue(data []byte) {
	m.mu.Lock()
	m.enqueueLocked(data)
	m.mu.Unlock()
}

func (m *Manager) enqueueLocked(data []byte) {
	if len(m.queue) >= m.cfg.QueueCapacity {
		m.queue = m.queue[1:]
	}
	m.queue = append(m.queue, data)
}

// RequestSuggestions issues a suggestion request for the given context and
// returns its request id. Responses for earlier requests are discarded once
// a newer one has been issued.
func (m *Manager) RequestSuggestions(text string, ctx textctx.TextContext) string {
	requestId := uuid.NewString()
	msg := protocol.SuggestMessage{
		Type:      protocol.TypeSuggest,
		RequestId: requestId,
		Text:      text,
		Context:   ctx,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return ""
	}

	m.mu.Lock()
	m.latestRequestId = requestId
	timeout := m.cfg.RequestTimeout
	m.pending[requestId] = time.AfterFunc(timeout, func() {
		m.expireRequest(requestId)
	})
	m.mu.Unlock()

	m.Send(data)
	return requestId
}

// RequestManualSuggestions serves explicit "search for this selection"
// actions. It shares the normal request path; bypassing the debounce is the
// caller's concern since the throttle never sees this call.
func (m *Manager) RequestManualSuggestions(text string, ctx textctx.TextContext) string {
	return m.RequestSuggestions(text, ctx)
}

// expireRequest surfaces a request that got no response in time as
// "suggestions unavailable". The request is not retried; the next context
// change naturally supersedes it.
func (m *Manager) expireRequest(requestId string) {
	m.mu.Lock()
	if _, ok := m.pending[requestId]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.pending, requestId)
	listeners := make([]ErrorListener, len(m.errorListeners))
	copy(listeners, m.errorListeners)
	m.mu.Unlock()

	msg := protocol.NewError(requestId, "suggestions unavailable")
	for _, fn := range listeners {
		fn(msg)
	}
}

func (m *Manager) nextGenerationLocked() uint64 {
	m.generation++
	return m.generation
}

func (m *Manager) stopReconnectTimerLocked() {
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
}

// setStateLocked changes the state and returns the notification to run
// after the mutex is released. Listener callbacks never run under the lock.
func (m *Manager) setStateLocked(s ConnectionState, reason error) func() {
	if m.state == s {
		return func() {}
	}
	m.state = s
	if reason != nil {
		m.lastErr = reason
	}
	listeners := make([]StateListener, len(m.stateListeners))
	copy(listeners, m.stateListeners)
	return func() {
		for _, fn := range listeners {
			fn(s)
		}
	}
}

func (m *Manager) runConnect(gen uint64) {
	m.mu.Lock()
	url := m.cfg.URL
	if m.cfg.Token != "" {
		url += "?token=" + m.cfg.Token
	}
	timeout := m.cfg.HandshakeTimeout
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	t, err := m.dialer.Dial(ctx, url, http.Header{})

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		if t != nil {
			t.Close()
		}
		return
	}

	if err != nil {
		notify := m.setStateLocked(StateClosed, err)
		m.scheduleReconnectLocked()
		m.mu.Unlock()
		notify()
		m.log.Warn("ConnectionManager", "Handshake failed", map[string]interface{}{"error": err.Error()})
		return
	}

	m.transport = t
	m.backoffAttempt = 0 // back to the floor after a successful handshake
	m.lastPongAt = time.Now()
	m.lastPingAt = time.Time{}
	flush := m.queue
	m.queue = nil
	notify := m.setStateLocked(StateOpen, nil)
	m.mu.Unlock()
	notify()
	m.log.Info("ConnectionManager", "Connection open", nil)

	// Drain the queue oldest-first. A mid-drain failure puts the failed
	// message and the undrained tail back so the next connect retries them,
	// same as the Send error path.
	for i, data := range flush {
		if err := m.write(t, data); err != nil {
			m.handleTransportError(gen, err)
			m.mu.Lock()
			for _, rest := range flush[i:] {
				m.enqueueLocked(rest)
			}
			m.mu.Unlock()
			return
		}
	}

	go m.readLoop(gen, t)
	go m.heartbeatLoop(gen, t)
}

func (m *Manager) readLoop(gen uint64, t Transport) {
	for {
		data, err := t.ReadMessage()
		if err != nil {
			m.handleTransportError(gen, err)
			return
		}
		m.handleFrame(data)
	}
}

func (m *Manager) handleFrame(data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		// Protocol errors are logged and dropped; they never tear down
		// the connection.
		m.log.Warn("ConnectionManager", "Dropping malformed frame", map[string]interface{}{"error": err.Error()})
		return
	}

	switch v := msg.(type) {
	case *protocol.SuggestionsMessage:
		m.deliverSuggestions(v)
	case *protocol.PongMessage:
		m.mu.Lock()
		m.lastPongAt = time.Now()
		m.mu.Unlock()
	case *protocol.ErrorMessage:
		m.deliverError(v)
	case *protocol.PingMessage:
		if data, err := json.Marshal(protocol.NewPong()); err == nil {
			m.Send(data)
		}
	default:
		m.log.Warn("ConnectionManager", "Dropping unexpected frame", map[string]interface{}{"type": typeName(msg)})
	}
}

func (m *Manager) deliverSuggestions(msg *protocol.SuggestionsMessage) {
	m.mu.Lock()
	if timer, ok := m.pending[msg.RequestId]; ok {
		timer.Stop()
		delete(m.pending, msg.RequestId)
	}
	if msg.RequestId != m.latestRequestId {
		// Stale response: a newer request superseded this one. Not an
		// error, silently discarded.
		m.mu.Unlock()
		return
	}
	listeners := make([]SuggestionsListener, len(m.suggestionListeners))
	copy(listeners, m.suggestionListeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(*msg)
	}
}

func (m *Manager) deliverError(msg *protocol.ErrorMessage) {
	m.mu.Lock()
	if msg.RequestId != "" {
		if timer, ok := m.pending[msg.RequestId]; ok {
			timer.Stop()
			delete(m.pending, msg.RequestId)
		}
		if msg.RequestId != m.latestRequestId {
			m.mu.Unlock()
			return
		}
	}
	listeners := make([]ErrorListener, len(m.errorListeners))
	copy(listeners, m.errorListeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(*msg)
	}
}

func (m *Manager) heartbeatLoop(gen uint64, t Transport) {
	m.mu.Lock()
	interval := m.cfg.HeartbeatInterval
	pongTimeout := m.cfg.PongTimeout
	m.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		if gen != m.generation {
			m.mu.Unlock()
			return
		}
		// The previous ping must have been answered before we send the next.
		if !m.lastPingAt.IsZero() && m.lastPongAt.Before(m.lastPingAt) && time.Since(m.lastPingAt) > pongTimeout {
			m.mu.Unlock()
			m.log.Warn("ConnectionManager", "Heartbeat pong timed out", nil)
			t.Close()
			m.handleTransportError(gen, errHeartbeatTimeout)
			return
		}
		m.lastPingAt = time.Now()
		m.mu.Unlock()

		data, err := json.Marshal(protocol.NewPing())
		if err != nil {
			continue
		}
		if err := m.write(t, data); err != nil {
			m.handleTransportError(gen, err)
			return
		}
	}
}

// handleTransportError moves Open -> Closed and schedules a reconnect
// unless the close was explicit. Goroutines of superseded transports land
// here too and are ignored via the generation check.
func (m *Manager) handleTransportError(gen uint64, err error) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	if m.transport != nil {
		m.transport.Close()
		m.transport = nil
	}
	m.nextGenerationLocked()
	notify := m.setStateLocked(StateClosed, err)
	if !m.explicitClose {
		m.scheduleReconnectLocked()
	}
	m.mu.Unlock()
	notify()
}

func (m *Manager) scheduleReconnectLocked() {
	delay := m.nextBackoffLocked()
	jittered := delay + time.Duration(rand.Int63n(int64(delay)/2+1))
	m.reconnectTimer = time.AfterFunc(jittered, func() {
		m.mu.Lock()
		if m.explicitClose || m.state == StateOpen || m.state == StateConnecting {
			m.mu.Unlock()
			return
		}
		gen := m.nextGenerationLocked()
		notify := m.setStateLocked(StateConnecting, nil)
		m.mu.Unlock()
		notify()
		go m.runConnect(gen)
	})
}

// nextBackoffLocked returns the base reconnect delay: floor doubling per
// attempt, capped. The base is non-decreasing; jitter is added on top by
// the caller.
func (m *Manager) nextBackoffLocked() time.Duration {
	delay := m.cfg.BackoffFloor << uint(m.backoffAttempt)
	if delay > m.cfg.BackoffCap || delay <= 0 {
		delay = m.cfg.BackoffCap
	} else {
		m.backoffAttempt++
	}
	return delay
}

func (m *Manager) write(t Transport, data []byte) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return t.WriteMessage(data)
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *protocol.SuggestMessage:
		return protocol.TypeSuggest
	default:
		return "unknown"
	}
}
